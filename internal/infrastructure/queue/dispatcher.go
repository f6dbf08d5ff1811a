package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/payperproject/portal/internal/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher runs jobs on a fixed set of workers, routing each job by
// consistent hashing on its key. Jobs for the same browser session therefore
// run one at a time and in submission order.
type Dispatcher struct {
	workers []chan func()
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan func(), numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan func(), channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Submit queues fn on the worker responsible for key. It blocks while that
// worker's buffer is full and gives up with ctx.Err() once ctx is done.
func (d *Dispatcher) Submit(ctx context.Context, key string, fn func()) error {
	idx := d.shardIndex(key)
	select {
	case d.workers[idx] <- fn:
		metrics.RevalidationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan func()) {
	depth := metrics.RevalidationQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			d.run(id, job)
		}
	}
}

func (d *Dispatcher) run(id int, job func()) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Int("worker_id", id).Msg("job panicked")
		}
	}()
	job()
}

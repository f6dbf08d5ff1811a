package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/payperproject/portal/internal/core/domain"
	"github.com/payperproject/portal/internal/core/ports"
	"github.com/payperproject/portal/internal/metrics"
)

const defaultRevalidateTimeout = 5 * time.Second

// Browser is one client session: its id and the identity tracks stored for it.
type Browser struct {
	ID    string
	Store ports.SessionStore
}

// ResolverOptions tunes the background revalidation of the primary track.
type ResolverOptions struct {
	Revalidate bool
	Timeout    time.Duration
}

// IdentityResolver turns the stored identity tracks of a browser into an
// AuthView, and performs the login/logout transitions that rewrite them.
type IdentityResolver struct {
	api    ports.AuthAPI
	runner ports.Runner
	opts   ResolverOptions
	log    zerolog.Logger
}

// NewIdentityResolver returns an IdentityResolver. Revalidation jobs are
// scheduled on runner, keyed by browser id.
func NewIdentityResolver(api ports.AuthAPI, runner ports.Runner, opts ResolverOptions, log zerolog.Logger) *IdentityResolver {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultRevalidateTimeout
	}
	return &IdentityResolver{api: api, runner: runner, opts: opts, log: log}
}

// Resolution is the two-phase result of ResolveAuthState. Optimistic is
// computed from storage alone; Confirmed waits for revalidation.
type Resolution struct {
	Optimistic domain.AuthView

	done      chan struct{}
	confirmed domain.AuthView
	err       error
}

func settled(view domain.AuthView) *Resolution {
	r := &Resolution{Optimistic: view, confirmed: view, done: make(chan struct{})}
	close(r.done)
	return r
}

// Confirmed blocks until revalidation has finished or ctx is done. A view
// whose revalidation was discarded reports the caller's context error.
func (r *Resolution) Confirmed(ctx context.Context) (domain.AuthView, error) {
	select {
	case <-r.done:
		if r.err != nil {
			return domain.AuthView{}, r.err
		}
		return r.confirmed, nil
	case <-ctx.Done():
		return domain.AuthView{}, ctx.Err()
	}
}

// ResolveAuthState reads both tracks and derives the authorization view.
// Unreadable tracks count as absent. When a primary track exists it is
// revalidated against the auth backend in the background; cancelling ctx
// before that finishes discards the result and leaves storage untouched.
func (r *IdentityResolver) ResolveAuthState(ctx context.Context, b Browser) (*Resolution, error) {
	id := r.readIdentity(ctx, b)
	if id.Primary == nil || !r.opts.Revalidate {
		return settled(DeriveView(id, domain.PhaseConfirmed)), nil
	}

	res := &Resolution{
		Optimistic: DeriveView(id, domain.PhaseOptimistic),
		done:       make(chan struct{}),
	}
	job := func() {
		defer close(res.done)
		res.confirmed, res.err = r.revalidate(ctx, b, id)
	}
	if err := r.runner.Submit(ctx, b.ID, job); err != nil {
		return nil, fmt.Errorf("schedule revalidation: %w", err)
	}
	return res, nil
}

func (r *IdentityResolver) readIdentity(ctx context.Context, b Browser) domain.Identity {
	company, err := b.Store.CompanySession(ctx)
	if err != nil {
		r.log.Warn().Err(err).Str("browser", b.ID).Msg("company session unreadable, treating as absent")
		company = nil
	}
	primary, err := b.Store.PrimarySession(ctx)
	if err != nil {
		r.log.Warn().Err(err).Str("browser", b.ID).Msg("primary session unreadable, treating as absent")
		primary = nil
	}

	id := domain.NewIdentity(primary, company)
	if id.Company != nil {
		id.CompanyToken = true
	} else if has, err := b.Store.HasCompanyToken(ctx); err == nil {
		id.CompanyToken = has
	}
	return id
}

// revalidate writes back only while the stored primary token is still the
// one that was checked. When a logout or a newer login got there first the
// confirmed view is taken from what storage now holds.
func (r *IdentityResolver) revalidate(ctx context.Context, b Browser, id domain.Identity) (domain.AuthView, error) {
	if err := ctx.Err(); err != nil {
		metrics.RevalidationsTotal.WithLabelValues("discarded").Inc()
		return domain.AuthView{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	start := time.Now()
	user, err := r.api.CurrentUser(callCtx, id.Primary.Token)
	metrics.RevalidationDuration.Observe(time.Since(start).Seconds())

	// The requester went away while the call was in flight.
	if ctx.Err() != nil {
		metrics.RevalidationsTotal.WithLabelValues("discarded").Inc()
		return domain.AuthView{}, ctx.Err()
	}

	if err != nil || user == nil {
		metrics.RevalidationsTotal.WithLabelValues("invalid").Inc()
		r.log.Info().Err(err).Str("browser", b.ID).Msg("primary session rejected, clearing")
		dropped, dropErr := b.Store.DropPrimarySession(ctx, id.Primary.Token)
		if dropErr != nil {
			r.log.Warn().Err(dropErr).Str("browser", b.ID).Msg("failed to clear primary session")
		}
		if dropErr == nil && !dropped {
			r.log.Info().Str("browser", b.ID).Msg("primary session replaced during revalidation, keeping it")
			return DeriveView(r.readIdentity(ctx, b), domain.PhaseConfirmed), nil
		}
		next := id
		next.Primary = nil
		return DeriveView(next, domain.PhaseConfirmed), nil
	}

	metrics.RevalidationsTotal.WithLabelValues("valid").Inc()
	refreshed, setErr := b.Store.RefreshPrimarySession(ctx, id.Primary.Token, user)
	if setErr != nil {
		r.log.Warn().Err(setErr).Str("browser", b.ID).Msg("failed to refresh stored user")
	}
	if setErr == nil && !refreshed {
		r.log.Info().Str("browser", b.ID).Msg("primary session replaced during revalidation, not refreshing")
		return DeriveView(r.readIdentity(ctx, b), domain.PhaseConfirmed), nil
	}
	next := id
	next.Primary = &domain.SessionRecord{Token: id.Primary.Token, User: user}
	return DeriveView(next, domain.PhaseConfirmed), nil
}

// DeriveView computes the role predicates for id. Loading is set for the
// optimistic phase only.
func DeriveView(id domain.Identity, phase domain.Phase) domain.AuthView {
	user := id.User()
	v := domain.AuthView{
		Phase:           phase,
		Loading:         phase == domain.PhaseOptimistic,
		IsAuthenticated: id.Primary != nil || id.Company != nil,
		Identity:        id.Kind(),
		User:            user,
	}

	if p := id.Primary; p != nil {
		v.IsAdmin = p.User.UserType == domain.UserTypeAdmin
		if p.User.UserType == domain.UserTypeProjectManager || p.User.Role == domain.RoleProjectManager {
			v.IsProjectManager = true
		}
	}
	if c := id.Company; c != nil && c.User.Role.Valid() {
		v.CompanyRoleHolder = true
		if c.User.CompanyID != "" {
			v.IsProjectManager = true
		}
	}

	v.IsCompanyUser = (user != nil && user.CompanyID != "") || id.Company != nil || id.CompanyToken
	if user != nil {
		v.IsClient = user.UserType == domain.UserTypeClient
		v.IsFreelancer = user.UserType == domain.UserTypeFreelancer
	}
	return v
}

// Login authenticates against the backend and stores the primary track.
// Storage is left untouched when the backend refuses.
func (r *IdentityResolver) Login(ctx context.Context, b Browser, email, password string) (*domain.User, error) {
	res, err := r.api.Login(ctx, email, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(string(domain.TrackPrimary), "failure").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}
	return r.store(ctx, b, domain.TrackPrimary, res)
}

// Register creates a primary account and stores its session.
func (r *IdentityResolver) Register(ctx context.Context, b Browser, in ports.RegisterInput) (*domain.User, error) {
	if in.UserType == "" {
		in.UserType = domain.UserTypeClient
	}
	res, err := r.api.Register(ctx, in)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(string(domain.TrackPrimary), "failure").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}
	return r.store(ctx, b, domain.TrackPrimary, res)
}

// CompanyLogin authenticates a company account and stores the company track.
func (r *IdentityResolver) CompanyLogin(ctx context.Context, b Browser, email, password string) (*domain.User, error) {
	res, err := r.api.CompanyLogin(ctx, email, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(string(domain.TrackCompany), "failure").Inc()
		return nil, fmt.Errorf("company login: %w", err)
	}
	return r.store(ctx, b, domain.TrackCompany, res)
}

func (r *IdentityResolver) store(ctx context.Context, b Browser, track domain.Track, res *ports.AuthResult) (*domain.User, error) {
	if res == nil || res.Token == "" || res.User == nil {
		metrics.LoginsTotal.WithLabelValues(string(track), "failure").Inc()
		return nil, fmt.Errorf("%s login: %w", track, domain.ErrAuthRejected)
	}

	var err error
	if track == domain.TrackCompany {
		err = b.Store.SetCompanySession(ctx, res.Token, res.User)
	} else {
		err = b.Store.SetPrimarySession(ctx, res.Token, res.User)
	}
	if err != nil {
		return nil, fmt.Errorf("store %s session: %w", track, err)
	}

	metrics.LoginsTotal.WithLabelValues(string(track), "success").Inc()
	r.log.Info().Str("browser", b.ID).Str("track", string(track)).Str("user_id", res.User.ID).Msg("session stored")
	return res.User, nil
}

// Logout notifies the backend on a best-effort basis and clears both tracks.
func (r *IdentityResolver) Logout(ctx context.Context, b Browser) error {
	if primary, err := b.Store.PrimarySession(ctx); err == nil && primary != nil {
		if err := r.api.Logout(ctx, primary.Token); err != nil {
			r.log.Warn().Err(err).Str("browser", b.ID).Msg("backend logout failed")
		}
	}

	return errors.Join(
		b.Store.ClearPrimarySession(ctx),
		b.Store.ClearCompanySession(ctx),
	)
}

// UpdateUser replaces the stored primary user, keeping its token.
func (r *IdentityResolver) UpdateUser(ctx context.Context, b Browser, user *domain.User) error {
	primary, err := b.Store.PrimarySession(ctx)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if primary == nil {
		return domain.ErrUnauthorized
	}
	return b.Store.SetPrimarySession(ctx, primary.Token, user)
}

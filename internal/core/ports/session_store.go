package ports

import (
	"context"

	"github.com/payperproject/portal/internal/core/domain"
)

// ClientStorage is the per-browser key-value space the portal keeps on the
// server side. Values are opaque strings.
type ClientStorage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	// SetMany writes all values in one step; readers never see a subset.
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	// SetIfEquals writes values only while guard holds expected, and
	// reports whether it did.
	SetIfEquals(ctx context.Context, guard, expected string, values map[string]string) (bool, error)
	// DeleteIfEquals removes keys only while guard holds expected, and
	// reports whether it did.
	DeleteIfEquals(ctx context.Context, guard, expected string, keys ...string) (bool, error)
}

// SessionStore reads and writes the two identity tracks of one browser.
// Getters return nil, nil for an absent or undecodable track.
//
// RefreshPrimarySession and DropPrimarySession act only while the stored
// primary token still equals token; false means a logout or a newer login
// replaced it and nothing was written.
type SessionStore interface {
	PrimarySession(ctx context.Context) (*domain.SessionRecord, error)
	SetPrimarySession(ctx context.Context, token string, user *domain.User) error
	ClearPrimarySession(ctx context.Context) error
	RefreshPrimarySession(ctx context.Context, token string, user *domain.User) (bool, error)
	DropPrimarySession(ctx context.Context, token string) (bool, error)
	CompanySession(ctx context.Context) (*domain.SessionRecord, error)
	// HasCompanyToken reports whether a company token is stored, whether
	// or not its user decodes.
	HasCompanyToken(ctx context.Context) (bool, error)
	SetCompanySession(ctx context.Context, token string, user *domain.User) error
	ClearCompanySession(ctx context.Context) error
}

// Runner executes fn asynchronously. Jobs sharing a key run in submission
// order. Submit returns ctx.Err() if the job could not be queued.
type Runner interface {
	Submit(ctx context.Context, key string, fn func()) error
}

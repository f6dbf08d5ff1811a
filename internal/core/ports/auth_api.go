package ports

import (
	"context"

	"github.com/payperproject/portal/internal/core/domain"
)

// AuthResult is what a successful login or registration hands back.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthAPI is the remote auth backend as seen by the identity resolver. It
// may be served in-process or over HTTP.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	// CurrentUser returns nil, nil when the backend does not recognise the token.
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string) error
	CompanyLogin(ctx context.Context, email, password string) (*AuthResult, error)
}

package authapi

import (
	"context"
	"errors"

	"github.com/payperproject/portal/internal/core/domain"
	"github.com/payperproject/portal/internal/core/ports"
)

// Local serves the AuthAPI from the in-process backend services.
type Local struct {
	auth    ports.AuthService
	company ports.CompanyAuthService
}

func NewLocal(auth ports.AuthService, company ports.CompanyAuthService) *Local {
	return &Local{auth: auth, company: company}
}

func (l *Local) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	token, user, err := l.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

func (l *Local) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	token, user, err := l.auth.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

// CurrentUser maps "token not accepted" to nil, nil, matching the HTTP client.
func (l *Local) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	user, err := l.auth.CurrentUser(ctx, token)
	if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrTokenRevoked) {
		return nil, nil
	}
	return user, err
}

func (l *Local) Logout(ctx context.Context, token string) error {
	return l.auth.Logout(ctx, token)
}

func (l *Local) CompanyLogin(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	token, user, err := l.company.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

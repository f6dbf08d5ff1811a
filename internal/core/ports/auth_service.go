package ports

import (
	"context"

	"github.com/payperproject/portal/internal/core/domain"
)

// RegisterInput carries the fields accepted when creating a primary account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	UserType  domain.UserType
}

// AuthService is the backend side of primary-track authentication.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string) error
}

// CompanyAuthService is the backend side of company-track authentication.
type CompanyAuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

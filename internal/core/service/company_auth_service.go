package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/payperproject/portal/internal/core/domain"
	"github.com/payperproject/portal/internal/core/ports"
)

// CompanyAuthService authenticates company-scoped accounts. Their tokens
// carry the role and company id.
type CompanyAuthService struct {
	repo   ports.CompanyUserRepository
	tokens *TokenIssuer
	log    zerolog.Logger
}

func NewCompanyAuthService(repo ports.CompanyUserRepository, tokens *TokenIssuer, log zerolog.Logger) *CompanyAuthService {
	return &CompanyAuthService{repo: repo, tokens: tokens, log: log}
}

func (s *CompanyAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user, domain.TrackCompany)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// CreateCompanyUser provisions a company account.
func (s *CompanyAuthService) CreateCompanyUser(ctx context.Context, email, password string, role domain.Role, companyID string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" || !role.Valid() || companyID == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Email:        email,
		Role:         role,
		CompanyID:    companyID,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", created.ID).Str("company_id", companyID).Msg("company user created")
	return created, nil
}

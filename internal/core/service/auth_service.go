package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/payperproject/portal/internal/core/domain"
	"github.com/payperproject/portal/internal/core/ports"
)

// AuthService implements registration, login and session checks for
// primary-track accounts.
type AuthService struct {
	repo     ports.UserRepository
	tokens   *TokenIssuer
	denylist ports.TokenDenylist
	log      zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, tokens *TokenIssuer, denylist ports.TokenDenylist, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, denylist: denylist, log: log}
}

// Register creates a client or freelancer account and logs it in. Other
// user types can only be provisioned through EnsureUser.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, *domain.User, error) {
	if in.UserType == "" {
		in.UserType = domain.UserTypeClient
	}
	if in.UserType != domain.UserTypeClient && in.UserType != domain.UserTypeFreelancer {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.create(ctx, in)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(user, domain.TrackPrimary)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// EnsureUser creates the account unless one with the same email exists.
func (s *AuthService) EnsureUser(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if !in.UserType.Valid() {
		return nil, domain.ErrInvalidCredentials
	}
	existing, err := s.repo.FindByEmail(ctx, normalizeEmail(in.Email))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	return s.create(ctx, in)
}

func (s *AuthService) create(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		UserType:     in.UserType,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", created.ID).Str("user_type", string(created.UserType)).Msg("user registered")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
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

	token, err := s.tokens.Issue(user, domain.TrackPrimary)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// CurrentUser resolves a primary token to its account. Invalid, revoked or
// company tokens yield ErrUnauthorized.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Track != domain.TrackPrimary {
		return nil, domain.ErrUnauthorized
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	if revoked {
		return nil, domain.ErrTokenRevoked
	}

	user, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// Logout revokes token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return err
	}
	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Str("user_id", claims.Subject).Msg("token revoked")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

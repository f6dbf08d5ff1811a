// Package session maps the two identity tracks onto a browser's client
// storage, using the same keys the single-page app kept in localStorage.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/payperproject/portal/internal/core/domain"
	"github.com/payperproject/portal/internal/core/ports"
)

const (
	KeyPrimaryToken = "auth_token"
	KeyPrimaryUser  = "user"
	KeyCompanyToken = "company_auth_token"
	KeyCompanyUser  = "company_user"
)

type trackKeys struct {
	token string
	user  string
}

var (
	primaryKeys = trackKeys{token: KeyPrimaryToken, user: KeyPrimaryUser}
	companyKeys = trackKeys{token: KeyCompanyToken, user: KeyCompanyUser}
)

// Store implements ports.SessionStore on top of a ClientStorage.
type Store struct {
	storage ports.ClientStorage
}

func NewStore(storage ports.ClientStorage) *Store {
	return &Store{storage: storage}
}

func (s *Store) PrimarySession(ctx context.Context) (*domain.SessionRecord, error) {
	return s.read(ctx, primaryKeys)
}

func (s *Store) SetPrimarySession(ctx context.Context, token string, user *domain.User) error {
	return s.write(ctx, primaryKeys, token, user)
}

func (s *Store) ClearPrimarySession(ctx context.Context) error {
	return s.storage.Delete(ctx, primaryKeys.token, primaryKeys.user)
}

// RefreshPrimarySession replaces the stored primary user while the stored
// token is still token.
func (s *Store) RefreshPrimarySession(ctx context.Context, token string, user *domain.User) (bool, error) {
	if token == "" || user == nil {
		return false, fmt.Errorf("refresh %s track: %w", primaryKeys.token, domain.ErrUnauthorized)
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", primaryKeys.user, err)
	}
	ok, err := s.storage.SetIfEquals(ctx, primaryKeys.token, token, map[string]string{primaryKeys.user: string(raw)})
	if err != nil {
		return false, fmt.Errorf("refresh %s: %w", primaryKeys.user, err)
	}
	return ok, nil
}

// DropPrimarySession clears the primary track while the stored token is
// still token.
func (s *Store) DropPrimarySession(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	ok, err := s.storage.DeleteIfEquals(ctx, primaryKeys.token, token, primaryKeys.token, primaryKeys.user)
	if err != nil {
		return false, fmt.Errorf("drop %s track: %w", primaryKeys.token, err)
	}
	return ok, nil
}

func (s *Store) CompanySession(ctx context.Context) (*domain.SessionRecord, error) {
	return s.read(ctx, companyKeys)
}

func (s *Store) HasCompanyToken(ctx context.Context) (bool, error) {
	token, ok, err := s.storage.Get(ctx, companyKeys.token)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", companyKeys.token, err)
	}
	return ok && token != "", nil
}

func (s *Store) SetCompanySession(ctx context.Context, token string, user *domain.User) error {
	return s.write(ctx, companyKeys, token, user)
}

func (s *Store) ClearCompanySession(ctx context.Context) error {
	return s.storage.Delete(ctx, companyKeys.token, companyKeys.user)
}

// read returns nil, nil unless both keys are set and the user decodes.
func (s *Store) read(ctx context.Context, keys trackKeys) (*domain.SessionRecord, error) {
	token, ok, err := s.storage.Get(ctx, keys.token)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", keys.token, err)
	}
	if !ok || token == "" {
		return nil, nil
	}

	raw, ok, err := s.storage.Get(ctx, keys.user)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", keys.user, err)
	}
	if !ok {
		return nil, nil
	}

	var user *domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user == nil {
		return nil, nil
	}
	return &domain.SessionRecord{Token: token, User: user}, nil
}

func (s *Store) write(ctx context.Context, keys trackKeys, token string, user *domain.User) error {
	if token == "" || user == nil {
		return fmt.Errorf("write %s track: %w", keys.token, domain.ErrUnauthorized)
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode %s: %w", keys.user, err)
	}
	values := map[string]string{keys.token: token, keys.user: string(raw)}
	if err := s.storage.SetMany(ctx, values); err != nil {
		return fmt.Errorf("write %s track: %w", keys.token, err)
	}
	return nil
}

// Package authapi provides the identity resolver's view of the auth backend,
// either over HTTP or in-process.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/payperproject/portal/internal/core/domain"
	"github.com/payperproject/portal/internal/core/ports"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	maxResponseBytes   = 1 << 20
)

// Client talks to a remote auth backend rooted at baseURL (e.g.
// https://api.example.com/api).
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerBody struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	UserType  string `json:"userType"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return c.session(ctx, "/auth/login", credentials{Email: email, Password: password})
}

func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	userType := in.UserType
	if userType == "" {
		userType = domain.UserTypeClient
	}
	return c.session(ctx, "/auth/register", registerBody{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		UserType:  string(userType),
	})
}

func (c *Client) CompanyLogin(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return c.session(ctx, "/company/auth/login", credentials{Email: email, Password: password})
}

// CurrentUser returns nil, nil when the backend answers 401 or a non-success
// envelope; transport failures are returned as errors.
func (c *Client) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	env, status, err := c.do(ctx, http.MethodGet, "/auth/me", token, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || env.Status != StatusSuccess {
		return nil, nil
	}

	var data SessionData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode current user: %w", err)
	}
	return data.User, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	env, _, err := c.do(ctx, http.MethodPost, "/auth/logout", token, nil)
	if err != nil {
		return err
	}
	if env.Status != StatusSuccess {
		return fmt.Errorf("logout: %w: %s", domain.ErrAuthRejected, env.Message)
	}
	return nil
}

func (c *Client) session(ctx context.Context, path string, body any) (*ports.AuthResult, error) {
	env, status, err := c.do(ctx, http.MethodPost, path, "", body)
	if err != nil {
		return nil, err
	}
	if env.Status != StatusSuccess {
		if status == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, env.Message)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrAuthRejected, env.Message)
	}

	var data SessionData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if data.Token == "" || data.User == nil {
		return nil, fmt.Errorf("%w: response missing token or user", domain.ErrAuthRejected)
	}
	return &ports.AuthResult{Token: data.Token, User: data.User}, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body any) (*Envelope, int, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env Envelope
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes))
	if err := dec.Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return nil, resp.StatusCode, fmt.Errorf("%s %s: decode response (status %d): %w", method, path, resp.StatusCode, err)
	}
	if env.Status == "" && resp.StatusCode >= 400 {
		env.Status = StatusError
		env.Message = http.StatusText(resp.StatusCode)
	}
	return &env, resp.StatusCode, nil
}

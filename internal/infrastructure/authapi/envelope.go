package authapi

import (
	"encoding/json"

	"github.com/payperproject/portal/internal/core/domain"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the response wrapper spoken by the auth backend:
// {"status":"success","message":"...","data":{"token":"...","user":{...}}}
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// SessionData is the data payload of login, registration and current-user
// responses. Token is absent for current-user.
type SessionData struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// UserType classifies a primary-track account.
type UserType string

const (
	UserTypeClient         UserType = "client"
	UserTypeFreelancer     UserType = "freelancer"
	UserTypeAdmin          UserType = "admin"
	UserTypeProjectManager UserType = "project_manager"
)

// Valid reports whether t is one of the known user types.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeClient, UserTypeFreelancer, UserTypeAdmin, UserTypeProjectManager:
		return true
	}
	return false
}

// Role is the role carried by a company-track account.
type Role string

const (
	RoleProjectManager Role = "project_manager"
	RoleCompanyUser    Role = "company_user"
)

// Valid reports whether r is a known company role.
func (r Role) Valid() bool {
	return r == RoleProjectManager || r == RoleCompanyUser
}

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrCompanyUserNotFound = errors.New("company user not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrAuthRejected        = errors.New("auth backend rejected request")
	ErrViewNotFound        = errors.New("view not found")
)

// User models an account on either identity track. Primary accounts carry a
// UserType; company accounts carry a Role and a CompanyID.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	UserType     UserType  `json:"userType,omitempty"`
	Role         Role      `json:"role,omitempty"`
	CompanyID    string    `json:"companyId,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// UnmarshalJSON accepts the company id under both "companyId" and
// "company_id"; older backends emitted the snake_case form.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var aux struct {
		plain
		SnakeCompanyID string `json:"company_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*u = User(aux.plain)
	if u.CompanyID == "" {
		u.CompanyID = aux.SnakeCompanyID
	}
	return nil
}

package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// Permissions carried in operator tokens.
const (
	PermTrackingsRead   = "trackings:read"
	PermProviderCall    = "provider:call"
	PermOperatorsManage = "operators:manage"
)

var rolePermissions = map[string][]string{
	RoleAdmin:    {PermTrackingsRead, PermProviderCall, PermOperatorsManage},
	RoleOperator: {PermTrackingsRead},
}

// PermissionsFor lists the permissions granted to role; unknown roles get none.
func PermissionsFor(role string) []string {
	return append([]string(nil), rolePermissions[role]...)
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOperatorNotFound   = errors.New("operator not found")
	ErrOperatorExists     = errors.New("operator already exists")
)

// Operator is an authenticated user of the customs dashboard API.
type Operator struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

package auth

import (
	"time"

	"github.com/yanqian/invoice-query/internal/domain/tenant"
)

// Config drives token behavior.
type Config struct {
	Secret   string
	TokenTTL time.Duration
}

// Claims are extracted from the JWT token.
type Claims struct {
	TenantID  tenant.ID
	Subject   string
	ExpiresAt time.Time
}

// IssuedToken is a signed access token.
type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yanqian/invoice-query/internal/domain/auth"
	"github.com/yanqian/invoice-query/internal/domain/tenant"
)

const authClaimsKey = "auth_claims"

func setClaims(c *gin.Context, claims auth.Claims) {
	c.Set(authClaimsKey, claims)
	c.Request = c.Request.WithContext(tenant.WithID(c.Request.Context(), claims.TenantID))
}

// getClaims returns the validated claims; a claim set without a usable tenant
// counts as absent.
func getClaims(c *gin.Context) (auth.Claims, bool) {
	value, ok := c.Get(authClaimsKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := value.(auth.Claims)
	if !ok || !claims.TenantID.Valid() {
		return auth.Claims{}, false
	}
	return claims, true
}

package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/invoice-query/internal/domain/auth"
)

func authMiddleware(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing or malformed bearer token", nil))
			return
		}
		claims, err := svc.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if auth.IsInvalidToken(err) {
				abortWithError(c, NewHTTPError(http.StatusUnauthorized, "invalid_token", errMessage(err), err))
				return
			}
			abortWithError(c, asHTTPError(err))
			return
		}
		if !claims.TenantID.Valid() {
			abortWithError(c, NewHTTPError(http.StatusForbidden, "invalid_token", "token is not bound to a tenant", nil))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

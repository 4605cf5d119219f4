package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yanqian/invoice-query/internal/domain/tenant"
	apperrors "github.com/yanqian/invoice-query/pkg/errors"
	"github.com/yanqian/invoice-query/pkg/util"
)

const codeInvalidToken = "invalid_token"

// Service issues and validates tenant bearer tokens.
type Service interface {
	IssueToken(ctx context.Context, tenantID tenant.ID, subject string) (IssuedToken, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
}

type service struct {
	cfg    Config
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg Config, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		logger: logger.With("component", "auth.service"),
	}
}

// IsInvalidToken reports whether err came from a rejected token.
func IsInvalidToken(err error) bool {
	return apperrors.IsCode(err, codeInvalidToken)
}

func (s *service) IssueToken(_ context.Context, tenantID tenant.ID, subject string) (IssuedToken, error) {
	if !tenantID.Valid() {
		return IssuedToken{}, apperrors.Wrap(apperrors.CodeInvalidInput, "tenant id must be positive", nil)
	}
	if s.cfg.Secret == "" {
		return IssuedToken{}, apperrors.Wrap(apperrors.CodeUnauthorized, "token signing is not configured", nil)
	}
	now := util.NowUTC()
	expires := now.Add(s.cfg.TokenTTL)
	claims := tokenClaims{
		TenantID: int64(tenantID),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return IssuedToken{}, apperrors.Wrap("auth_error", "failed to sign token", err)
	}
	return IssuedToken{Token: signed, ExpiresAt: expires}, nil
}

func (s *service) ValidateToken(_ context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(codeInvalidToken, "token missing", nil)
	}
	if s.cfg.Secret == "" {
		return Claims{}, apperrors.Wrap(codeInvalidToken, "token validation is not configured", nil)
	}
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		s.logger.Debug("token rejected", "error", err)
		return Claims{}, apperrors.Wrap(codeInvalidToken, "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap(codeInvalidToken, "token invalid", nil)
	}
	if claims.ExpiresAt.Time.Before(time.Now()) {
		return Claims{}, apperrors.Wrap(codeInvalidToken, "token expired", nil)
	}
	id := tenant.ID(claims.TenantID)
	if !id.Valid() {
		return Claims{}, apperrors.Wrap(codeInvalidToken, "token carries no tenant", nil)
	}
	return Claims{
		TenantID:  id,
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	TenantID int64 `json:"tenantId"`
}

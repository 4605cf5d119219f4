package query

import (
	"errors"

	apperrors "github.com/yanqian/invoice-query/pkg/errors"
)

var (
	// ErrMissingTenant is returned when no tenant id was supplied.
	ErrMissingTenant = apperrors.Wrap(apperrors.CodeSecurityViolation, "tenant id is required", nil)
	// ErrUnscopedQuery is returned when the query text does not reference the tenant parameter.
	ErrUnscopedQuery = apperrors.Wrap(apperrors.CodeSecurityViolation, "query is not scoped to the tenant", nil)
	// ErrMutation is returned when a mutating statement is refused.
	ErrMutation = apperrors.Wrap(apperrors.CodeSecurityViolation, "mutating statements are not allowed", nil)
	// ErrEmptyQuestion rejects blank input.
	ErrEmptyQuestion = apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil)
)

func isSecurityError(err error) bool {
	return errors.Is(err, ErrMissingTenant) || errors.Is(err, ErrUnscopedQuery) || errors.Is(err, ErrMutation) ||
		apperrors.IsCode(err, apperrors.CodeSecurityViolation)
}

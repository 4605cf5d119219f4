package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/invoice-query/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// appErrorStatus maps service error codes to the status they surface with.
var appErrorStatus = map[string]int{
	apperrors.CodeInvalidInput:      http.StatusBadRequest,
	apperrors.CodeUnauthorized:      http.StatusUnauthorized,
	apperrors.CodeSecurityViolation: http.StatusForbidden,
	apperrors.CodeSynthesis:         http.StatusBadGateway,
	apperrors.CodeEmbedding:         http.StatusBadGateway,
	apperrors.CodeExecution:         http.StatusInternalServerError,
}

// asHTTPError converts any error raised inside a handler chain. Service
// errors keep their code; anything else is an opaque internal_error.
func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if status, ok := appErrorStatus[appErr.Code]; ok {
			return &HTTPError{Status: status, Code: appErr.Code, Message: appErr.Message, Err: err}
		}
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yanqian/invoice-query/internal/domain/query"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueryHandler wires the HTTP transport to the resolution pipeline.
type QueryHandler struct {
	svc    query.Service
	db     Pinger
	logger *slog.Logger
}

// NewQueryHandler constructs the handler.
func NewQueryHandler(svc query.Service, db Pinger, logger *slog.Logger) *QueryHandler {
	return &QueryHandler{
		svc:    svc,
		db:     db,
		logger: logger.With("component", "http.handler"),
	}
}

type resolveRequest struct {
	Question string       `json:"question"`
	History  []query.Turn `json:"history"`
}

type resolveResponse struct {
	ID        uuid.UUID           `json:"id"`
	Success   bool                `json:"success"`
	Strategy  query.Strategy      `json:"strategy,omitempty"`
	Category  query.Category      `json:"category"`
	Message   string              `json:"message,omitempty"`
	Query     string              `json:"query,omitempty"`
	Rows      []query.Row         `json:"rows"`
	RowCount  int                 `json:"rowCount"`
	ErrorKind query.ErrorKind     `json:"errorKind,omitempty"`
	ElapsedMs int64               `json:"elapsedMs"`
	Stages    []query.StageReport `json:"stages"`
}

// Resolve answers a question for the authenticated tenant. Pipeline failures
// are part of the outcome and do not change the status code.
func (h *QueryHandler) Resolve(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing tenant", nil))
		return
	}
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", "question cannot be empty", nil))
		return
	}

	outcome := h.svc.Resolve(c.Request.Context(), query.Question{
		Text:     req.Question,
		TenantID: claims.TenantID,
		History:  req.History,
	})
	if outcome.Err != nil {
		h.logger.Warn("resolution failed", "resolutionId", outcome.ID, "requestId", requestID(c), "errorKind", outcome.ErrorKind, "error", outcome.Err)
	}

	c.JSON(http.StatusOK, resolveResponse{
		ID:        outcome.ID,
		Success:   outcome.Success,
		Strategy:  outcome.Strategy,
		Category:  outcome.Category,
		Message:   query.Message(outcome),
		Query:     outcome.Query,
		Rows:      outcome.Rows,
		RowCount:  outcome.RowCount(),
		ErrorKind: outcome.ErrorKind,
		ElapsedMs: outcome.Elapsed.Milliseconds(),
		Stages:    outcome.Stages,
	})
}

// Health reports process and database readiness.
func (h *QueryHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": errMessage(err)})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

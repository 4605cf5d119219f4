package query

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/invoice-query/internal/domain/tenant"
	apperrors "github.com/yanqian/invoice-query/pkg/errors"
	"github.com/yanqian/invoice-query/pkg/metrics"
	"github.com/yanqian/invoice-query/pkg/util"
)

// Service resolves questions into tenant-scoped rows.
type Service interface {
	Resolve(ctx context.Context, q Question) Outcome
}

type stage int

const (
	stageStrict stage = iota
	stageSemantic
	stageRAG
	stageDone
	stageFailed
)

func (s stage) String() string {
	switch s {
	case stageStrict:
		return "strict"
	case stageSemantic:
		return "semantic"
	case stageRAG:
		return "rag"
	case stageDone:
		return "done"
	default:
		return "failed"
	}
}

// resolution is the mutable state carried between stages of one call.
type resolution struct {
	question    Question
	outcome     Outcome
	ragStrategy Strategy
}

func (r *resolution) fail(kind ErrorKind, query string, err error) stage {
	r.outcome.Success = false
	r.outcome.ErrorKind = kind
	r.outcome.Err = err
	r.outcome.Rows = []Row{}
	if query != "" {
		r.outcome.Query = query
	}
	return stageFailed
}

func (r *resolution) finish(strategy Strategy, query string, rows []Row) stage {
	r.outcome.Success = true
	r.outcome.Strategy = strategy
	r.outcome.Query = query
	r.outcome.Rows = rows
	return stageDone
}

func (r *resolution) report(rep StageReport) {
	r.outcome.Stages = append(r.outcome.Stages, rep)
}

type service struct {
	cfg    Config
	synth  Synthesizer
	exec   *Executor
	rag    RAGSearcher
	logger *slog.Logger
}

// NewService wires the resolution pipeline.
func NewService(cfg Config, synth Synthesizer, exec *Executor, rag RAGSearcher, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg.WithDefaults(),
		synth:  synth,
		exec:   exec,
		rag:    rag,
		logger: logger.With("component", "query.service"),
	}
}

// Resolve runs strict, semantic and RAG retrieval in that order and stops at
// the first stage that yields rows. Only a strict execution error, a refused
// strict query or cancellation ends the call in failure.
func (s *service) Resolve(ctx context.Context, q Question) Outcome {
	started := time.Now()
	r := &resolution{
		question:    q,
		outcome:     Outcome{ID: uuid.New(), Rows: []Row{}},
		ragStrategy: StrategyRAG,
	}
	logger := s.logger.With("resolutionId", r.outcome.ID.String(), "tenantId", q.TenantID.String())

	ctx = tenant.WithID(ctx, q.TenantID)
	current := stageStrict
	switch {
	case strings.TrimSpace(q.Text) == "":
		current = r.fail(ErrorKindSecurityOrSynthesis, "", ErrEmptyQuestion)
	case !q.TenantID.Valid():
		current = r.fail(ErrorKindSecurityOrSynthesis, "", ErrMissingTenant)
	}

	for current != stageDone && current != stageFailed {
		if err := ctx.Err(); err != nil {
			current = r.fail(ErrorKindExecution, "", apperrors.Wrap(apperrors.CodeExecution, "resolution cancelled", err))
			break
		}
		logger.Debug("stage starting", "stage", current.String())
		stageStarted := time.Now()
		next := s.step(ctx, current, r, logger)
		metrics.StageDuration.WithLabelValues(current.String()).Observe(time.Since(stageStarted).Seconds())
		current = next
	}

	r.outcome.Elapsed = time.Since(started)
	r.outcome.Resolved = util.NowUTC()
	r.outcome.Category = categorize(r.outcome)

	label := "success"
	if !r.outcome.Success {
		label = string(r.outcome.ErrorKind)
	} else if len(r.outcome.Rows) == 0 {
		label = string(CategoryNoResults)
	}
	metrics.ResolutionsTotal.WithLabelValues(string(r.outcome.Strategy), label).Inc()

	if r.outcome.Success {
		logger.Info("question resolved", "strategy", r.outcome.Strategy, "rows", len(r.outcome.Rows), "elapsed", r.outcome.Elapsed)
	} else {
		logger.Warn("question not resolved", "errorKind", r.outcome.ErrorKind, "code", apperrors.CodeOf(r.outcome.Err),
			"error", r.outcome.Err, "elapsed", r.outcome.Elapsed)
	}
	return r.outcome
}

func (s *service) step(ctx context.Context, current stage, r *resolution, logger *slog.Logger) stage {
	stageCtx, cancel := context.WithTimeout(ctx, s.cfg.StageTimeout)
	defer cancel()

	switch current {
	case stageStrict:
		return s.strict(stageCtx, r, logger)
	case stageSemantic:
		return s.semantic(stageCtx, r, logger)
	case stageRAG:
		return s.retrieve(stageCtx, r, logger)
	default:
		return current
	}
}

func (s *service) strict(ctx context.Context, r *resolution, logger *slog.Logger) stage {
	rep := StageReport{Stage: stageStrict.String(), Status: StageStatusFailed}
	started := time.Now()
	defer func() {
		rep.Elapsed = time.Since(started)
		r.report(rep)
	}()

	plan, err := s.synthesize(ctx, r.question, ModeStrict)
	if err != nil {
		if ctx.Err() != nil {
			return r.fail(ErrorKindExecution, "", apperrors.Wrap(apperrors.CodeExecution, "strict stage timed out", err))
		}
		return r.fail(ErrorKindSecurityOrSynthesis, "", err)
	}
	rep.Query = plan.Query
	if err := s.screen(plan.Query, logger); err != nil {
		return r.fail(ErrorKindSecurityOrSynthesis, plan.Query, err)
	}

	res, err := s.exec.Execute(ctx, plan, r.question.TenantID, r.question.Text)
	rep.Query = res.Query
	if err != nil {
		if isSecurityError(err) {
			return r.fail(ErrorKindSecurityOrSynthesis, res.Query, err)
		}
		return r.fail(ErrorKindExecution, res.Query, err)
	}
	rep.RowCount = len(res.Rows)
	if len(res.Rows) > 0 {
		rep.Status = StageStatusRows
		return r.finish(StrategyStrict, res.Query, res.Rows)
	}
	rep.Status = StageStatusEmpty
	return stageSemantic
}

func (s *service) semantic(ctx context.Context, r *resolution, logger *slog.Logger) stage {
	rep := StageReport{Stage: stageSemantic.String(), Status: StageStatusFailed}
	started := time.Now()
	defer func() {
		rep.Elapsed = time.Since(started)
		r.report(rep)
	}()

	plan, err := s.synthesize(ctx, r.question, ModeSemantic)
	if err != nil {
		logger.Warn("semantic synthesis failed, falling back to rag", "code", apperrors.CodeOf(err), "error", err)
		r.ragStrategy = StrategyRAGFallback
		return stageRAG
	}
	rep.Query = plan.Query
	if err := s.screen(plan.Query, logger); err != nil {
		return stageRAG
	}

	res, err := s.exec.Execute(ctx, plan, r.question.TenantID, r.question.Text)
	rep.Query = res.Query
	if err != nil {
		logger.Warn("semantic query failed", "code", apperrors.CodeOf(err), "error", err)
		return stageRAG
	}
	rep.RowCount = len(res.Rows)
	if len(res.Rows) > 0 {
		rep.Status = StageStatusRows
		return r.finish(StrategySemantic, res.Query, res.Rows)
	}
	rep.Status = StageStatusEmpty
	return stageRAG
}

func (s *service) retrieve(ctx context.Context, r *resolution, logger *slog.Logger) stage {
	rep := StageReport{Stage: stageRAG.String(), Status: StageStatusEmpty}
	started := time.Now()
	defer func() {
		rep.Elapsed = time.Since(started)
		r.report(rep)
	}()

	if s.rag == nil {
		return r.finish(r.ragStrategy, "", []Row{})
	}
	res, err := s.rag.Search(ctx, r.question.Text, r.question.TenantID)
	if err != nil {
		rep.Status = StageStatusFailed
		if errors.Is(ctx.Err(), context.Canceled) {
			return r.fail(ErrorKindExecution, "", apperrors.Wrap(apperrors.CodeExecution, "rag search cancelled", err))
		}
		logger.Warn("rag search failed", "error", err)
		return r.finish(r.ragStrategy, "", []Row{})
	}
	rep.Query = res.Query
	if !res.Success {
		return r.finish(r.ragStrategy, res.Query, []Row{})
	}
	rows := Sanitize(res.Rows, s.cfg.MaxRows)
	rep.RowCount = len(rows)
	if len(rows) > 0 {
		rep.Status = StageStatusRows
	}
	return r.finish(r.ragStrategy, res.Query, rows)
}

func (s *service) synthesize(ctx context.Context, q Question, mode Mode) (Plan, error) {
	if s.synth == nil {
		return Plan{}, apperrors.Wrap(apperrors.CodeSynthesis, "no synthesizer configured", nil)
	}
	plan, err := s.synth.Synthesize(ctx, SynthesisRequest{
		Question:        q.Text,
		Schema:          s.cfg.Schema,
		TenantScopeHint: s.cfg.TenantScopeHint(),
		Mode:            mode,
		History:         q.History,
	})
	if err != nil {
		return Plan{}, apperrors.Wrap(apperrors.CodeSynthesis, strings.ToLower(string(mode))+" synthesis failed", err)
	}
	if strings.TrimSpace(plan.Query) == "" {
		return Plan{}, apperrors.Wrap(apperrors.CodeSynthesis, "synthesizer returned an empty query", nil)
	}
	if plan.Mode == "" {
		plan.Mode = mode
	}
	metrics.ObserveUsage(string(mode), plan.Usage)
	return plan, nil
}

// screen refuses unscoped or, when configured, mutating candidate queries
// before anything is executed.
func (s *service) screen(text string, logger *slog.Logger) error {
	if !ReferencesTenantScope(text, s.cfg.TenantParam) {
		metrics.ScopeRejectionsTotal.WithLabelValues("tenant_scope").Inc()
		logger.Warn("synthesized query is not tenant scoped")
		return ErrUnscopedQuery
	}
	if s.cfg.BlockMutations {
		if keyword, found := DetectMutation(text); found {
			metrics.ScopeRejectionsTotal.WithLabelValues("mutation").Inc()
			logger.Warn("synthesized query mutates data", "keyword", keyword)
			return ErrMutation
		}
	}
	return nil
}

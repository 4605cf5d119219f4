package query

import (
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/invoice-query/internal/domain/tenant"
	"github.com/yanqian/invoice-query/pkg/metrics"
)

// Turn is one prior message of the conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Question is the caller's natural-language request.
type Question struct {
	Text     string    `json:"question"`
	TenantID tenant.ID `json:"-"`
	History  []Turn    `json:"history,omitempty"`
}

// Mode selects how the synthesizer interprets the question.
type Mode string

const (
	ModeStrict   Mode = "STRICT"
	ModeSemantic Mode = "SEMANTIC"
)

// Plan is an untrusted candidate query produced by the synthesizer.
type Plan struct {
	Query       string             `json:"query"`
	Mode        Mode               `json:"mode"`
	Confidence  float64            `json:"confidence"`
	Explanation string             `json:"explanation,omitempty"`
	Usage       metrics.TokenUsage `json:"usage"`
}

// BoundQuery is normalized query text plus its named parameters.
type BoundQuery struct {
	Text   string
	Params map[string]any
}

// Row is one sanitized result row keyed by column name.
type Row map[string]any

// RowSet is the raw output of a store call.
type RowSet struct {
	Columns []string
	Rows    []Row
}

// Strategy records which stage produced the rows.
type Strategy string

const (
	StrategyStrict      Strategy = "strict"
	StrategySemantic    Strategy = "semantic"
	StrategyRAG         Strategy = "rag"
	StrategyRAGFallback Strategy = "rag_fallback"
)

// ErrorKind classifies a failed resolution.
type ErrorKind string

const (
	ErrorKindNone                ErrorKind = ""
	ErrorKindSecurityOrSynthesis ErrorKind = "security_or_synthesis"
	ErrorKindExecution           ErrorKind = "execution"
)

// StageStatus is the coarse result of one stage. Error details stay in the
// logs.
type StageStatus string

const (
	StageStatusRows   StageStatus = "rows"
	StageStatusEmpty  StageStatus = "empty"
	StageStatusFailed StageStatus = "failed"
)

// StageReport summarizes one attempted stage.
type StageReport struct {
	Stage    string        `json:"stage"`
	Status   StageStatus   `json:"status"`
	Query    string        `json:"query,omitempty"`
	RowCount int           `json:"rowCount"`
	Elapsed  time.Duration `json:"elapsedNs"`
}

// Outcome is the result of resolving a question.
type Outcome struct {
	ID        uuid.UUID     `json:"id"`
	Rows      []Row         `json:"rows"`
	Query     string        `json:"query,omitempty"`
	Strategy  Strategy      `json:"strategy,omitempty"`
	Success   bool          `json:"success"`
	ErrorKind ErrorKind     `json:"errorKind,omitempty"`
	Err       error         `json:"-"`
	Category  Category      `json:"category"`
	Elapsed   time.Duration `json:"elapsedNs"`
	Stages    []StageReport `json:"stages"`
	Resolved  time.Time     `json:"resolvedAt"`
}

// RowCount returns the number of rows in the outcome.
func (o Outcome) RowCount() int {
	return len(o.Rows)
}

// Result describes a single executor run.
type Result struct {
	Rows    []Row
	Elapsed time.Duration
	Query   string
}

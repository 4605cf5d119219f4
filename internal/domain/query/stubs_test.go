package query

import (
	"context"
	"io"
	"log/slog"

	"github.com/yanqian/invoice-query/internal/domain/tenant"
)

type stubEmbedder struct {
	vec   []float32
	err   error
	calls []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls = append(s.calls, text)
	return s.vec, s.err
}

type stubStore struct {
	queryFn func(q BoundQuery) (RowSet, error)
	calls   []BoundQuery
}

func (s *stubStore) Query(_ context.Context, q BoundQuery) (RowSet, error) {
	s.calls = append(s.calls, q)
	if s.queryFn == nil {
		return RowSet{}, nil
	}
	return s.queryFn(q)
}

type stubSynth struct {
	plans map[Mode]Plan
	errs  map[Mode]error
	reqs  []SynthesisRequest
}

func (s *stubSynth) Synthesize(_ context.Context, req SynthesisRequest) (Plan, error) {
	s.reqs = append(s.reqs, req)
	if err := s.errs[req.Mode]; err != nil {
		return Plan{}, err
	}
	return s.plans[req.Mode], nil
}

func (s *stubSynth) modes() []Mode {
	out := make([]Mode, 0, len(s.reqs))
	for _, req := range s.reqs {
		out = append(out, req.Mode)
	}
	return out
}

type stubRAG struct {
	result RAGResult
	err    error
	calls  int
	tenant tenant.ID
}

func (s *stubRAG) Search(_ context.Context, _ string, tenantID tenant.ID) (RAGResult, error) {
	s.calls++
	s.tenant = tenantID
	return s.result, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

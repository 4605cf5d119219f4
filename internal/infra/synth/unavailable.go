package synth

import (
	"context"

	"github.com/yanqian/invoice-query/internal/domain/query"
	apperrors "github.com/yanqian/invoice-query/pkg/errors"
)

// Unavailable fails every request. It stands in when no model is configured.
type Unavailable struct{}

// Synthesize implements query.Synthesizer.
func (Unavailable) Synthesize(context.Context, query.SynthesisRequest) (query.Plan, error) {
	return query.Plan{}, apperrors.Wrap(apperrors.CodeSynthesis, "query synthesis is not configured", nil)
}

var _ query.Synthesizer = Unavailable{}

package tenant

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithID(context.Background(), 42)
	id, ok := FromContext(ctx)
	if !ok || id != 42 {
		t.Fatalf("expected tenant 42 got %v (ok=%v)", id, ok)
	}
	if id.String() != "42" {
		t.Fatalf("unexpected string %q", id.String())
	}
}

func TestFromContextRejectsUnset(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
	}{
		{name: "missing", ctx: context.Background()},
		{name: "zero", ctx: WithID(context.Background(), 0)},
		{name: "negative", ctx: WithID(context.Background(), -3)},
	}
	for _, tc := range tests {
		if _, ok := FromContext(tc.ctx); ok {
			t.Fatalf("%s: expected no tenant", tc.name)
		}
	}
}

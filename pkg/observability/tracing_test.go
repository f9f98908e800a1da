package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracer_TraceFunctionWithoutSegment(t *testing.T) {
	tests := []struct {
		name   string
		tracer *Tracer
	}{
		{name: "nil tracer", tracer: nil},
		{name: "no segment in context", tracer: NewTracer("triptrek")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			boom := errors.New("boom")

			err := tt.tracer.TraceFunction(context.Background(), "openai.chat", func(ctx context.Context) error {
				calls++
				return boom
			})

			assert.Equal(t, 1, calls)
			assert.Equal(t, boom, err)
		})
	}
}

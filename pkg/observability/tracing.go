package observability

import (
	"context"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer wraps outbound calls in X-Ray subsegments. Subsegments are only
// opened when the context already carries a segment, which is the case
// inside Lambda and behind xray.Handler.
type Tracer struct {
	serviceName string
}

// NewTracer creates a tracer that tags subsegments with serviceName
func NewTracer(serviceName string) *Tracer {
	return &Tracer{serviceName: serviceName}
}

// TraceFunction runs fn inside a subsegment named name. A nil tracer or a
// context without a segment runs fn untraced.
func (t *Tracer) TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error {
	if t == nil || xray.GetSegment(ctx) == nil {
		return fn(ctx)
	}

	ctx, seg := xray.BeginSubsegment(ctx, name)
	if seg == nil {
		return fn(ctx)
	}
	_ = seg.AddAnnotation("service", t.serviceName)

	err := fn(ctx)
	seg.Close(err)
	return err
}

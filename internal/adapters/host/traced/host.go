// Package traced wraps an automation host so every call becomes a span.
package traced

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/hfss-client/internal/log"
	"github.com/bnema/hfss-client/internal/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/bnema/hfss-client/internal/adapters/host/traced"

type Host struct {
	next   ports.Automation
	tracer trace.Tracer
}

var _ ports.Automation = (*Host)(nil)

// New wraps next. A nil provider means the global one.
func New(next ports.Automation, tp trace.TracerProvider) *Host {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Host{next: next, tracer: tp.Tracer(instrumentationName)}
}

func (h *Host) Call(ctx context.Context, target ports.Target, method string, args ...any) (any, error) {
	ctx, span := h.tracer.Start(ctx, string(target)+"."+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("hfss.target", string(target)),
			attribute.String("hfss.method", method),
			attribute.Int("hfss.args", len(args)),
		),
	)
	defer span.End()

	if method == "CopyNamedExprToStack" || method == "EnterScalar" || method == "CalcOp" {
		if len(args) > 0 {
			span.SetAttributes(attribute.String("hfss.operand", fmt.Sprint(args[0])))
		}
	}

	out, err := h.next.Call(ctx, target, method, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.ErrorErr(log.CatHost, "host call failed", err, "target", string(target), "method", method)
		return out, err
	}

	log.Debug(log.CatHost, "host call", "target", string(target), "method", method)
	return out, nil
}

func (h *Host) Close() error {
	return h.next.Close()
}

// NewStdoutProvider exports spans synchronously to w as JSON. Callers shut it
// down to flush.
func NewStdoutProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create stdout trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)), nil
}

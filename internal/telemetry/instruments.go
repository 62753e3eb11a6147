package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Instruments records one measurement set per request.
type Instruments struct {
	meterEnabled bool

	counterRequests metric.Int64Counter
	counterErrors   metric.Int64Counter
	histDuration    metric.Float64Histogram
	histProposals   metric.Int64Histogram

	tracer trace.Tracer
}

// RequestInfo describes a request for attributes.
type RequestInfo struct {
	// Method is "complete" or "hover".
	Method string
	URI    string
	// ID identifies the request; a random one is generated when empty.
	ID string
}

// RequestHandle is returned by Start and consumed by Finish.
type RequestHandle struct {
	ID    string
	ctx   context.Context
	span  trace.Span
	start time.Time
	attrs []attribute.KeyValue
}

func newInstruments(p *Provider) *Instruments {
	inst := &Instruments{meterEnabled: p.meterProvider != nil}
	if p.meterProvider != nil {
		inst.counterRequests, _ = p.meter.Int64Counter(
			"yamlassist.requests_total",
			metric.WithDescription("Number of completion and hover requests"),
		)
		inst.counterErrors, _ = p.meter.Int64Counter(
			"yamlassist.errors_total",
			metric.WithDescription("Number of requests that ended in error"),
		)
		inst.histDuration, _ = p.meter.Float64Histogram(
			"yamlassist.request.duration",
			metric.WithDescription("Duration of requests"),
			metric.WithUnit("ms"),
		)
		inst.histProposals, _ = p.meter.Int64Histogram(
			"yamlassist.proposals",
			metric.WithDescription("Number of proposals returned per completion request"),
		)
	}
	if p.tracerProvider != nil {
		inst.tracer = p.tracer
	}
	return inst
}

// Start opens a request span when tracing is enabled.
func (i *Instruments) Start(parent context.Context, info RequestInfo) (*RequestHandle, context.Context) {
	if info.ID == "" {
		info.ID = uuid.NewString()
	}
	h := &RequestHandle{
		ID:    info.ID,
		ctx:   parent,
		start: time.Now(),
		attrs: []attribute.KeyValue{
			attribute.String("request.id", info.ID),
			attribute.String("request.method", info.Method),
		},
	}
	if info.URI != "" {
		h.attrs = append(h.attrs, attribute.String("document.uri", info.URI))
	}
	if i != nil && i.tracer != nil {
		ctx, span := i.tracer.Start(parent, "yamlassist."+info.Method, trace.WithAttributes(h.attrs...))
		h.ctx, h.span = ctx, span
	}
	return h, h.ctx
}

// Finish records the outcome of a request.
func (i *Instruments) Finish(h *RequestHandle, proposals int, err error) {
	if i == nil || h == nil {
		return
	}
	elapsed := time.Since(h.start)
	attrs := append([]attribute.KeyValue{}, h.attrs...)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs = append(attrs, attribute.String("outcome", outcome))

	if i.meterEnabled {
		set := metric.WithAttributes(attrs...)
		i.counterRequests.Add(h.ctx, 1, set)
		if err != nil {
			i.counterErrors.Add(h.ctx, 1, set)
		}
		i.histDuration.Record(h.ctx, float64(elapsed.Microseconds())/1000, set)
		i.histProposals.Record(h.ctx, int64(proposals), set)
	}

	if h.span != nil {
		h.span.SetAttributes(append(attrs, attribute.Int("proposals", proposals))...)
		if err != nil {
			h.span.SetStatus(codes.Error, err.Error())
		}
		h.span.End()
	}
}

// SPDX-License-Identifier: MIT

package negotiate

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/avgraph/internal/log"
)

// Observability keys (frozen)
const (
	AttrResult = "avgraph.negotiation.result"
	AttrPasses = "avgraph.negotiation.passes"
	AttrLinks  = "avgraph.negotiation.links"
	AttrRunID  = "avgraph.negotiation.run_id"
)

// Frozen whitelist for enforcement
var allowedAttributes = map[string]bool{
	AttrResult: true,
	AttrPasses: true,
	AttrLinks:  true,
	AttrRunID:  true,
}

// startNegotiationSpan wraps span creation with a runtime tracer lookup, so
// a provider installed after package init is still picked up.
func startNegotiationSpan(ctx context.Context) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer("avgraph.negotiate")
	return tracer.Start(ctx, "avgraph.negotiate")
}

// emitNegotiationObs records the run outcome on the current span and the
// meter. Attributes go through strict whitelist enforcement.
func emitNegotiationObs(ctx context.Context, res *Result, result string) {
	span := trace.SpanFromContext(ctx)

	meter := otel.GetMeterProvider().Meter("avgraph.negotiate")
	runsTotal, _ := meter.Int64Counter("avgraph_negotiation_total",
		metric.WithDescription("Total negotiation runs"))
	runsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))

	attrs := []attribute.KeyValue{
		attribute.String(AttrResult, result),
		attribute.Int(AttrPasses, res.Passes),
		attribute.Int(AttrLinks, len(res.Links)),
		attribute.String(AttrRunID, res.RunID),
	}

	for _, kv := range attrs {
		if !allowedAttributes[string(kv.Key)] {
			lg := log.WithComponent("negotiate")
			lg.Error().
				Str("key", string(kv.Key)).
				Msg("observability attribute not in whitelist")
			return
		}
	}

	span.SetAttributes(attrs...)
}

// Package telemetry carries W3C trace context from inbound requests to
// outbound domain events.
package telemetry

import (
	"net/http"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var once sync.Once

// SetupPropagation installs the tracecontext and baggage propagators globally.
// It is safe to call this function multiple times.
func SetupPropagation() {
	once.Do(func() {
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	})
}

// Middleware extracts trace context from request headers into the request
// context so events published while serving it link to the caller's trace.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

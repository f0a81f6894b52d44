package httpapi

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("score-predictor/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		// Filtered routes such as /healthz carry no request span.
		return ctx, noopSpan
	}
	if !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name)
}

// shouldCreateHTTPAPISpan admits exported handler methods only. Response
// writers and request validation run inside the handler span.
func shouldCreateHTTPAPISpan(name string) bool {
	method, ok := strings.CutPrefix(name, "httpapi.Handler.")
	if !ok || method == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(method)
	return unicode.IsUpper(first)
}

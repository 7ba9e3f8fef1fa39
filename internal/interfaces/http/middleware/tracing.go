// Package middleware provides HTTP middleware for the resume scoring service.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxRequestIDLength caps request IDs taken from headers so an
// attacker cannot balloon span attributes.
const maxRequestIDLength = 128

// TracingConfig configures the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig traces under the service's default name.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "resume-scorer",
		Enabled:     true,
	}
}

// Tracing applies the default tracing configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig opens a span per route via otelgin, named
// "METHOD route_pattern". Pair it with SpanErrorMarker, which runs
// inside the span and adds request correlation and error status.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// SpanErrorMarker stamps the request ID on the active span and flags
// it for 4xx and 5xx responses. Register it after the Tracing
// middleware; otelgin ends its span when the chain unwinds, so this
// must run inside it.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if requestID := spanRequestID(c); requestID != "" {
				span.SetAttributes(attribute.String("request_id", requestID))
			}
		}

		c.Next()

		if !span.IsRecording() {
			return
		}

		statusCode := c.Writer.Status()
		if statusCode < http.StatusBadRequest {
			return
		}

		message := "Client Error"
		switch {
		case statusCode >= http.StatusInternalServerError:
			message = "Internal Server Error"
		case statusCode == http.StatusNotFound:
			message = "Not Found"
		}

		span.SetStatus(codes.Error, message)
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
	}
}

// spanRequestID prefers the ID set by the RequestID middleware and
// falls back to the header, truncated to a sane length.
func spanRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}

	headerID := c.GetHeader("X-Request-ID")
	if len(headerID) > maxRequestIDLength {
		return headerID[:maxRequestIDLength]
	}
	return headerID
}

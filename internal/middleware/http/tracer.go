package middleware_http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"flatfile-shop/internal/logger"
	"flatfile-shop/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

var tracer = otel.Tracer("HttpMiddleware")

const panicBody = `{"error":"Error interno del servidor"}`

// ResponseWriter captures status and a copy of the body (up to
// logger.MaxBodyLogged) for the response log.
type ResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
	buf         bytes.Buffer
}

func (rw *ResponseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.wroteHeader = true
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)

	if room := logger.MaxBodyLogged - rw.buf.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		rw.buf.Write(b[:room])
	}
	return n, err
}

func (rw *ResponseWriter) Status() int { return rw.statusCode }

// TraceMiddleware starts a span per request (continuing any incoming trace),
// sets X-Trace-ID, logs request and response, records metrics, and turns a
// handler panic into a 500.
func TraceMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path)
			defer span.End()
			r = r.WithContext(ctx)

			logger.Info(ctx, "HTTP", logger.LogHTTPRequest(r, "incoming::request")...)

			rw := &ResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			rw.Header().Set("X-Trace-ID", span.SpanContext().TraceID().String())
			start := time.Now()

			func() {
				defer func() {
					if rec := recover(); rec != nil {
						err := fmt.Errorf("panic: %v", rec)
						span.RecordError(err)
						logger.Error(ctx, "Handler panic", slog.String("error", err.Error()))
						if !rw.wroteHeader {
							rw.Header().Set("Content-Type", "application/json")
							rw.WriteHeader(http.StatusInternalServerError)
							_, _ = rw.Write([]byte(panicBody))
						}
						rw.statusCode = http.StatusInternalServerError
					}
				}()
				next.ServeHTTP(rw, r)
			}()

			duration := time.Since(start)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			span.SetAttributes(
				attribute.String("http.route", route),
				attribute.Int("http.status_code", rw.statusCode),
			)
			switch {
			case rw.statusCode >= 500:
				span.SetStatus(codes.Error, "internal server error")
			case rw.statusCode >= 400:
				span.SetStatus(codes.Error, "client error")
			default:
				span.SetStatus(codes.Ok, "")
			}

			m.ObserveHTTPRequest(r.Method, route, rw.statusCode, duration)

			logger.Info(ctx, "HTTP", logger.LogHTTPResponse(r, rw.Header(), rw.statusCode, rw.buf.Bytes(), duration, "incoming::response")...)
		})
	}
}

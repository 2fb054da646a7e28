package middleware

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RecoveryConfig holds configuration for panic recovery middleware
type RecoveryConfig struct {
	EnableStackTrace bool `json:"enable_stack_trace"`
	MaxStackFrames   int  `json:"max_stack_frames"`
}

// DefaultRecoveryConfig returns production-ready recovery configuration
func DefaultRecoveryConfig() *RecoveryConfig {
	return &RecoveryConfig{
		EnableStackTrace: true,
		MaxStackFrames:   20,
	}
}

// Recovery converts panics into logged 500 responses
func Recovery(config *RecoveryConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultRecoveryConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					requestID := GetRequestID(r.Context())

					fields := []zap.Field{
						zap.String("event", "panic_recovered"),
						zap.String("request_id", requestID),
						zap.Any("panic_error", err),
						zap.String("panic_type", fmt.Sprintf("%T", err)),
						zap.String("method", r.Method),
						zap.String("url", r.URL.String()),
						zap.String("remote_addr", getClientIP(r)),
						zap.Int("goroutines", runtime.NumGoroutine()),
					}
					if config.EnableStackTrace {
						fields = append(fields, zap.Strings("stack_trace", captureStackTrace(config.MaxStackFrames)))
					}
					logger.Error("Panic recovered", fields...)

					w.Header().Set("Content-Type", "application/json; charset=utf-8")
					w.Header().Set("X-Content-Type-Options", "nosniff")
					w.WriteHeader(http.StatusInternalServerError)
					fmt.Fprintf(w, `{"success":false,"error":{"type":"INTERNAL_ERROR","message":"Internal server error"},"request_id":"%s","timestamp":%d}`,
						requestID, time.Now().Unix())
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// captureStackTrace captures the stack trace, skipping runtime frames
func captureStackTrace(maxFrames int) []string {
	pcs := make([]uintptr, maxFrames+3)
	n := runtime.Callers(3, pcs)
	if n == 0 {
		return nil
	}

	var frames []string
	callersFrames := runtime.CallersFrames(pcs[:n])
	for len(frames) < maxFrames {
		frame, more := callersFrames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			frames = append(frames, fmt.Sprintf("%s (%s:%d)", frame.Function, frame.File, frame.Line))
		}
		if !more {
			break
		}
	}
	return frames
}

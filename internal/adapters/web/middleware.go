package web

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// captureWriter wraps the original ResponseWriter and records status & bytes
type captureWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	n, err := cw.ResponseWriter.Write(b)
	if n > 0 {
		cw.bytes += n
	}
	return n, err
}

// accessLog logs method, path, status, elapsed and bytes written.
// Requests taking at least slow are logged at warn level; 0 disables that.
func accessLog(logger *zap.Logger, slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(cw, r)

			elapsed := time.Since(start)
			fields := []zap.Field{
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", cw.status),
				zap.Int("bytes", cw.bytes),
				zap.Duration("elapsed", elapsed),
			}
			if slow > 0 && elapsed >= slow {
				logger.Warn("slow request", fields...)
				return
			}
			logger.Info("request done", fields...)
		})
	}
}

type panicWire struct {
	StatusCode int    `json:"status_code"`
	Status     string `json:"status"`
	Error      string `json:"error"`
	RequestID  string `json:"request_id,omitempty"`
}

// recoverJSON converts panics into a JSON 500 and logs the stack with the request id
func recoverJSON(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				reqID := middleware.GetReqID(r.Context())
				logger.Error("panic recovered",
					zap.String("request_id", reqID),
					zap.Any("panic", v),
					zap.ByteString("stack", debug.Stack()))

				if reqID != "" {
					w.Header().Set(middleware.RequestIDHeader, reqID)
				}
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(panicWire{
					StatusCode: http.StatusInternalServerError,
					Status:     http.StatusText(http.StatusInternalServerError),
					Error:      "internal server error",
					RequestID:  reqID,
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

const RequestIDKey contextKey = "request_id"

const requestIdentityKey contextKey = "request_identity"

// requestIdentity is filled in by the staff auth middleware further down
// the chain and read back once the handler returns.
type requestIdentity struct {
	staffSubject string
	tokenID      string
}

// recordIdentity notes the authenticated staff member for the request log
func recordIdentity(ctx context.Context, subject, tokenID string) {
	if identity, ok := ctx.Value(requestIdentityKey).(*requestIdentity); ok {
		identity.staffSubject = subject
		identity.tokenID = tokenID
	}
}

type RequestLoggerMiddleware struct {
	log *logrus.Logger
}

func NewRequestLoggerMiddleware(log *logrus.Logger) *RequestLoggerMiddleware {
	return &RequestLoggerMiddleware{log: log}
}

// Handle assigns a request ID (reusing the caller's X-Request-ID when sent)
// and logs one entry per request once the handler returns.
func (m *RequestLoggerMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		identity := &requestIdentity{}
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = context.WithValue(ctx, requestIdentityKey, identity)
		next.ServeHTTP(rec, r.WithContext(ctx))

		fields := logrus.Fields{
			"request_id":  requestID,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if identity.staffSubject != "" {
			fields["staff_subject"] = identity.staffSubject
			fields["token_id"] = identity.tokenID
		}

		entry := m.log.WithFields(fields)
		if rec.status >= http.StatusInternalServerError {
			entry.Error("Request failed")
			return
		}
		entry.Info("Request handled")
	})
}

// GetRequestIDFromContext extracts the request ID from context
func GetRequestIDFromContext(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(RequestIDKey).(string)
	return requestID, ok
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

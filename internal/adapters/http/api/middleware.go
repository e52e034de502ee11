package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/vectordraw/pkg/metrics"
)

// statusClasses names the error classes reported per endpoint. It mirrors the
// codes written by writeError so dashboards can join the two.
var statusClasses = map[int]string{
	http.StatusBadRequest:            codeBadRequest,
	http.StatusNotFound:              codeNotFound,
	http.StatusMethodNotAllowed:      "method_not_allowed",
	http.StatusRequestEntityTooLarge: "body_too_large",
	http.StatusUnprocessableEntity:   codeConfiguration,
	http.StatusTooManyRequests:       codeBackpressure,
	http.StatusServiceUnavailable:    codeUnavailable,
}

// MetricsMiddleware records request count, latency and error class per endpoint.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		status := rec.status()
		code := strconv.Itoa(status)
		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, float64(time.Since(start).Microseconds())/1000)
		if status >= http.StatusBadRequest {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, errorClass(status))
		}
	}
}

func errorClass(status int) string {
	if class, ok := statusClasses[status]; ok {
		return class
	}
	if status >= http.StatusInternalServerError {
		return codeInternal
	}
	return "client_error"
}

// statusRecorder captures the status written by a handler. Handlers that
// only call Write report 200.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.code == 0 {
		r.code = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.code == 0 {
		r.code = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) status() int {
	if r.code == 0 {
		return http.StatusOK
	}
	return r.code
}

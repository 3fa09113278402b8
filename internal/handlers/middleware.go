package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ostac/heatseeker/internal/logger"
)

// CORS allows browser clients on other origins to hit the JSON API, and
// short-circuits preflight requests.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestID tags every request with a short id and logs method, path, and
// elapsed time at debug level.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()[:8]
		w.Header().Set("X-Request-ID", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.WithField("request_id", id).Debugf("%s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}

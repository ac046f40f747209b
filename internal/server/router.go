// HTTP routing.

package server

import (
	"encoding/json"
	"net/http"

	"github.com/camvine/fakesdb/internal/server/ratelimit"
	"github.com/camvine/fakesdb/internal/storage"
)

// NewRouter builds the HTTP handler: the single dispatch endpoint plus a
// health check, wrapped in logging and optional throttling.
func NewRouter(dir *storage.Directory, cfg *storage.Config) http.Handler {
	h := NewHandler(dir, cfg.DomainCap)
	mux := &http.ServeMux{}
	mux.HandleFunc("GET /health", health)
	mux.HandleFunc("/", h.Dispatch)

	var handler http.Handler = mux
	if cfg.RatePerMin > 0 {
		handler = throttle(ratelimit.NewLimiter(cfg.RatePerMin), handler)
	}
	return requestLogger(handler)
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"elite-trader/internal/config"
	"elite-trader/internal/db"
	"elite-trader/internal/engine"
	"elite-trader/internal/metrics"

	"golang.org/x/time/rate"
)

// Server is the HTTP API server that connects the route engine and the database.
type Server struct {
	cfgMu sync.RWMutex
	cfg   *config.Config

	db      *db.DB
	metrics *metrics.Metrics
	limiter *rate.Limiter

	mu     sync.RWMutex
	router *engine.Router
	ready  bool
}

// NewServer creates a server. database and m may be nil; the server then
// skips persistence and the /metrics endpoint.
func NewServer(cfg *config.Config, database *db.DB, m *metrics.Metrics) *Server {
	return &Server{
		cfg:     cfg,
		db:      database,
		metrics: m,
		limiter: newLimiter(cfg.RouteRateLimit),
	}
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
}

// SetRouter is called when the dataset finishes loading.
func (s *Server) SetRouter(r *engine.Router) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.router = r
	s.ready = true
}

func (s *Server) currentRouter() (*engine.Router, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.router, s.ready
}

// Handler returns the HTTP handler with all API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleSetConfig)
	mux.HandleFunc("GET /api/stations", s.handleStations)
	mux.HandleFunc("POST /api/route/find", s.handleRouteFind)
	mux.HandleFunc("POST /api/adjust/price", s.handleAdjustPrice)
	mux.HandleFunc("POST /api/adjust/time", s.handleAdjustTime)
	mux.HandleFunc("GET /api/history", s.handleGetHistory)
	mux.HandleFunc("DELETE /api/history", s.handleClearHistory)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	router, ready := s.currentRouter()
	result := map[string]interface{}{
		"loaded": ready,
	}
	if ready {
		snap := router.Universe().Snapshot()
		result["systems"] = len(snap.Systems)
		result["stations"] = len(snap.Stations)
		result["listings"] = len(snap.Listings)
		result["generation"] = snap.Generation()
		result["time_factor"] = router.Universe().TimeFactor()
		result["cache"] = router.Cache().Stats()
	}
	writeJSON(w, result)
}

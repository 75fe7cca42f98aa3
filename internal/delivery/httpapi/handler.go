// Package httpapi serves the operational endpoints: /health and /stats.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/yourusername/car-advisor-bot/internal/usecase"
	"go.uber.org/zap"
)

const checkTimeout = 2 * time.Second

// Check bitta bog'liqlikni tekshiradi (DB, Redis)
type Check func(ctx context.Context) error

// RedisCheck Redis PING
func RedisCheck(client *redis.Client) Check {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// StatsSource suhbat mexanizmi statistikasi
type StatsSource interface {
	Stats() usecase.Stats
}

// Handler ops endpointlari
type Handler struct {
	engine       StatsSource
	checks       map[string]Check
	queueDepth   func() int64
	auditDropped func() int64
	log          *zap.Logger
}

// NewHandler creates the ops handler. queueDepth and auditDropped may be nil.
func NewHandler(engine StatsSource, checks map[string]Check, queueDepth, auditDropped func() int64, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		engine:       engine,
		checks:       checks,
		queueDepth:   queueDepth,
		auditDropped: auditDropped,
		log:          log,
	}
}

// RegisterRoutes registers ops routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)
}

// Health runs every dependency check concurrently.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = make(map[string]string, len(h.checks))
		failed bool
	)
	for name, check := range h.checks {
		wg.Add(1)
		go func(name string, check Check) {
			defer wg.Done()
			status := "ok"
			if err := check(ctx); err != nil {
				status = err.Error()
				h.log.Warn("health check failed", zap.String("check", name), zap.Error(err))
			}
			mu.Lock()
			result[name] = status
			if status != "ok" {
				failed = true
			}
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	code, status := http.StatusOK, "ok"
	if failed {
		code, status = http.StatusServiceUnavailable, "degraded"
	}
	JSON(w, code, map[string]any{"status": status, "checks": result})
}

type statsResponse struct {
	Sessions     map[string]int `json:"sessions"`
	States       []string       `json:"states"`
	AIInFlight   int64          `json:"ai_in_flight"`
	QueueDepth   int64          `json:"queue_depth"`
	AuditDropped int64          `json:"audit_dropped"`
}

// Stats returns session counts per state, queue depth and audit drops.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	s := h.engine.Stats()
	resp := statsResponse{Sessions: s.Sessions, AIInFlight: s.InFlight}
	if resp.Sessions == nil {
		resp.Sessions = map[string]int{}
	}
	for state := range resp.Sessions {
		resp.States = append(resp.States, state)
	}
	sort.Strings(resp.States)
	if h.queueDepth != nil {
		resp.QueueDepth = h.queueDepth()
	}
	if h.auditDropped != nil {
		resp.AuditDropped = h.auditDropped()
	}
	JSON(w, http.StatusOK, resp)
}

// JSON writes a JSON response.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// NewRouter chi router: global middleware + ops routes
func NewRouter(h *Handler, log *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	h.RegisterRoutes(r)
	return r
}

// requestLogger chi so'rovlarini zap orqali loglash
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", chiMiddleware.GetReqID(r.Context())))
		})
	}
}

// NewServer ops HTTP server
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

package api

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"inboxdesk/internal/db"
	"inboxdesk/internal/metrics"
)

type server struct {
	db      *sql.DB
	version string
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

type Option func(*routerConfig)

type routerConfig struct {
	log      logrus.FieldLogger
	registry *prometheus.Registry
	now      func() time.Time
	newID    func() string
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *routerConfig) { c.log = l }
}

// WithRegistry exposes the service collectors through reg instead of a
// private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(c *routerConfig) { c.registry = reg }
}

func WithClock(now func() time.Time) Option {
	return func(c *routerConfig) { c.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(c *routerConfig) { c.newID = newID }
}

func NewRouter(database *sql.DB, version string, opts ...Option) http.Handler {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	cfg := routerConfig{
		log:   discard,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = prometheus.NewRegistry()
	}

	s := &server{
		db:      database,
		version: version,
		log:     cfg.log,
		metrics: metrics.New(cfg.registry),
		now:     cfg.now,
		newID:   cfg.newID,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, s.requestLog, s.instrument)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) { methodNotAllowed(w) })
	r.NotFound(func(w http.ResponseWriter, r *http.Request) { writeError(w, http.StatusNotFound, "not found") })

	r.Get("/status", s.status)
	r.Post("/send", s.send)
	r.Get("/deliveries/{id}", s.delivery)
	r.Get("/inbox", s.inbox)
	r.Post("/clear_inbox", s.clearInbox)
	r.Post("/delete_message", s.deleteMessage)
	r.Get("/trash", s.trash)
	r.Post("/restore_message", s.restoreMessage)
	r.Post("/empty_trash", s.emptyTrash)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.registry, promhttp.HandlerOpts{}))
	return r
}

func (s *server) status(w http.ResponseWriter, r *http.Request) {
	type statusResponse struct {
		Status     string `json:"status"`
		Version    string `json:"version"`
		Timestamp  string `json:"timestamp"`
		Deliveries int    `json:"deliveries"`
	}

	n, err := db.CountDeliveries(r.Context(), s.db)
	if err != nil {
		s.log.WithError(err).Warn("status check")
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Status:     "ok",
		Version:    s.version,
		Timestamp:  s.now().UTC().Format(time.RFC3339),
		Deliveries: n,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

package httpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/letter-journeys/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SnapshotSource provides the most recently published snapshot.
type SnapshotSource interface {
	Latest() (domain.Snapshot, bool)
}

// Server exposes health, readiness, metrics, and table HTTP endpoints.
type Server struct {
	httpServer *http.Server
	snapshots  SnapshotSource
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /tables routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, snapshots SnapshotSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		snapshots: snapshots,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /tables", s.handleTableIndex)
	mux.HandleFunc("GET /tables/{name}", s.handleTable)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// TableNames lists the tables served under /tables/{name}.
var TableNames = []string{"calendar", "pairs", "shares", "regions"}

func (s *Server) handleTableIndex(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshots.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no snapshot published yet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"generated_at": snap.GeneratedAt,
		"records":      snap.Records,
		"tables":       TableNames,
	})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshots.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no snapshot published yet")
		return
	}

	var rows any
	switch name := r.PathValue("name"); name {
	case "calendar":
		rows = nonNil(snap.Calendar)
	case "pairs":
		order, err := parseOrder(r.URL.Query().Get("order"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		pairs := snap.Pairs
		if order != nil {
			pairs = domain.SortPairs(pairs, *order)
		}
		rows = nonNil(pairs)
	case "shares":
		rows = nonNil(snap.Shares)
	case "regions":
		rows = nonNil(snap.Regions)
	default:
		writeError(w, http.StatusNotFound, "unknown table "+name)
		return
	}

	w.Header().Set("Last-Modified", snap.GeneratedAt.UTC().Format(http.TimeFormat))
	writeJSON(w, http.StatusOK, rows)
}

// parseOrder maps the order query parameter to a sort order. An empty value
// keeps the tally's first-seen order.
func parseOrder(v string) (*domain.SortOrder, error) {
	var order domain.SortOrder
	switch v {
	case "":
		return nil, nil
	case "asc":
		order = domain.Ascending
	case "desc":
		order = domain.Descending
	default:
		return nil, fmt.Errorf("order must be \"asc\" or \"desc\", got %q", v)
	}
	return &order, nil
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

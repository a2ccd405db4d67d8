// Package server exposes workouts, goals and performance reports over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Store is the persistence the handlers need. *storage.DB satisfies it.
type Store interface {
	UserResolver

	Ping(ctx context.Context) error

	InsertWorkout(ctx context.Context, w models.Workout) (models.Workout, error)
	UpdateWorkout(ctx context.Context, w models.Workout) (models.Workout, error)
	DeleteWorkout(ctx context.Context, id uuid.UUID, userID int) error
	GetWorkout(ctx context.Context, id uuid.UUID, userID int) (*models.Workout, error)
	QueryWorkouts(ctx context.Context, start, end time.Time, userID int) ([]models.Workout, error)
	ListWorkouts(ctx context.Context, userID, limit int) ([]models.Workout, error)

	GetGoals(ctx context.Context, userID int, fallback models.UserGoals) (models.UserGoals, error)
	UpsertGoals(ctx context.Context, userID int, g models.UserGoals) error

	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]storage.TrainingSummaryPeriod, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db           Store
	alpha        *alpha.Provider
	catalog      *catalog.Catalog
	defaultGoals models.UserGoals
	log          *slog.Logger
	apiKey       string
	router       chi.Router

	// tailscale is nil in development mode.
	tailscale func(http.Handler) http.Handler

	now func() time.Time
}

// New creates a new Server with all routes configured.
func New(db Store, alphaProvider *alpha.Provider, cat *catalog.Catalog, defaultGoals models.UserGoals, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:           db,
		alpha:        alphaProvider,
		catalog:      cat,
		defaultGoals: defaultGoals,
		log:          log,
		apiKey:       apiKey,
		router:       chi.NewRouter(),
		now:          time.Now,
	}
	s.routes()
	return s
}

// SetTailscale switches request identity from the local development user to
// the tailnet user behind each connection. Call it before serving.
func (s *Server) SetTailscale(whois WhoIsClient) {
	s.tailscale = TailscaleIdentity(whois, s.db, s.log)
}

// MountMCP serves an MCP streamable HTTP handler at /mcp. Requests pass the
// same identity middleware as the REST API; use UserID in the handler's
// context function to scope tools to the caller.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Mount("/mcp", h)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	// Ingest endpoints (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/alpha", s.handleAlphaIngest)
	})

	s.router.Get("/api/v1/health", s.handleHealth)

	// Dashboard API endpoints (no API key; tsnet handles access)
	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/catalog", s.handleCatalog)

	s.router.Route("/api/v1/workouts", func(r chi.Router) {
		r.Get("/", s.handleListWorkouts)
		r.Post("/", s.handleCreateWorkout)
		r.Get("/{id}", s.handleGetWorkout)
		r.Put("/{id}", s.handleUpdateWorkout)
		r.Delete("/{id}", s.handleDeleteWorkout)
	})

	s.router.Get("/api/v1/performance", s.handlePerformance)
	s.router.Get("/api/v1/performance/series", s.handlePerformanceSeries)
	s.router.Get("/api/v1/performance/chart.png", s.handlePerformanceChart)

	s.router.Get("/api/v1/goals", s.handleGetGoals)
	s.router.Put("/api/v1/goals", s.handlePutGoals)

	s.router.Get("/api/v1/training/summary", s.handleTrainingSummary)
	s.router.Get("/api/v1/stats", s.handleStats)
	s.router.Get("/api/v1/import-logs", s.handleImportLogs)
}

// identity resolves the caller: the tailnet user when Tailscale is enabled,
// the local development user otherwise.
func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.tailscale == nil {
			dev.ServeHTTP(w, r)
			return
		}
		s.tailscale(next).ServeHTTP(w, r)
	})
}

// Package mcp exposes performance scores, muscle group series and workouts
// to MCP clients.
package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, cat *catalog.Catalog, defaultGoals models.UserGoals, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog strength training server. Score training periods, chart muscle group volume and browse logged workouts. All data is scoped to the authenticated user."),
	)

	h := newHandlers(ds, cat, defaultGoals, log)

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetPerformanceScore, Handler: h.getPerformanceScore},
		server.ServerTool{Tool: toolGetMuscleGroupSeries, Handler: h.getMuscleGroupSeries},
		server.ServerTool{Tool: toolGetPerformanceChart, Handler: h.getPerformanceChart},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolListMuscleGroups, Handler: h.listMuscleGroups},
		server.ServerTool{Tool: toolGetTrainingSummary, Handler: h.getTrainingSummary},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resCatalog, Handler: h.catalogResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds           DataSource
	catalog      *catalog.Catalog
	defaultGoals models.UserGoals
	log          *slog.Logger
	now          func() time.Time
}

func newHandlers(ds DataSource, cat *catalog.Catalog, defaultGoals models.UserGoals, log *slog.Logger) *handlers {
	return &handlers{ds: ds, catalog: cat, defaultGoals: defaultGoals, log: log, now: time.Now}
}

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"liftlog://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workouts from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)

var resCatalog = mcp.NewResource(
	"liftlog://catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("Muscle groups and the exercises counted toward each"),
	mcp.WithMIMEType("application/json"),
)

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/storage"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetDataStats(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.db.QueryImportLogs(r.Context(), userIDFromContext(r), queryInt(r, "limit", 50))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []storage.ImportLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// handleTrainingSummary returns raw load per calendar bucket. Query
// parameters: bucket (week, month, year) and start/end, default the last year.
func (s *Server) handleTrainingSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r, s.now(), 365)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	bucket := r.URL.Query().Get("bucket")
	switch bucket {
	case "":
		bucket = "week"
	case "week", "month", "year":
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bucket must be week, month or year"})
		return
	}
	summary, err := s.db.GetTrainingSummary(r.Context(), start, end, bucket, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if summary == nil {
		summary = []storage.TrainingSummaryPeriod{}
	}
	writeJSON(w, http.StatusOK, summary)
}

// logImport records an import operation's result to the import_logs table.
func (s *Server) logImport(uid int, source string, result *ingest.Result, importErr error, durationMs int) {
	status := storage.ImportSuccess
	var errMsg *string
	if importErr != nil {
		status = storage.ImportError
		msg := importErr.Error()
		errMsg = &msg
	}
	if result == nil {
		result = &ingest.Result{}
	}

	log := storage.ImportLog{
		UserID:           uid,
		Source:           source,
		Status:           status,
		SessionsReceived: result.SessionsReceived,
		WorkoutsInserted: result.WorkoutsInserted,
		WorkoutsReplaced: result.WorkoutsReplaced,
		SetsReceived:     result.SetsReceived,
		DurationMs:       &durationMs,
		ErrorMessage:     errMsg,
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()

	if _, err := s.db.InsertImportLog(ctx, log); err != nil {
		s.log.Error("failed to log import", "source", source, "error", err)
	}
}

// contextWithTimeout returns a background context with a 5-second timeout for import logging.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}

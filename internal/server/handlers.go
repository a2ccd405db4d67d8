package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBodyBytes caps JSON and CSV request bodies.
const maxBodyBytes = 32 << 20

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		s.log.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Entries())
}

func (s *Server) handleAlphaIngest(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	start := time.Now()
	result, err := s.alpha.Ingest(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes), uid)
	s.logImport(uid, models.SourceAlpha, result, err, int(time.Since(start).Milliseconds()))
	if err != nil {
		s.log.Error("alpha ingest error", "error", err)
		status := http.StatusInternalServerError
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, alpha.ErrMalformed):
			status = http.StatusBadRequest
		case errors.As(err, &tooLarge):
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	var (
		workouts []models.Workout
		err      error
	)
	if r.URL.Query().Get("start") != "" {
		start, end, perr := parseTimeRange(r, s.now(), 7)
		if perr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": perr.Error()})
			return
		}
		workouts, err = s.db.QueryWorkouts(r.Context(), start, end, uid)
	} else {
		workouts, err = s.db.ListWorkouts(r.Context(), uid, queryInt(r, "limit", 100))
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	created, err := s.db.InsertWorkout(r.Context(), models.Workout{
		UserID:        userIDFromContext(r),
		Source:        models.SourceManual,
		WorkoutRecord: rec,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	workout, err := s.db.GetWorkout(r.Context(), id, userIDFromContext(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	updated, err := s.db.UpdateWorkout(r.Context(), models.Workout{
		ID:            id,
		UserID:        userIDFromContext(r),
		WorkoutRecord: rec,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteWorkout(r.Context(), id, userIDFromContext(r)); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.db.GetGoals(r.Context(), userIDFromContext(r), s.defaultGoals)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handlePutGoals(w http.ResponseWriter, r *http.Request) {
	var goals models.UserGoals
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&goals); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := goals.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.db.UpsertGoals(r.Context(), userIDFromContext(r), goals); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// decodeRecord reads and validates a workout record body, writing a 400 on failure.
func decodeRecord(w http.ResponseWriter, r *http.Request) (models.WorkoutRecord, bool) {
	var rec models.WorkoutRecord
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return rec, false
	}
	if err := rec.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return rec, false
	}
	return rec, true
}

func workoutID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return uuid.Nil, false
	}
	return id, true
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, name string, fallback int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// parseTimeRange reads start and end query parameters as RFC 3339 or
// YYYY-MM-DD. A date-only end covers that whole day. Without start the range
// is the defaultDays before now.
func parseTimeRange(r *http.Request, now time.Time, defaultDays int) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		return now.AddDate(0, 0, -defaultDays), now, nil
	}

	start, _, err = parseInstant(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start: %w", err)
	}

	if endStr == "" {
		return start, now, nil
	}
	end, dateOnly, err := parseInstant(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end: %w", err)
	}
	if dateOnly {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

func parseInstant(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	if t, err = time.Parse(models.DateLayout, s); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("%q is neither RFC 3339 nor YYYY-MM-DD", s)
}

package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/chart"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/performance"
)

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	report, ok := s.evaluate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handlePerformanceSeries(w http.ResponseWriter, r *http.Request) {
	group, ok := s.groupParam(w, r, true)
	if !ok {
		return
	}
	report, ok := s.evaluate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"group":  group,
		"period": report.Period,
		"window": report.Window,
		"units":  report.Units,
		"points": report.Series[group],
	})
}

// handlePerformanceChart renders one group, or every group when no group is
// given, as a PNG.
func (s *Server) handlePerformanceChart(w http.ResponseWriter, r *http.Request) {
	group, ok := s.groupParam(w, r, false)
	if !ok {
		return
	}
	report, ok := s.evaluate(w, r)
	if !ok {
		return
	}

	groups := s.catalog.Groups()
	title := "Volume per muscle group"
	if group != "" {
		groups = []catalog.MuscleGroup{group}
		title = string(group) + " volume"
	}
	series := make([]chart.Series, 0, len(groups))
	for _, g := range groups {
		series = append(series, chart.Series{Name: string(g), Points: report.Series[g]})
	}

	var buf bytes.Buffer
	err := chart.RenderPNG(&buf, chart.Options{
		Title:  fmt.Sprintf("%s (%s)", title, report.Period),
		YLabel: volumeLabel(report.Units),
		Start:  report.Window.CurrentStart,
		End:    report.Window.CurrentEnd,
	}, series...)
	if err != nil {
		s.log.Error("chart render failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// evaluate loads the caller's workouts around the requested window and runs
// the scoring engine. Query parameters: period, month (YYYY-MM, custom only)
// and at (reference instant, default now).
func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) (*performance.Report, bool) {
	q := r.URL.Query()
	period, err := performance.ParsePeriod(q.Get("period"), q.Get("month"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, false
	}
	ref := s.now().UTC()
	if at := q.Get("at"); at != "" {
		ref, _, err = parseInstant(at)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid at: " + err.Error()})
			return nil, false
		}
	}
	window, err := performance.Resolve(ref, period)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, false
	}

	uid := userIDFromContext(r)
	goals, err := s.db.GetGoals(r.Context(), uid, s.defaultGoals)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}

	start, end := window.QueryRange()
	workouts, err := s.db.QueryWorkouts(r.Context(), start, end, uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}

	report, err := performance.Evaluate(models.Records(workouts), performance.Request{
		Reference: ref,
		Period:    period,
		Goals:     goals,
	}, s.catalog)
	if err != nil {
		writeJSON(w, engineErrorStatus(err), map[string]string{"error": err.Error()})
		return nil, false
	}
	if report.MixedUnits() {
		s.log.Warn("performance report mixes weight units", "user_id", uid, "units", report.Units)
	}
	return report, true
}

// groupParam reads the group query parameter, writing an error when it is
// required but missing or names no catalog group.
func (s *Server) groupParam(w http.ResponseWriter, r *http.Request, required bool) (catalog.MuscleGroup, bool) {
	group := catalog.MuscleGroup(r.URL.Query().Get("group"))
	if group == "" {
		if required {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "group parameter required"})
			return "", false
		}
		return "", true
	}
	if !s.catalog.Has(group) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("unknown muscle group %q", group)})
		return "", false
	}
	return group, true
}

func engineErrorStatus(err error) int {
	switch {
	case errors.Is(err, performance.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, performance.ErrInvalidGoals), errors.Is(err, performance.ErrInvalidRecord):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func volumeLabel(units []models.WeightUnit) string {
	switch len(units) {
	case 0:
		return "Volume"
	case 1:
		return fmt.Sprintf("Volume (%s)", units[0])
	default:
		return "Volume (mixed units)"
	}
}

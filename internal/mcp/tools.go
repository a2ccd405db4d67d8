package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/chart"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/performance"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end, defaulting end to now and start to
// days before end.
func defaultTimeRange(now time.Time, startStr, endStr string, days int) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = now
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -days)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(models.DateLayout, s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var periodOptions = []mcp.ToolOption{
	mcp.WithString("period", mcp.Description("Scoring period ending at the reference time. Defaults to 'month'. 'custom' scores one calendar month."), mcp.Enum("week", "month", "year", "custom")),
	mcp.WithString("month", mcp.Description("Calendar month as YYYY-MM. Required when period is 'custom'.")),
	mcp.WithString("at", mcp.Description("Reference time (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
}

func withPeriod(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(opts, periodOptions...)
}

var toolGetPerformanceScore = mcp.NewTool("get_performance_score", withPeriod(
	mcp.WithDescription("Score a training period against the one before it. Returns the volume, frequency, balance, progressive overload and personal record sub-scores, the goal-weighted composite score and per-muscle-group volume series."),
)...)

var toolGetMuscleGroupSeries = mcp.NewTool("get_muscle_group_series", withPeriod(
	mcp.WithDescription("Daily training volume (reps x weight) of one muscle group over a period."),
	mcp.WithString("group", mcp.Required(), mcp.Description("Muscle group name as listed by list_muscle_groups")),
)...)

var toolGetPerformanceChart = mcp.NewTool("get_performance_chart", withPeriod(
	mcp.WithDescription("Render muscle group volume over a period as a PNG line chart."),
	mcp.WithString("group", mcp.Description("Muscle group to chart. Defaults to every group.")),
)...)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Query logged workouts with their exercises and sets. Weights are in each workout's weight unit."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Only workouts containing this exercise (partial match, e.g. 'squat')")),
)

var toolListMuscleGroups = mcp.NewTool("list_muscle_groups",
	mcp.WithDescription("List the muscle groups and the exercises counted toward each."),
)

var toolGetTrainingSummary = mcp.NewTool("get_training_summary",
	mcp.WithDescription("Sessions, sets, reps and volume per calendar week, month or year, split by weight unit."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 6 months ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("bucket", mcp.Description("Aggregation period. Defaults to 'month'."), mcp.Enum("week", "month", "year")),
)

// --- Tool handlers ---

func (h *handlers) getPerformanceScore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, errResult := h.evaluate(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	result, err := mcp.NewToolResultJSON(report)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getMuscleGroupSeries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("group")
	if err != nil {
		return mcp.NewToolResultError("group parameter is required"), nil
	}
	group := catalog.MuscleGroup(name)
	if !h.catalog.Has(group) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown muscle group %q", name)), nil
	}

	report, errResult := h.evaluate(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	points := report.Series[group]
	if points == nil {
		points = []performance.Point{}
	}
	result, err := mcp.NewToolResultJSON(map[string]any{
		"group":  group,
		"period": report.Period,
		"window": report.Window,
		"units":  report.Units,
		"points": points,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPerformanceChart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groups := h.catalog.Groups()
	if name := req.GetString("group", ""); name != "" {
		group := catalog.MuscleGroup(name)
		if !h.catalog.Has(group) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown muscle group %q", name)), nil
		}
		groups = []catalog.MuscleGroup{group}
	}

	report, errResult := h.evaluate(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	series := make([]chart.Series, 0, len(groups))
	for _, g := range groups {
		series = append(series, chart.Series{Name: string(g), Points: report.Series[g]})
	}
	var buf bytes.Buffer
	err := chart.RenderPNG(&buf, chart.Options{
		Title:  fmt.Sprintf("Muscle group volume (%s)", report.Period),
		YLabel: "Volume",
		Start:  report.Window.CurrentStart,
		End:    report.Window.CurrentEnd,
	}, series...)
	if err != nil {
		h.log.Error("mcp get_performance_chart", "error", err)
		return mcp.NewToolResultError("render failed: " + err.Error()), nil
	}

	caption := fmt.Sprintf("Volume per day from %s to %s, composite score %d",
		report.Window.CurrentStart.Format(models.DateLayout), report.Window.CurrentEnd.Format(models.DateLayout), report.Composite)
	return mcp.NewToolResultImage(caption, base64.StdEncoding.EncodeToString(buf.Bytes()), "image/png"), nil
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(h.now(), req.GetString("start", ""), req.GetString("end", ""), 7)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	workouts, err := h.ds.QueryWorkouts(ctx, start, end, uid)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	if filter := strings.ToLower(req.GetString("exercise", "")); filter != "" {
		matched := workouts[:0]
		for _, w := range workouts {
			if hasExercise(w, filter) {
				matched = append(matched, w)
			}
		}
		workouts = matched
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listMuscleGroups(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(h.catalog.Entries())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(h.now(), req.GetString("start", ""), req.GetString("end", ""), 182)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	bucket := req.GetString("bucket", "month")
	switch bucket {
	case "week", "month", "year":
	default:
		return mcp.NewToolResultError("bucket must be week, month or year"), nil
	}

	uid := UserIDFromContext(ctx)
	summary, err := h.ds.GetTrainingSummary(ctx, start, end, bucket, uid)
	if err != nil {
		h.log.Error("mcp get_training_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summary)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// evaluate resolves the period arguments, loads the caller's workouts and
// goals and scores them. On failure the second return value is the tool
// error to send back.
func (h *handlers) evaluate(ctx context.Context, req mcp.CallToolRequest) (*performance.Report, *mcp.CallToolResult) {
	period, err := performance.ParsePeriod(req.GetString("period", "month"), req.GetString("month", ""))
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	ref := h.now().UTC()
	if at := req.GetString("at", ""); at != "" {
		if ref, err = parseFlexTime(at); err != nil {
			return nil, mcp.NewToolResultError("invalid date format: " + err.Error())
		}
	}
	window, err := performance.Resolve(ref, period)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}

	uid := UserIDFromContext(ctx)
	goals, err := h.ds.GetGoals(ctx, uid, h.defaultGoals)
	if err != nil {
		h.log.Error("mcp goals", "error", err)
		return nil, mcp.NewToolResultError("query failed: " + err.Error())
	}
	start, end := window.QueryRange()
	workouts, err := h.ds.QueryWorkouts(ctx, start, end, uid)
	if err != nil {
		h.log.Error("mcp workouts", "error", err)
		return nil, mcp.NewToolResultError("query failed: " + err.Error())
	}

	report, err := performance.Evaluate(models.Records(workouts), performance.Request{
		Reference: ref,
		Period:    period,
		Goals:     goals,
	}, h.catalog)
	if err != nil {
		return nil, mcp.NewToolResultError("scoring failed: " + err.Error())
	}
	if report.MixedUnits() {
		h.log.Warn("performance report mixes weight units", "user_id", uid, "units", report.Units)
	}
	return report, nil
}

func hasExercise(w models.Workout, filter string) bool {
	for _, e := range w.Exercises {
		if strings.Contains(strings.ToLower(e.Name), filter) {
			return true
		}
	}
	return false
}

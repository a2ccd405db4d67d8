package performance

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPeriod is returned for an unknown period selector or an
// out-of-range custom month.
var ErrInvalidPeriod = errors.New("invalid period")

// PeriodKind selects how far back the current window reaches.
type PeriodKind int

const (
	Week PeriodKind = iota + 1
	Month
	Year
	CustomMonth
)

func (k PeriodKind) String() string {
	switch k {
	case Week:
		return "week"
	case Month:
		return "month"
	case Year:
		return "year"
	case CustomMonth:
		return "custom"
	default:
		return fmt.Sprintf("PeriodKind(%d)", int(k))
	}
}

// Period is an immutable period selector. Year and Month are only meaningful
// for CustomMonth.
type Period struct {
	Kind  PeriodKind
	Year  int
	Month time.Month
}

// Custom returns the CustomMonth selector for the given calendar month.
func Custom(year int, month time.Month) Period {
	return Period{Kind: CustomMonth, Year: year, Month: month}
}

func (p Period) String() string {
	if p.Kind == CustomMonth {
		return fmt.Sprintf("custom:%04d-%02d", p.Year, int(p.Month))
	}
	return p.Kind.String()
}

func (p Period) validate() error {
	switch p.Kind {
	case Week, Month, Year:
		return nil
	case CustomMonth:
		if p.Month < time.January || p.Month > time.December {
			return fmt.Errorf("%w: month %d out of range", ErrInvalidPeriod, int(p.Month))
		}
		if p.Year < 1 {
			return fmt.Errorf("%w: year %d out of range", ErrInvalidPeriod, p.Year)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown period kind %d", ErrInvalidPeriod, int(p.Kind))
	}
}

// ExpectedWorkouts is the target session count the frequency score is
// measured against.
func (p Period) ExpectedWorkouts() (int, error) {
	switch p.Kind {
	case Week:
		return 3, nil
	case Month, CustomMonth:
		return 12, nil
	case Year:
		return 144, nil
	default:
		return 0, fmt.Errorf("%w: unknown period kind %d", ErrInvalidPeriod, int(p.Kind))
	}
}

// ParsePeriod parses an API period selector. tag is one of week, month,
// year or custom (the lastWeek/lastMonth/lastYear/customMonth spellings are
// accepted too); month is "YYYY-MM" and only read for custom.
func ParsePeriod(tag, month string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "week", "lastweek":
		return Period{Kind: Week}, nil
	case "month", "lastmonth", "":
		return Period{Kind: Month}, nil
	case "year", "lastyear":
		return Period{Kind: Year}, nil
	case "custom", "custommonth":
		y, m, err := parseYearMonth(month)
		if err != nil {
			return Period{}, err
		}
		p := Custom(y, m)
		return p, p.validate()
	default:
		return Period{}, fmt.Errorf("%w: unknown period %q", ErrInvalidPeriod, tag)
	}
}

func parseYearMonth(s string) (int, time.Month, error) {
	ys, ms, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: custom month %q is not YYYY-MM", ErrInvalidPeriod, s)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: custom month %q is not YYYY-MM", ErrInvalidPeriod, s)
	}
	m, err := strconv.Atoi(ms)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: custom month %q is not YYYY-MM", ErrInvalidPeriod, s)
	}
	return y, time.Month(m), nil
}

// Window is a resolved period.
//
// The current scoring window is [CurrentStart, Reference) and the comparison
// window is [PreviousStart, CurrentStart), so both cover one full period.
// Chart series use the inclusive range [CurrentStart, CurrentEnd]; CurrentEnd
// is the reference instant except for CustomMonth, where it is the last day
// of the selected month.
type Window struct {
	Reference     time.Time `json:"reference"`
	CurrentStart  time.Time `json:"currentStart"`
	CurrentEnd    time.Time `json:"currentEnd"`
	PreviousStart time.Time `json:"previousStart"`
}

// InCurrent reports whether d falls in the current scoring window.
func (w Window) InCurrent(d time.Time) bool {
	return !d.Before(w.CurrentStart) && d.Before(w.Reference)
}

// InPrevious reports whether d falls in the comparison window.
func (w Window) InPrevious(d time.Time) bool {
	return !d.Before(w.PreviousStart) && d.Before(w.CurrentStart)
}

// QueryRange is the half-open date range a caller must load records from to
// evaluate w: both scoring windows plus the chart range.
func (w Window) QueryRange() (start, end time.Time) {
	end = w.Reference
	if w.CurrentEnd.After(end) {
		end = w.CurrentEnd
	}
	return w.PreviousStart, end.Add(24 * time.Hour)
}

// Resolve maps a reference instant and a period selector to a Window.
// The previous window starts one more period back from CurrentStart; for
// CustomMonth that is the first day of the preceding calendar month.
func Resolve(reference time.Time, p Period) (Window, error) {
	if err := p.validate(); err != nil {
		return Window{}, err
	}
	w := Window{Reference: reference, CurrentEnd: reference}
	switch p.Kind {
	case Week:
		w.CurrentStart = reference.AddDate(0, 0, -7)
		w.PreviousStart = w.CurrentStart.AddDate(0, 0, -7)
	case Month:
		w.CurrentStart = reference.AddDate(0, -1, 0)
		w.PreviousStart = w.CurrentStart.AddDate(0, -1, 0)
	case Year:
		w.CurrentStart = reference.AddDate(-1, 0, 0)
		w.PreviousStart = w.CurrentStart.AddDate(-1, 0, 0)
	case CustomMonth:
		// Record dates are UTC calendar days, so month bounds are too.
		w.CurrentStart = time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
		w.CurrentEnd = time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC)
		w.PreviousStart = w.CurrentStart.AddDate(0, -1, 0)
	}
	return w, nil
}

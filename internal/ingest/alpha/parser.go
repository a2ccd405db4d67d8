package alpha

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// ErrMalformed is returned for a structurally valid line with unreadable values.
var ErrMalformed = errors.New("malformed alpha export")

var (
	// "Session Name";"2026-02-19 4:54 h";"1:02 hr"
	sessionHeaderRe = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)\s+h";"(.+)"$`)

	// "1. Exercise Name · Equipment · 8 reps[· modifiers]"[;"warmup info"]
	exerciseHeaderRe = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?\s+·\s+(\d+)\s+reps(.*?)"(?:;"(.+)")?$`)

	// 1;115;8;1
	setDataRe = regexp.MustCompile(`^(\d+);(.+);(\d+);(.+)$`)

	// WU1 · 37,5 kg · 9 reps
	warmupRe = regexp.MustCompile(`WU(\d+)\s+·\s+(.+?)\s+kg\s+·\s+(\d+)\s+reps`)

	columnHeaderRe = regexp.MustCompile(`^#;KG;REPS;RIR$`)
)

// parser accumulates sessions line by line. A blank line or a new session
// header closes the open session; a new exercise header closes the open
// exercise.
type parser struct {
	line     int
	sessions []models.AlphaSession
	session  *models.AlphaSession
	exercise *models.AlphaExercise
}

// Parse reads an Alpha Progression CSV export and returns its sessions in
// file order. Unknown lines such as notes are skipped.
func Parse(r io.Reader) ([]models.AlphaSession, error) {
	p := &parser{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line++
		text := strings.TrimSpace(scanner.Text())
		if p.line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if err := p.feed(text); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	p.closeSession()
	return p.sessions, nil
}

func (p *parser) feed(line string) error {
	if line == "" {
		p.closeSession()
		return nil
	}
	if columnHeaderRe.MatchString(line) {
		return nil
	}
	if m := sessionHeaderRe.FindStringSubmatch(line); m != nil {
		return p.startSession(m)
	}
	if m := exerciseHeaderRe.FindStringSubmatch(line); m != nil {
		return p.startExercise(line, m)
	}
	if m := setDataRe.FindStringSubmatch(line); m != nil {
		return p.addSet(line, m)
	}
	return nil
}

func (p *parser) startSession(m []string) error {
	p.closeSession()
	date, err := parseSessionDate(m[2])
	if err != nil {
		return err
	}
	p.session = &models.AlphaSession{Name: m[1], Date: date, Duration: m[3]}
	return nil
}

func (p *parser) startExercise(line string, m []string) error {
	if p.session == nil {
		return fmt.Errorf("%w: exercise without session: %q", ErrMalformed, line)
	}
	p.closeExercise()
	num, err := strconv.Atoi(m[1])
	if err != nil {
		return fmt.Errorf("%w: exercise number %q", ErrMalformed, m[1])
	}
	target, err := strconv.Atoi(m[4])
	if err != nil {
		return fmt.Errorf("%w: target reps %q", ErrMalformed, m[4])
	}
	p.exercise = &models.AlphaExercise{
		Number:     num,
		Name:       strings.TrimSpace(m[2]),
		Equipment:  strings.TrimSpace(m[3]),
		TargetReps: target,
	}
	if m[6] != "" {
		warmups, err := parseWarmups(m[6])
		if err != nil {
			return err
		}
		p.exercise.Sets = append(p.exercise.Sets, warmups...)
	}
	return nil
}

func (p *parser) addSet(line string, m []string) error {
	if p.exercise == nil {
		return fmt.Errorf("%w: set data without exercise: %q", ErrMalformed, line)
	}
	num, err := strconv.Atoi(m[1])
	if err != nil {
		return fmt.Errorf("%w: set number %q", ErrMalformed, m[1])
	}
	weight, bodyweight, err := parseWeight(m[2])
	if err != nil {
		return err
	}
	reps, err := strconv.Atoi(m[3])
	if err != nil {
		return fmt.Errorf("%w: reps %q", ErrMalformed, m[3])
	}
	rir, err := parseEuropeanFloat(m[4])
	if err != nil {
		return err
	}
	p.exercise.Sets = append(p.exercise.Sets, models.AlphaSet{
		Number:           num,
		WeightKg:         weight,
		IsBodyweightPlus: bodyweight,
		Reps:             reps,
		RIR:              rir,
	})
	return nil
}

func (p *parser) closeExercise() {
	if p.exercise != nil && p.session != nil {
		p.session.Exercises = append(p.session.Exercises, *p.exercise)
	}
	p.exercise = nil
}

func (p *parser) closeSession() {
	p.closeExercise()
	if p.session != nil {
		p.sessions = append(p.sessions, *p.session)
	}
	p.session = nil
}

// parseSessionDate parses "2026-02-19 4:54" or "2026-02-19 16:54".
func parseSessionDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: session date %q", ErrMalformed, s)
}

// parseWarmups extracts warmup sets from the exercise header's second field,
// e.g. "WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps".
func parseWarmups(s string) ([]models.AlphaSet, error) {
	var sets []models.AlphaSet
	for _, part := range strings.Split(s, "<br>") {
		m := warmupRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		weight, bodyweight, err := parseWeight(m[2])
		if err != nil {
			return nil, err
		}
		reps, _ := strconv.Atoi(m[3])
		sets = append(sets, models.AlphaSet{
			Number:           num,
			WeightKg:         weight,
			IsBodyweightPlus: bodyweight,
			Reps:             reps,
			IsWarmup:         true,
		})
	}
	return sets, nil
}

// parseWeight handles European decimals and bodyweight-plus notation:
// "+35" is (35, true), "102,5" is (102.5, false), "+0" is (0, true).
func parseWeight(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	rest, bodyweight := strings.CutPrefix(s, "+")
	w, err := parseEuropeanFloat(rest)
	if err != nil {
		return 0, false, err
	}
	return w, bodyweight, nil
}

// parseEuropeanFloat converts "102,5" to 102.5.
func parseEuropeanFloat(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: number %q", ErrMalformed, s)
	}
	return f, nil
}

// Package overtime computes hours worked beyond the fixed shift baseline.
package overtime

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/and161185/shiftreport/internal/model"
)

const (
	// Baseline is the shift length that carries no overtime.
	Baseline = 12 * time.Hour
	// Step is the rounding increment.
	Step = 15 * time.Minute
)

const day = 24 * time.Hour

// parseClock parses "HH:MM" (seconds allowed) as an offset from midnight.
func parseClock(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}
	return 0, false
}

// Calculate returns overtime in hours for a shift from start to end, rounded
// to the nearest Step. An end earlier than start is on the next day.
func Calculate(start, end string) float64 {
	s, ok1 := parseClock(start)
	e, ok2 := parseClock(end)
	if !ok1 || !ok2 {
		return 0
	}
	if e < s {
		e += day
	}
	over := e - s - Baseline
	if over <= 0 {
		return 0
	}
	steps := math.Round(float64(over) / float64(Step))
	return steps * Step.Hours()
}

// Format renders hours as "<h> ч. <m> мин.", omitting zero parts.
func Format(h float64) string {
	if h <= 0 {
		return "0 ч."
	}
	total := int(math.Round(h * 60))
	hours, mins := total/60, total%60

	parts := make([]string, 0, 2)
	if hours > 0 {
		parts = append(parts, strconv.Itoa(hours)+" ч.")
	}
	if mins > 0 {
		parts = append(parts, strconv.Itoa(mins)+" мин.")
	}
	if len(parts) == 0 {
		return "0 ч."
	}
	return strings.Join(parts, " ")
}

// Shift returns the payload's shift overtime.
func Shift(p model.ReportPayload) float64 { return Calculate(p.ShiftStart, p.ShiftEnd) }

// Trailer returns the trailer overtime: zero without a trailer, otherwise
// computed on the times that apply to the trailer.
func Trailer(p model.ReportPayload) float64 {
	if !p.HasTrailer() {
		return 0
	}
	return Calculate(p.TrailerTimes())
}

package service

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/deskforge/helpdesk/pkg/util"
)

// ViewMode selects the bucketing granularity of an analytics report.
type ViewMode string

const (
	ViewModeDaily     ViewMode = "DAILY"
	ViewModeWeekly    ViewMode = "WEEKLY"
	ViewModeMonthly   ViewMode = "MONTHLY"
	ViewModeBimonthly ViewMode = "BIMONTHLY"
	ViewModeQuarterly ViewMode = "QUARTERLY"
	ViewModeYearly    ViewMode = "YEARLY"
)

// ParseViewMode accepts the mode case-insensitively.
func ParseViewMode(raw string) (ViewMode, error) {
	mode := ViewMode(strings.ToUpper(strings.TrimSpace(raw)))
	switch mode {
	case ViewModeDaily, ViewModeWeekly, ViewModeMonthly, ViewModeBimonthly, ViewModeQuarterly, ViewModeYearly:
		return mode, nil
	}
	return "", apperrors.NewValidationError("unknown view mode", map[string]any{"view_mode": raw})
}

// bucketKey labels the bucket containing t. All bucketing works in UTC;
// weeks are ISO weeks labelled by their Monday date.
func bucketKey(mode ViewMode, t time.Time) string {
	t = t.UTC()
	switch mode {
	case ViewModeDaily:
		return t.Format("2006-01-02")
	case ViewModeWeekly:
		return mondayOf(t).Format("2006-01-02")
	case ViewModeMonthly:
		return t.Format("2006-01")
	case ViewModeBimonthly:
		return fmt.Sprintf("%04d-B%d", t.Year(), (int(t.Month())-1)/2+1)
	case ViewModeQuarterly:
		return fmt.Sprintf("%04d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	default:
		return t.Format("2006")
	}
}

// bucketStart returns the first instant of the bucket containing t.
func bucketStart(mode ViewMode, t time.Time) time.Time {
	t = t.UTC()
	switch mode {
	case ViewModeDaily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case ViewModeWeekly:
		return mondayOf(t)
	case ViewModeMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case ViewModeBimonthly:
		first := time.Month((int(t.Month())-1)/2*2 + 1)
		return time.Date(t.Year(), first, 1, 0, 0, 0, 0, time.UTC)
	case ViewModeQuarterly:
		first := time.Month((int(t.Month())-1)/3*3 + 1)
		return time.Date(t.Year(), first, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
}

// nextBucket advances a bucket start to the start of the following bucket.
func nextBucket(mode ViewMode, start time.Time) time.Time {
	switch mode {
	case ViewModeDaily:
		return start.AddDate(0, 0, 1)
	case ViewModeWeekly:
		return start.AddDate(0, 0, 7)
	case ViewModeMonthly:
		return start.AddDate(0, 1, 0)
	case ViewModeBimonthly:
		return start.AddDate(0, 2, 0)
	case ViewModeQuarterly:
		return start.AddDate(0, 3, 0)
	default:
		return start.AddDate(1, 0, 0)
	}
}

// bucketSequence lists every bucket key from the one containing from
// through the one containing to, in chronological order. Used to zero-fill
// the general series.
func bucketSequence(mode ViewMode, from, to time.Time) []string {
	if to.Before(from) {
		return nil
	}
	var keys []string
	last := bucketStart(mode, to)
	for cursor := bucketStart(mode, from); !cursor.After(last); cursor = nextBucket(mode, cursor) {
		keys = append(keys, bucketKey(mode, cursor))
	}
	return keys
}

// mondayOf returns midnight UTC on the Monday of t's ISO week.
func mondayOf(t time.Time) time.Time {
	t = t.UTC()
	back := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -back)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

// dayBounds expands calendar dates to an inclusive UTC instant range:
// from at 00:00:00 through to at the last nanosecond of the day.
func dayBounds(from, to time.Time) (time.Time, time.Time) {
	from = from.UTC()
	to = to.UTC()
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
	return start, end
}

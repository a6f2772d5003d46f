package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestParseViewMode(t *testing.T) {
	mode, err := ParseViewMode("monthly")
	require.NoError(t, err)
	assert.Equal(t, ViewModeMonthly, mode)

	_, err = ParseViewMode("hourly")
	assert.Error(t, err)
}

func TestBucketKeys(t *testing.T) {
	ts := time.Date(2026, time.August, 9, 15, 30, 0, 0, time.UTC) // a Sunday

	cases := []struct {
		mode ViewMode
		want string
	}{
		{ViewModeDaily, "2026-08-09"},
		{ViewModeWeekly, "2026-08-03"}, // Monday of that ISO week
		{ViewModeMonthly, "2026-08"},
		{ViewModeBimonthly, "2026-B4"}, // Jul-Aug
		{ViewModeQuarterly, "2026-Q3"},
		{ViewModeYearly, "2026"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, bucketKey(tc.mode, ts), string(tc.mode))
	}
}

func TestWeeklyBucketOfAMondayIsItself(t *testing.T) {
	monday := date(2026, time.August, 3)
	assert.Equal(t, "2026-08-03", bucketKey(ViewModeWeekly, monday))
	assert.Equal(t, monday, bucketStart(ViewModeWeekly, monday))
}

func TestBucketSequenceZeroFillsGaps(t *testing.T) {
	keys := bucketSequence(ViewModeMonthly, date(2025, time.November, 15), date(2026, time.February, 2))
	assert.Equal(t, []string{"2025-11", "2025-12", "2026-01", "2026-02"}, keys)
}

func TestBucketSequenceWeeklySpansYearBoundary(t *testing.T) {
	keys := bucketSequence(ViewModeWeekly, date(2025, time.December, 29), date(2026, time.January, 12))
	assert.Equal(t, []string{"2025-12-29", "2026-01-05", "2026-01-12"}, keys)
}

func TestBucketSequenceSingleBucket(t *testing.T) {
	keys := bucketSequence(ViewModeYearly, date(2026, time.March, 1), date(2026, time.October, 1))
	assert.Equal(t, []string{"2026"}, keys)
}

func TestBucketSequenceEmptyWhenReversed(t *testing.T) {
	assert.Nil(t, bucketSequence(ViewModeDaily, date(2026, time.May, 2), date(2026, time.May, 1)))
}

func TestDayBoundsAreInclusive(t *testing.T) {
	start, end := dayBounds(date(2026, time.January, 1), date(2026, time.January, 31))
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, time.January, 31, 23, 59, 59, 999999999, time.UTC), end)
}

func TestBimonthlyBucketStarts(t *testing.T) {
	assert.Equal(t, date(2026, time.January, 1), bucketStart(ViewModeBimonthly, date(2026, time.February, 14)))
	assert.Equal(t, date(2026, time.March, 1), bucketStart(ViewModeBimonthly, date(2026, time.April, 30)))
	assert.Equal(t, date(2026, time.November, 1), bucketStart(ViewModeBimonthly, date(2026, time.December, 31)))
}

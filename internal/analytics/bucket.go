// Package analytics holds the time bucketing and growth arithmetic behind the
// sales views. All buckets are computed in UTC.
package analytics

import (
	"time"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

// BucketStart truncates t to the start of its bucket: the UTC day, the
// Monday of its week, or the first day of its month.
func BucketStart(p models.Period, t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case models.PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case models.PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// NextBucket returns the start of the bucket following the one at start.
func NextBucket(p models.Period, start time.Time) time.Time {
	switch p {
	case models.PeriodWeekly:
		return start.AddDate(0, 0, 7)
	case models.PeriodMonthly:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// Window is a half-open [Start, End) interval.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// CurrentAndPrevious returns the bucket containing now and the bucket right
// before it.
func CurrentAndPrevious(p models.Period, now time.Time) (cur, prev Window) {
	start := BucketStart(p, now)
	cur = Window{Start: start, End: NextBucket(p, start)}
	prevStart := BucketStart(p, start.Add(-time.Nanosecond))
	prev = Window{Start: prevStart, End: start}
	return cur, prev
}

// FillGaps returns one bucket per period between from and to, reusing the
// aggregated buckets where present and zero buckets elsewhere.
func FillGaps(p models.Period, from, to time.Time, buckets []models.SalesBucket) []models.SalesBucket {
	byStart := make(map[int64]models.SalesBucket, len(buckets))
	for _, b := range buckets {
		byStart[b.Start.Unix()] = b
	}

	var out []models.SalesBucket
	for s := BucketStart(p, from); s.Before(to); s = NextBucket(p, s) {
		if b, ok := byStart[s.Unix()]; ok {
			b.Start = s
			out = append(out, b)
			continue
		}
		out = append(out, models.SalesBucket{Start: s})
	}
	return out
}

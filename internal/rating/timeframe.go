package rating

import (
	"time"
)

// TimeFrame returns the half-open [start, end) interval for a dashboard
// scope ("week", "month" or "year") shifted index periods into the past.
// Index 0 is the current period. Any other scope means all time, from the
// Unix epoch to now. Weeks start on Monday at 00:00 UTC.
func TimeFrame(scope string, index int, now time.Time) (time.Time, time.Time) {
	switch scope {
	case "week":
		start := startOfWeek(now.AddDate(0, 0, -7*index))
		return start, start.AddDate(0, 0, 7)
	case "month":
		y, m, _ := now.UTC().Date()
		start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -index, 0)
		return start, start.AddDate(0, 1, 0)
	case "year":
		start := time.Date(now.UTC().Year()-index, 1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	default:
		return time.Unix(0, 0).UTC(), now
	}
}

// GamesInTimeFrame keeps the games played within [start, end). Undated games
// cannot belong to a bounded frame and are dropped.
func GamesInTimeFrame(games []Game, start, end time.Time) []Game {
	ret := make([]Game, 0, len(games))
	for _, game := range games {
		if game.PlayedAt.IsZero() {
			continue
		}

		if !game.PlayedAt.Before(start) && game.PlayedAt.Before(end) {
			ret = append(ret, game)
		}
	}

	return ret
}

// startOfWeek returns the previous monday at 00:00 UTC.
func startOfWeek(t time.Time) time.Time {
	t = t.UTC()

	if wd := t.Weekday(); wd == time.Sunday {
		t = t.AddDate(0, 0, -6)
	} else {
		t = t.AddDate(0, 0, -int(wd)+1)
	}

	return t.Truncate(24 * time.Hour)
}

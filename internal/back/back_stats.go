package back

import (
	"math"
	"sort"
	"time"

	"bankshot/internal/rating"
	"bankshot/internal/util"

	"github.com/jmoiron/sqlx"
)

// PlayerStats summarizes one user's record over the dashboard's time scope.
type PlayerStats struct {
	Wins   int
	Losses int

	// WinRate is a rounded percentage, 0 when no game was played.
	WinRate int

	// Streak counts consecutive identical outcomes starting from the most
	// recent game, StreakWins tells which kind.
	Streak     int
	StreakWins bool

	// GamesLastWeek counts the user's games in the 7 days before now.
	GamesLastWeek int
}

// GetUserStats returns one user's record over the full game log, for the
// public profile page.
func (b *Back) GetUserStats(userID util.UUIDAsBlob) (PlayerStats, error) {
	var games []Game
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		games, err = getGames(tx)
		return err
	}); err != nil {
		return PlayerStats{}, err
	}

	return computePlayerStats(userID.String(), ratingGames(games), time.Now()), nil
}

func computePlayerStats(userID string, games []rating.Game, now time.Time) PlayerStats {
	mine := make([]rating.Game, 0, len(games))
	for _, game := range games {
		if game.WinnerID == userID || game.LoserID == userID {
			mine = append(mine, game)
		}
	}

	sortRatingGamesByDateDesc(mine)

	var stats PlayerStats
	weekAgo := now.Add(-7 * 24 * time.Hour)

	for _, game := range mine {
		if game.WinnerID == userID {
			stats.Wins++
		} else {
			stats.Losses++
		}

		if !game.PlayedAt.IsZero() && !game.PlayedAt.Before(weekAgo) {
			stats.GamesLastWeek++
		}
	}

	if total := stats.Wins + stats.Losses; total > 0 {
		stats.WinRate = int(math.Round(float64(stats.Wins) / float64(total) * 100))
	}

	for i, game := range mine {
		won := game.WinnerID == userID
		if i == 0 {
			stats.StreakWins = won
		} else if won != stats.StreakWins {
			break
		}

		stats.Streak++
	}

	return stats
}

func sortRatingGamesByDateDesc(games []rating.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		return games[j].PlayedAt.Before(games[i].PlayedAt)
	})
}

func sortGamesByDateDesc(games []Game) {
	sort.SliceStable(games, func(i, j int) bool {
		var ti, tj time.Time
		if games[i].PlayedAt.Valid {
			ti = games[i].PlayedAt.Time.Time()
		}
		if games[j].PlayedAt.Valid {
			tj = games[j].PlayedAt.Time.Time()
		}

		return tj.Before(ti)
	})
}

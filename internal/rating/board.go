package rating

import (
	"time"
)

const (
	// DefaultActivityWindow is how far back a player's latest game may be for
	// the player to still count as competing.
	DefaultActivityWindow = 21 * 24 * time.Hour

	// DefaultDisplayCap is how many active players the leaderboard shows
	// before truncating.
	DefaultDisplayCap = 10
)

// Entry is one leaderboard row. Rank is 1-based and only assigned to active
// players, dormant players carry Rank 0.
type Entry struct {
	UserID     string
	Elo        float64
	Rank       int
	Active     bool
	LastPlayed time.Time
}

// Board is the display-ready leaderboard: the capped active ranking, the full
// dormant list, and the requesting player's own entry when their rank fell
// past the cap.
type Board struct {
	Active  []Entry
	Dormant []Entry

	// Requester is only set when the requesting player is active but ranked
	// beyond the display cap, so the UI can still surface their position.
	Requester *Entry
}

// LastPlayed scans the whole log and returns the most recent game date per
// player, winners and losers alike. Undated games count as the Unix epoch.
func LastPlayed(games []Game) map[string]time.Time {
	latest := make(map[string]time.Time, len(games))

	for _, game := range games {
		at := dateOrEpoch(game.PlayedAt)
		for _, id := range []string{game.WinnerID, game.LoserID} {
			if at.After(latest[id]) {
				latest[id] = at
			}
		}
	}

	return latest
}

// ComposeBoard partitions the standings into active and dormant players and
// assigns ranks within the active subset.
//
// A player is active when their latest game is at most window old, boundary
// included. A player with a standing but no discoverable game is dormant.
// Players with equal ratings keep the standings order, which
// CalcEloFromGames makes first-encounter order; no other tie-break applies.
//
// The active list is truncated to limit entries (limit <= 0 disables
// truncation). When the requesting player is active but ranked past the cap
// their entry is returned separately with its true rank, never dropped. A
// requester without a standing has played no games and appears nowhere.
func ComposeBoard(
	standings []Standing,
	lastPlayed map[string]time.Time,
	now time.Time,
	window time.Duration,
	limit int,
	requesterID string,
) Board {
	cutoff := now.Add(-window)

	var board Board
	rank := 0

	for _, standing := range standings {
		at, ok := lastPlayed[standing.UserID]
		entry := Entry{
			UserID:     standing.UserID,
			Elo:        standing.Elo,
			LastPlayed: at,
		}

		if ok && !at.Before(cutoff) {
			rank++
			entry.Active = true
			entry.Rank = rank

			if limit > 0 && rank > limit {
				if standing.UserID == requesterID {
					requester := entry
					board.Requester = &requester
				}
				continue
			}

			board.Active = append(board.Active, entry)
			continue
		}

		board.Dormant = append(board.Dormant, entry)
	}

	return board
}

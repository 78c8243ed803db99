package rating

import (
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	// InitialRating is given to every player the first time they appear in
	// the game log.
	InitialRating = 1500.0

	// DefaultKFactor is the learning rate the application uses unless
	// overridden in its configuration.
	DefaultKFactor = 10.0
)

// Game is one completed match. A game whose winner and loser are the same
// player is malformed and is skipped without affecting any rating.
type Game struct {
	WinnerID string
	LoserID  string

	// PlayedAt orders the game in the log. The zero value means the date is
	// unknown, those games sort as if they were played at the Unix epoch and
	// are therefore processed before any dated game.
	PlayedAt time.Time
}

// Standing is the final rating of one player, rounded to two decimals.
type Standing struct {
	UserID string  `json:"userId"`
	Elo    float64 `json:"elo"`

	// Dead is reserved for retired players. Nothing sets it yet.
	Dead bool `json:"dead"`
}

// Snapshot is the state of every known player's rating immediately after one
// game, unrounded so that chained trajectories stay reproducible.
type Snapshot struct {
	Timestamp time.Time          `json:"timestamp"`
	Ratings   map[string]float64 `json:"ratings"`
}

// CalcEloFromGames applies every valid game in chronological order and
// returns the final rating of every player that appears in the log, sorted
// by descending rating. Players with equal ratings keep their first
// encounter order, no secondary tie-break is applied.
func CalcEloFromGames(games []Game, k float64) ([]Standing, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k-factor must be positive, got %g", k)
	}

	roster := enumeratePlayers(games)
	ratings := initialRatings(roster)

	for _, game := range sortedByDate(games) {
		applyGame(ratings, game, k)
	}

	standings := make([]Standing, 0, len(roster))
	for _, id := range roster {
		standings = append(standings, Standing{UserID: id, Elo: ratings[id]})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Elo > standings[j].Elo
	})

	// Round at output time only, intermediate updates keep full precision.
	for i := range standings {
		standings[i].Elo = math.Round(standings[i].Elo*100) / 100
	}

	return standings, nil
}

// CalcEloHistory runs the same computation as CalcEloFromGames but emits one
// Snapshot after every valid game, preceded by an initial snapshot where the
// whole roster sits at InitialRating. Skipped games emit nothing, so a log
// with N valid games yields N+1 snapshots.
func CalcEloHistory(games []Game, k float64) ([]Snapshot, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k-factor must be positive, got %g", k)
	}

	roster := enumeratePlayers(games)
	ratings := initialRatings(roster)
	sorted := sortedByDate(games)

	history := make([]Snapshot, 0, len(sorted)+1)
	if len(sorted) > 0 {
		history = append(history, Snapshot{
			Timestamp: dateOrNow(sorted[0].PlayedAt),
			Ratings:   copyRatings(ratings),
		})
	}

	for _, game := range sorted {
		if !applyGame(ratings, game, k) {
			continue
		}

		history = append(history, Snapshot{
			Timestamp: dateOrNow(game.PlayedAt),
			Ratings:   copyRatings(ratings),
		})
	}

	return history, nil
}

// expectedScore is the logistic Elo win probability of a player rated r
// against an opponent rated o.
func expectedScore(r, o float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (o-r)/400.0))
}

// applyGame mutates ratings with the outcome of one game and reports whether
// the game was valid. Malformed games (self-referential, or naming a player
// missing from the ratings table) leave every rating untouched.
func applyGame(ratings map[string]float64, game Game, k float64) bool {
	if game.WinnerID == game.LoserID {
		return false
	}

	winner, ok := ratings[game.WinnerID]
	if !ok {
		return false
	}
	loser, ok := ratings[game.LoserID]
	if !ok {
		return false
	}

	delta := k * (1.0 - expectedScore(winner, loser))
	ratings[game.WinnerID] = winner + delta
	ratings[game.LoserID] = loser - delta

	return true
}

// enumeratePlayers returns every player ID in the log in first encounter
// order, winners before losers within a game. The order only affects output
// iteration, never a rating value, but it has to be deterministic.
func enumeratePlayers(games []Game) []string {
	seen := make(map[string]struct{}, len(games))
	roster := make([]string, 0, len(games))

	for _, game := range games {
		for _, id := range []string{game.WinnerID, game.LoserID} {
			if _, ok := seen[id]; ok {
				continue
			}

			seen[id] = struct{}{}
			roster = append(roster, id)
		}
	}

	return roster
}

func initialRatings(roster []string) map[string]float64 {
	ratings := make(map[string]float64, len(roster))
	for _, id := range roster {
		ratings[id] = InitialRating
	}

	return ratings
}

// sortedByDate returns a chronologically sorted copy of the log. The sort is
// stable so undated games keep their input order among themselves, ahead of
// every dated game.
func sortedByDate(games []Game) []Game {
	sorted := make([]Game, len(games))
	copy(sorted, games)

	sort.SliceStable(sorted, func(i, j int) bool {
		return dateOrEpoch(sorted[i].PlayedAt).Before(dateOrEpoch(sorted[j].PlayedAt))
	})

	return sorted
}

func dateOrEpoch(t time.Time) time.Time {
	if t.IsZero() {
		return time.Unix(0, 0).UTC()
	}

	return t
}

func dateOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}

	return t
}

func copyRatings(ratings map[string]float64) map[string]float64 {
	ret := make(map[string]float64, len(ratings))
	for id, r := range ratings {
		ret[id] = r
	}

	return ret
}

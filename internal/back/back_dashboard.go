package back

import (
	"log"
	"time"

	"bankshot/internal/rating"
	"bankshot/internal/util"

	"github.com/jmoiron/sqlx"
)

const recentGamesShown = 20

// LeaderboardEntry is one row of the rendered leaderboard.
type LeaderboardEntry struct {
	UserID     string
	Name       string
	Elo        float64
	Rank       int
	Active     bool
	LastPlayed time.Time
}

// GameSummary is one line of the requester's recent games feed.
type GameSummary struct {
	OpponentName string
	Won          bool
	PlayedAt     time.Time
}

// Dashboard is everything the main page shows, recomputed from the full game
// log on every request. Nothing here is cached: ratings are cheap to derive
// at this scale and a stale leaderboard is worse than a slow one.
type Dashboard struct {
	Active  []LeaderboardEntry
	Dormant []LeaderboardEntry

	// Requester is set when the requesting user is active but ranked past
	// the displayed slice.
	Requester *LeaderboardEntry

	History []rating.Snapshot

	// ChartNames maps the IDs appearing in History to display names, active
	// players only.
	ChartNames map[string]string

	Stats       PlayerStats
	RecentGames []GameSummary

	Scope string
	Index int
}

// GetDashboard assembles the dashboard for one user and one time scope
// ("all", "week", "month", "year"; index shifts periods into the past).
// Ratings are computed over the scoped game log, activity always over the
// full log.
func (b *Back) GetDashboard(requesterID util.UUIDAsBlob, scope string, index int) (Dashboard, error) {
	start := time.Now()
	defer func() { log.Printf("info: computed dashboard in %s", time.Since(start)) }()

	var (
		games []Game
		users map[util.UUIDAsBlob]User
	)

	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		if games, err = getGames(tx); err != nil {
			return err
		}

		users, err = getUsersMap(tx)
		return err
	}); err != nil {
		return Dashboard{}, err
	}

	return b.composeDashboard(requesterID, scope, index, games, users, time.Now())
}

func (b *Back) composeDashboard(
	requesterID util.UUIDAsBlob,
	scope string,
	index int,
	games []Game,
	users map[util.UUIDAsBlob]User,
	now time.Time,
) (Dashboard, error) {
	all := ratingGames(games)

	scoped := all
	if scope != "" && scope != "all" {
		frameStart, frameEnd := rating.TimeFrame(scope, index, now)
		scoped = rating.GamesInTimeFrame(all, frameStart, frameEnd)
	}

	k := b.config.EloKFactor()

	standings, err := rating.CalcEloFromGames(scoped, k)
	if err != nil {
		return Dashboard{}, err
	}

	history, err := rating.CalcEloHistory(scoped, k)
	if err != nil {
		return Dashboard{}, err
	}

	board := rating.ComposeBoard(
		standings,
		rating.LastPlayed(all),
		now,
		rating.DefaultActivityWindow,
		rating.DefaultDisplayCap,
		requesterID.String(),
	)

	names := displayNames(users)

	dashboard := Dashboard{
		Active:      leaderboardEntries(board.Active, names),
		Dormant:     leaderboardEntries(board.Dormant, names),
		History:     history,
		ChartNames:  chartNames(board.Active, names),
		Stats:       computePlayerStats(requesterID.String(), scoped, now),
		RecentGames: recentGameSummaries(requesterID, games, users),
		Scope:       scope,
		Index:       index,
	}

	if board.Requester != nil {
		entry := leaderboardEntry(*board.Requester, names)
		dashboard.Requester = &entry
	}

	return dashboard, nil
}

func displayNames(users map[util.UUIDAsBlob]User) map[string]string {
	ret := make(map[string]string, len(users))
	for id, user := range users {
		ret[id.String()] = user.DisplayName()
	}

	return ret
}

func leaderboardEntries(entries []rating.Entry, names map[string]string) []LeaderboardEntry {
	ret := make([]LeaderboardEntry, 0, len(entries))
	for _, entry := range entries {
		ret = append(ret, leaderboardEntry(entry, names))
	}

	return ret
}

func leaderboardEntry(entry rating.Entry, names map[string]string) LeaderboardEntry {
	name, ok := names[entry.UserID]
	if !ok {
		name = "Unknown"
	}

	return LeaderboardEntry{
		UserID:     entry.UserID,
		Name:       name,
		Elo:        entry.Elo,
		Rank:       entry.Rank,
		Active:     entry.Active,
		LastPlayed: entry.LastPlayed,
	}
}

func chartNames(active []rating.Entry, names map[string]string) map[string]string {
	ret := make(map[string]string, len(active))
	for _, entry := range active {
		if name, ok := names[entry.UserID]; ok {
			ret[entry.UserID] = name
		}
	}

	return ret
}

func recentGameSummaries(
	requesterID util.UUIDAsBlob,
	games []Game,
	users map[util.UUIDAsBlob]User,
) []GameSummary {
	mine := make([]Game, 0, len(games))
	for k := range games {
		if games[k].WinnerID == requesterID || games[k].LoserID == requesterID {
			mine = append(mine, games[k])
		}
	}

	sortGamesByDateDesc(mine)
	if len(mine) > recentGamesShown {
		mine = mine[:recentGamesShown]
	}

	ret := make([]GameSummary, 0, len(mine))
	for _, game := range mine {
		won := game.WinnerID == requesterID
		opponentID := game.WinnerID
		if won {
			opponentID = game.LoserID
		}

		name := "Unknown"
		if opponent, ok := users[opponentID]; ok {
			name = opponent.DisplayName()
		}

		summary := GameSummary{
			OpponentName: name,
			Won:          won,
		}
		if game.PlayedAt.Valid {
			summary.PlayedAt = game.PlayedAt.Time.Time()
		}

		ret = append(ret, summary)
	}

	return ret
}

// GetStandings returns the all-time standings, the raw output of the rating
// engine, for the JSON API.
func (b *Back) GetStandings() ([]rating.Standing, error) {
	var games []Game
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		games, err = getGames(tx)
		return err
	}); err != nil {
		return nil, err
	}

	return rating.CalcEloFromGames(ratingGames(games), b.config.EloKFactor())
}

// GetRatingHistory returns the all-time rating trajectory plus the display
// names of the players currently active, for the history API and the chart.
func (b *Back) GetRatingHistory() ([]rating.Snapshot, map[string]string, error) {
	var (
		games []Game
		users map[util.UUIDAsBlob]User
	)

	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		if games, err = getGames(tx); err != nil {
			return err
		}

		users, err = getUsersMap(tx)
		return err
	}); err != nil {
		return nil, nil, err
	}

	all := ratingGames(games)
	k := b.config.EloKFactor()

	standings, err := rating.CalcEloFromGames(all, k)
	if err != nil {
		return nil, nil, err
	}

	history, err := rating.CalcEloHistory(all, k)
	if err != nil {
		return nil, nil, err
	}

	board := rating.ComposeBoard(
		standings,
		rating.LastPlayed(all),
		time.Now(),
		rating.DefaultActivityWindow,
		0, // uncapped, the chart draws every active player
		"",
	)

	return history, chartNames(board.Active, displayNames(users)), nil
}

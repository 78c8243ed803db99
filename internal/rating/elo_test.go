package rating_test

import (
	"math"
	"testing"
	"time"

	"bankshot/internal/rating"
)

func date(day int) time.Time {
	return time.Date(2025, 3, day, 12, 0, 0, 0, time.UTC)
}

func TestCalcEloFromGamesRejectsBadKFactor(t *testing.T) {
	games := []rating.Game{{WinnerID: "a", LoserID: "b", PlayedAt: date(1)}}

	for _, k := range []float64{0, -10} {
		if _, err := rating.CalcEloFromGames(games, k); err == nil {
			t.Errorf("expected an error for k = %g", k)
		}
		if _, err := rating.CalcEloHistory(games, k); err == nil {
			t.Errorf("expected an error for k = %g (history)", k)
		}
	}
}

func TestCalcEloFromGamesEmptyLog(t *testing.T) {
	standings, err := rating.CalcEloFromGames(nil, rating.DefaultKFactor)
	if err != nil {
		t.Fatal(err)
	}
	if len(standings) != 0 {
		t.Errorf("expected no standings, got %v", standings)
	}

	history, err := rating.CalcEloHistory(nil, rating.DefaultKFactor)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 0 {
		t.Errorf("expected no history, got %v", history)
	}
}

func TestCalcEloFromGamesFirstGame(t *testing.T) {
	standings, err := rating.CalcEloFromGames([]rating.Game{
		{WinnerID: "a", LoserID: "b", PlayedAt: date(1)},
	}, rating.DefaultKFactor)
	if err != nil {
		t.Fatal(err)
	}

	expected := []rating.Standing{
		{UserID: "a", Elo: 1505.00},
		{UserID: "b", Elo: 1495.00},
	}
	assertStandings(t, expected, standings)
}

// Two evenly rated players trading one win each must end up with mirrored
// ratings on either side of the initial value.
func TestCalcEloFromGamesSymmetry(t *testing.T) {
	standings, err := rating.CalcEloFromGames([]rating.Game{
		{WinnerID: "a", LoserID: "b", PlayedAt: date(1)},
		{WinnerID: "b", LoserID: "a", PlayedAt: date(2)},
	}, rating.DefaultKFactor)
	if err != nil {
		t.Fatal(err)
	}

	// The rematch is between 1505 and 1495, the underdog win pays out more
	// than the 5 points the first game did.
	expected := []rating.Standing{
		{UserID: "b", Elo: 1500.14},
		{UserID: "a", Elo: 1499.86},
	}
	assertStandings(t, expected, standings)
}

func TestCalcEloFromGamesZeroSum(t *testing.T) {
	games := []rating.Game{
		{WinnerID: "a", LoserID: "b", PlayedAt: date(1)},
		{WinnerID: "a", LoserID: "c", PlayedAt: date(2)},
		{WinnerID: "b", LoserID: "c", PlayedAt: date(3)},
		{WinnerID: "c", LoserID: "a", PlayedAt: date(4)},
		{WinnerID: "a", LoserID: "b", PlayedAt: date(5)},
	}

	standings, err := rating.CalcEloFromGames(games, rating.DefaultKFactor)
	if err != nil {
		t.Fatal(err)
	}

	var total float64
	for _, v := range standings {
		total += v.Elo
	}

	// Every update moves the same amount in and out, the only drift allowed
	// is the per-player output rounding.
	if diff := math.Abs(total - 3*rating.InitialRating); diff > 0.03 {
		t.Errorf("rating mass not conserved, total = %f", total)
	}
}

// A non-transitive cycle of results makes the outcome depend on game order,
// so the same games with permuted dates must yield different standings.
func TestCalcEloFromGamesOrderSensitivity(t *testing.T) {
	forward, err := rating.CalcEloFromGames([]rating.Game{
		{WinnerID: "a", LoserID: "b", PlayedAt: date(1)},
		{WinnerID: "b", LoserID: "c", PlayedAt: date(2)},
		{WinnerID: "c", LoserID: "a", PlayedAt: date(3)},
	}, rating.DefaultKFactor)
	if err != nil {
		t.Fatal(err)
	}

	rotated, err := rating.CalcEloFromGames([]rating.Game{
		{WinnerID: "a", LoserID: "b", PlayedAt: date(2)},
		{WinnerID: "b", LoserID: "c", PlayedAt: date(3)},
		{WinnerID: "c", LoserID: "a", PlayedAt: date(1)},
	}, rating.DefaultKFactor)
	if err != nil {
		t.Fatal(err)
	}

	expected := []rating.Standing{
		{UserID: "c", Elo: 1500.07},
		{UserID: "b", Elo: 1500.07},
		{UserID: "a", Elo: 1499.86},
	}
	assertStandings(t, expected, forward)

	if standingsByID(forward)["a"] == standingsByID(rotated)["a"] {
		t.Error("permuting game dates should have changed the standings")
	}
}

func TestCalcEloFromGamesDeterminism(t *testing.T) {
	games := []rating.Game{
		{WinnerID: "a", LoserID: "b", PlayedAt: date(1)},
		{WinnerID: "b", LoserID: "c", PlayedAt: date(2)},
		{WinnerID: "c", LoserID: "a", PlayedAt: date(3)},
	}

	first, err := rating.CalcEloFromGames(games, rating.DefaultKFactor)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		again, err := rating.CalcEloFromGames(games, rating.DefaultKFactor)
		if err != nil {
			t.Fatal(err)
		}
		assertStandings(t, first, again)
	}
}

func TestCalcEloFromGamesSkipsSelfGames(t *testing.T) {
	standings, err := rating.CalcEloFromGames([]rating.Game{
		{WinnerID: "a", LoserID: "b", PlayedAt: date(1)},
		{WinnerID: "a", LoserID: "a", PlayedAt: date(2)},
	}, rating.DefaultKFactor)
	if err != nil {
		t.Fatal(err)
	}

	expected := []rating.Standing{
		{UserID: "a", Elo: 1505.00},
		{UserID: "b", Elo: 1495.00},
	}
	assertStandings(t, expected, standings)
}

// A player that never shows up in the log has no rating at all, 1500 is only
// handed out on first encounter.
func TestCalcEloFromGamesUnknownPlayerAbsent(t *testing.T) {
	standings, err := rating.CalcEloFromGames([]rating.Game{
		{WinnerID: "a", LoserID: "b", PlayedAt: date(1)},
	}, rating.DefaultKFactor)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := standingsByID(standings)["c"]; ok {
		t.Error("player c played no game and should have no standing")
	}
}

// Undated games sort as the epoch: they are processed before every dated
// game, in input order among themselves.
func TestCalcEloFromGamesUndatedGamesFirst(t *testing.T) {
	standings, err := rating.CalcEloFromGames([]rating.Game{
		{WinnerID: "b", LoserID: "a", PlayedAt: date(1)},
		{WinnerID: "a", LoserID: "b"}, // no date, processed first
	}, rating.DefaultKFactor)
	if err != nil {
		t.Fatal(err)
	}

	// Same trajectory as a beats b then b beats a: the undated game came
	// first despite appearing last in the input.
	expected := []rating.Standing{
		{UserID: "b", Elo: 1500.14},
		{UserID: "a", Elo: 1499.86},
	}
	assertStandings(t, expected, standings)
}

func TestCalcEloHistoryTrajectory(t *testing.T) {
	games := []rating.Game{
		{WinnerID: "a", LoserID: "b", PlayedAt: date(1)},
		{WinnerID: "c", LoserID: "a", PlayedAt: date(2)},
	}

	history, err := rating.CalcEloHistory(games, rating.DefaultKFactor)
	if err != nil {
		t.Fatal(err)
	}

	if len(history) != 3 {
		t.Fatalf("expected 3 snapshots for 2 valid games, got %d", len(history))
	}

	if !history[0].Timestamp.Equal(date(1)) {
		t.Errorf("initial snapshot should carry the first game date, got %s", history[0].Timestamp)
	}

	// Every snapshot knows the full roster, even before a player's first
	// game: c idles at 1500 until snapshot 2.
	for i, snapshot := range history {
		for _, id := range []string{"a", "b", "c"} {
			if _, ok := snapshot.Ratings[id]; !ok {
				t.Errorf("snapshot %d is missing player %s", i, id)
			}
		}
	}

	if history[0].Ratings["a"] != 1500 || history[0].Ratings["c"] != 1500 {
		t.Errorf("initial snapshot should be all 1500, got %v", history[0].Ratings)
	}
	if history[1].Ratings["a"] != 1505 || history[1].Ratings["c"] != 1500 {
		t.Errorf("unexpected snapshot after game 1: %v", history[1].Ratings)
	}
	if history[2].Ratings["c"] <= 1500 || history[2].Ratings["a"] >= 1505 {
		t.Errorf("unexpected snapshot after game 2: %v", history[2].Ratings)
	}
}

func TestCalcEloHistorySingleGame(t *testing.T) {
	history, err := rating.CalcEloHistory([]rating.Game{
		{WinnerID: "a", LoserID: "b", PlayedAt: date(1)},
	}, rating.DefaultKFactor)
	if err != nil {
		t.Fatal(err)
	}

	if len(history) != 2 {
		t.Fatalf("expected initial + post-game snapshots, got %d", len(history))
	}
}

// A skipped game advances nothing: no snapshot, no rating change.
func TestCalcEloHistorySkipsSelfGames(t *testing.T) {
	history, err := rating.CalcEloHistory([]rating.Game{
		{WinnerID: "a", LoserID: "a", PlayedAt: date(1)},
		{WinnerID: "a", LoserID: "b", PlayedAt: date(2)},
	}, rating.DefaultKFactor)
	if err != nil {
		t.Fatal(err)
	}

	if len(history) != 2 {
		t.Fatalf("expected 2 snapshots (initial + 1 valid game), got %d", len(history))
	}
	if history[1].Ratings["a"] != 1505 {
		t.Errorf("self-game leaked into the trajectory: %v", history[1].Ratings)
	}
}

// Snapshots must be independent copies, a later game cannot rewrite an
// earlier point of the trajectory.
func TestCalcEloHistorySnapshotsAreCopies(t *testing.T) {
	history, err := rating.CalcEloHistory([]rating.Game{
		{WinnerID: "a", LoserID: "b", PlayedAt: date(1)},
		{WinnerID: "a", LoserID: "b", PlayedAt: date(2)},
	}, rating.DefaultKFactor)
	if err != nil {
		t.Fatal(err)
	}

	if history[1].Ratings["a"] == history[2].Ratings["a"] {
		t.Error("snapshots share state, the trajectory is flat")
	}
}

func assertStandings(t *testing.T, expected, actual []rating.Standing) {
	t.Helper()

	if len(expected) != len(actual) {
		t.Fatalf("expected %d standings, got %d", len(expected), len(actual))
	}

	for i := range expected {
		if expected[i] != actual[i] {
			t.Errorf("standing %d: expected %+v, got %+v", i, expected[i], actual[i])
		}
	}
}

func standingsByID(standings []rating.Standing) map[string]float64 {
	ret := make(map[string]float64, len(standings))
	for _, v := range standings {
		ret[v.UserID] = v.Elo
	}

	return ret
}

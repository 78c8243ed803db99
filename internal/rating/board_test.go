package rating_test

import (
	"testing"
	"time"

	"bankshot/internal/rating"
)

var boardNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestComposeBoardActivityBoundary(t *testing.T) {
	standings := []rating.Standing{
		{UserID: "edge", Elo: 1510},
		{UserID: "late", Elo: 1505},
		{UserID: "fresh", Elo: 1500},
	}
	lastPlayed := map[string]time.Time{
		// Exactly 21 days ago: still active, the boundary is inclusive.
		"edge": boardNow.Add(-rating.DefaultActivityWindow),
		// One second past the window: dormant.
		"late":  boardNow.Add(-rating.DefaultActivityWindow - time.Second),
		"fresh": boardNow.Add(-time.Hour),
	}

	board := rating.ComposeBoard(
		standings, lastPlayed, boardNow,
		rating.DefaultActivityWindow, rating.DefaultDisplayCap, "",
	)

	if len(board.Active) != 2 {
		t.Fatalf("expected 2 active players, got %+v", board.Active)
	}
	if board.Active[0].UserID != "edge" || board.Active[0].Rank != 1 {
		t.Errorf("expected edge ranked 1st, got %+v", board.Active[0])
	}
	if board.Active[1].UserID != "fresh" || board.Active[1].Rank != 2 {
		t.Errorf("expected fresh ranked 2nd, got %+v", board.Active[1])
	}

	if len(board.Dormant) != 1 || board.Dormant[0].UserID != "late" {
		t.Fatalf("expected late dormant, got %+v", board.Dormant)
	}
	if board.Dormant[0].Rank != 0 {
		t.Errorf("dormant players must not consume a rank, got %d", board.Dormant[0].Rank)
	}
}

// A player with a standing but no discoverable game counts as dormant.
func TestComposeBoardMissingLastPlayed(t *testing.T) {
	board := rating.ComposeBoard(
		[]rating.Standing{{UserID: "a", Elo: 1500}},
		map[string]time.Time{}, boardNow,
		rating.DefaultActivityWindow, rating.DefaultDisplayCap, "a",
	)

	if len(board.Active) != 0 || len(board.Dormant) != 1 {
		t.Errorf("expected a dormant-only board, got %+v", board)
	}
	if board.Requester != nil {
		t.Errorf("dormant requester must not be surfaced below the cap: %+v", board.Requester)
	}
}

func TestComposeBoardSelfVisibilityBelowCap(t *testing.T) {
	var standings []rating.Standing
	lastPlayed := make(map[string]time.Time, 15)
	for i := 0; i < 15; i++ {
		id := string(rune('a' + i))
		standings = append(standings, rating.Standing{UserID: id, Elo: 1600 - float64(i)})
		lastPlayed[id] = boardNow.Add(-time.Hour)
	}

	board := rating.ComposeBoard(
		standings, lastPlayed, boardNow,
		rating.DefaultActivityWindow, 10, "o", // o sits at rank 15
	)

	if len(board.Active) != 10 {
		t.Fatalf("expected the active list capped at 10, got %d", len(board.Active))
	}
	if board.Requester == nil {
		t.Fatal("requester past the cap must still be surfaced")
	}
	if board.Requester.UserID != "o" || board.Requester.Rank != 15 {
		t.Errorf("expected o at rank 15, got %+v", board.Requester)
	}
	if !board.Requester.Active {
		t.Error("the surfaced requester is active by construction")
	}
}

func TestComposeBoardRequesterWithinCap(t *testing.T) {
	standings := []rating.Standing{
		{UserID: "a", Elo: 1510},
		{UserID: "b", Elo: 1490},
	}
	lastPlayed := map[string]time.Time{
		"a": boardNow.Add(-time.Hour),
		"b": boardNow.Add(-time.Hour),
	}

	board := rating.ComposeBoard(
		standings, lastPlayed, boardNow,
		rating.DefaultActivityWindow, 10, "b",
	)

	if board.Requester != nil {
		t.Errorf("requester inside the cap needs no extra entry: %+v", board.Requester)
	}
}

// Dormant players are never truncated, whatever their count.
func TestComposeBoardDormantListIsComplete(t *testing.T) {
	var standings []rating.Standing
	for i := 0; i < 25; i++ {
		standings = append(standings, rating.Standing{
			UserID: string(rune('a' + i)),
			Elo:    1550 - float64(i),
		})
	}

	board := rating.ComposeBoard(
		standings, map[string]time.Time{}, boardNow,
		rating.DefaultActivityWindow, 10, "",
	)

	if len(board.Dormant) != 25 {
		t.Fatalf("expected every dormant player listed, got %d", len(board.Dormant))
	}

	// Sorted by descending rating, standings order preserved.
	for i := 1; i < len(board.Dormant); i++ {
		if board.Dormant[i].Elo > board.Dormant[i-1].Elo {
			t.Fatalf("dormant list out of order at %d: %+v", i, board.Dormant)
		}
	}
}

// A requester that never played has no standing and appears nowhere; that is
// a valid new-player state, not an error.
func TestComposeBoardUnknownRequester(t *testing.T) {
	board := rating.ComposeBoard(
		[]rating.Standing{{UserID: "a", Elo: 1500}},
		map[string]time.Time{"a": boardNow}, boardNow,
		rating.DefaultActivityWindow, 10, "nobody",
	)

	if board.Requester != nil {
		t.Errorf("unknown requester should be absent, got %+v", board.Requester)
	}

	for _, entry := range append(board.Active, board.Dormant...) {
		if entry.UserID == "nobody" {
			t.Error("unknown requester leaked into the board")
		}
	}
}

func TestLastPlayed(t *testing.T) {
	games := []rating.Game{
		{WinnerID: "a", LoserID: "b", PlayedAt: date(1)},
		{WinnerID: "b", LoserID: "a", PlayedAt: date(5)},
		{WinnerID: "c", LoserID: "a", PlayedAt: date(3)},
		{WinnerID: "d", LoserID: "e"}, // undated, counts as the epoch
	}

	latest := rating.LastPlayed(games)

	expected := map[string]time.Time{
		"a": date(5),
		"b": date(5),
		"c": date(3),
		"d": time.Unix(0, 0).UTC(),
		"e": time.Unix(0, 0).UTC(),
	}

	for id, at := range expected {
		if !latest[id].Equal(at) {
			t.Errorf("player %s: expected last played %s, got %s", id, at, latest[id])
		}
	}
}

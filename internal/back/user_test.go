package back // nolint:testpackage

import (
	"errors"
	"io/ioutil"
	"testing"
	"time"

	"bankshot/internal/config"
	"bankshot/internal/util"

	"github.com/jmoiron/sqlx"
)

func newTestBack(t *testing.T) *Back {
	t.Helper()

	b, err := New("sqlite3", ":memory:", &config.Config{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { b.db.Close() })

	schema, err := ioutil.ReadFile("../../migrations/0001_initial.up.sql")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := b.db.Exec(string(schema)); err != nil {
		t.Fatal(err)
	}

	return b
}

func insertFixtures(t *testing.T, b *Back, users []User, games []Game) {
	t.Helper()

	if err := b.transaction(func(tx *sqlx.Tx) error {
		for k := range users {
			if err := users[k].insert(tx); err != nil {
				return err
			}
		}

		for k := range games {
			if err := games[k].insert(tx); err != nil {
				return err
			}
		}

		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestClaimGhostAbsorbsGames(t *testing.T) {
	b := newTestBack(t)

	member := NewUser("amy@example.com")
	other := NewUser("jo@example.com")
	ghost := NewUser("legacy-1@ypoolghost.com")
	ghost.Ghost = true

	now := time.Now()
	insertFixtures(t, b, []User{member, other, ghost}, []Game{
		NewGame(ghost.ID, other.ID, now.Add(-72*time.Hour)),
		NewGame(ghost.ID, other.ID, now.Add(-48*time.Hour)),
		NewGame(other.ID, ghost.ID, now.Add(-24*time.Hour)),
	})

	if err := b.ClaimGhost(member.ID, ghost.ID); err != nil {
		t.Fatal(err)
	}

	claimed, err := b.GetClaimedGhost(member.ID)
	if err != nil {
		t.Fatal(err)
	}
	if claimed.ID != ghost.ID {
		t.Errorf("claimed ghost ID = %s, want %s", claimed.ID, ghost.ID)
	}

	var all []Game
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		all, err = getGames(tx)
		return err
	}); err != nil {
		t.Fatal(err)
	}

	if len(all) != 3 {
		t.Fatalf("expected 3 games, got %d", len(all))
	}
	for _, game := range all {
		if game.WinnerID == ghost.ID || game.LoserID == ghost.ID {
			t.Errorf("game %s still references the ghost", game.ID)
		}
	}

	dashboard, err := b.GetDashboard(member.ID, "all", 0)
	if err != nil {
		t.Fatal(err)
	}

	if dashboard.Stats.Wins != 2 || dashboard.Stats.Losses != 1 {
		t.Errorf(
			"stats after claim = %dW/%dL, want 2W/1L",
			dashboard.Stats.Wins, dashboard.Stats.Losses,
		)
	}

	for _, entry := range append(dashboard.Active, dashboard.Dormant...) {
		if entry.UserID == ghost.ID.String() {
			t.Error("claimed ghost still has a leaderboard row")
		}
	}
}

func TestClaimGhostRejections(t *testing.T) {
	b := newTestBack(t)

	member := NewUser("amy@example.com")
	other := NewUser("jo@example.com")
	ghost := NewUser("legacy-1@ypoolghost.com")
	ghost.Ghost = true
	ghost2 := NewUser("legacy-2@ypoolghost.com")
	ghost2.Ghost = true

	insertFixtures(t, b, []User{member, other, ghost, ghost2}, nil)

	assertPublicErr := func(t *testing.T, err error) {
		t.Helper()
		var pub util.ErrPublic
		if !errors.As(err, &pub) {
			t.Errorf("expected a public error, got %v", err)
		}
	}

	assertPublicErr(t, b.ClaimGhost(member.ID, other.ID)) // not a ghost

	if err := b.ClaimGhost(member.ID, ghost.ID); err != nil {
		t.Fatal(err)
	}

	assertPublicErr(t, b.ClaimGhost(other.ID, ghost.ID))   // already claimed
	assertPublicErr(t, b.ClaimGhost(member.ID, ghost2.ID)) // one per member
}

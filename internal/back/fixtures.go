package back

import (
	"time"

	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// LoadFixtures fills the database with a small office worth of users and a
// couple of weeks of games, for development only.
func (b *Back) LoadFixtures() error {
	names := []string{"meg", "jo", "beth", "amy", "laurie"}

	users := make([]User, 0, len(names))
	for _, name := range names {
		user := NewUser(name + "@example.com")
		user.Name = null.StringFrom(name)
		users = append(users, user)
	}

	// A ghost to exercise the claim flow.
	ghost := NewUser("legacy-7@ypoolghost.com")
	ghost.Name = null.StringFrom("the intern")
	ghost.Ghost = true
	ghost.LegacyID = null.StringFrom("legacy-7")
	users = append(users, ghost)

	games := make([]Game, 0, 16)
	day := 24 * time.Hour
	for i := 0; i < 14; i++ {
		winner := users[i%len(names)]
		loser := users[(i+1+i/len(names))%len(names)]
		if winner.ID == loser.ID {
			continue
		}

		games = append(games, NewGame(
			winner.ID, loser.ID,
			time.Now().Add(-time.Duration(14-i)*day),
		))
	}

	// One dated far enough back to show up as dormant.
	games = append(games, NewGame(ghost.ID, users[0].ID, time.Now().Add(-60*day)))

	return b.transaction(func(tx *sqlx.Tx) error {
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
	})
}

package back

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"bankshot/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// legacyExport is the shape of the pre-web data dump: two maps keyed by the
// old system's free-form identifiers.
type legacyExport struct {
	Users map[string]struct {
		Name string `json:"name"`
	} `json:"users"`

	Matches map[string]struct {
		Winner   string `json:"winner"`
		Loser    string `json:"loser"`
		Datetime string `json:"datetime"`
	} `json:"matches"`
}

// ImportReport tallies what an import run touched.
type ImportReport struct {
	CreatedUsers int `json:"createdUsers"`
	UpdatedUsers int `json:"updatedUsers"`
	CreatedGames int `json:"createdGames"`
	UpdatedGames int `json:"updatedGames"`
	SkippedGames int `json:"skippedGames"`
}

// legacyGameFallbackDate stands in for legacy games whose date was lost.
var legacyGameFallbackDate = time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)

// ImportLegacyExport upserts users and games from a legacy JSON dump.
// Imported users are ghosts until claimed; re-importing a claimed ghost
// resets the claim since the dump is the authority on who the ghost is. The
// import is idempotent, rows are matched on their legacy identifier.
func (b *Back) ImportLegacyExport(r io.Reader) (report ImportReport, _ error) {
	var export legacyExport
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return ImportReport{}, fmt.Errorf("unable to decode legacy export: %w", err)
	}

	return report, b.transaction(func(tx *sqlx.Tx) error {
		for legacyID, user := range export.Users {
			created, err := importLegacyUser(tx, legacyID, user.Name)
			if err != nil {
				return fmt.Errorf("unable to import user %s: %w", legacyID, err)
			}

			if created {
				report.CreatedUsers++
			} else {
				report.UpdatedUsers++
			}
		}

		for legacyID, match := range export.Matches {
			created, err := importLegacyGame(tx, legacyID, match.Winner, match.Loser, match.Datetime)
			if errors.Is(err, sql.ErrNoRows) {
				log.Printf("warning: skipping game %s, unknown participant", legacyID)
				report.SkippedGames++
				continue
			}
			if err != nil {
				return fmt.Errorf("unable to import game %s: %w", legacyID, err)
			}

			if created {
				report.CreatedGames++
			} else {
				report.UpdatedGames++
			}
		}

		return nil
	})
}

func importLegacyUser(tx *sqlx.Tx, legacyID, name string) (created bool, _ error) {
	email := legacyID + "@ypoolghost.com"

	user, err := getUserByLegacyID(tx, legacyID)
	if errors.Is(err, sql.ErrNoRows) {
		user = NewUser(email)
		user.ID = legacyUUID("user", legacyID)
		user.Name = util.NullString(name)
		user.LegacyID = util.NullString(legacyID)
		user.Ghost = true

		return true, user.insert(tx)
	}
	if err != nil {
		return false, err
	}

	user.Email = email
	user.Name = util.NullString(name)
	user.Ghost = true
	user.ClaimedByID = util.NullUUIDAsBlob{}

	return false, user.update(tx)
}

func importLegacyGame(tx *sqlx.Tx, legacyID, winner, loser, datetime string) (created bool, _ error) {
	winnerUser, err := getUserByLegacyID(tx, winner)
	if err != nil {
		return false, err
	}

	loserUser, err := getUserByLegacyID(tx, loser)
	if err != nil {
		return false, err
	}

	playedAt := legacyGameFallbackDate
	if datetime != "" {
		parsed, err := time.Parse(time.RFC3339, datetime)
		if err != nil {
			log.Printf("warning: game %s has a bad date %q, using the fallback", legacyID, datetime)
		} else {
			playedAt = parsed
		}
	}

	game, err := getGameByLegacyID(tx, legacyID)
	if errors.Is(err, sql.ErrNoRows) {
		game = NewGame(winnerUser.ID, loserUser.ID, playedAt)
		game.ID = legacyUUID("game", legacyID)
		game.LegacyID = util.NullString(legacyID)

		return true, game.insert(tx)
	}
	if err != nil {
		return false, err
	}

	game.WinnerID = winnerUser.ID
	game.LoserID = loserUser.ID
	game.PlayedAt = util.NewNullTimeAsTimestamp(playedAt)

	return false, game.update(tx)
}

// legacyUUID derives a stable UUID from a legacy identifier so repeated
// imports produce the same rows.
func legacyUUID(kind, legacyID string) util.UUIDAsBlob {
	return util.UUIDAsBlob(uuid.NewSHA1(uuid.NameSpaceOID, []byte("bankshot:"+kind+":"+legacyID)))
}

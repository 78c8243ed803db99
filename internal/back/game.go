package back

import (
	"time"

	"bankshot/internal/rating"
	"bankshot/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// A Game is one recorded pool match between two users. PlayedAt is NULL for
// legacy games whose date was lost, the rating engine orders those first.
type Game struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp

	WinnerID util.UUIDAsBlob
	LoserID  util.UUIDAsBlob

	// IssuerID is who typed the result in, not necessarily a participant of
	// record once ghosts are involved.
	IssuerID util.NullUUIDAsBlob

	LegacyID null.String
	PlayedAt util.NullTimeAsTimestamp
}

func NewGame(winnerID, loserID util.UUIDAsBlob, playedAt time.Time) Game {
	return Game{
		ID:        util.NewUUIDAsBlob(),
		CreatedAt: util.TimeAsTimestamp(time.Now()),
		WinnerID:  winnerID,
		LoserID:   loserID,
		PlayedAt:  util.NewNullTimeAsTimestamp(playedAt),
	}
}

func (g *Game) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Game").SetMap(squirrel.Eq{
		"ID":        g.ID,
		"CreatedAt": g.CreatedAt,
		"WinnerID":  g.WinnerID,
		"LoserID":   g.LoserID,
		"IssuerID":  g.IssuerID,
		"LegacyID":  g.LegacyID,
		"PlayedAt":  g.PlayedAt,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (g *Game) update(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("Game").SetMap(squirrel.Eq{
		"WinnerID": g.WinnerID,
		"LoserID":  g.LoserID,
		"IssuerID": g.IssuerID,
		"PlayedAt": g.PlayedAt,
	}).Where("Game.ID = ?", g.ID).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func getGames(tx *sqlx.Tx) ([]Game, error) {
	var ret []Game
	query := `SELECT * FROM Game ORDER BY Game.PlayedAt ASC`
	if err := tx.Select(&ret, query); err != nil {
		return nil, err
	}

	return ret, nil
}

func getGameByLegacyID(tx *sqlx.Tx, legacyID string) (Game, error) {
	var ret Game
	query := `SELECT * FROM Game WHERE Game.LegacyID = ? LIMIT 1`
	if err := tx.Get(&ret, query, legacyID); err != nil {
		return Game{}, err
	}

	return ret, nil
}

func getRecentGames(tx *sqlx.Tx, limit int) ([]Game, error) {
	var ret []Game
	query := `SELECT * FROM Game ORDER BY Game.PlayedAt DESC LIMIT ?`
	if err := tx.Select(&ret, query, limit); err != nil {
		return nil, err
	}

	return ret, nil
}

// RecordGame stores a match outcome reported by issuer against opponent.
func (b *Back) RecordGame(
	issuerID, opponentID util.UUIDAsBlob,
	issuerWon bool,
	playedAt time.Time,
) (Game, error) {
	if issuerID == opponentID {
		return Game{}, util.ErrPublic("you can't play against yourself")
	}

	winnerID, loserID := issuerID, opponentID
	if !issuerWon {
		winnerID, loserID = opponentID, issuerID
	}

	game := NewGame(winnerID, loserID, playedAt)
	game.IssuerID = util.NullUUIDAsBlob{UUID: issuerID, Valid: true}

	if err := b.transaction(func(tx *sqlx.Tx) error {
		if _, err := getUserByID(tx, opponentID); err != nil {
			return err
		}

		return game.insert(tx)
	}); err != nil {
		return Game{}, err
	}

	return game, nil
}

func (b *Back) GetRecentGames(limit int) (games []Game, _ error) {
	return games, b.transaction(func(tx *sqlx.Tx) (err error) {
		games, err = getRecentGames(tx, limit)
		return err
	})
}

// ratingGames converts stored games to the rating engine's input type.
func ratingGames(games []Game) []rating.Game {
	ret := make([]rating.Game, 0, len(games))
	for k := range games {
		ret = append(ret, ratingGame(games[k]))
	}

	return ret
}

func ratingGame(g Game) rating.Game {
	ret := rating.Game{
		WinnerID: g.WinnerID.String(),
		LoserID:  g.LoserID.String(),
	}
	if g.PlayedAt.Valid {
		ret.PlayedAt = g.PlayedAt.Time.Time()
	}

	return ret
}

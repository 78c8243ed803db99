package back

import (
	"strings"
	"time"

	"bankshot/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// An User is a member of the pool group. Ghost users come from the legacy
// data import and have no login of their own until someone claims them.
type User struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp

	Email    string
	Name     null.String
	Gamertag null.String

	// MicrosoftID ties the user to its OAuth2 identity, ghosts have none.
	MicrosoftID null.String

	// LegacyID is the identifier the user had in the pre-web data dump, it
	// keeps the import idempotent.
	LegacyID null.String

	Ghost       bool
	ClaimedByID util.NullUUIDAsBlob
}

func NewUser(email string) User {
	return User{
		ID:        util.NewUUIDAsBlob(),
		CreatedAt: util.TimeAsTimestamp(time.Now()),
		Email:     email,
	}
}

// DisplayName is what every page shows for the user: the gamertag if set,
// the provider name otherwise, the email local part as a last resort.
func (u User) DisplayName() string {
	if u.Gamertag.Valid && u.Gamertag.String != "" {
		return u.Gamertag.String
	}

	if u.Name.Valid && u.Name.String != "" {
		return u.Name.String
	}

	return strings.SplitN(u.Email, "@", 2)[0]
}

func (u *User) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("User").SetMap(squirrel.Eq{
		"ID":          u.ID,
		"CreatedAt":   u.CreatedAt,
		"Email":       u.Email,
		"Name":        u.Name,
		"Gamertag":    u.Gamertag,
		"MicrosoftID": u.MicrosoftID,
		"LegacyID":    u.LegacyID,
		"Ghost":       u.Ghost,
		"ClaimedByID": u.ClaimedByID,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (u *User) update(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("User").SetMap(squirrel.Eq{
		"Email":       u.Email,
		"Name":        u.Name,
		"Gamertag":    u.Gamertag,
		"MicrosoftID": u.MicrosoftID,
		"LegacyID":    u.LegacyID,
		"Ghost":       u.Ghost,
		"ClaimedByID": u.ClaimedByID,
	}).Where("User.ID = ?", u.ID).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func getUserByID(tx *sqlx.Tx, id util.UUIDAsBlob) (User, error) {
	var ret User
	query := `SELECT * FROM User WHERE User.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return User{}, err
	}

	return ret, nil
}

func getUserByMicrosoftID(tx *sqlx.Tx, microsoftID string) (User, error) {
	var ret User
	query := `SELECT * FROM User WHERE User.MicrosoftID = ? LIMIT 1`
	if err := tx.Get(&ret, query, microsoftID); err != nil {
		return User{}, err
	}

	return ret, nil
}

func getUserByLegacyID(tx *sqlx.Tx, legacyID string) (User, error) {
	var ret User
	query := `SELECT * FROM User WHERE User.LegacyID = ? LIMIT 1`
	if err := tx.Get(&ret, query, legacyID); err != nil {
		return User{}, err
	}

	return ret, nil
}

func getUsers(tx *sqlx.Tx) ([]User, error) {
	var ret []User
	query := `SELECT * FROM User ORDER BY User.CreatedAt ASC`
	if err := tx.Select(&ret, query); err != nil {
		return nil, err
	}

	return ret, nil
}

func getUsersMap(tx *sqlx.Tx) (map[util.UUIDAsBlob]User, error) {
	users, err := getUsers(tx)
	if err != nil {
		return nil, err
	}

	ret := make(map[util.UUIDAsBlob]User, len(users))
	for k := range users {
		ret[users[k].ID] = users[k]
	}

	return ret, nil
}

func (b *Back) GetUserByID(id util.UUIDAsBlob) (user User, _ error) {
	return user, b.transaction(func(tx *sqlx.Tx) (err error) {
		user, err = getUserByID(tx, id)
		return err
	})
}

func (b *Back) GetUsers() (users []User, _ error) {
	return users, b.transaction(func(tx *sqlx.Tx) (err error) {
		users, err = getUsers(tx)
		return err
	})
}

// RegisterMicrosoftUser returns the user matching an OAuth2 identity and
// creates it on first login.
func (b *Back) RegisterMicrosoftUser(microsoftID, email, name string) (user User, _ error) {
	return user, b.transaction(func(tx *sqlx.Tx) (err error) {
		user, err = getUserByMicrosoftID(tx, microsoftID)
		if err == nil {
			return nil
		}

		user = NewUser(email)
		user.MicrosoftID = util.NullString(microsoftID)
		user.Name = util.NullString(name)

		return user.insert(tx)
	})
}

func (b *Back) UpdateUserGamertag(id util.UUIDAsBlob, gamertag string) error {
	if len(gamertag) > 32 {
		return util.ErrPublic("your gamer tag must be 32 characters or less")
	}

	return b.transaction(func(tx *sqlx.Tx) error {
		user, err := getUserByID(tx, id)
		if err != nil {
			return err
		}

		user.Gamertag = util.NullString(gamertag)

		return user.update(tx)
	})
}

func (b *Back) GetUnclaimedGhosts() (ghosts []User, _ error) {
	return ghosts, b.transaction(func(tx *sqlx.Tx) (err error) {
		query := `SELECT * FROM User WHERE User.Ghost = 1 AND User.ClaimedByID IS NULL ORDER BY User.Name ASC`
		return tx.Select(&ghosts, query)
	})
}

// GetClaimedGhost returns the ghost user a member claimed, if any.
func (b *Back) GetClaimedGhost(claimerID util.UUIDAsBlob) (ghost User, _ error) {
	return ghost, b.transaction(func(tx *sqlx.Tx) (err error) {
		query := `SELECT * FROM User WHERE User.ClaimedByID = ? LIMIT 1`
		return tx.Get(&ghost, query, claimerID)
	})
}

// ClaimGhost ties a ghost user to a member so the ghost's game history gets
// a face. One ghost per member, first come first served.
func (b *Back) ClaimGhost(claimerID, ghostID util.UUIDAsBlob) error {
	return b.transaction(func(tx *sqlx.Tx) error {
		ghost, err := getUserByID(tx, ghostID)
		if err != nil {
			return err
		}

		if !ghost.Ghost {
			return util.ErrPublic("this user is not a ghost")
		}
		if ghost.ClaimedByID.Valid {
			return util.ErrPublic("this ghost has already been claimed")
		}

		var count int
		if err := tx.Get(
			&count,
			`SELECT COUNT(*) FROM User WHERE User.ClaimedByID = ?`,
			claimerID,
		); err != nil {
			return err
		}
		if count > 0 {
			return util.ErrPublic("you have already claimed a ghost")
		}

		ghost.ClaimedByID = util.NullUUIDAsBlob{UUID: claimerID, Valid: true}
		if err := ghost.update(tx); err != nil {
			return err
		}

		return reassignGames(tx, ghostID, claimerID)
	})
}

// reassignGames moves every game a user took part in to another user. After
// a claim the rating engine and stats only ever see the new owner, the ghost
// drops off the leaderboard entirely.
func reassignGames(tx *sqlx.Tx, from, to util.UUIDAsBlob) error {
	for _, column := range []string{"WinnerID", "LoserID", "IssuerID"} {
		query, args, err := squirrel.Update("Game").
			Set(column, to).
			Where(squirrel.Eq{column: from}).
			ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(query, args...); err != nil {
			return err
		}
	}

	return nil
}

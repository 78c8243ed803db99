package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"bankshot/internal/util"

	"github.com/google/uuid"
)

// doAction dispatches every authenticated HTML form in the app. Handlers
// redirect back to the page given in the Redirect field when done, public
// errors are surfaced on that page through the error query parameter.
func (s *Server) doAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.error(w, r, err, http.StatusBadRequest)
		return
	}

	user := userFromRequest(r)
	if user == nil {
		s.error(w, r, fmt.Errorf("not authenticated"), http.StatusForbidden)
		return
	}

	var err error
	switch r.PostForm.Get("Action") {
	case "set-gamertag":
		err = s.back.UpdateUserGamertag(user.ID, r.PostForm.Get("Gamertag"))
	case "claim-ghost":
		var ghostID util.UUIDAsBlob
		if ghostID, err = parseFormUUID(r, "GhostID"); err == nil {
			err = s.back.ClaimGhost(user.ID, ghostID)
		}
	case "record-game":
		err = s.recordGameAction(r, user.ID)
	default:
		s.error(w, r, fmt.Errorf("unknown action: %s", r.PostForm.Get("Action")), http.StatusBadRequest)
		return
	}

	redirect := r.PostForm.Get("Redirect")
	if redirect == "" {
		redirect = "/dashboard"
	}

	if err != nil {
		var pub util.ErrPublic
		if errors.As(err, &pub) {
			http.Redirect(w, r, redirect+"?error="+url.QueryEscape(string(pub)), http.StatusFound)
			return
		}

		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, redirect, http.StatusFound)
}

func (s *Server) recordGameAction(r *http.Request, issuerID util.UUIDAsBlob) error {
	opponentID, err := parseFormUUID(r, "OpponentID")
	if err != nil {
		return err
	}

	playedAt := time.Now()
	if v := r.PostForm.Get("PlayedAt"); v != "" {
		playedAt, err = time.Parse("2006-01-02T15:04", v)
		if err != nil {
			return util.ErrPublic("the game date is not valid")
		}
	}

	_, err = s.back.RecordGame(
		issuerID, opponentID,
		r.PostForm.Get("Outcome") == "won",
		playedAt,
	)

	return err
}

func parseFormUUID(r *http.Request, field string) (util.UUIDAsBlob, error) {
	id, err := uuid.Parse(r.PostForm.Get(field))
	if err != nil {
		return util.UUIDAsBlob{}, util.ErrPublic(fmt.Sprintf("invalid %s field", field))
	}

	return util.UUIDAsBlob(id), nil
}

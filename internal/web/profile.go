package web

import (
	"database/sql"
	"errors"
	"net/http"

	"bankshot/internal/back"
	"bankshot/internal/util"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

// profile serves the account page: gamertag editor and ghost claiming.
func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	user := userFromRequest(r)

	var claimed *back.User
	ghost, err := s.back.GetClaimedGhost(user.ID)
	switch {
	case err == nil:
		claimed = &ghost
	case errors.Is(err, sql.ErrNoRows):
		// nothing claimed yet
	default:
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	var ghosts []back.User
	if claimed == nil {
		if ghosts, err = s.back.GetUnclaimedGhosts(); err != nil {
			s.error(w, r, err, http.StatusInternalServerError)
			return
		}
	}

	s.response(w, r, http.StatusOK, "profile.html", struct {
		User         *back.User
		ClaimedGhost *back.User
		Ghosts       []back.User
	}{user, claimed, ghosts})
}

// userProfile serves the public view of another player, linked from every
// leaderboard name.
func (s *Server) userProfile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		s.error(w, r, nil, http.StatusNotFound)
		return
	}

	user, err := s.back.GetUserByID(util.UUIDAsBlob(id))
	if errors.Is(err, sql.ErrNoRows) {
		s.error(w, r, nil, http.StatusNotFound)
		return
	}
	if err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	stats, err := s.back.GetUserStats(user.ID)
	if err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	var claimedBy *back.User
	if user.Ghost && user.ClaimedByID.Valid {
		owner, err := s.back.GetUserByID(user.ClaimedByID.UUID)
		if err != nil {
			s.error(w, r, err, http.StatusInternalServerError)
			return
		}
		claimedBy = &owner
	}

	s.response(w, r, http.StatusOK, "player.html", struct {
		User      back.User
		Stats     back.PlayerStats
		ClaimedBy *back.User
	}{user, stats, claimedBy})
}

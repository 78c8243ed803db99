package web

import (
	"net/http"
	"sort"
	"strings"

	"bankshot/internal/back"
)

// newGame serves the game report form with its opponent picker.
func (s *Server) newGame(w http.ResponseWriter, r *http.Request) {
	user := userFromRequest(r)

	users, err := s.back.GetUsers()
	if err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	opponents := make([]back.User, 0, len(users))
	for k := range users {
		if users[k].ID == user.ID {
			continue
		}

		opponents = append(opponents, users[k])
	}

	sort.Slice(opponents, func(i, j int) bool {
		return strings.ToLower(opponents[i].DisplayName()) <
			strings.ToLower(opponents[j].DisplayName())
	})

	s.response(w, r, http.StatusOK, "newgame.html", struct {
		Opponents []back.User
	}{opponents})
}

package web

import (
	"net/http"
	"strconv"

	"bankshot/internal/back"
)

// dashboard serves the main page: the partitioned leaderboard, the
// requester's stats and recent games, and the rating history chart.
func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	user := userFromRequest(r)

	scope := r.URL.Query().Get("scope")
	index, _ := strconv.Atoi(r.URL.Query().Get("index"))
	if index < 0 {
		index = 0
	}

	dashboard, err := s.back.GetDashboard(user.ID, scope, index)
	if err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	s.response(w, r, http.StatusOK, "dashboard.html", struct {
		back.Dashboard

		// PrevIndex pages one period further into the past; NextIndex is -1
		// on the current period, where there is nothing newer to show.
		PrevIndex int
		NextIndex int
	}{dashboard, index + 1, index - 1})
}

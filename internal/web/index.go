package web

import (
	"net/http"

	"bankshot/internal/back"
	"bankshot/internal/util"
)

// index serves the landing page, a login prompt with a teaser of the current
// podium. Logged-in visitors go straight to their dashboard.
func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.error(w, r, nil, http.StatusNotFound)
		return
	}

	if userFromRequest(r) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusTemporaryRedirect)
		return
	}

	top3, err := s.getTop3()
	if err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	s.response(w, r, http.StatusOK, "index.html", struct {
		Top3 []back.LeaderboardEntry
	}{top3})
}

func (s *Server) getTop3() ([]back.LeaderboardEntry, error) {
	dashboard, err := s.back.GetDashboard(util.UUIDAsBlob{}, "all", 0)
	if err != nil {
		return nil, err
	}

	top3 := dashboard.Active
	if len(top3) > 3 {
		top3 = top3[:3]
	}

	return top3, nil
}

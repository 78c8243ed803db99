package web

import (
	"net/http"
	"time"

	"bankshot/internal/back"
	"bankshot/internal/rating"
	"bankshot/internal/util"
)

type userPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Gamertag string `json:"gamertag,omitempty"`
	Ghost    bool   `json:"ghost"`
}

func (s *Server) apiUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.back.GetUsers()
	if err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	payload := make([]userPayload, 0, len(users))
	for k := range users {
		payload = append(payload, userPayload{
			ID:       users[k].ID.String(),
			Name:     users[k].DisplayName(),
			Gamertag: users[k].Gamertag.String,
			Ghost:    users[k].Ghost,
		})
	}

	s.cache(w, "public", 1*time.Minute)
	s.json(w, http.StatusOK, payload)
}

type leaderboardPayload struct {
	Active  []leaderboardEntryPayload `json:"active"`
	Dormant []leaderboardEntryPayload `json:"dormant"`
}

type leaderboardEntryPayload struct {
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	Elo        float64   `json:"elo"`
	Rank       int       `json:"rank,omitempty"`
	LastPlayed time.Time `json:"lastPlayed"`
}

func (s *Server) apiLeaderboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.back.GetDashboard(util.UUIDAsBlob{}, "all", 0)
	if err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	payload := leaderboardPayload{
		Active:  leaderboardEntryPayloads(dashboard.Active),
		Dormant: leaderboardEntryPayloads(dashboard.Dormant),
	}

	s.cache(w, "public", 1*time.Minute)
	s.json(w, http.StatusOK, payload)
}

func leaderboardEntryPayloads(entries []back.LeaderboardEntry) []leaderboardEntryPayload {
	ret := make([]leaderboardEntryPayload, 0, len(entries))
	for k := range entries {
		ret = append(ret, leaderboardEntryPayload{
			UserID:     entries[k].UserID,
			Name:       entries[k].Name,
			Elo:        entries[k].Elo,
			Rank:       entries[k].Rank,
			LastPlayed: entries[k].LastPlayed,
		})
	}

	return ret
}

type ratingHistoryPayload struct {
	History []rating.Snapshot `json:"history"`
	Names   map[string]string `json:"names"`
}

func (s *Server) apiRatingHistory(w http.ResponseWriter, r *http.Request) {
	history, names, err := s.back.GetRatingHistory()
	if err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	s.cache(w, "public", 1*time.Minute)
	s.json(w, http.StatusOK, ratingHistoryPayload{History: history, Names: names})
}

// apiImport ingests a legacy JSON export. The URL must carry a valid
// signature, see Config.SignURL.
func (s *Server) apiImport(w http.ResponseWriter, r *http.Request) {
	if !s.importLimiter.Allow() {
		s.error(w, r, nil, http.StatusTooManyRequests)
		return
	}

	if err := s.config.CheckURL(r.URL.String()); err != nil {
		s.error(w, r, err, http.StatusForbidden)
		return
	}

	report, err := s.back.ImportLegacyExport(r.Body)
	if err != nil {
		s.error(w, r, err, http.StatusBadRequest)
		return
	}

	s.json(w, http.StatusOK, report)
}

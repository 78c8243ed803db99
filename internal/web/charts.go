package web

import (
	"log"
	"net/http"
	"sort"
	"time"

	"bankshot/internal/rating"

	"github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"
)

// ratingsChart renders the rating history of every active player as a SVG
// time series, one line per player.
func (s *Server) ratingsChart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { log.Printf("info: computed ratings chart in %s", time.Since(start)) }()

	history, names, err := s.back.GetRatingHistory()
	if err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	series := historySeries(history, names)
	if len(series) == 0 {
		// go-chart panics on empty data, send an empty canvas instead.
		s.emptyChart(w)
		return
	}

	graph := chart.Chart{
		Height: 400,
		Width:  800,
		Canvas: chart.Style{FillColor: chart.ColorTransparent},
		Background: chart.Style{
			FillColor: chart.ColorTransparent,
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				t := time.Unix(0, int64(v.(float64))).UTC()
				return t.Format("2006-01-02")
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	s.cache(w, "public", 5*time.Minute)
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := graph.Render(chart.SVG, w); err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}
}

var chartPalette = []string{
	"285577", "4c7899", "859000", "b58900", "cb4b16",
	"dc322f", "d33682", "6c71c4", "268bd2", "2aa198", "859900",
}

func historySeries(history []rating.Snapshot, names map[string]string) []chart.Series {
	if len(history) < 2 {
		return nil
	}

	ids := make([]string, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	series := make([]chart.Series, 0, len(ids))
	for k, id := range ids {
		xs := make([]time.Time, 0, len(history))
		ys := make([]float64, 0, len(history))
		for i := range history {
			elo, ok := history[i].Ratings[id]
			if !ok {
				continue
			}

			xs = append(xs, history[i].Timestamp)
			ys = append(ys, elo)
		}

		if len(xs) < 2 {
			continue
		}

		color := drawing.ColorFromHex(chartPalette[k%len(chartPalette)])
		series = append(series, chart.TimeSeries{
			Name:    names[id],
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				Show:        true,
				StrokeColor: color,
				StrokeWidth: 2,
			},
		})
	}

	return series
}

const emptySVG = `<svg xmlns="http://www.w3.org/2000/svg"/>`

func (s *Server) emptyChart(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write([]byte(emptySVG))
}

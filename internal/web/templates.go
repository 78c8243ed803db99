package web

import (
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bankshot/internal/back"
	"bankshot/internal/util"

	"github.com/russross/blackfriday/v2"
)

func (s *Server) loadTemplates(baseDir string) (map[string]*template.Template, error) {
	layouts, err := filepath.Glob(filepath.Join(baseDir, "templates/layouts/*.html"))
	if err != nil {
		return nil, err
	}

	includes, err := filepath.Glob(filepath.Join(baseDir, "templates/includes/*.html"))
	if err != nil {
		return nil, err
	}

	ret := make(map[string]*template.Template, len(layouts))
	for _, layout := range layouts {
		tpl, err := template.New("").
			Funcs(s.getTemplateFuncMap(baseDir)).
			ParseFiles(append(includes, layout)...)
		if err != nil {
			return nil, err
		}

		key := strings.TrimPrefix(layout, filepath.Join(baseDir, "templates/layouts")+"/")
		ret[key] = tpl
	}

	return ret, nil
}

func (s *Server) getTemplateFuncMap(baseDir string) template.FuncMap {
	return template.FuncMap{
		"t": func(locale string, str string) string {
			return s.locales[locale].Get(str)
		},

		"tf": func(locale string, str string, args ...interface{}) string {
			return fmt.Sprintf(s.locales[locale].Get(str), args...)
		},

		"tmd": func(locale, str string) template.HTML {
			return template.HTML(blackfriday.Run( // nolint:gosec
				[]byte(s.locales[locale].Get(str)),
			))
		},

		"datetime": util.Datetime,
		"date":     util.Date,
		"ago":      tplAgo,
		"elo":      tplElo,
		"won": func(locale string, won bool) template.HTML {
			str, class := s.locales[locale].Get("lost against"), "is-danger"
			if won {
				str, class = s.locales[locale].Get("won against"), "is-success"
			}

			return template.HTML(fmt.Sprintf(`<span class="tag %s">%s</span>`, class, str)) // nolint:gosec
		},

		"ranking":        tplRanking,
		"assetURL":       tplAssetURL,
		"assetIntegrity": tplAssetIntegrity(baseDir),
	}
}

func tplElo(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// tplRanking renders the rank column, dormant players have no rank.
func tplRanking(v back.LeaderboardEntry) string {
	if v.Rank == 0 {
		return "-"
	}

	return fmt.Sprintf("#%d", v.Rank)
}

func tplAgo(iface interface{}) string {
	var t time.Time
	switch iface := iface.(type) {
	case time.Time:
		t = iface
	case util.TimeAsTimestamp:
		t = iface.Time()
	default:
		panic(fmt.Errorf("unexpected type %T", iface))
	}

	if t.IsZero() || t.Equal(time.Unix(0, 0)) {
		return ""
	}

	return util.FormatDuration(time.Since(t).Truncate(time.Minute))
}

func tplAssetURL(name string) string {
	return "/_/" + name
}

func tplAssetIntegrity(baseDir string) func(name string) (string, error) {
	hashCache := map[string]string{}

	return func(name string) (string, error) {
		if hash, ok := hashCache[name]; ok {
			return hash, nil
		}

		f, err := os.Open(filepath.Join(baseDir, "static", name))
		if err != nil {
			return "", err
		}
		defer f.Close() // nolint:gosec

		h := sha512.New()
		if _, err := io.Copy(h, f); err != nil {
			return "", err
		}

		hashCache[name] = "sha512-" + base64.StdEncoding.EncodeToString(h.Sum(nil))
		return hashCache[name], nil
	}
}

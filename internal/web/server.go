package web

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"bankshot/internal/back"
	"bankshot/internal/config"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/gorilla/securecookie"
	"github.com/leonelquinteros/gotext"
	"golang.org/x/time/rate"
)

type Server struct {
	http    *http.Server
	back    *back.Back
	config  *config.Config
	baseDir string

	tpl     map[string]*template.Template
	locales map[string]*gotext.Locale
	sc      *securecookie.SecureCookie

	// importLimiter throttles the legacy import endpoint, the payload is
	// parsed in full before any validation.
	importLimiter *rate.Limiter
}

func NewServer(back *back.Back, conf *config.Config) (*Server, error) {
	baseDir, err := getResourcesDir()
	if err != nil {
		return nil, err
	}

	s := &Server{
		back:          back,
		config:        conf,
		baseDir:       baseDir,
		importLimiter: rate.NewLimiter(rate.Every(time.Minute), 3),
		sc: securecookie.New(
			[]byte(conf.CookieHashKey),
			[]byte(conf.CookieBlockKey),
		),
	}

	s.locales, err = s.loadLocales(baseDir)
	if err != nil {
		return nil, err
	}

	s.tpl, err = s.loadTemplates(baseDir)
	if err != nil {
		return nil, err
	}

	s.http = &http.Server{
		Addr:         "127.0.0.1:3001",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  10 * time.Second,
		Handler:      s.setupRouter(),
	}

	return s, nil
}

func getResourcesDir() (string, error) {
	// Relative to CWD so `go run` works out of a checkout.
	dir := "resources/web"
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("unable to find resources directory: %w", err)
	}

	return dir, nil
}

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(s.localer)
	r.Use(s.authenticator)

	r.Get("/", s.index)
	r.Get("/auth/microsoft", s.authMicrosoft)
	r.Get("/logout", s.logout)

	r.Group(func(r chi.Router) {
		r.Use(s.ensureAuth)

		r.Get("/dashboard", s.dashboard)
		r.Get("/profile", s.profile)
		r.Get("/profile/{userID}", s.userProfile)
		r.Get("/games/new", s.newGame)
		r.Post("/action", s.doAction)
		r.Get("/charts/ratings.svg", s.ratingsChart)
	})

	// I intend the v1 to be a hacky, quick'n dirty implementation, with no
	// pagination nor any fancy stuff.
	r.Get("/v1/users", s.apiUsers)
	r.Get("/v1/leaderboard", s.apiLeaderboard)
	r.Get("/v1/ratings/history", s.apiRatingHistory)
	r.Post("/v1/import", s.apiImport)

	static := http.StripPrefix(
		"/_/",
		http.FileServer(http.Dir(filepath.Join(s.baseDir, "static"))),
	)
	r.Get("/_/*", func(w http.ResponseWriter, r *http.Request) {
		s.cache(w, "public", 1*time.Hour)
		static.ServeHTTP(w, r)
	})

	return r
}

// localer stores the display language in the request context. Only languages
// with a loaded locale are honored, anything else falls back to English.
func (s *Server) localer(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := "en"
		if v := r.Header.Get("Accept-Language"); len(v) >= 2 {
			if _, ok := s.locales[v[:2]]; ok {
				locale = v[:2]
			}
		}

		h.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), ctxKeyLocale, locale),
		))
	})
}

func (s *Server) loadLocales(baseDir string) (map[string]*gotext.Locale, error) {
	dir := filepath.Join(baseDir, "locales")
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	ret := make(map[string]*gotext.Locale, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		locale := gotext.NewLocale(dir, entry.Name())
		locale.AddDomain("default")
		ret[entry.Name()] = locale
	}

	if _, ok := ret["en"]; !ok {
		return nil, fmt.Errorf("no english locale in %s", dir)
	}

	return ret, nil
}

func (s *Server) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	log.Println("info: starting HTTP server")
	wg.Add(1)
	defer wg.Done()

	go func() {
		err := s.http.ListenAndServe()
		if err == http.ErrServerClosed {
			log.Println("info: HTTP server closed")
			return
		}

		log.Fatalf("webserver crashed: %s", err)
	}()

	<-done
	if err := s.http.Close(); err != nil {
		log.Printf("warning: unable to close webserver: %s", err)
	}
}

// templateContext wraps every rendered payload with the ambient request data
// the layout needs.
type templateContext struct {
	Locale   string
	AuthUser *back.User
	Error    string
	Payload  interface{}
}

func (s *Server) response(
	w http.ResponseWriter, r *http.Request,
	code int, name string,
	payload interface{},
) {
	tpl, ok := s.tpl[name]
	if !ok {
		s.error(w, r, fmt.Errorf("template not found: %s", name), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)

	if err := tpl.ExecuteTemplate(w, "base", templateContext{
		Locale:   r.Context().Value(ctxKeyLocale).(string),
		AuthUser: userFromRequest(r),
		Error:    r.URL.Query().Get("error"),
		Payload:  payload,
	}); err != nil {
		log.Printf("error: unable to render template: %s", err)
	}
}

func (s *Server) json(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	response, err := json.Marshal(data)
	if err != nil {
		log.Printf("error: unable to marshal response: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(code)

	if _, err := w.Write(response); err != nil {
		log.Printf("error: unable to send response: %s", err)
	}
}

func (s *Server) error(w http.ResponseWriter, _ *http.Request, err error, code int) {
	if err != nil {
		log.Printf("error: %s", err)
	}

	w.WriteHeader(code)
}

func (s *Server) cache(w http.ResponseWriter, scope string, d time.Duration) {
	w.Header().Set("Cache-Control", fmt.Sprintf("%s,max-age=%d", scope, d/time.Second))
}

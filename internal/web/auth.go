package web

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"time"

	"bankshot/internal/back"
	"bankshot/internal/util"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	authCookieName          = "auth"
	authCookieLifetime      = 7 * 24 * time.Hour
	authStateCookieName     = "auth_state"
	authStateCookieLifetime = 0 // session cookie
)

func (s *Server) authenticator(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.userFromCookie(r)
		if err != nil {
			log.Printf("error: cookie auth: %s", err)
			user = nil
		}

		h.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// ensureAuth bounces anonymous visitors back to the login page.
func (s *Server) ensureAuth(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userFromRequest(r) == nil {
			http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) userFromCookie(r *http.Request) (*back.User, error) {
	cookie, err := r.Cookie(authCookieName)
	if err != nil {
		// no cookie, ignore successfully
		return nil, nil
	}

	var userIDStr string
	if err := s.sc.Decode(authCookieName, cookie.Value, &userIDStr); err != nil {
		return nil, fmt.Errorf("unable to decode auth cookie: %s", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, err
	}

	user, err := s.back.GetUserByID(util.UUIDAsBlob(userID))
	if err != nil {
		return nil, fmt.Errorf("unable to fetch user from auth cookie: %s", err)
	}

	return &user, nil
}

func userFromContext(ctx context.Context) *back.User {
	return ctx.Value(ctxKeyAuthUser).(*back.User)
}

func userFromRequest(r *http.Request) *back.User {
	return userFromContext(r.Context())
}

func withUser(ctx context.Context, user *back.User) context.Context {
	return context.WithValue(ctx, ctxKeyAuthUser, user)
}

func (s *Server) authMicrosoft(w http.ResponseWriter, r *http.Request) {
	conf := s.config.MicrosoftOAuth2()

	// Step 1, no code = redirect to OAuth2 provider.
	code := r.URL.Query().Get("code")
	if code == "" {
		s.authMicrosoftRedirect(w, r, conf)
		return
	}

	// Step 2, redirected from OAuth2 provider, obtain token and user.
	account, err := s.getMicrosoftUserFromOAuth2Code(r, conf, code)
	if err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	// Clear state cookie, no longer needed.
	if err := s.deleteCookie(w, authStateCookieName); err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	user, err := s.back.RegisterMicrosoftUser(account.ID, account.Email(), account.DisplayName)
	if err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	if err := s.setAuthCookie(w, user.ID); err != nil {
		log.Printf("error: unable to write auth cookie: %s", err)
	}

	http.Redirect(w, r, "/dashboard", http.StatusTemporaryRedirect)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.deleteCookie(w, authCookieName); err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

type microsoftUserPayload struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// Email returns the account email, personal accounts have no Mail attribute
// but their principal name is the address they log in with.
func (p microsoftUserPayload) Email() string {
	if p.Mail != "" {
		return p.Mail
	}

	return p.UserPrincipalName
}

func (s *Server) getMicrosoftUserFromOAuth2Code(
	r *http.Request,
	conf *oauth2.Config,
	code string,
) (microsoftUserPayload, error) {
	if err := s.checkOAuthState(r); err != nil {
		return microsoftUserPayload{}, err
	}

	token, err := conf.Exchange(r.Context(), code)
	if err != nil {
		return microsoftUserPayload{}, err
	}
	client := conf.Client(r.Context(), token)

	req, err := http.NewRequestWithContext(r.Context(), "GET", "https://graph.microsoft.com/v1.0/me", nil)
	if err != nil {
		return microsoftUserPayload{}, err
	}
	res, err := client.Do(req)
	if err != nil {
		return microsoftUserPayload{}, err
	}

	defer res.Body.Close()
	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return microsoftUserPayload{}, err
	}

	var payload microsoftUserPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return microsoftUserPayload{}, err
	}

	if payload.ID == "" {
		return microsoftUserPayload{}, errors.New("empty user ID in Graph response")
	}

	return payload, nil
}

func (s *Server) checkOAuthState(r *http.Request) error {
	cookie, err := r.Cookie(authStateCookieName)
	if err != nil {
		return errors.New("no state cookie")
	}

	var localState string
	if err := s.sc.Decode(authStateCookieName, cookie.Value, &localState); err != nil {
		return fmt.Errorf("unable to decode auth state cookie: %s", err)
	}

	remoteState := r.URL.Query().Get("state")
	if remoteState == "" {
		return errors.New("empty remote state")
	}

	if subtle.ConstantTimeCompare([]byte(localState), []byte(remoteState)) != 1 {
		return errors.New("local and remote state do not match")
	}

	return nil
}

func (s *Server) authMicrosoftRedirect(w http.ResponseWriter, r *http.Request, conf *oauth2.Config) {
	state, err := randomState()
	if err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	url := conf.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("response_type", "code"),
	)

	if err := s.setEncodedCookie(
		w, authStateCookieName, state,
		authStateCookieLifetime,
	); err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func randomState() (string, error) {
	size := 32
	buf := make([]byte, size)
	c, err := rand.Read(buf)
	if err != nil {
		return "", err
	}

	if c != size {
		return "", fmt.Errorf("read %d bytes, expected %d", c, size)
	}

	return hex.EncodeToString(buf), nil
}

func (s *Server) deleteCookie(w http.ResponseWriter, name string) error {
	return s.setEncodedCookie(w, name, "", -1)
}

func (s *Server) setAuthCookie(
	w http.ResponseWriter,
	userID util.UUIDAsBlob,
) error {
	return s.setEncodedCookie(
		w, authCookieName, userID.String(),
		authCookieLifetime,
	)
}

func (s *Server) setEncodedCookie(
	w http.ResponseWriter,
	name, value string,
	lifetime time.Duration, // < 0 delete, 0 session, > 0 cookie
) error {
	encoded, err := s.sc.Encode(name, value)
	if err != nil {
		return fmt.Errorf("unable to encode %s cookie: %s", name, err)
	}

	var domain string
	if !s.config.DevMode { // host:port is problematic
		domain = s.config.Domain
	}

	var maxAge int
	var expires time.Time
	switch {
	case lifetime > 0:
		expires = time.Now().Add(lifetime)
	case lifetime < 0:
		maxAge = -1
	case lifetime == 0:
	}

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    encoded,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		Domain:   domain,
		HttpOnly: true,
		Secure:   !s.config.DevMode,
	})

	return nil
}

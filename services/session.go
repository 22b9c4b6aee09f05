package services

import (
	"net/http"

	"Kinolog/config"

	"github.com/gorilla/sessions"
)

const sessionName = "kinolog-session"

type Sessions struct {
	store *sessions.CookieStore
}

func NewSessions(cfg *config.Config) *Sessions {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))

	secure := cfg.Environment == "production"

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Sessions{store: store}
}

func (s *Sessions) Get(r *http.Request) (*sessions.Session, error) {
	return s.store.Get(r, sessionName)
}

func (s *Sessions) Save(w http.ResponseWriter, r *http.Request, session *sessions.Session) error {
	return session.Save(r, w)
}

package service

import (
	"net/http"

	"topmovies/internal/conf"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

const sessionName = "topmovies-session"

// SessionManager keeps per-browser flash messages in a signed cookie.
type SessionManager struct {
	store sessions.Store
}

// NewSessionManager creates a cookie-backed SessionManager keyed by the
// configured secret.
func NewSessionManager(c *conf.Session) *SessionManager {
	store := sessions.NewCookieStore([]byte(c.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

func (m *SessionManager) session(r *http.Request) *sessions.Session {
	// Get returns a fresh session alongside a decode error for a tampered or
	// stale cookie, which is what we want.
	s, _ := m.store.Get(r, sessionName)
	return s
}

// CSRFToken returns the masked form token minted by the CSRF filter, or ""
// when protection is off.
func CSRFToken(r *http.Request) string {
	return csrf.Token(r)
}

// AddFlash queues a message for the next page render.
func (m *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, msg string) {
	s := m.session(r)
	s.AddFlash(msg)
	_ = s.Save(r, w)
}

// Flashes pops the queued messages.
func (m *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) []string {
	s := m.session(r)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = s.Save(r, w)
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			out = append(out, msg)
		}
	}
	return out
}

// Package flash stores one-shot user messages in a signed cookie session.
// A message added while handling one request is shown on the next page
// rendered for the same browser and then discarded.
package flash

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

// Kind selects the channel a message is queued on.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

const sessionName = "yelpcamp_session"

// Messages holds the drained contents of both channels.
type Messages struct {
	Success []string
	Error   []string
}

// Empty reports whether there is nothing to show.
func (m Messages) Empty() bool {
	return len(m.Success) == 0 && len(m.Error) == 0
}

// Store queues flash messages on a cookie session.
type Store struct {
	sessions sessions.Store
}

// NewStore returns a Store whose cookies are signed with secret.
// secure marks the cookie HTTPS-only.
func NewStore(secret string, secure bool) *Store {
	cs := sessions.NewCookieStore([]byte(secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{sessions: cs}
}

// Add queues msg on the kind channel and writes the session cookie.
// It must be called before the response header is written.
func (s *Store) Add(w http.ResponseWriter, r *http.Request, kind Kind, msg string) error {
	// An undecodable cookie still yields a fresh session to write into.
	sess, err := s.sessions.Get(r, sessionName)
	if sess == nil {
		return fmt.Errorf("flash.Store.Add: %w", err)
	}
	sess.AddFlash(msg, string(kind))
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("flash.Store.Add: save session: %w", err)
	}
	return nil
}

// Pop returns and clears every queued message. A missing or tampered
// cookie yields no messages.
func (s *Store) Pop(w http.ResponseWriter, r *http.Request) Messages {
	sess, err := s.sessions.Get(r, sessionName)
	if err != nil {
		return Messages{}
	}

	m := Messages{
		Success: toStrings(sess.Flashes(string(Success))),
		Error:   toStrings(sess.Flashes(string(Error))),
	}
	if !m.Empty() {
		_ = sess.Save(r, w)
	}
	return m
}

func toStrings(vals []any) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

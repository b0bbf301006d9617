package web

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const flashSessionName = "flash"

func newFlashStore(key string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// addFlash queues a one-shot message for the next rendered page.
func (s *Server) addFlash(w http.ResponseWriter, r *http.Request, msg string) {
	sess, err := s.flash.Get(r, flashSessionName)
	if err != nil {
		// tampered or rotated key; start over
		s.logger.Debug(r.Context(), "flash session reset", "error", err)
	}
	sess.AddFlash(msg)
	if err := sess.Save(r, w); err != nil {
		s.logger.Warn(r.Context(), "flash not saved", "error", err)
	}
}

// popFlashes returns and clears the queued messages.
func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request) []string {
	sess, err := s.flash.Get(r, flashSessionName)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		s.logger.Warn(r.Context(), "flash not cleared", "error", err)
	}

	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			out = append(out, msg)
		}
	}
	return out
}

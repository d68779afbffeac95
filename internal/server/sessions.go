package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/ziadkadry99/product-advisor/internal/advisor"
	"github.com/ziadkadry99/product-advisor/internal/logger"
	"github.com/ziadkadry99/product-advisor/internal/prefs"
	"github.com/ziadkadry99/product-advisor/internal/transcript"
)

// Session identification. The header wins over the cookie.
const (
	SessionHeader = "X-Advisor-Session"
	SessionCookie = "advisor_session"
)

// MaxSessions bounds the registry. Once it is full, new sessions are
// served but not kept.
const MaxSessions = 10000

// Sessions maps client sessions to their advisors. Each advisor gets its
// own view of the shared preference store.
type Sessions struct {
	base        advisor.Options
	prefs       prefs.Store
	transcripts *transcript.Store
	limit       int

	mu    sync.Mutex
	items map[string]*advisor.Advisor
}

// NewSessions creates a registry. base supplies the shared collaborators;
// Prefs and Recorder are set per session.
func NewSessions(base advisor.Options, store prefs.Store, transcripts *transcript.Store) *Sessions {
	return &Sessions{
		base:        base,
		prefs:       store,
		transcripts: transcripts,
		limit:       MaxSessions,
		items:       make(map[string]*advisor.Advisor),
	}
}

// Get returns the advisor for id, creating and loading it on first use.
// Loading happens outside the registry lock. When two requests race to
// create the same session, the first advisor stored wins. An advisor whose
// catalog failed to load is returned but not kept, so the next request
// tries again.
func (s *Sessions) Get(ctx context.Context, id string) *advisor.Advisor {
	s.mu.Lock()
	a, ok := s.items[id]
	s.mu.Unlock()
	if ok {
		return a
	}

	opts := s.base
	opts.Prefs = prefs.Scoped(s.prefs, id)
	if s.transcripts != nil {
		opts.Recorder = s.transcripts.Recorder(id)
	}

	a = advisor.New(opts)
	if err := a.Load(ctx); err != nil {
		logger.Error("loading session", "session", id, "error", err)
		return a
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.items[id]; ok {
		return existing
	}
	if len(s.items) >= s.limit {
		logger.Warn("session registry full; serving session without keeping it", "session", id)
		return a
	}
	s.items[id] = a
	return a
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// resolveSession reads the session id from the request. isNew is true when
// a fresh id had to be issued.
func resolveSession(r *http.Request) (id string, isNew bool) {
	if v := r.Header.Get(SessionHeader); validSessionID(v) {
		return v, false
	}
	if c, err := r.Cookie(SessionCookie); err == nil && validSessionID(c.Value) {
		return c.Value, false
	}
	return uuid.New().String(), true
}

func validSessionID(v string) bool {
	_, err := uuid.Parse(v)
	return v != "" && err == nil
}

// issueSession hands a new session id back to the client.
func issueSession(h http.Header, id string) {
	cookie := &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	h.Add("Set-Cookie", cookie.String())
	h.Set(SessionHeader, id)
}

// advisorFor resolves the caller's session and returns its advisor.
func (s *Server) advisorFor(w http.ResponseWriter, r *http.Request) (*advisor.Advisor, string) {
	id, isNew := resolveSession(r)
	if isNew {
		issueSession(w.Header(), id)
	}
	return s.sessions.Get(r.Context(), id), id
}

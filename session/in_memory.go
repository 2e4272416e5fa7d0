package session

import (
	"errors"
	"sync"
	"time"

	"github.com/civiclab/councilsim/core"
)

// ErrSessionNotFound is returned by Get for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// InMemoryStore is a volatile core.SessionStore keeping all sessions in a
// process-local map. Each session carries its own mutex so mutations are
// serialized per id while independent sessions never contend. Get returns a
// deep copy to prevent external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session *core.Session
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*entry)}
}

// Create allocates a new session in setup state and registers it.
func (s *InMemoryStore) Create(input core.SimulationInput) *core.Session {
	sess := core.NewSession(input)
	s.mu.Lock()
	s.sessions[sess.ID] = &entry{session: sess}
	s.mu.Unlock()
	return cloneSession(sess)
}

// Get returns a snapshot of the session or ErrSessionNotFound.
func (s *InMemoryStore) Get(id string) (*core.Session, error) {
	e := s.lookup(id)
	if e == nil {
		return nil, ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneSession(e.session), nil
}

// UpdateStatus overwrites the session status. Unknown ids are a no-op.
func (s *InMemoryStore) UpdateStatus(id string, status core.Status) {
	s.mutate(id, func(sess *core.Session) { sess.Status = status })
}

// SetPersonas stores the generated persona cast.
func (s *InMemoryStore) SetPersonas(id string, personas []core.Persona) {
	s.mutate(id, func(sess *core.Session) {
		sess.Personas = append([]core.Persona(nil), personas...)
	})
}

// AppendTurn atomically appends a completed turn to the transcript.
func (s *InMemoryStore) AppendTurn(id string, turn core.Turn) {
	s.mutate(id, func(sess *core.Session) { sess.Turns = append(sess.Turns, turn) })
}

// SetAnalysis records the post-debate analysis result. A session either has
// an analysis or it does not; a result already present is never overwritten.
func (s *InMemoryStore) SetAnalysis(id string, result *core.AnalysisResult) {
	s.mutate(id, func(sess *core.Session) {
		if sess.Analysis == nil {
			sess.Analysis = result
		}
	})
}

// SetError marks the session errored with a message. Terminal.
func (s *InMemoryStore) SetError(id string, message string) {
	s.mutate(id, func(sess *core.Session) {
		sess.Status = core.StatusError
		sess.Error = message
	})
}

// List returns snapshots of every known session in unspecified order.
func (s *InMemoryStore) List() []*core.Session {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*core.Session, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, cloneSession(e.session))
		e.mu.Unlock()
	}
	return out
}

func (s *InMemoryStore) lookup(id string) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// mutate runs fn under the session's lock. Unknown ids are silently ignored,
// matching the fail-silent contract of the store's update operations.
func (s *InMemoryStore) mutate(id string, fn func(*core.Session)) {
	e := s.lookup(id)
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.session)
	e.session.Updated = time.Now().UTC()
}

func cloneSession(sess *core.Session) *core.Session {
	clone := *sess
	clone.Personas = append([]core.Persona(nil), sess.Personas...)
	clone.Turns = append([]core.Turn(nil), sess.Turns...)
	if sess.Analysis != nil {
		a := *sess.Analysis
		clone.Analysis = &a
	}
	return &clone
}

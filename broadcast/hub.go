package broadcast

import (
	"encoding/json"
	"sync"

	"github.com/civiclab/councilsim/logging"
)

// Event type names on the wire.
const (
	EventPhaseChange  = "phase_change"
	EventPersonaIntro = "persona_intro"
	EventTurnStart    = "turn_start"
	EventToken        = "token"
	EventTurnEnd      = "turn_end"
	EventAnalysis     = "analysis"
	EventStatus       = "status"
	EventError        = "error"
	EventComplete     = "complete"
)

// Envelope is the serialized form of every broadcast event.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Observer is one connected client receiving serialized events. Send must
// return an error when delivery fails so the hub can prune the observer.
type Observer interface {
	Send(data []byte) error
}

// Hub tracks observers per session id and broadcasts serialized events to
// them. Safe for concurrent use; the observer set is mutated under the hub
// lock, and a failed delivery removes exactly that observer.
type Hub struct {
	mu        sync.Mutex
	observers map[string]map[Observer]struct{}
	logger    logging.Logger
}

// Options configure a Hub.
type Options struct {
	// Logger defaults to logging.NoOpLogger.
	Logger logging.Logger
}

// NewHub constructs an empty Hub.
func NewHub(optFns ...func(o *Options)) *Hub {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Hub{
		observers: make(map[string]map[Observer]struct{}),
		logger:    opts.Logger,
	}
}

// Connect registers an observer for a session.
func (h *Hub) Connect(sessionID string, obs Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.observers[sessionID]
	if !ok {
		set = make(map[Observer]struct{})
		h.observers[sessionID] = set
	}
	set[obs] = struct{}{}
}

// Disconnect removes an observer. When the last observer for a session
// leaves, the set for that id is discarded; an active run is unaffected.
func (h *Hub) Disconnect(sessionID string, obs Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sessionID, obs)
}

// HasObservers reports whether any observer is connected for the session.
func (h *Hub) HasObservers(sessionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers[sessionID]) > 0
}

// Broadcast serializes one typed event and delivers it to every observer of
// the session. Observers whose Send fails are removed.
func (h *Hub) Broadcast(sessionID, eventType string, payload any) {
	data, err := json.Marshal(Envelope{Type: eventType, Payload: payload})
	if err != nil {
		h.logger.Error("event marshal failed", "session_id", sessionID, "event", eventType, "error", err)
		return
	}

	h.mu.Lock()
	targets := make([]Observer, 0, len(h.observers[sessionID]))
	for obs := range h.observers[sessionID] {
		targets = append(targets, obs)
	}
	h.mu.Unlock()

	var dead []Observer
	for _, obs := range targets {
		if err := obs.Send(data); err != nil {
			dead = append(dead, obs)
		}
	}
	if len(dead) > 0 {
		h.mu.Lock()
		for _, obs := range dead {
			h.removeLocked(sessionID, obs)
		}
		h.mu.Unlock()
		h.logger.Warn("pruned unreachable observers", "session_id", sessionID, "count", len(dead))
	}
}

// removeLocked deletes an observer; caller holds the hub lock.
func (h *Hub) removeLocked(sessionID string, obs Observer) {
	set, ok := h.observers[sessionID]
	if !ok {
		return
	}
	delete(set, obs)
	if len(set) == 0 {
		delete(h.observers, sessionID)
	}
}

package core

import (
	"time"

	"github.com/google/uuid"
)

// Turn records one persona's complete spoken contribution within a phase.
// Turns are append-only: once added to a session's transcript they are never
// mutated or removed, and transcript order equals speaking order.
type Turn struct {
	ID          string    `json:"id"`
	Phase       Phase     `json:"phase"`
	PersonaID   string    `json:"persona_id"`
	PersonaName string    `json:"persona_name"`
	PersonaRole Role      `json:"persona_role"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewTurn creates a completed turn record with a fresh id.
func NewTurn(phase Phase, p Persona, content string) Turn {
	return Turn{
		ID:          NewID(),
		Phase:       phase,
		PersonaID:   p.ID,
		PersonaName: p.Name,
		PersonaRole: p.Role,
		Content:     content,
		Timestamp:   time.Now().UTC(),
	}
}

// NewID generates a unique identifier for sessions, turns and events.
func NewID() string { return uuid.NewString() }

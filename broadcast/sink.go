package broadcast

import "github.com/civiclab/councilsim/core"

// Sink implements core.EventSink for one session by forwarding every engine
// event to the hub with the wire payload shapes observers expect.
type Sink struct {
	hub       *Hub
	sessionID string
}

// NewSink creates an event sink bound to one session.
func NewSink(hub *Hub, sessionID string) *Sink {
	return &Sink{hub: hub, sessionID: sessionID}
}

// Interface compliance (compile-time assertion)
var _ core.EventSink = (*Sink)(nil)

// PhaseChange broadcasts entry into a debate phase.
func (s *Sink) PhaseChange(phase core.Phase, description string) {
	s.hub.Broadcast(s.sessionID, EventPhaseChange, map[string]any{
		"phase":       phase,
		"description": description,
	})
}

// PersonaIntro broadcasts one generated persona.
func (s *Sink) PersonaIntro(p core.Persona) {
	s.hub.Broadcast(s.sessionID, EventPersonaIntro, p)
}

// TurnStart broadcasts that a persona has started speaking.
func (s *Sink) TurnStart(turnID string, p core.Persona, phase core.Phase) {
	s.hub.Broadcast(s.sessionID, EventTurnStart, map[string]any{
		"turn_id":      turnID,
		"persona_id":   p.ID,
		"persona_name": p.Name,
		"phase":        phase,
	})
}

// Token broadcasts a single streamed fragment.
func (s *Sink) Token(turnID, token, personaID string) {
	s.hub.Broadcast(s.sessionID, EventToken, map[string]any{
		"turn_id":    turnID,
		"token":      token,
		"persona_id": personaID,
	})
}

// TurnEnd broadcasts a completed turn with its full text.
func (s *Sink) TurnEnd(turnID, personaID, fullText string) {
	s.hub.Broadcast(s.sessionID, EventTurnEnd, map[string]any{
		"turn_id":    turnID,
		"persona_id": personaID,
		"full_text":  fullText,
	})
}

// Analysis broadcasts the post-debate analysis result.
func (s *Sink) Analysis(result *core.AnalysisResult) {
	s.hub.Broadcast(s.sessionID, EventAnalysis, result)
}

// Status broadcasts a progress message.
func (s *Sink) Status(message string) {
	s.hub.Broadcast(s.sessionID, EventStatus, map[string]any{"message": message})
}

// Error broadcasts a fatal run failure.
func (s *Sink) Error(message string) {
	s.hub.Broadcast(s.sessionID, EventError, map[string]any{"message": message})
}

// Complete broadcasts run completion.
func (s *Sink) Complete() {
	s.hub.Broadcast(s.sessionID, EventComplete, map[string]any{
		"simulation_id": s.sessionID,
	})
}

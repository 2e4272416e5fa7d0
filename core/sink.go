package core

// EventSink receives lifecycle events from a running simulation. The engine
// is handed a sink at construction and calls it synchronously from the run
// goroutine, so implementations must not block indefinitely. The broadcast
// package provides a sink that fans events out to connected observers.
type EventSink interface {
	// PhaseChange announces entry into a debate phase.
	PhaseChange(phase Phase, description string)

	// PersonaIntro introduces one generated persona before the debate.
	PersonaIntro(p Persona)

	// TurnStart announces that a persona has begun speaking.
	TurnStart(turnID string, p Persona, phase Phase)

	// Token delivers one streamed text fragment of the current turn.
	Token(turnID, token, personaID string)

	// TurnEnd announces a completed turn with its full text.
	TurnEnd(turnID, personaID, fullText string)

	// Analysis delivers the post-debate analysis result.
	Analysis(result *AnalysisResult)

	// Status delivers a human-readable progress message.
	Status(message string)

	// Error announces a fatal run failure.
	Error(message string)

	// Complete announces that the run finished.
	Complete()
}

// NopSink discards all events. Useful default for tests and headless runs.
type NopSink struct{}

func (NopSink) PhaseChange(Phase, string) {}
func (NopSink) PersonaIntro(Persona) {}
func (NopSink) TurnStart(string, Persona, Phase) {}
func (NopSink) Token(string, string, string) {}
func (NopSink) TurnEnd(string, string, string) {}
func (NopSink) Analysis(*AnalysisResult) {}
func (NopSink) Status(string) {}
func (NopSink) Error(string) {}
func (NopSink) Complete() {}

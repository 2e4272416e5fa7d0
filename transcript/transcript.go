package transcript

import (
	"fmt"
	"strings"

	"github.com/civiclab/councilsim/core"
)

// MaxTurnContextLen bounds how much of a prior turn is replayed into later
// speakers' context. Longer turns are cut at exactly this length including
// the trailing ellipsis marker.
const MaxTurnContextLen = 300

// Transcript accumulates completed turns and renders the shared meeting
// memory for each persona's next turn. It is not safe for concurrent use;
// the engine owns one transcript per run and turns execute sequentially.
type Transcript struct {
	proposalSummary string
	cityContext     string
	turns           []core.Turn
	currentPhase    core.Phase
}

// New creates an empty transcript for a hearing.
func New(proposalSummary, cityContext string) *Transcript {
	return &Transcript{
		proposalSummary: proposalSummary,
		cityContext:     cityContext,
		currentPhase:    core.PhaseOpening,
	}
}

// AddTurn appends a completed turn. Turns are never mutated or removed.
func (t *Transcript) AddTurn(turn core.Turn) { t.turns = append(t.turns, turn) }

// SetPhase records the phase the hearing has entered.
func (t *Transcript) SetPhase(phase core.Phase) { t.currentPhase = phase }

// Turns returns a copy of the accumulated turns in speaking order.
func (t *Transcript) Turns() []core.Turn {
	return append([]core.Turn(nil), t.turns...)
}

// Len returns the number of completed turns.
func (t *Transcript) Len() int { return len(t.turns) }

// BuildContext produces the speaker's fixed instruction payload and the
// single aggregated context message for its next turn. The context contains
// the proposal preamble, every prior turn truncated to MaxTurnContextLen,
// the current phase name and the (phase, role) instruction if one exists.
func (t *Transcript) BuildContext(p core.Persona, phase core.Phase) (system, context string) {
	var parts []string

	parts = append(parts, fmt.Sprintf("MEETING CONTEXT: Public hearing on a proposed data center in %s", t.cityContext))
	parts = append(parts, fmt.Sprintf("PROPOSAL: %s", t.proposalSummary))
	parts = append(parts, "")

	if len(t.turns) > 0 {
		parts = append(parts, "WHAT HAS BEEN SAID SO FAR IN THIS MEETING:")
		for _, turn := range t.turns {
			parts = append(parts, fmt.Sprintf("  %s (%s): %s", turn.PersonaName, turn.PersonaRole, Truncate(turn.Content, MaxTurnContextLen)))
		}
		parts = append(parts, "")
	} else {
		parts = append(parts, "This is the beginning of the meeting. No one has spoken yet.")
		parts = append(parts, "")
	}

	parts = append(parts, fmt.Sprintf("CURRENT PHASE: %s", PhaseDescriptions[phase]))

	if instruction := InstructionFor(phase, p.Role); instruction != "" {
		parts = append(parts, fmt.Sprintf("YOUR INSTRUCTIONS: %s", instruction))
	}

	parts = append(parts, "")
	parts = append(parts, fmt.Sprintf("Speak now as %s. Stay in character. Be specific and grounded.", p.Name))

	return p.SystemPrompt, strings.Join(parts, "\n")
}

// Truncate cuts text to max characters, replacing the tail with "..." when
// it exceeds the limit. Text at or under the limit is returned unmodified.
func Truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max-3] + "..."
}

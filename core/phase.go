package core

// Phase identifies one of the five fixed stages of a simulated hearing.
// Phases form a total order with no skipping and no repetition within a run.
type Phase string

const (
	// PhaseOpening covers the moderator's call to order and the
	// petitioner's presentation.
	PhaseOpening Phase = "opening"
	// PhasePublicComment gives every resident exactly one turn.
	PhasePublicComment Phase = "public_comment"
	// PhaseRebuttal is the petitioner's response to public comments.
	PhaseRebuttal Phase = "rebuttal"
	// PhaseCouncilQA is the fixed council/petitioner question exchange.
	PhaseCouncilQA Phase = "council_qa"
	// PhaseDeliberation closes the hearing with summary and assessment.
	PhaseDeliberation Phase = "deliberation"
)

// Phases lists every debate phase in speaking order.
var Phases = []Phase{
	PhaseOpening,
	PhasePublicComment,
	PhaseRebuttal,
	PhaseCouncilQA,
	PhaseDeliberation,
}

// Status tracks the lifecycle of a simulation session. Transitions only move
// forward through the phase sequence until a terminal state (complete or
// error) is reached.
type Status string

const (
	StatusSetup              Status = "setup"
	StatusGeneratingPersonas Status = "generating_personas"
	StatusOpening            Status = "opening"
	StatusPublicComment      Status = "public_comment"
	StatusRebuttal           Status = "rebuttal"
	StatusCouncilQA          Status = "council_qa"
	StatusDeliberation       Status = "deliberation"
	StatusAnalysis           Status = "analysis"
	StatusComplete           Status = "complete"
	StatusError              Status = "error"
)

// StatusForPhase maps a debate phase to its corresponding session status.
func StatusForPhase(p Phase) Status { return Status(p) }

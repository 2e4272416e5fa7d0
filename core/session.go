package core

import "time"

// SimulationInput carries the user-supplied parameters for a hearing.
// DocumentText, when present, is extracted proposal material merged into
// persona instruction payloads before the run starts.
type SimulationInput struct {
	CityName        string   `json:"city_name"`
	State           string   `json:"state,omitempty"`
	CompanyName     string   `json:"company_name,omitempty"`
	ProposalDetails string   `json:"proposal_details"`
	Concerns        []string `json:"concerns,omitempty"`
	DocumentText    string   `json:"-"`
}

// CityContext renders "City, ST" or just the city when no state is given.
func (in SimulationInput) CityContext() string {
	if in.State != "" {
		return in.CityName + ", " + in.State
	}
	return in.CityName
}

// Session is one end-to-end run of the simulated hearing.
//
// Contract:
//   - Owned exclusively by the SessionStore; mutated only through its
//     operations, which are serialized per session id
//   - Turns is append-only and monotonically growing during a run
//   - Status moves forward through the phase sequence, never backward,
//     until complete or error
//   - Analysis is set at most once and never overwritten
type Session struct {
	ID       string          `json:"id"`
	Input    SimulationInput `json:"input"`
	Status   Status          `json:"status"`
	Personas []Persona       `json:"personas"`
	Turns    []Turn          `json:"turns"`
	Analysis *AnalysisResult `json:"analysis,omitempty"`
	Error    string          `json:"error,omitempty"`
	Created  time.Time       `json:"created"`
	Updated  time.Time       `json:"updated"`
}

// NewSession creates a session in setup state with a generated id.
func NewSession(input SimulationInput) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:      NewID(),
		Input:   input,
		Status:  StatusSetup,
		Created: now,
		Updated: now,
	}
}

// SessionStore is the concurrency-safe home for all session state. All
// mutating operations are serialized per session id so concurrent appends
// never interleave or lose writes; reads return snapshots and are best-effort
// with respect to in-flight mutation of other fields.
type SessionStore interface {
	// Create allocates a new session for the given input.
	Create(input SimulationInput) *Session

	// Get returns a snapshot of the session, or a not-found error.
	Get(id string) (*Session, error)

	// UpdateStatus overwrites the session status. Unknown ids are a no-op.
	UpdateStatus(id string, status Status)

	// SetPersonas stores the generated persona cast for the session.
	SetPersonas(id string, personas []Persona)

	// AppendTurn atomically appends a completed turn to the transcript.
	AppendTurn(id string, turn Turn)

	// SetAnalysis records the post-debate analysis result.
	SetAnalysis(id string, result *AnalysisResult)

	// SetError marks the session as errored with a message. Terminal.
	SetError(id string, message string)
}

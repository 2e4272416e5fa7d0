package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/civiclab/councilsim/core"
	"github.com/civiclab/councilsim/logging"
	"github.com/civiclab/councilsim/transcript"
)

// Engine runs the five-phase hearing for one session.
//
// Speaker selection per phase is fixed:
//   - opening: moderator once, then petitioner once (absent roles skipped)
//   - public comment: every resident once, in generation order
//   - rebuttal: petitioner once
//   - council Q&A: council, petitioner, council, petitioner; zero turns
//     when no council member exists
//   - deliberation: moderator once, then council member once (if present)
//
// A turn either completes and is appended whole, or the entire run aborts;
// there is no per-turn retry at this layer.
type Engine struct {
	gen        *TurnGenerator
	store      core.SessionStore
	sink       core.EventSink
	logger     logging.Logger
	sessionID  string
	personas   []core.Persona
	transcript *transcript.Transcript
}

// Options configure an Engine.
type Options struct {
	// Sink receives lifecycle events. Defaults to core.NopSink.
	Sink core.EventSink
	// Logger defaults to logging.NoOpLogger.
	Logger logging.Logger
}

// New constructs an Engine for one session run.
func New(
	gen *TurnGenerator,
	store core.SessionStore,
	sessionID string,
	input core.SimulationInput,
	personas []core.Persona,
	optFns ...func(o *Options),
) *Engine {
	opts := Options{
		Sink:   core.NopSink{},
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Engine{
		gen:        gen,
		store:      store,
		sink:       opts.Sink,
		logger:     opts.Logger,
		sessionID:  sessionID,
		personas:   personas,
		transcript: transcript.New(input.ProposalDetails, input.CityContext()),
	}
}

// Transcript exposes the accumulated transcript, primarily for the
// post-debate analysis step.
func (e *Engine) Transcript() *transcript.Transcript { return e.transcript }

// Run executes all five phases in order. The first failed turn aborts the
// run and is returned; session status and error events are the caller's
// responsibility so the run coordinator stays the single place that owns
// terminal-state handling.
func (e *Engine) Run(ctx context.Context) error {
	for _, phase := range core.Phases {
		if err := e.runPhase(ctx, phase); err != nil {
			return err
		}
	}
	return nil
}

// runPhase announces the phase, advances session status and executes the
// phase's fixed speaker sequence.
func (e *Engine) runPhase(ctx context.Context, phase core.Phase) error {
	e.transcript.SetPhase(phase)
	e.store.UpdateStatus(e.sessionID, core.StatusForPhase(phase))
	e.sink.PhaseChange(phase, transcript.PhaseAnnouncements[phase])
	e.logger.Info("phase started", "session_id", e.sessionID, "phase", string(phase))

	for _, speaker := range e.speakersFor(phase) {
		if err := e.runTurn(ctx, speaker, phase); err != nil {
			return err
		}
	}
	return nil
}

// speakersFor resolves the ordered speaker list for a phase. Missing roles
// are skipped; residents keep their generation order.
func (e *Engine) speakersFor(phase core.Phase) []core.Persona {
	moderator := core.FirstByRole(e.personas, core.RoleModerator)
	petitioner := core.FirstByRole(e.personas, core.RolePetitioner)
	council := core.FirstByRole(e.personas, core.RoleCouncilMember)

	var speakers []core.Persona
	add := func(p *core.Persona) {
		if p != nil {
			speakers = append(speakers, *p)
		}
	}

	switch phase {
	case core.PhaseOpening:
		add(moderator)
		add(petitioner)
	case core.PhasePublicComment:
		speakers = append(speakers, core.AllByRole(e.personas, core.RoleResident)...)
	case core.PhaseRebuttal:
		add(petitioner)
	case core.PhaseCouncilQA:
		if council != nil {
			add(council)
			add(petitioner)
			add(council)
			add(petitioner)
		}
	case core.PhaseDeliberation:
		add(moderator)
		add(council)
	}
	return speakers
}

// runTurn executes a single turn: build context, stream the generation,
// append the completed turn and notify the sink. The next turn's context
// always reflects this turn's completed content.
func (e *Engine) runTurn(ctx context.Context, p core.Persona, phase core.Phase) error {
	turnID := core.NewID()
	e.sink.TurnStart(turnID, p, phase)

	system, meetingContext := e.transcript.BuildContext(p, phase)

	fullText, err := e.gen.Stream(ctx, system, meetingContext, func(token string) {
		e.sink.Token(turnID, token, p.ID)
	})
	if err != nil {
		e.logger.Error("turn failed", "session_id", e.sessionID, "persona_id", p.ID, "phase", string(phase), "error", err)
		return fmt.Errorf("turn for %s in %s: %w", p.Name, phase, err)
	}

	turn := core.Turn{
		ID:          turnID,
		Phase:       phase,
		PersonaID:   p.ID,
		PersonaName: p.Name,
		PersonaRole: p.Role,
		Content:     fullText,
		Timestamp:   time.Now().UTC(),
	}
	e.transcript.AddTurn(turn)
	e.store.AppendTurn(e.sessionID, turn)
	e.sink.TurnEnd(turnID, p.ID, fullText)

	return nil
}

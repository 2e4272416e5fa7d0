package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/civiclab/councilsim/core"
	"github.com/civiclab/councilsim/model"
	"github.com/civiclab/councilsim/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures every sink call in emission order.
type recordingSink struct {
	mu     sync.Mutex
	events []string
	turns  []string // persona ids in turn-start order
	phases []core.Phase
}

func (r *recordingSink) record(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingSink) PhaseChange(phase core.Phase, _ string) {
	r.mu.Lock()
	r.phases = append(r.phases, phase)
	r.mu.Unlock()
	r.record("phase_change")
}

func (r *recordingSink) PersonaIntro(core.Persona) { r.record("persona_intro") }

func (r *recordingSink) TurnStart(_ string, p core.Persona, _ core.Phase) {
	r.mu.Lock()
	r.turns = append(r.turns, p.ID)
	r.mu.Unlock()
	r.record("turn_start")
}

func (r *recordingSink) Token(string, string, string)   { r.record("token") }
func (r *recordingSink) TurnEnd(string, string, string) { r.record("turn_end") }
func (r *recordingSink) Analysis(*core.AnalysisResult)  { r.record("analysis") }
func (r *recordingSink) Status(string)                  { r.record("status") }
func (r *recordingSink) Error(string)                   { r.record("error") }
func (r *recordingSink) Complete()                      { r.record("complete") }

func fullCast() []core.Persona {
	cast := []core.Persona{
		{ID: "mod", Name: "Moderator", Role: core.RoleModerator, SystemPrompt: "mod prompt"},
		{ID: "pet", Name: "Petitioner", Role: core.RolePetitioner, SystemPrompt: "pet prompt"},
	}
	for i := 1; i <= 3; i++ {
		cast = append(cast, core.Persona{
			ID:           fmt.Sprintf("res-%d", i),
			Name:         fmt.Sprintf("Resident %d", i),
			Role:         core.RoleResident,
			SystemPrompt: "res prompt",
		})
	}
	cast = append(cast, core.Persona{ID: "cm", Name: "Council Member", Role: core.RoleCouncilMember, SystemPrompt: "cm prompt"})
	return cast
}

func newTestEngine(t *testing.T, personas []core.Persona, m model.Model) (*Engine, *session.InMemoryStore, *recordingSink, string) {
	t.Helper()
	store := session.NewInMemoryStore()
	sess := store.Create(core.SimulationInput{CityName: "Novi", State: "MI", ProposalDetails: "a data center"})
	sink := &recordingSink{}
	eng := New(NewTurnGenerator(m), store, sess.ID, sess.Input, personas, func(o *Options) {
		o.Sink = sink
	})
	return eng, store, sink, sess.ID
}

func TestEngine_FullRunProducesTwelveTurnsInPhaseOrder(t *testing.T) {
	eng, store, sink, id := newTestEngine(t, fullCast(), model.NewMockModel("test"))

	require.NoError(t, eng.Run(context.Background()))

	sess, err := store.Get(id)
	require.NoError(t, err)
	require.Len(t, sess.Turns, 12)

	wantPhases := []core.Phase{
		core.PhaseOpening, core.PhaseOpening,
		core.PhasePublicComment, core.PhasePublicComment, core.PhasePublicComment,
		core.PhaseRebuttal,
		core.PhaseCouncilQA, core.PhaseCouncilQA, core.PhaseCouncilQA, core.PhaseCouncilQA,
		core.PhaseDeliberation, core.PhaseDeliberation,
	}
	for i, turn := range sess.Turns {
		assert.Equal(t, wantPhases[i], turn.Phase, "turn %d", i)
	}

	// Speaking order matches the fixed selection rules.
	assert.Equal(t, []string{
		"mod", "pet",
		"res-1", "res-2", "res-3",
		"pet",
		"cm", "pet", "cm", "pet",
		"mod", "cm",
	}, sink.turns)

	assert.Equal(t, core.Phases, sink.phases)
}

func TestEngine_NoCouncilMemberSkipsCouncilQA(t *testing.T) {
	cast := fullCast()[:5] // drop the council member
	eng, store, sink, id := newTestEngine(t, cast, model.NewMockModel("test"))

	require.NoError(t, eng.Run(context.Background()))

	sess, err := store.Get(id)
	require.NoError(t, err)
	// 2 opening + 3 residents + 1 rebuttal + 0 council-qa + 1 deliberation.
	assert.Len(t, sess.Turns, 7)
	for _, turn := range sess.Turns {
		assert.NotEqual(t, core.PhaseCouncilQA, turn.Phase)
	}
	// The phase is still announced even when it yields no turns.
	assert.Contains(t, sink.phases, core.PhaseCouncilQA)
}

func TestEngine_MissingModeratorSkipped(t *testing.T) {
	cast := fullCast()[1:] // no moderator
	eng, store, _, id := newTestEngine(t, cast, model.NewMockModel("test"))

	require.NoError(t, eng.Run(context.Background()))

	sess, err := store.Get(id)
	require.NoError(t, err)
	for _, turn := range sess.Turns {
		assert.NotEqual(t, core.RoleModerator, turn.PersonaRole)
	}
	// 1 opening + 3 residents + 1 rebuttal + 4 council-qa + 1 deliberation.
	assert.Len(t, sess.Turns, 10)
}

func TestEngine_GenerationFailureAbortsRun(t *testing.T) {
	m := model.NewMockModel("test")
	m.Err = errors.New("model unavailable")
	eng, store, sink, id := newTestEngine(t, fullCast(), m)

	err := eng.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, m.Err)

	// No partial turn entered the transcript.
	sess, getErr := store.Get(id)
	require.NoError(t, getErr)
	assert.Empty(t, sess.Turns)
	assert.NotContains(t, sink.events, "turn_end")
}

func TestEngine_TurnEndFollowsTokensFollowTurnStart(t *testing.T) {
	m := model.NewMockModel("test")
	m.AddResponse("Speak now", "two words")
	eng, _, sink, _ := newTestEngine(t, fullCast()[:2], m)

	require.NoError(t, eng.Run(context.Background()))

	// Every turn's events arrive as turn_start, token+, turn_end.
	depth := 0
	for _, ev := range sink.events {
		switch ev {
		case "turn_start":
			require.Equal(t, 0, depth)
			depth = 1
		case "token":
			require.Equal(t, 1, depth)
		case "turn_end":
			require.Equal(t, 1, depth)
			depth = 0
		}
	}
	assert.Equal(t, 0, depth)
}

func TestEngine_ContextReflectsPriorTurn(t *testing.T) {
	m := model.NewMockModel("test")
	m.AddResponse("No one has spoken yet", "THE FIRST STATEMENT")
	eng, store, _, id := newTestEngine(t, fullCast()[:2], m)

	require.NoError(t, eng.Run(context.Background()))

	sess, err := store.Get(id)
	require.NoError(t, err)
	require.Len(t, sess.Turns, 2)
	assert.Equal(t, "THE FIRST STATEMENT", sess.Turns[0].Content)
	// The second speaker saw the first turn, so the canned empty-meeting
	// response cannot have matched again.
	assert.NotEqual(t, "THE FIRST STATEMENT", sess.Turns[1].Content)
}

func TestEngine_StatusAdvancesThroughPhases(t *testing.T) {
	eng, store, _, id := newTestEngine(t, fullCast(), model.NewMockModel("test"))

	require.NoError(t, eng.Run(context.Background()))

	sess, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusDeliberation, sess.Status)
}

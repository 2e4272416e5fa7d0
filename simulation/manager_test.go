package simulation

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civiclab/councilsim/broadcast"
	"github.com/civiclab/councilsim/core"
	"github.com/civiclab/councilsim/model"
	"github.com/civiclab/councilsim/session"
)

// memObserver collects broadcast frames for assertions.
type memObserver struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (o *memObserver) Send(data []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, append([]byte(nil), data...))
	return nil
}

func (o *memObserver) events() map[string]int {
	o.mu.Lock()
	defer o.mu.Unlock()
	counts := map[string]int{}
	for _, raw := range o.msgs {
		var env broadcast.Envelope
		if err := json.Unmarshal(raw, &env); err == nil {
			counts[env.Type]++
		}
	}
	return counts
}

func testInput() core.SimulationInput {
	return core.SimulationInput{
		CityName:        "Cedar Falls",
		State:           "IA",
		CompanyName:     "Meridian Compute",
		ProposalDetails: "A 200MW data center campus on the north side industrial corridor.",
	}
}

func newTestManager(t *testing.T, debate, analyst model.Model) (*Manager, *session.InMemoryStore, *broadcast.Hub) {
	t.Helper()
	store := session.NewInMemoryStore()
	hub := broadcast.NewHub()
	mgr := NewManager(store, hub, debate, analyst, func(o *Options) {
		o.TierTimeout = 5 * time.Second
	})
	return mgr, store, hub
}

func waitForTerminal(t *testing.T, mgr *Manager, id string) *core.Session {
	t.Helper()
	require.Eventually(t, func() bool {
		sess, err := mgr.Get(id)
		if err != nil {
			return false
		}
		return sess.Status == core.StatusComplete || sess.Status == core.StatusError
	}, 10*time.Second, 10*time.Millisecond)

	sess, err := mgr.Get(id)
	require.NoError(t, err)
	return sess
}

func TestManager_FullRun(t *testing.T) {
	debate := model.NewMockModel("debate")
	analyst := model.NewMockModel("analyst")
	analyst.AddResponse("political strategy consultant",
		`{"approval_score": 62, "approval_label": "Uncertain - Leaning Approve"}`)

	mgr, _, hub := newTestManager(t, debate, analyst)
	sess := mgr.Create(testInput())

	obs := &memObserver{}
	hub.Connect(sess.ID, obs)

	started, err := mgr.StartRun(sess.ID)
	require.NoError(t, err)
	require.True(t, started)

	final := waitForTerminal(t, mgr, sess.ID)
	require.Equal(t, core.StatusComplete, final.Status)

	// Default cast of 6 speaks 12 turns across the five phases.
	assert.Len(t, final.Personas, 6)
	assert.Len(t, final.Turns, 12)
	require.NotNil(t, final.Analysis)
	assert.Equal(t, 62.0, final.Analysis.ApprovalScore)

	counts := obs.events()
	assert.Equal(t, 6, counts[broadcast.EventPersonaIntro])
	assert.Equal(t, 5, counts[broadcast.EventPhaseChange])
	assert.Equal(t, 12, counts[broadcast.EventTurnStart])
	assert.Equal(t, 12, counts[broadcast.EventTurnEnd])
	assert.Equal(t, 1, counts[broadcast.EventAnalysis])
	assert.Equal(t, 1, counts[broadcast.EventComplete])
	assert.Zero(t, counts[broadcast.EventError])
}

func TestManager_StartRunIdempotent(t *testing.T) {
	mgr, _, _ := newTestManager(t, model.NewMockModel("debate"), model.NewMockModel("analyst"))
	sess := mgr.Create(testInput())

	started, err := mgr.StartRun(sess.ID)
	require.NoError(t, err)
	require.True(t, started)

	// Second call while running (or after finishing) never starts again.
	again, err := mgr.StartRun(sess.ID)
	require.NoError(t, err)
	assert.False(t, again)

	final := waitForTerminal(t, mgr, sess.ID)
	assert.Len(t, final.Turns, 12)

	// Terminal sessions stay terminal.
	again, err = mgr.StartRun(sess.ID)
	require.NoError(t, err)
	assert.False(t, again)
	assert.False(t, mgr.Running(sess.ID))
}

func TestManager_StartRunUnknownSession(t *testing.T) {
	mgr, _, _ := newTestManager(t, model.NewMockModel("debate"), model.NewMockModel("analyst"))

	_, err := mgr.StartRun("no-such-session")
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestManager_DebateFailureIsTerminal(t *testing.T) {
	debate := model.NewMockModel("debate")
	debate.Err = assert.AnError

	mgr, _, hub := newTestManager(t, debate, model.NewMockModel("analyst"))
	sess := mgr.Create(testInput())

	obs := &memObserver{}
	hub.Connect(sess.ID, obs)

	started, err := mgr.StartRun(sess.ID)
	require.NoError(t, err)
	require.True(t, started)

	final := waitForTerminal(t, mgr, sess.ID)
	require.Equal(t, core.StatusError, final.Status)
	assert.NotEmpty(t, final.Error)
	assert.Empty(t, final.Turns)

	counts := obs.events()
	assert.Equal(t, 1, counts[broadcast.EventError])
	assert.Zero(t, counts[broadcast.EventComplete])
}

func TestManager_CompletesWithoutAnalysis(t *testing.T) {
	// The analyst mock's generic completions contain no JSON object, so
	// both tiers fail; the session must still complete.
	mgr, _, _ := newTestManager(t, model.NewMockModel("debate"), model.NewMockModel("analyst"))
	sess := mgr.Create(testInput())

	started, err := mgr.StartRun(sess.ID)
	require.NoError(t, err)
	require.True(t, started)

	final := waitForTerminal(t, mgr, sess.ID)
	require.Equal(t, core.StatusComplete, final.Status)
	assert.Nil(t, final.Analysis)
	assert.Len(t, final.Turns, 12)
}

func TestMergeDocument(t *testing.T) {
	input := testInput()
	input.DocumentText = "Traffic study: peak load adds 40 trips/hour."

	merged := mergeDocument(input)
	assert.Contains(t, merged.ProposalDetails, "SUPPORTING DOCUMENT EXCERPT:")
	assert.Contains(t, merged.ProposalDetails, "40 trips/hour")
	assert.Empty(t, merged.DocumentText)

	bare := mergeDocument(testInput())
	assert.Equal(t, testInput().ProposalDetails, bare.ProposalDetails)
}

package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/civiclab/councilsim/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ core.SessionStore = (*InMemoryStore)(nil)

func TestInMemoryStore_CreateAndGet(t *testing.T) {
	store := NewInMemoryStore()

	sess := store.Create(core.SimulationInput{CityName: "Novi", State: "MI", ProposalDetails: "data center"})
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, core.StatusSetup, sess.Status)

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, "Novi", got.Input.CityName)
}

func TestInMemoryStore_GetUnknown(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestInMemoryStore_UpdateStatusUnknownIsNoOp(t *testing.T) {
	store := NewInMemoryStore()

	// Must not panic or create a session.
	store.UpdateStatus("missing", core.StatusComplete)
	_, err := store.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestInMemoryStore_AppendTurnOrderUnderConcurrency(t *testing.T) {
	store := NewInMemoryStore()
	sess := store.Create(core.SimulationInput{CityName: "Novi", ProposalDetails: "dc"})

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.AppendTurn(sess.ID, core.Turn{ID: fmt.Sprintf("t-%d", i), Content: "x"})
		}(i)
	}
	wg.Wait()

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	// No lost writes: every append landed exactly once.
	assert.Len(t, got.Turns, n)
	seen := make(map[string]bool, n)
	for _, turn := range got.Turns {
		assert.False(t, seen[turn.ID], "duplicate turn %s", turn.ID)
		seen[turn.ID] = true
	}
}

func TestInMemoryStore_SnapshotIsolation(t *testing.T) {
	store := NewInMemoryStore()
	sess := store.Create(core.SimulationInput{CityName: "Novi", ProposalDetails: "dc"})
	store.AppendTurn(sess.ID, core.Turn{ID: "t-1"})

	snap, err := store.Get(sess.ID)
	require.NoError(t, err)
	snap.Turns[0].Content = "mutated"
	snap.Status = core.StatusComplete

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Turns[0].Content)
	assert.Equal(t, core.StatusSetup, got.Status)
}

func TestInMemoryStore_SetAnalysisOnlyOnce(t *testing.T) {
	store := NewInMemoryStore()
	sess := store.Create(core.SimulationInput{CityName: "Novi", ProposalDetails: "dc"})

	store.SetAnalysis(sess.ID, &core.AnalysisResult{ApprovalScore: 62})
	store.SetAnalysis(sess.ID, &core.AnalysisResult{ApprovalScore: 10})

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Analysis)
	assert.Equal(t, 62.0, got.Analysis.ApprovalScore)
}

func TestInMemoryStore_SetError(t *testing.T) {
	store := NewInMemoryStore()
	sess := store.Create(core.SimulationInput{CityName: "Novi", ProposalDetails: "dc"})

	store.SetError(sess.ID, "generation failed")

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, got.Status)
	assert.Equal(t, "generation failed", got.Error)
}

func TestInMemoryStore_List(t *testing.T) {
	store := NewInMemoryStore()
	store.Create(core.SimulationInput{CityName: "Novi", ProposalDetails: "dc"})
	store.Create(core.SimulationInput{CityName: "Troy", ProposalDetails: "dc"})

	assert.Len(t, store.List(), 2)
}

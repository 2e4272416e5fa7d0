package councilsim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civiclab/councilsim/core"
	"github.com/civiclab/councilsim/model"
)

func TestFacade_EndToEnd(t *testing.T) {
	analyst := model.NewMockModel("analyst")
	analyst.AddResponse("political strategy consultant", `{"approval_score": 71, "approval_label": "Likely Approved"}`)

	sim := New(model.NewMockModel("debate"), analyst, func(o *Options) {
		o.TierTimeout = 5 * time.Second
	})

	sess := sim.Create(core.SimulationInput{
		CityName:        "Cedar Falls",
		State:           "IA",
		ProposalDetails: "A 200MW data center campus.",
	})

	started, err := sim.Start(sess.ID)
	require.NoError(t, err)
	require.True(t, started)

	require.Eventually(t, func() bool {
		snap, err := sim.Manager().Get(sess.ID)
		return err == nil && snap.Status == core.StatusComplete
	}, 10*time.Second, 10*time.Millisecond)

	snap, err := sim.Manager().Get(sess.ID)
	require.NoError(t, err)
	assert.Len(t, snap.Turns, 12)
	require.NotNil(t, snap.Analysis)
	assert.Equal(t, 71.0, snap.Analysis.ApprovalScore)
}

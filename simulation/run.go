package simulation

import (
	"context"
	"fmt"

	"github.com/civiclab/councilsim/analysis"
	"github.com/civiclab/councilsim/broadcast"
	"github.com/civiclab/councilsim/core"
	"github.com/civiclab/councilsim/engine"
	"github.com/civiclab/councilsim/transcript"
)

// maxDocumentChars bounds how much uploaded document text is carried into
// persona prompts.
const maxDocumentChars = 4000

// run executes the full pipeline for one session: persona generation, the
// five-phase debate, post-debate analysis, completion. It is the single
// owner of terminal state: every exit path ends the session in complete or
// error, and the active-run registry entry is always released.
func (m *Manager) run(id string, input core.SimulationInput) {
	defer func() {
		m.mu.Lock()
		delete(m.active, id)
		m.mu.Unlock()
	}()

	ctx := context.Background()
	sink := broadcast.NewSink(m.hub, id)
	input = mergeDocument(input)

	// Persona generation. Never fails; the generator falls back to the
	// default cast on its own.
	m.store.UpdateStatus(id, core.StatusGeneratingPersonas)
	sink.Status("Generating realistic debate personas...")

	personas := m.caster.Generate(ctx, input)
	m.store.SetPersonas(id, personas)
	for _, p := range personas {
		sink.PersonaIntro(p)
	}
	sink.Status(fmt.Sprintf("Generated %d personas, ready to debate", len(personas)))

	// The debate itself. The first failed turn aborts the run.
	gen := engine.NewTurnGenerator(m.debate, func(o *engine.GeneratorOptions) {
		o.Temperature = m.temperature
		o.MaxTokens = m.maxTokens
	})
	eng := engine.New(gen, m.store, id, input, personas, func(o *engine.Options) {
		o.Sink = sink
		o.Logger = m.logger
	})

	if err := eng.Run(ctx); err != nil {
		m.logger.Error("debate failed", "session_id", id, "error", err)
		m.store.SetError(id, err.Error())
		sink.Error(err.Error())
		return
	}

	// Post-debate analysis. All tiers failing is non-fatal; the session
	// still completes, just without an analysis payload.
	m.store.UpdateStatus(id, core.StatusAnalysis)
	sink.Status("Analyzing debate transcript...")

	chain := analysis.NewChain(
		[]analysis.Tier{analysis.NewAgentTier(m.analyst), analysis.NewDirectTier(m.analyst)},
		func(o *analysis.ChainOptions) {
			o.TierTimeout = m.tierTimeout
			o.Logger = m.logger
		},
	)
	if result := chain.Run(ctx, eng.Transcript().FullText(), input.ProposalDetails); result != nil {
		m.store.SetAnalysis(id, result)
		sink.Analysis(result)
		sink.Status("Analysis complete")
	} else {
		sink.Status("Analysis could not be completed")
	}

	m.store.UpdateStatus(id, core.StatusComplete)
	sink.Complete()
	m.logger.Info("simulation complete", "session_id", id)
}

// mergeDocument folds uploaded document text into the proposal details so
// persona prompts and turn context see it. The excerpt is capped; a full
// filing would crowd out the transcript.
func mergeDocument(input core.SimulationInput) core.SimulationInput {
	if input.DocumentText == "" {
		return input
	}
	input.ProposalDetails += "\n\nSUPPORTING DOCUMENT EXCERPT:\n" +
		transcript.Truncate(input.DocumentText, maxDocumentChars)
	input.DocumentText = ""
	return input
}

package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/civiclab/councilsim/core"
	"github.com/civiclab/councilsim/logging"
)

// Tier is one strategy in the ordered fallback sequence. Analyze returns a
// parsed result or an error; timeouts are imposed by the Chain, not the tier.
type Tier interface {
	Name() string
	Analyze(ctx context.Context, transcriptText, proposalSummary string) (*core.AnalysisResult, error)
}

// Chain tries tiers in fixed priority order, each wrapped in an independent
// hard deadline, and stops at the first success. Exceeding a tier's time box
// is treated identically to a failure from that tier: the in-flight call is
// abandoned, never retried, and the next tier runs.
type Chain struct {
	tiers       []Tier
	tierTimeout time.Duration
	logger      logging.Logger
}

// ChainOptions configure a Chain.
type ChainOptions struct {
	// TierTimeout is the hard deadline applied to each tier independently.
	TierTimeout time.Duration
	// Logger defaults to logging.NoOpLogger.
	Logger logging.Logger
}

// NewChain constructs a fallback chain over the given tiers.
func NewChain(tiers []Tier, optFns ...func(o *ChainOptions)) *Chain {
	opts := ChainOptions{
		TierTimeout: 120 * time.Second,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Chain{tiers: tiers, tierTimeout: opts.TierTimeout, logger: opts.Logger}
}

// Run executes the chain. A nil result means every tier failed; that is a
// non-fatal outcome for the simulation.
func (c *Chain) Run(ctx context.Context, transcriptText, proposalSummary string) *core.AnalysisResult {
	for _, tier := range c.tiers {
		result, err := c.runTier(ctx, tier, transcriptText, proposalSummary)
		if err != nil {
			c.logger.Warn("analysis tier failed", "tier", tier.Name(), "error", err)
			continue
		}
		c.logger.Info("analysis tier succeeded", "tier", tier.Name(), "score", result.ApprovalScore)
		return result
	}
	c.logger.Warn("all analysis tiers exhausted")
	return nil
}

type tierOutcome struct {
	result *core.AnalysisResult
	err    error
}

// runTier applies the tier's time box. On expiry the goroutine's eventual
// outcome is discarded; its context is cancelled so the underlying call can
// unwind.
func (c *Chain) runTier(ctx context.Context, tier Tier, transcriptText, proposalSummary string) (*core.AnalysisResult, error) {
	tierCtx, cancel := context.WithTimeout(ctx, c.tierTimeout)
	defer cancel()

	outcome := make(chan tierOutcome, 1)
	go func() {
		result, err := tier.Analyze(tierCtx, transcriptText, proposalSummary)
		outcome <- tierOutcome{result: result, err: err}
	}()

	select {
	case <-tierCtx.Done():
		return nil, fmt.Errorf("tier %s: %w", tier.Name(), tierCtx.Err())
	case out := <-outcome:
		if out.err != nil {
			return nil, fmt.Errorf("tier %s: %w", tier.Name(), out.err)
		}
		if out.result == nil {
			return nil, fmt.Errorf("tier %s: empty result", tier.Name())
		}
		return out.result, nil
	}
}

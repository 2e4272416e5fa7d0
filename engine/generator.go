package engine

import (
	"context"
	"fmt"

	"github.com/civiclab/councilsim/model"
)

// TurnGenerator wraps one model call per debate turn. It supplies the
// speaker's instruction payload, the aggregated meeting context as a single
// user message, and the configured sampling parameters, then consumes the
// fragment stream. Either the stream completes and the concatenated full
// text is returned, or the call fails and the error is propagated unchanged.
type TurnGenerator struct {
	model       model.Model
	temperature float64
	maxTokens   int64
}

// GeneratorOptions configure a TurnGenerator.
type GeneratorOptions struct {
	// Temperature is the fixed creativity parameter for every turn.
	Temperature float64
	// MaxTokens bounds each turn's length.
	MaxTokens int64
}

// NewTurnGenerator constructs a TurnGenerator over the given model.
func NewTurnGenerator(m model.Model, optFns ...func(o *GeneratorOptions)) *TurnGenerator {
	opts := GeneratorOptions{
		Temperature: 0.85,
		MaxTokens:   400,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &TurnGenerator{model: m, temperature: opts.Temperature, maxTokens: opts.MaxTokens}
}

// Stream generates one turn, invoking onToken for every fragment in arrival
// order, and returns the full concatenated text on normal completion. No
// partial text is ever returned alongside an error.
func (g *TurnGenerator) Stream(
	ctx context.Context,
	systemPrompt, meetingContext string,
	onToken func(token string),
) (string, error) {
	respCh, errCh := g.model.Generate(ctx, model.Request{
		System:      systemPrompt,
		Messages:    []model.Message{{Role: "user", Text: meetingContext}},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Stream:      true,
	})

	var full string
	for resp := range respCh {
		if resp.Partial {
			full += resp.Text
			if onToken != nil {
				onToken(resp.Text)
			}
			continue
		}
		// Final response carries the authoritative concatenation.
		if resp.Text != "" {
			full = resp.Text
		}
	}
	if err := <-errCh; err != nil {
		return "", fmt.Errorf("turn generation: %w", err)
	}
	return full, nil
}

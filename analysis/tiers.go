package analysis

import (
	"context"
	"fmt"

	"github.com/civiclab/councilsim/core"
	"github.com/civiclab/councilsim/model"
)

// transcript and proposal caps keep the analysis prompt inside the model's
// context window regardless of hearing length.
const (
	maxTranscriptChars = 12000
	maxProposalChars   = 2000
)

const analystPrompt = `You are a political strategy consultant specializing in municipal approval processes for large infrastructure projects, particularly data centers.

Analyze this city council debate transcript and provide a comprehensive assessment.

TRANSCRIPT:
%s

PROPOSAL:
%s

Respond with ONLY a valid JSON object (no markdown, no explanation before or after). Use this exact structure:

{
  "approval_score": 62,
  "approval_label": "Uncertain",
  "approval_reasoning": "2-3 sentences explaining the score",
  "key_arguments": [
    {"side": "opposition" or "petitioner", "argument": "the specific argument made", "strength": "strong" | "moderate" | "weak", "relevant_data": "any data or facts cited"}
  ],
  "recommended_rebuttals": [
    {"concern": "the specific concern", "rebuttal": "the recommended response for a real meeting", "supporting_data": "specific stats or commitments to cite", "effectiveness": "high" | "moderate" | "low"}
  ],
  "strongest_opposition_point": "the single strongest argument from residents",
  "weakest_opposition_point": "the weakest or most easily rebutted resident argument",
  "overall_assessment": "3-4 sentences of strategic advice for the petitioner"
}

Include 4-6 key_arguments (mix of both sides) and 3-5 recommended_rebuttals. Be SPECIFIC — cite moments from the transcript.`

const agentToolInstruction = `

First, use the compute_approval_score tool to calculate a quantitative score. Rate each factor 0-10 based on the debate, then use the tool's score as approval_score in your JSON answer. Return ONLY the JSON object after using the scoring tool.`

// AgentTier is the primary strategy: a multi-step model call that scores the
// debate with the compute_approval_score tool before answering. Tool calls
// are executed locally; the loop is bounded so a confused model cannot spin.
type AgentTier struct {
	model        model.Model
	maxToolTurns int
}

// NewAgentTier constructs the tool-assisted analysis tier.
func NewAgentTier(m model.Model) *AgentTier {
	return &AgentTier{model: m, maxToolTurns: 4}
}

// Name implements Tier.
func (t *AgentTier) Name() string { return "agent" }

// Analyze implements Tier.
func (t *AgentTier) Analyze(ctx context.Context, transcriptText, proposalSummary string) (*core.AnalysisResult, error) {
	prompt := fmt.Sprintf(analystPrompt, capText(transcriptText, maxTranscriptChars), capText(proposalSummary, maxProposalChars)) + agentToolInstruction

	messages := []model.Message{{Role: "user", Text: prompt}}
	for turn := 0; turn < t.maxToolTurns; turn++ {
		resp, err := generate(ctx, t.model, model.Request{
			System:    "You are a political strategy consultant. Use the scoring tool before answering.",
			Messages:  messages,
			MaxTokens: 4096,
			Tools:     []model.ToolDefinition{ScoreToolDefinition()},
		})
		if err != nil {
			return nil, err
		}

		if len(resp.ToolCalls) == 0 {
			return Parse(resp.Text)
		}

		// Execute requested tool calls locally and continue the exchange.
		messages = append(messages, model.Message{
			Role:      "assistant",
			Text:      resp.Text,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			if call.Name != ScoreToolName {
				return nil, fmt.Errorf("unexpected tool call %q", call.Name)
			}
			output, err := RunScoreTool(call.Arguments)
			if err != nil {
				return nil, err
			}
			messages = append(messages, model.Message{
				Role:         "tool",
				ToolResponse: &model.ToolResponse{ID: call.ID, Name: call.Name, Content: output},
			})
		}
	}
	return nil, fmt.Errorf("tool loop exceeded %d turns", t.maxToolTurns)
}

// DirectTier is the safety net: a single plain completion with the analyst
// prompt and no tools.
type DirectTier struct {
	model model.Model
}

// NewDirectTier constructs the direct-completion fallback tier.
func NewDirectTier(m model.Model) *DirectTier {
	return &DirectTier{model: m}
}

// Name implements Tier.
func (t *DirectTier) Name() string { return "direct" }

// Analyze implements Tier.
func (t *DirectTier) Analyze(ctx context.Context, transcriptText, proposalSummary string) (*core.AnalysisResult, error) {
	prompt := fmt.Sprintf(analystPrompt, capText(transcriptText, maxTranscriptChars), capText(proposalSummary, maxProposalChars))

	resp, err := generate(ctx, t.model, model.Request{
		Messages:  []model.Message{{Role: "user", Text: prompt}},
		MaxTokens: 4096,
	})
	if err != nil {
		return nil, err
	}
	return Parse(resp.Text)
}

// generate drains a non-streaming model call down to its final response.
func generate(ctx context.Context, m model.Model, req model.Request) (*model.Response, error) {
	respCh, errCh := m.Generate(ctx, req)
	var final *model.Response
	for resp := range respCh {
		if !resp.Partial {
			r := resp
			final = &r
		}
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	if final == nil {
		return nil, fmt.Errorf("model produced no final response")
	}
	return final, nil
}

// capText truncates s to at most n bytes.
func capText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/civiclab/councilsim/model"
)

// ScoreToolName is the function name exposed to the model for quantitative
// scoring during the tool-assisted analysis tier.
const ScoreToolName = "compute_approval_score"

// scoreBaseline and the factor weights reproduce the documented approval
// formula: each factor's deviation from 5 is scaled by weight*10 and added
// to the baseline, then clamped to [0,100].
const scoreBaseline = 50.0

// factorWeights in presentation order.
var factorWeights = []struct {
	name   string
	weight float64
}{
	{"petitioner_argument_quality", 0.25},
	{"opposition_strength", -0.20},
	{"council_receptiveness", 0.20},
	{"economic_benefit_clarity", 0.15},
	{"environmental_mitigation", 0.10},
	{"community_benefit_offered", 0.10},
}

// Score computes the weighted approval likelihood from factor ratings
// (each 0-10). Missing factors default to the neutral rating 5.
func Score(factors map[string]float64) float64 {
	score := scoreBaseline
	for _, fw := range factorWeights {
		value, ok := factors[fw.name]
		if !ok {
			value = 5.0
		}
		score += (value - 5.0) * fw.weight * 10
	}
	return clamp(score, 0, 100)
}

// ScoreLabel maps a score to its qualitative label.
func ScoreLabel(score float64) string {
	switch {
	case score >= 71:
		return "Likely Approved"
	case score >= 51:
		return "Uncertain - Leaning Approve"
	case score >= 31:
		return "Uncertain - Leaning Deny"
	default:
		return "Likely Denied"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ScoreToolDefinition declares the scoring function for tool-capable models.
func ScoreToolDefinition() model.ToolDefinition {
	properties := map[string]any{}
	for _, fw := range factorWeights {
		properties[fw.name] = map[string]any{
			"type":    "number",
			"minimum": 0,
			"maximum": 10,
		}
	}
	return model.ToolDefinition{
		Name: ScoreToolName,
		Description: "Calculate the likelihood of city council approval based on debate factors. " +
			"Uses a weighted scoring formula to produce a 0-100 score.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   []string{"petitioner_argument_quality", "opposition_strength"},
		},
	}
}

// RunScoreTool executes a compute_approval_score call locally. Arguments is
// the JSON payload supplied by the model; unknown factors are ignored and
// missing ones rated neutral. The returned text mirrors what the model sees
// as the tool result.
func RunScoreTool(arguments string) (string, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(arguments), &raw); err != nil {
		return "", fmt.Errorf("score tool arguments: %w", err)
	}

	factors := make(map[string]float64, len(factorWeights))
	for _, fw := range factorWeights {
		if v, ok := raw[fw.name].(float64); ok {
			factors[fw.name] = v
		}
	}
	score := Score(factors)

	var sb strings.Builder
	fmt.Fprintf(&sb, "APPROVAL SCORE: %.1f/100\n", score)
	fmt.Fprintf(&sb, "LABEL: %s\n\n", ScoreLabel(score))
	sb.WriteString("Factor Breakdown:\n")
	for _, fw := range factorWeights {
		value, ok := factors[fw.name]
		if !ok {
			value = 5.0
		}
		impact := (value - 5.0) * fw.weight * 10
		sign := ""
		if impact >= 0 {
			sign = "+"
		}
		fmt.Fprintf(&sb, "  %s: %g/10 (weight: %+.2f, impact: %s%.1f)\n", fw.name, value, fw.weight, sign, impact)
	}
	return sb.String(), nil
}

package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/civiclab/councilsim/core"
)

// ErrNoJSON indicates the response text contained no JSON object at all.
var ErrNoJSON = errors.New("no JSON object in response")

// ErrScoreInvalid indicates the approval score was absent, non-numeric or
// outside [0,100]. Either way the tier that produced the response failed.
var ErrScoreInvalid = errors.New("approval score missing or invalid")

// Parse extracts the analysis object from raw model output. Only the
// approval score is mandatory; every other field falls back to a documented
// default (label "Uncertain", empty lists, empty strings) so a sparse but
// scored response still succeeds.
func Parse(text string) (*core.AnalysisResult, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoJSON
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &data); err != nil {
		return nil, fmt.Errorf("analysis JSON: %w", err)
	}

	score, err := numericScore(data["approval_score"])
	if err != nil {
		return nil, err
	}

	result := &core.AnalysisResult{
		ApprovalScore:            score,
		ApprovalLabel:            stringOr(data["approval_label"], "Uncertain"),
		ApprovalReasoning:        stringOr(data["approval_reasoning"], ""),
		KeyArguments:             parseArguments(data["key_arguments"]),
		RecommendedRebuttals:     parseRebuttals(data["recommended_rebuttals"]),
		StrongestOppositionPoint: stringOr(data["strongest_opposition_point"], ""),
		WeakestOppositionPoint:   stringOr(data["weakest_opposition_point"], ""),
		OverallAssessment:        stringOr(data["overall_assessment"], ""),
	}
	return result, nil
}

// numericScore accepts JSON numbers and numeric strings; anything else, or
// a value outside [0,100], fails the tier.
func numericScore(v any) (float64, error) {
	var score float64
	switch val := v.(type) {
	case float64:
		score = val
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, ErrScoreInvalid
		}
		score = parsed
	default:
		return 0, ErrScoreInvalid
	}
	if score < 0 || score > 100 {
		return 0, ErrScoreInvalid
	}
	return score, nil
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func parseArguments(v any) []core.ArgumentSummary {
	out := []core.ArgumentSummary{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, core.ArgumentSummary{
			Side:         stringOr(m["side"], ""),
			Argument:     stringOr(m["argument"], ""),
			Strength:     stringOr(m["strength"], ""),
			RelevantData: stringOr(m["relevant_data"], ""),
		})
	}
	return out
}

func parseRebuttals(v any) []core.RecommendedRebuttal {
	out := []core.RecommendedRebuttal{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, core.RecommendedRebuttal{
			Concern:        stringOr(m["concern"], ""),
			Rebuttal:       stringOr(m["rebuttal"], ""),
			SupportingData: stringOr(m["supporting_data"], ""),
			Effectiveness:  stringOr(m["effectiveness"], "moderate"),
		})
	}
	return out
}

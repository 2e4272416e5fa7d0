package core

// ArgumentSummary captures one notable argument from the debate.
// Side is "opposition" or "petitioner"; Strength is "strong", "moderate" or
// "weak".
type ArgumentSummary struct {
	Side         string `json:"side"`
	Argument     string `json:"argument"`
	Strength     string `json:"strength"`
	RelevantData string `json:"relevant_data,omitempty"`
}

// RecommendedRebuttal is strategic advice for addressing a specific concern
// raised during the hearing. Effectiveness is "high", "moderate" or "low".
type RecommendedRebuttal struct {
	Concern        string `json:"concern"`
	Rebuttal       string `json:"rebuttal"`
	SupportingData string `json:"supporting_data,omitempty"`
	Effectiveness  string `json:"effectiveness,omitempty"`
}

// AnalysisResult is the post-debate scoring produced by the analysis fallback
// chain. Produced at most once per session and never overwritten.
type AnalysisResult struct {
	ApprovalScore            float64               `json:"approval_score"`
	ApprovalLabel            string                `json:"approval_label"`
	ApprovalReasoning        string                `json:"approval_reasoning,omitempty"`
	KeyArguments             []ArgumentSummary     `json:"key_arguments"`
	RecommendedRebuttals     []RecommendedRebuttal `json:"recommended_rebuttals"`
	StrongestOppositionPoint string                `json:"strongest_opposition_point,omitempty"`
	WeakestOppositionPoint   string                `json:"weakest_opposition_point,omitempty"`
	OverallAssessment        string                `json:"overall_assessment,omitempty"`
}

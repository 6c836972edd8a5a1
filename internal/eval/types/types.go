// Package types holds the structured response shapes the grading service
// expects back from the model. Every struct here is a decode target for a
// JSON-only structured call.
package types

// ExtractedQA is one question/answer pair pulled out of a student document.
type ExtractedQA struct {
	Question        string `json:"question"`
	StudentAnswer   string `json:"student_answer"`
	IsAnswerPresent bool   `json:"is_answer_present"`
}

type ExtractedQAList struct {
	QAPairs []ExtractedQA `json:"qa_pairs"`
}

// EvalDetail is the per-question grading verdict.
type EvalDetail struct {
	Question      string   `json:"question"`
	StudentAnswer string   `json:"student_answer"`
	CorrectAnswer string   `json:"correct_answer"`
	IsCorrect     bool     `json:"is_correct"`
	PartialCredit *float64 `json:"partial_credit"`
	Feedback      string   `json:"feedback"`
}

// Vote collapses the verdict into a coarse score bucket for majority voting:
// 1.0 when correct, else the partial-credit value when present, else 0.0.
func (d *EvalDetail) Vote() float64 {
	if d.IsCorrect {
		return 1.0
	}
	if d.PartialCredit != nil {
		return *d.PartialCredit
	}
	return 0.0
}

// PPTEvalCriteria scores one rubric axis 0-100 with a short note.
type PPTEvalCriteria struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

type PPTEvaluation struct {
	ContentQuality PPTEvalCriteria `json:"content_quality"`
	Structure      PPTEvalCriteria `json:"structure"`
	Alignment      PPTEvalCriteria `json:"alignment"`
	Strengths      []string        `json:"strengths"`
	Improvements   []string        `json:"improvements"`
	Summary        string          `json:"summary"`
}

type PPTDesignEvaluation struct {
	VisualClarity      PPTEvalCriteria `json:"visual_clarity"`
	LayoutBalance      PPTEvalCriteria `json:"layout_balance"`
	ColorConsistency   PPTEvalCriteria `json:"color_consistency"`
	Typography         PPTEvalCriteria `json:"typography"`
	VisualAppeal       PPTEvalCriteria `json:"visual_appeal"`
	DesignStrengths    []string        `json:"design_strengths"`
	DesignImprovements []string        `json:"design_improvements"`
	DesignSummary      string          `json:"design_summary"`
}

// GitProjectInfo describes what a repository is and how it is built.
type GitProjectInfo struct {
	ProjectAbout     string   `json:"project_about"`
	ProjectUse       string   `json:"project_use"`
	TechnologyStack  []string `json:"technology_stack"`
	Features         []string `json:"features"`
	ProjectStructure string   `json:"project_structure"`
}

type GitRuleResult struct {
	RuleText      string `json:"rule_text"`
	IsSatisfied   bool   `json:"is_satisfied"`
	Severity      string `json:"severity"`
	Evidence      string `json:"evidence"`
	FailureReason string `json:"failure_reason"`
}

type GitTechMismatch struct {
	ExpectedFromDescription string `json:"expected_from_description"`
	ActualFromCode          string `json:"actual_from_code"`
	HasMismatch             bool   `json:"has_mismatch"`
	Details                 string `json:"details"`
}

// GitGradingResult answers the grader's question about a repository.
// ScorePercent is kept for wire compatibility but no longer drives grading.
type GitGradingResult struct {
	RulesSummary            string          `json:"rules_summary"`
	OverallComment          string          `json:"overall_comment"`
	ConversationalResponse  string          `json:"conversational_response"`
	ScorePercent            *float64        `json:"score_percent"`
	DetectedTechnologyStack []string        `json:"detected_technology_stack"`
	RuleResults             []GitRuleResult `json:"rule_results"`
	TechnologyMismatch      GitTechMismatch `json:"technology_mismatch"`
}

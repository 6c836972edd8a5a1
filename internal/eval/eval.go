// Package eval builds grading prompts and drives the structured generation
// client for every evaluation the service offers: QA extraction, per-question
// consensus grading, presentation rubrics and repository analysis.
package eval

import (
	"context"
	"fmt"
	"strings"

	"github.com/ManojkumarGunda/Assignment-Agent/internal/eval/types"
	"github.com/ManojkumarGunda/Assignment-Agent/internal/github"
	"github.com/ManojkumarGunda/Assignment-Agent/internal/llm"
)

// Default prompt budgets; overridable via Service fields.
const (
	DefaultPerFileCharLimit = 15000
	DefaultTotalCharLimit   = 100000

	// extractInputLimit clips document text fed to QA extraction.
	extractInputLimit = 45000

	generateMaxOutputTokens = 50000
)

// Service is the grading facade over the generation client.
type Service struct {
	Client *llm.Client

	// EvalModel is the pinned, stable model used for per-question grading so
	// grading results do not drift when the default model changes.
	EvalModel string

	PerFileCharLimit int
	TotalCharLimit   int
}

func New(client *llm.Client, evalModel string) *Service {
	return &Service{
		Client:           client,
		EvalModel:        strings.TrimSpace(evalModel),
		PerFileCharLimit: DefaultPerFileCharLimit,
		TotalCharLimit:   DefaultTotalCharLimit,
	}
}

// ExtractQA pulls question/answer pairs out of raw document text.
func (s *Service) ExtractQA(ctx context.Context, text string) ([]types.ExtractedQA, error) {
	prompt := fmt.Sprintf(`### ROLE: You are a senior backend engineer and NLP specialist.
Analyze and extract Question-Answer pairs.

### IMPORTANT RULES:
1. Question labels: Q, Q., Q:, Q), Ques, Question, etc.
2. Answer labels: Answer, Ans, A, A:, etc.
3. Extract FULL text even if multi-line.

### TEXT TO ANALYZE:
%s`, clip(text, extractInputLimit))

	var out types.ExtractedQAList
	res := s.Client.Execute(ctx, llm.Request{
		Text:      prompt,
		System:    jsonOnly("qa_pairs: list of {question, student_answer, is_answer_present}"),
		Out:       &out,
		Operation: "QA Extraction",
	})
	if !res.Success {
		return nil, res.Failure
	}
	return out.QAPairs, nil
}

// EvaluateQA grades one answer with the 3-way consensus protocol and returns
// the winning verdict plus the vote list for auditability.
func (s *Service) EvaluateQA(ctx context.Context, description, question, studentAnswer string) (*types.EvalDetail, []float64, error) {
	prompt := fmt.Sprintf(`### ROLE: You are a strict and consistent academic grader.
Evaluate the student's answer based ONLY on the provided rubric and question.

### RUBRIC/ASSIGNMENT DESCRIPTION:
%s

### QUESTION:
%s

### STUDENT ANSWER:
%s

### GRADING RULES (STRICT & DETERMINISTIC):
1. **RELEVANCE CHECK (CRITICAL)**:
   - If the student's answer is unrelated to the question or Rubric (Topic Mismatch), score MUST be **0.0**.
   - If the answer is blank or nonsense, score MUST be **0.0**.

2. **SCORING TIERS (SELECT ONE ONLY)**:
   - **1.0 (PERFECT)**: The answer is fully correct. All key concepts are present. Code runs perfectly with optimal structure.
   - **0.5 (PARTIAL)**: The logic is generally correct but has minor errors, typos, or is missing one minor detail. The core concept is understood.
   - **0.0 (FAIL)**: The code has critical syntax errors, logic flaws, security vulnerabilities, or fails to answer the core question.

3. **ZERO TOLERANCE RULES**:
   - **SYNTAX ERRORS**: If the code would fail to compile or run -> Score **0.0**.
   - **LOGIC FAILURES**: If the code outputs wrong results -> Score **0.0**.
   - **WRONG LANGUAGE**: If requested in Python but written in Java -> Score **0.0**.

4. **FINAL DECISION**:
   - You MUST select exactly one of the three options: 0.0, 0.5, or 1.0.
   - DO NOT give floating scores like 0.75, 0.9, or 0.2.
   - `+"`is_correct`"+` must be true IF AND ONLY IF score is 1.0.

5. **FEEDBACK**:
   - Provide the `+"`correct_answer`"+` for comparison.
   - Explain exactly why points were deducted (e.g., "Syntax error on line 5", "Missing edge case X").`,
		description, question, studentAnswer)

	res := s.Client.ExecuteWithConsensus(ctx, llm.Request{
		Text:      prompt,
		System:    jsonOnly("question, student_answer, correct_answer, is_correct, partial_credit, feedback"),
		Operation: "Question Evaluation Step",
		Model:     s.EvalModel,
	}, func() llm.Votable { return new(types.EvalDetail) })

	if !res.Outcome.Success {
		return nil, res.Votes, res.Outcome.Failure
	}
	return res.Response.(*types.EvalDetail), res.Votes, nil
}

// EvaluatePPT scores presentation content against its assignment.
func (s *Service) EvaluatePPT(ctx context.Context, title, description string, totalSlides int, slidesText string) (*types.PPTEvaluation, error) {
	prompt := fmt.Sprintf("Evaluate PPT Content:\nTitle: %s\nDescription: %s\nSlides: %d\n\nContent:\n%s",
		title, description, totalSlides, slidesText)

	var out types.PPTEvaluation
	res := s.Client.Execute(ctx, llm.Request{
		Text:      prompt,
		System:    jsonOnly("content_quality, structure, alignment (each {score 0-100, feedback}), strengths, improvements, summary"),
		Out:       &out,
		Operation: "PPT Evaluation",
	})
	if !res.Success {
		return nil, res.Failure
	}
	return &out, nil
}

// EvaluatePPTDesign scores slide design from extracted metadata.
func (s *Service) EvaluatePPTDesign(ctx context.Context, designDescription, filename string, totalSlides int) (*types.PPTDesignEvaluation, error) {
	prompt := fmt.Sprintf("Evaluate PPT Design:\nFile: %s\nSlides: %d\n\nMetadata:\n%s",
		filename, totalSlides, designDescription)

	var out types.PPTDesignEvaluation
	res := s.Client.Execute(ctx, llm.Request{
		Text:      prompt,
		System:    pptDesignShape,
		Out:       &out,
		Operation: "PPT Design Evaluation",
	})
	if !res.Success {
		return nil, res.Failure
	}
	return &out, nil
}

// EvaluatePPTDesignVision scores slide design from rendered slide images.
func (s *Service) EvaluatePPTDesignVision(ctx context.Context, slideImages []llm.Blob) (*types.PPTDesignEvaluation, error) {
	var out types.PPTDesignEvaluation
	res := s.Client.Execute(ctx, llm.Request{
		Text:      "Evaluate the design and visual quality of these PowerPoint slides.",
		Blobs:     slideImages,
		System:    pptDesignShape,
		Out:       &out,
		Operation: "PPT Vision Design Evaluation",
	})
	if !res.Success {
		return nil, res.Failure
	}
	return &out, nil
}

// EvaluateGitRepository summarizes what a repository is and how it is built.
func (s *Service) EvaluateGitRepository(ctx context.Context, repoURL string, files []github.File) (*types.GitProjectInfo, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found in repository")
	}
	var out types.GitProjectInfo
	res := s.Client.Execute(ctx, llm.Request{
		Text:      s.buildEvaluationPrompt(repoURL, files),
		System:    jsonOnly("project_about, project_use, technology_stack, features, project_structure"),
		Out:       &out,
		Operation: "Git Repo Analysis",
	})
	if !res.Success {
		return nil, res.Failure
	}
	return &out, nil
}

// GradeGitRepository answers the grader's question about the repository code.
func (s *Service) GradeGitRepository(ctx context.Context, repoURL string, files []github.File, description string) (*types.GitGradingResult, error) {
	if len(files) == 0 || strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("missing input: files and description are required")
	}
	var out types.GitGradingResult
	res := s.Client.Execute(ctx, llm.Request{
		Text:      s.buildGradingPrompt(repoURL, files, description),
		System:    jsonOnly("rules_summary, overall_comment, conversational_response, score_percent, detected_technology_stack, rule_results, technology_mismatch"),
		Out:       &out,
		Operation: "Git Repo Grading",
	})
	if !res.Success {
		return nil, res.Failure
	}
	return &out, nil
}

// Generate runs a free-form text call with no expected shape.
func (s *Service) Generate(ctx context.Context, prompt, systemMessage string, temperature float32) (string, error) {
	if strings.TrimSpace(systemMessage) == "" {
		systemMessage = "You are a professional assistant."
	}
	res := s.Client.Execute(ctx, llm.Request{
		Text:            prompt,
		System:          systemMessage,
		Temperature:     temperature,
		MaxOutputTokens: generateMaxOutputTokens,
		Operation:       "Generate Text",
	})
	if !res.Success {
		return "", res.Failure
	}
	return res.Text, nil
}

const pptDesignShape = "Respond with JSON only. Fields: visual_clarity, layout_balance, color_consistency, typography, visual_appeal (each {score 0-100, feedback}), design_strengths, design_improvements, design_summary."

func jsonOnly(fields string) string {
	return "Respond with JSON only, no prose outside the JSON. Fields: " + fields + "."
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

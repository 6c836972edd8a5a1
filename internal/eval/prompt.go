package eval

import (
	"fmt"
	"strings"

	"github.com/ManojkumarGunda/Assignment-Agent/internal/github"
)

// prepareFiles applies the prompt budgets: each file is clipped to the
// per-file character limit (annotated with how much was cut) and inclusion
// stops once the total budget is reached. truncMarkers controls whether the
// [TRUNCATED ...] annotation is appended; the grading prompt omits it.
func (s *Service) prepareFiles(files []github.File, truncMarkers bool) []github.File {
	perFile := s.PerFileCharLimit
	if perFile <= 0 {
		perFile = DefaultPerFileCharLimit
	}
	total := s.TotalCharLimit
	if total <= 0 {
		total = DefaultTotalCharLimit
	}

	prepared := make([]github.File, 0, len(files))
	current := 0
	for _, f := range files {
		content := f.Content
		note := ""
		if len(content) > perFile {
			if truncMarkers {
				note = fmt.Sprintf("\n[TRUNCATED %d chars]", len(content)-perFile)
			}
			content = content[:perFile]
		}
		if current+len(content) > total {
			break
		}
		prepared = append(prepared, github.File{Path: f.Path, Content: content + note})
		current += len(content)
	}
	return prepared
}

func (s *Service) buildEvaluationPrompt(repoURL string, files []github.File) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze GitHub: %s\n", repoURL)
	b.WriteString("Expert analyst persona. Read files carefully.\n")
	for _, f := range s.prepareFiles(files, true) {
		fmt.Fprintf(&b, "--- File: %s ---\n%s\n\n", f.Path, f.Content)
	}
	return b.String()
}

func (s *Service) buildGradingPrompt(repoURL string, files []github.File, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze GitHub: %s\n", repoURL)
	fmt.Fprintf(&b, "User Question/Request:\n%s\n", description)
	b.WriteString("Persona: You are a helpful, conversational Senior Engineer evaluator. Answer the user's question directly and thoroughly based on the code provided. Do not give a numerical score.\n")
	for _, f := range s.prepareFiles(files, false) {
		fmt.Fprintf(&b, "--- File: %s ---\n%s\n\n", f.Path, f.Content)
	}
	return b.String()
}

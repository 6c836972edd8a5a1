// Package extract holds the line-oriented heuristics that pull question/answer
// pairs out of plain text without an LLM call. The regex tables mirror the
// batch pipeline's behavior and are intentionally permissive; the structured
// extraction path is the accurate one, this is the quick/debug one.
package extract

import (
	"regexp"
	"strings"
)

type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

var (
	questionRe      = regexp.MustCompile(`(?i)^\s*(?:Question\b[:\s]*|Q\d*[:\s]*|Q\d+\b|\d+\s*[.)\-:])`)
	questionStripRe = regexp.MustCompile(`(?i)^\s*(?:Question\b[:\s]*|Q\d*[:\s]*|\d+\s*[.)\-:]\s*)`)
	answerMarkerRe  = regexp.MustCompile(`(?i)\bAnswer\b[:\s]*`)
	anyQuestionRe   = regexp.MustCompile(`(?im)\bQ(?:uestion)?\s*\d+\b|\bQ\d+\b|\bQuestion:\b|\bName:\b|\bStudent:\b|\bCandidate:\b|^\d+\.\s`)
)

// QAPairs walks the text line by line collecting question/answer pairs.
// Recognized layouts: tab-separated rows, numbered/labelled question lines
// followed by answer lines, and explicit "Answer:" markers.
func QAPairs(text string) []QAPair {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	rawLines := strings.Split(text, "\n")
	lines := make([]string, len(rawLines))
	for i, l := range rawLines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}

	var pairs []QAPair
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			i++
			continue
		}

		if strings.Contains(line, "\t") {
			if p, ok := tabRow(line); ok {
				pairs = append(pairs, p)
				i++
				continue
			}
		}

		if questionRe.MatchString(line) || strings.Contains(line, "?") {
			qtext := strings.TrimSpace(questionStripRe.ReplaceAllString(line, ""))
			if qtext == "" {
				qtext = line
			}

			var ansLines []string
			j := i + 1
			for j < len(lines) {
				l := strings.TrimSpace(lines[j])
				if l == "" {
					j++
					if j < len(lines) && questionRe.MatchString(lines[j]) {
						break
					}
					continue
				}
				if questionRe.MatchString(l) {
					break
				}
				if answerMarkerRe.MatchString(l) {
					if a := strings.TrimSpace(answerMarkerRe.ReplaceAllString(l, "")); a != "" {
						ansLines = append(ansLines, a)
					}
					j++
					for j < len(lines) && !questionRe.MatchString(lines[j]) {
						if s := strings.TrimSpace(lines[j]); s != "" {
							ansLines = append(ansLines, s)
						}
						j++
					}
					break
				}
				ansLines = append(ansLines, l)
				j++
			}

			pairs = append(pairs, QAPair{
				Question: qtext,
				Answer:   strings.TrimSpace(strings.Join(ansLines, " ")),
			})
			i = j
			continue
		}
		i++
	}
	return pairs
}

// tabRow interprets a tab-separated line as a question/answer row when any
// cell hints at one.
func tabRow(line string) (QAPair, bool) {
	cells := strings.Split(line, "\t")
	for k := range cells {
		cells[k] = strings.TrimSpace(cells[k])
	}
	hinted := false
	for _, c := range cells {
		lc := strings.ToLower(c)
		if strings.Contains(lc, "question") || strings.Contains(lc, "answer") || lc == "q" {
			hinted = true
			break
		}
	}
	if !hinted {
		return QAPair{}, false
	}
	p := QAPair{Question: cells[0]}
	if len(cells) > 1 {
		p.Answer = cells[1]
	}
	return p, true
}

// HasQuestions reports whether the text plausibly contains gradable questions.
func HasQuestions(text string, pairs []QAPair) bool {
	return len(pairs) > 0 || anyQuestionRe.MatchString(text)
}

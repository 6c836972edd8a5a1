// Package report renders evaluation results into PDF files.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/ManojkumarGunda/Assignment-Agent/internal/eval/types"
	"github.com/ManojkumarGunda/Assignment-Agent/internal/store"
)

// cleanReplacer maps characters the core fonts cannot render to close ASCII
// equivalents; everything else non-latin1 degrades to '?' below.
var cleanReplacer = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
	"–", "-", "—", "--",
	"•", "*", "…", "...",
)

func cleanText(s string) string {
	s = cleanReplacer.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x100 {
			b.WriteRune(r)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// GeneratePDF writes the evaluation report to a temp file and returns its path.
func GeneratePDF(result *store.ResultRow, details []types.EvalDetail) (string, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 15)
		pdf.CellFormat(0, 10, "Assignment Evaluation Report", "", 1, "C", false, 0, "")
		pdf.Ln(10)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AliasNbPages("")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)

	// Student info
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(40, 10, "Student Name:", "", 0, "", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 10, cleanText(result.StudentName), "", 1, "", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(40, 10, "Score:", "", 0, "", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 10, fmt.Sprintf("%.1f%%", result.ScorePercent), "", 1, "", false, 0, "")

	pdf.Ln(5)

	if result.Reasoning != "" {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 10, "Overall Feedback / Reasoning:", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 7, cleanText(result.Reasoning), "", "", false)
		pdf.Ln(5)
	}
	if result.Summary != "" {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 10, "Summary:", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 7, cleanText(result.Summary), "", "", false)
		pdf.Ln(5)
	}

	if len(details) > 0 {
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, "Detailed Evaluation", "", 1, "L", false, 0, "")
		pdf.Ln(5)

		for idx, d := range details {
			pdf.SetFont("Arial", "B", 11)
			pdf.MultiCell(0, 7, cleanText(fmt.Sprintf("Q%d: %s", idx+1, d.Question)), "", "", false)

			pdf.SetFont("Arial", "I", 11)
			pdf.MultiCell(0, 7, cleanText("Student Answer: "+d.StudentAnswer), "", "", false)

			pdf.SetFont("Arial", "", 11)
			status := "Incorrect"
			if d.IsCorrect {
				status = "Correct"
			}
			pdf.MultiCell(0, 7, "Status: "+status, "", "", false)
			pdf.MultiCell(0, 7, cleanText("Feedback: "+d.Feedback), "", "", false)

			pdf.Ln(5)
			pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
			pdf.Ln(5)
		}
	}

	name := fmt.Sprintf("report_%d_%s.pdf", result.ID, strings.ReplaceAll(result.StudentName, " ", "_"))
	path := filepath.Join(os.TempDir(), name)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", err
	}
	return path, nil
}

package evaluations

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// RenderReport produces a one-page PDF summary of a finalized evaluation.
func RenderReport(eval Evaluation, employeeName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Performance Evaluation")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", employeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s (%s)", eval.Period, eval.Type))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", eval.Status))
	pdf.Ln(10)

	pdf.Cell(0, 8, fmt.Sprintf("Goals score: %s", scoreText(eval.GoalsScore)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Behavior score: %s", scoreText(eval.BehaviorScore)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Initiatives score: %s", scoreText(eval.InitiativesScore)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Training impact: %s", eval.TrainingImpact.String()))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Final score: %s", scoreText(eval.FinalScore)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Final rating: %s", eval.FinalRating))
	pdf.SetFont("Helvetica", "", 12)

	if eval.ManagerNotes != "" {
		pdf.Ln(10)
		pdf.MultiCell(0, 6, "Manager notes: "+eval.ManagerNotes, "", "L", false)
	}
	if len(eval.Items) > 0 {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Items")
		pdf.SetFont("Helvetica", "", 11)
		pdf.Ln(8)
		for _, item := range eval.Items {
			pdf.Cell(0, 6, fmt.Sprintf("- [%s] %s: %s", item.ItemType, item.Title, item.Score.String()))
			pdf.Ln(6)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scoreText(score *decimal.Decimal) string {
	if score == nil {
		return "-"
	}
	return score.String()
}

package app

import (
	"fmt"
	"strings"
	"time"

	"quiz-report-service/internal/domain"
)

const (
	// NoAnswer stands in for the user's choice when a question was not answered.
	NoAnswer = "-"
	// TimestampLayout renders completion times for people, not machines.
	TimestampLayout = "1/2/2006, 3:04:05 PM"
)

// FormatReport builds the per-question breakdown in bank order. It is total:
// absent or out-of-range selections render as NoAnswer and count as incorrect.
func FormatReport(bank domain.Bank, selections []int, score int, completedAt time.Time) domain.Report {
	entries := make([]domain.ReportEntry, 0, bank.Len())
	for i, q := range bank.Questions {
		sel := domain.NoSelection
		if i < len(selections) {
			sel = selections[i]
		}
		your := NoAnswer
		if q.HasChoice(sel) {
			your = q.Choices[sel]
		}
		correct := NoAnswer
		if q.HasChoice(q.CorrectIndex) {
			correct = q.Choices[q.CorrectIndex]
		}
		entries = append(entries, domain.ReportEntry{
			Number:        i + 1,
			Question:      q.Text,
			Correct:       sel == q.CorrectIndex,
			YourAnswer:    your,
			CorrectAnswer: correct,
			Explanation:   q.Explanation,
		})
	}

	stamp := NoAnswer
	if !completedAt.IsZero() {
		stamp = completedAt.Format(TimestampLayout)
	}

	return domain.Report{
		Score:       score,
		Total:       bank.Len(),
		Summary:     fmt.Sprintf("%d / %d", score, bank.Len()),
		CompletedAt: stamp,
		Entries:     entries,
	}
}

// Breakdown renders the report as the plain-text body sent by email.
func Breakdown(report domain.Report) string {
	blocks := make([]string, 0, len(report.Entries))
	for _, e := range report.Entries {
		mark := "✗"
		if e.Correct {
			mark = "✓"
		}
		blocks = append(blocks, strings.Join([]string{
			fmt.Sprintf("Q%d: %s", e.Number, e.Question),
			"Correct: " + e.CorrectAnswer,
			fmt.Sprintf("Your: %s %s", e.YourAnswer, mark),
			"Why: " + e.Explanation,
			"---",
		}, "\n"))
	}
	return strings.Join(blocks, "\n")
}

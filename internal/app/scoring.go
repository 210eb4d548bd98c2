package app

import "quiz-report-service/internal/domain"

// ComputeScore counts the questions whose selection matches the correct index.
// Missing or absent selections never match. It is safe to call mid-quiz.
func ComputeScore(bank domain.Bank, selections []int) int {
	score := 0
	for i, q := range bank.Questions {
		if i < len(selections) && selections[i] == q.CorrectIndex {
			score++
		}
	}
	return score
}

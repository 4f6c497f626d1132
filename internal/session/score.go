package session

import (
	"math"

	"github.com/saulo-duarte/quizmaker/internal/domain/models"
)

type Result struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Score counts the questions whose selected answer is the correct one.
// Percentage is 0 for a quiz without questions.
func Score(quiz *models.Quiz, answers models.UserAnswers) Result {
	if quiz == nil {
		return Result{}
	}

	r := Result{Total: len(quiz.Questions)}
	for _, q := range quiz.Questions {
		correct, ok := q.CorrectAnswer()
		if !ok {
			continue
		}
		if selected, answered := answers[q.ID]; answered && selected == correct.ID {
			r.Correct++
		}
	}
	if r.Total > 0 {
		r.Percentage = int(math.Round(100 * float64(r.Correct) / float64(r.Total)))
	}
	return r
}

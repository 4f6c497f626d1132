package models

import (
	util "github.com/saulo-duarte/quizmaker/internal/utils"
)

// Shapes exchanged between the generator, the HTTP API, the store read layer
// and the interactive session.

type Answer struct {
	ID      string `json:"id"`
	Answer  string `json:"answer"`
	Correct bool   `json:"correct"`
}

type Question struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	Explanation string   `json:"explanation"`
	Answers     []Answer `json:"answers"`
}

type Quiz struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
}

// UserAnswers maps a question id to the selected answer id.
type UserAnswers map[string]string

type QuizCategory struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type PublishedQuiz struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	CreateDate  util.DateTime `json:"create_date"`
}

type CategoryWithQuizzes struct {
	ID      uint            `json:"id"`
	Title   string          `json:"title"`
	Quizzes []PublishedQuiz `json:"quizzes"`
}

type PublishRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Questions    []Question `json:"questions"`
	CategoryName string     `json:"categoryName"`
}

type PublishResult struct {
	Message    string        `json:"message"`
	QuizID     uint          `json:"quizId"`
	CreateDate util.DateTime `json:"createDate"`
}

type GenerateRequest struct {
	Category string `json:"category"`
	Title    string `json:"title"`
}

// CorrectAnswer returns the first answer flagged correct.
func (q Question) CorrectAnswer() (Answer, bool) {
	for _, a := range q.Answers {
		if a.Correct {
			return a, true
		}
	}
	return Answer{}, false
}

// FindAnswer looks up an answer by id.
func (q Question) FindAnswer(id string) (Answer, bool) {
	for _, a := range q.Answers {
		if a.ID == id {
			return a, true
		}
	}
	return Answer{}, false
}

// FindQuestion looks up a question by id.
func (q *Quiz) FindQuestion(id string) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

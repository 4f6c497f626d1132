package aiquiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/quizmaker/internal/apperr"
	"github.com/saulo-duarte/quizmaker/internal/config"
	"github.com/saulo-duarte/quizmaker/internal/domain/models"
	"github.com/sirupsen/logrus"
)

const (
	msgGenerationFailed = "Failed to generate quiz. The AI may be experiencing high demand. Please try again later."
	msgTopicRequired    = "Please provide a topic for the quiz."
	msgFieldsRequired   = "Category and title are required."
)

type Service interface {
	Generate(ctx context.Context, topic string) (*models.Quiz, error)
	GenerateForTopic(ctx context.Context, category, title string) (*models.Quiz, error)
}

type service struct {
	provider Provider
	timeout  time.Duration
	newID    func() string
}

func NewService(provider Provider, timeout time.Duration) Service {
	return &service{
		provider: provider,
		timeout:  timeout,
		newID:    uuid.NewString,
	}
}

func (s *service) GenerateForTopic(ctx context.Context, category, title string) (*models.Quiz, error) {
	if strings.TrimSpace(category) == "" || strings.TrimSpace(title) == "" {
		return nil, apperr.Validation("aiquiz.generate", msgFieldsRequired)
	}
	return s.Generate(ctx, BuildTopicPrompt(category, title))
}

func (s *service) Generate(ctx context.Context, topic string) (*models.Quiz, error) {
	const op = "aiquiz.generate"
	log := config.WithContext(ctx)

	if strings.TrimSpace(topic) == "" {
		return nil, apperr.Validation(op, msgTopicRequired)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	raw, err := s.provider.SendPrompt(ctx, systemPrompt, buildUserPrompt(topic))
	if err != nil {
		log.WithError(err).Error("Quiz generation request failed")
		return nil, apperr.Generation(op, msgGenerationFailed, err)
	}

	generated, err := decodeQuiz(raw)
	if err != nil {
		log.WithError(err).Errorf("Invalid quiz payload from model:\n%s", raw)
		return nil, apperr.Generation(op, msgGenerationFailed, err)
	}

	quiz := s.assignIDs(generated)
	for _, q := range quiz.Questions {
		if n := countCorrect(q); n != 1 {
			log.WithFields(logrus.Fields{"question_id": q.ID, "correct": n}).
				Warn("Generated question does not have exactly one correct answer")
		}
	}

	log.WithFields(logrus.Fields{
		"questions":   len(quiz.Questions),
		"duration_ms": time.Since(started).Milliseconds(),
	}).Info("Quiz generated")
	return quiz, nil
}

func (s *service) assignIDs(g *generatedQuiz) *models.Quiz {
	quiz := &models.Quiz{
		Title:       strings.TrimSpace(g.Title),
		Description: strings.TrimSpace(g.Description),
		Questions:   make([]models.Question, 0, len(g.Questions)),
	}
	for _, gq := range g.Questions {
		q := models.Question{
			ID:          "q-" + s.newID(),
			Question:    strings.TrimSpace(gq.Question),
			Explanation: strings.TrimSpace(gq.Explanation),
			Answers:     make([]models.Answer, 0, len(gq.Answers)),
		}
		for _, ga := range gq.Answers {
			q.Answers = append(q.Answers, models.Answer{
				ID:      "a-" + s.newID(),
				Answer:  strings.TrimSpace(ga.Answer),
				Correct: ga.Correct,
			})
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	return quiz
}

// decodeQuiz parses an untrusted model payload and checks its shape.
func decodeQuiz(raw string) (*generatedQuiz, error) {
	clean := stripCodeFence(raw)
	if clean == "" {
		return nil, errors.New("empty payload")
	}

	var g generatedQuiz
	if err := json.Unmarshal([]byte(clean), &g); err != nil {
		return nil, fmt.Errorf("failed to decode quiz JSON: %w", err)
	}

	if len(g.Questions) == 0 {
		return nil, errors.New("quiz has no questions")
	}
	for i, q := range g.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return nil, fmt.Errorf("question %d has no text", i+1)
		}
		if len(q.Answers) == 0 {
			return nil, fmt.Errorf("question %d has no answers", i+1)
		}
		for j, a := range q.Answers {
			if strings.TrimSpace(a.Answer) == "" {
				return nil, fmt.Errorf("answer %d of question %d has no text", j+1, i+1)
			}
		}
	}
	return &g, nil
}

func stripCodeFence(raw string) string {
	clean := strings.TrimSpace(raw)
	if !strings.HasPrefix(clean, "```") {
		return clean
	}
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```JSON")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}

func countCorrect(q models.Question) int {
	n := 0
	for _, a := range q.Answers {
		if a.Correct {
			n++
		}
	}
	return n
}

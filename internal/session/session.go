package session

import (
	"context"
	"errors"
	"sync"

	"github.com/saulo-duarte/quizmaker/internal/domain/models"
)

type State string

const (
	SelectingTopic   State = "selecting_topic"
	Preview          State = "preview"
	Taking           State = "taking"
	Results          State = "results"
	ViewingPublished State = "viewing_published"
)

type PublishStatus string

const (
	PublishIdle    PublishStatus = "idle"
	PublishSuccess PublishStatus = "success"
	PublishError   PublishStatus = "error"
)

var (
	ErrBusy              = errors.New("another operation is still in progress")
	ErrInvalidTransition = errors.New("action not available in the current state")
	ErrIncompleteAnswers = errors.New("every question must be answered before submitting")
	ErrUnknownQuestion   = errors.New("question does not belong to the current quiz")
	ErrUnknownAnswer     = errors.New("answer does not belong to the question")
	ErrNotPublishable    = errors.New("only generated quizzes can be published")
	ErrAlreadyPublished  = errors.New("quiz has already been published")
	ErrNoQuiz            = errors.New("backend returned no quiz")
)

// Backend is the API the session drives.
type Backend interface {
	Generate(ctx context.Context, category, title string) (*models.Quiz, error)
	ListPublished(ctx context.Context) ([]models.CategoryWithQuizzes, error)
	GetQuiz(ctx context.Context, id uint) (*models.Quiz, error)
	Publish(ctx context.Context, quiz models.Quiz, categoryName string) (*models.PublishResult, error)
}

// Session is one user's journey through generating, taking and publishing a
// quiz. At most one backend call runs at a time; triggers made while it runs
// fail with ErrBusy.
type Session struct {
	mu      sync.Mutex
	backend Backend

	state     State
	loading   bool
	err       error
	quiz      *models.Quiz
	generated bool
	answers   models.UserAnswers
	result    *Result
	published []models.CategoryWithQuizzes

	publishStatus PublishStatus
	publishResult *models.PublishResult
}

func New(backend Backend) *Session {
	return &Session{
		backend:       backend,
		state:         SelectingTopic,
		answers:       models.UserAnswers{},
		publishStatus: PublishIdle,
	}
}

// Snapshot is a copy of the session taken under its lock.
type Snapshot struct {
	State         State
	Loading       bool
	Err           error
	Quiz          *models.Quiz
	Answers       models.UserAnswers
	Result        *Result
	Published     []models.CategoryWithQuizzes
	PublishStatus PublishStatus
	PublishResult *models.PublishResult
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make(models.UserAnswers, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return Snapshot{
		State:         s.state,
		Loading:       s.loading,
		Err:           s.err,
		Quiz:          s.quiz,
		Answers:       answers,
		Result:        s.result,
		Published:     s.published,
		PublishStatus: s.publishStatus,
		PublishResult: s.publishResult,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Generate asks the backend for a new quiz and moves to Preview. On failure
// the session stays in SelectingTopic with the error recorded.
func (s *Session) Generate(ctx context.Context, category, title string) error {
	if err := s.begin(SelectingTopic); err != nil {
		return err
	}

	quiz, err := s.backend.Generate(ctx, category, title)
	if err == nil && quiz == nil {
		err = ErrNoQuiz
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = err
		return err
	}
	s.loadQuiz(quiz, true)
	s.state = Preview
	return nil
}

func (s *Session) StartQuiz() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(Preview); err != nil {
		return err
	}
	s.state = Taking
	return nil
}

// SelectAnswer records the answer for a question, replacing any earlier one.
func (s *Session) SelectAnswer(questionID, answerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(Taking); err != nil {
		return err
	}
	question, ok := s.quiz.FindQuestion(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if _, ok := question.FindAnswer(answerID); !ok {
		return ErrUnknownAnswer
	}
	s.answers[questionID] = answerID
	return nil
}

// Submit scores the quiz and moves to Results once every question has an
// answer.
func (s *Session) Submit() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(Taking); err != nil {
		return Result{}, err
	}
	for _, q := range s.quiz.Questions {
		if _, ok := s.answers[q.ID]; !ok {
			return Result{}, ErrIncompleteAnswers
		}
	}

	result := Score(s.quiz, s.answers)
	s.result = &result
	s.state = Results
	return result, nil
}

// Reset discards the quiz and the answers and returns to SelectingTopic.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading {
		return ErrBusy
	}
	s.quiz = nil
	s.generated = false
	s.answers = models.UserAnswers{}
	s.result = nil
	s.err = nil
	s.publishStatus = PublishIdle
	s.publishResult = nil
	s.state = SelectingTopic
	return nil
}

func (s *Session) ViewPublished(ctx context.Context) error {
	if err := s.begin(SelectingTopic); err != nil {
		return err
	}

	content, err := s.backend.ListPublished(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = err
		return err
	}
	s.published = content
	s.state = ViewingPublished
	return nil
}

func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ViewingPublished); err != nil {
		return err
	}
	s.err = nil
	s.state = SelectingTopic
	return nil
}

// SelectQuiz loads a published quiz and starts taking it. On failure the
// session stays in ViewingPublished with the error recorded.
func (s *Session) SelectQuiz(ctx context.Context, id uint) error {
	if err := s.begin(ViewingPublished); err != nil {
		return err
	}

	quiz, err := s.backend.GetQuiz(ctx, id)
	if err == nil && quiz == nil {
		err = ErrNoQuiz
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = err
		return err
	}
	s.loadQuiz(quiz, false)
	s.state = Taking
	return nil
}

// Publish persists the generated quiz from Results. It only updates the
// publish status and never changes state. A failed publish may be retried; a
// successful one may not.
func (s *Session) Publish(ctx context.Context, categoryName string) (*models.PublishResult, error) {
	s.mu.Lock()
	if err := s.check(Results); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if !s.generated {
		s.mu.Unlock()
		return nil, ErrNotPublishable
	}
	if s.publishStatus == PublishSuccess {
		s.mu.Unlock()
		return nil, ErrAlreadyPublished
	}
	quiz := *s.quiz
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	result, err := s.backend.Publish(ctx, quiz, categoryName)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = err
		s.publishStatus = PublishError
		return nil, err
	}
	s.publishStatus = PublishSuccess
	s.publishResult = result
	return result, nil
}

// begin enters the loading sub-state for a backend call made from state from.
func (s *Session) begin(from State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(from); err != nil {
		return err
	}
	s.loading = true
	s.err = nil
	return nil
}

func (s *Session) check(want State) error {
	if s.loading {
		return ErrBusy
	}
	if s.state != want {
		return ErrInvalidTransition
	}
	return nil
}

func (s *Session) loadQuiz(quiz *models.Quiz, generated bool) {
	s.quiz = quiz
	s.generated = generated
	s.answers = models.UserAnswers{}
	s.result = nil
	s.publishStatus = PublishIdle
	s.publishResult = nil
}

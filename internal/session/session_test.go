package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/saulo-duarte/quizmaker/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	quiz      *models.Quiz
	published []models.CategoryWithQuizzes
	err       error

	// gate, when set, blocks calls until it is closed.
	gate    chan struct{}
	entered chan struct{}

	publishedWith string
	publishCalls  int
}

func (f *fakeBackend) wait() {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeBackend) Generate(_ context.Context, _, _ string) (*models.Quiz, error) {
	f.wait()
	return f.quiz, f.err
}

func (f *fakeBackend) ListPublished(context.Context) ([]models.CategoryWithQuizzes, error) {
	f.wait()
	return f.published, f.err
}

func (f *fakeBackend) GetQuiz(_ context.Context, _ uint) (*models.Quiz, error) {
	f.wait()
	return f.quiz, f.err
}

func (f *fakeBackend) Publish(_ context.Context, _ models.Quiz, categoryName string) (*models.PublishResult, error) {
	f.wait()
	f.publishCalls++
	f.publishedWith = categoryName
	if f.err != nil {
		return nil, f.err
	}
	return &models.PublishResult{Message: "Quiz published successfully!", QuizID: 7}, nil
}

// makeQuiz builds a quiz of n questions with three answers each; the second
// answer is the correct one.
func makeQuiz(n int) *models.Quiz {
	q := &models.Quiz{Title: "Quiz", Description: "d", Questions: []models.Question{}}
	for i := 0; i < n; i++ {
		q.Questions = append(q.Questions, models.Question{
			ID:       fmt.Sprintf("q-%d", i),
			Question: fmt.Sprintf("Question %d", i),
			Answers: []models.Answer{
				{ID: fmt.Sprintf("a-%d-0", i), Answer: "wrong"},
				{ID: fmt.Sprintf("a-%d-1", i), Answer: "right", Correct: true},
				{ID: fmt.Sprintf("a-%d-2", i), Answer: "also wrong"},
			},
		})
	}
	return q
}

func answerAll(t *testing.T, s *Session, quiz *models.Quiz, pick int) {
	t.Helper()
	for _, q := range quiz.Questions {
		require.NoError(t, s.SelectAnswer(q.ID, q.Answers[pick].ID))
	}
}

func TestScore(t *testing.T) {
	for _, n := range []int{1, 2, 5, 10} {
		quiz := makeQuiz(n)

		allRight := models.UserAnswers{}
		allWrong := models.UserAnswers{}
		for _, q := range quiz.Questions {
			allRight[q.ID] = q.Answers[1].ID
			allWrong[q.ID] = q.Answers[0].ID
		}

		assert.Equal(t, Result{Correct: n, Total: n, Percentage: 100}, Score(quiz, allRight))
		assert.Equal(t, Result{Correct: 0, Total: n, Percentage: 0}, Score(quiz, allWrong))
	}

	t.Run("EmptyQuiz", func(t *testing.T) {
		assert.Equal(t, Result{}, Score(makeQuiz(0), models.UserAnswers{}))
		assert.Equal(t, Result{}, Score(nil, nil))
	})

	t.Run("Rounds", func(t *testing.T) {
		quiz := makeQuiz(3)
		answers := models.UserAnswers{
			"q-0": "a-0-1",
			"q-1": "a-1-1",
			"q-2": "a-2-0",
		}
		assert.Equal(t, Result{Correct: 2, Total: 3, Percentage: 67}, Score(quiz, answers))
	})
}

func TestGeneratedFlow(t *testing.T) {
	ctx := context.Background()
	quiz := makeQuiz(2)
	backend := &fakeBackend{quiz: quiz}
	s := New(backend)

	require.NoError(t, s.Generate(ctx, "Space", "Planets"))
	assert.Equal(t, Preview, s.State())

	require.NoError(t, s.StartQuiz())
	assert.Equal(t, Taking, s.State())

	require.NoError(t, s.SelectAnswer("q-0", "a-0-0"))
	_, err := s.Submit()
	assert.ErrorIs(t, err, ErrIncompleteAnswers)
	assert.Equal(t, Taking, s.State())

	require.NoError(t, s.SelectAnswer("q-0", "a-0-1"))
	require.NoError(t, s.SelectAnswer("q-1", "a-1-1"))
	assert.Equal(t, "a-0-1", s.Snapshot().Answers["q-0"])

	result, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, Result{Correct: 2, Total: 2, Percentage: 100}, result)
	assert.Equal(t, Results, s.State())

	published, err := s.Publish(ctx, "Space")
	require.NoError(t, err)
	assert.EqualValues(t, 7, published.QuizID)
	assert.Equal(t, "Space", backend.publishedWith)

	snap := s.Snapshot()
	assert.Equal(t, Results, snap.State)
	assert.Equal(t, PublishSuccess, snap.PublishStatus)

	require.NoError(t, s.Reset())
	snap = s.Snapshot()
	assert.Equal(t, SelectingTopic, snap.State)
	assert.Nil(t, snap.Quiz)
	assert.Empty(t, snap.Answers)
	assert.Equal(t, PublishIdle, snap.PublishStatus)
}

func TestGenerateFailureStaysInSelectingTopic(t *testing.T) {
	boom := errors.New("Failed to generate quiz.")
	s := New(&fakeBackend{err: boom})

	err := s.Generate(context.Background(), "Space", "Planets")
	assert.ErrorIs(t, err, boom)

	snap := s.Snapshot()
	assert.Equal(t, SelectingTopic, snap.State)
	assert.False(t, snap.Loading)
	assert.ErrorIs(t, snap.Err, boom)
}

func TestGenerateWithoutQuiz(t *testing.T) {
	s := New(&fakeBackend{})

	err := s.Generate(context.Background(), "Space", "Planets")
	assert.ErrorIs(t, err, ErrNoQuiz)
	assert.Equal(t, SelectingTopic, s.State())
}

func TestPublishedFlow(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{
		quiz:      makeQuiz(1),
		published: []models.CategoryWithQuizzes{{ID: 1, Title: "Space"}},
	}
	s := New(backend)

	require.NoError(t, s.ViewPublished(ctx))
	assert.Equal(t, ViewingPublished, s.State())
	assert.Len(t, s.Snapshot().Published, 1)

	require.NoError(t, s.Back())
	assert.Equal(t, SelectingTopic, s.State())

	require.NoError(t, s.ViewPublished(ctx))
	require.NoError(t, s.SelectQuiz(ctx, 1))
	assert.Equal(t, Taking, s.State())

	require.NoError(t, s.SelectAnswer("q-0", "a-0-1"))
	_, err := s.Submit()
	require.NoError(t, err)

	_, err = s.Publish(ctx, "Space")
	assert.ErrorIs(t, err, ErrNotPublishable)
	assert.Zero(t, backend.publishCalls)
}

func TestSelectQuizFailureStaysInViewingPublished(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}
	s := New(backend)
	require.NoError(t, s.ViewPublished(ctx))

	notFound := errors.New("Quiz not found.")
	backend.err = notFound

	err := s.SelectQuiz(ctx, 999999)
	assert.ErrorIs(t, err, notFound)
	assert.Equal(t, ViewingPublished, s.State())
	assert.ErrorIs(t, s.Snapshot().Err, notFound)
}

func TestViewPublishedFailure(t *testing.T) {
	unreachable := errors.New("Could not connect to the server.")
	s := New(&fakeBackend{err: unreachable})

	err := s.ViewPublished(context.Background())
	assert.ErrorIs(t, err, unreachable)
	assert.Equal(t, SelectingTopic, s.State())
}

func TestPublishFailureKeepsResults(t *testing.T) {
	ctx := context.Background()
	quiz := makeQuiz(1)
	backend := &fakeBackend{quiz: quiz}
	s := New(backend)

	require.NoError(t, s.Generate(ctx, "Space", "Planets"))
	require.NoError(t, s.StartQuiz())
	answerAll(t, s, quiz, 0)
	_, err := s.Submit()
	require.NoError(t, err)

	backend.err = errors.New("Database error while publishing quiz.")
	_, err = s.Publish(ctx, "Space")
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, Results, snap.State)
	assert.Equal(t, PublishError, snap.PublishStatus)
	assert.Equal(t, Result{Correct: 0, Total: 1, Percentage: 0}, *snap.Result)
}

func TestPublishOnlyOnce(t *testing.T) {
	ctx := context.Background()
	quiz := makeQuiz(1)
	backend := &fakeBackend{quiz: quiz}
	s := New(backend)

	require.NoError(t, s.Generate(ctx, "Space", "Planets"))
	require.NoError(t, s.StartQuiz())
	answerAll(t, s, quiz, 1)
	_, err := s.Submit()
	require.NoError(t, err)

	t.Run("RetryAfterFailure", func(t *testing.T) {
		backend.err = errors.New("Database error while publishing quiz.")
		_, err := s.Publish(ctx, "Space")
		require.Error(t, err)
		assert.Equal(t, PublishError, s.Snapshot().PublishStatus)

		backend.err = nil
		_, err = s.Publish(ctx, "Space")
		require.NoError(t, err)
		assert.Equal(t, PublishSuccess, s.Snapshot().PublishStatus)
		assert.Equal(t, 2, backend.publishCalls)
	})

	t.Run("SecondPublishRejected", func(t *testing.T) {
		_, err := s.Publish(ctx, "Space")
		assert.ErrorIs(t, err, ErrAlreadyPublished)
		assert.Equal(t, 2, backend.publishCalls)

		snap := s.Snapshot()
		assert.Equal(t, Results, snap.State)
		assert.Equal(t, PublishSuccess, snap.PublishStatus)
		assert.EqualValues(t, 7, snap.PublishResult.QuizID)
	})

	t.Run("ResetAllowsNextQuiz", func(t *testing.T) {
		require.NoError(t, s.Reset())
		require.NoError(t, s.Generate(ctx, "Space", "Stars"))
		require.NoError(t, s.StartQuiz())
		answerAll(t, s, quiz, 0)
		_, err := s.Submit()
		require.NoError(t, err)

		_, err = s.Publish(ctx, "Space")
		require.NoError(t, err)
		assert.Equal(t, 3, backend.publishCalls)
	})
}

func TestInvalidTransitions(t *testing.T) {
	ctx := context.Background()
	s := New(&fakeBackend{quiz: makeQuiz(1)})

	assert.ErrorIs(t, s.StartQuiz(), ErrInvalidTransition)
	assert.ErrorIs(t, s.SelectAnswer("q-0", "a-0-0"), ErrInvalidTransition)
	assert.ErrorIs(t, s.Back(), ErrInvalidTransition)
	assert.ErrorIs(t, s.SelectQuiz(ctx, 1), ErrInvalidTransition)
	_, err := s.Submit()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = s.Publish(ctx, "Space")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, s.Generate(ctx, "Space", "Planets"))
	assert.ErrorIs(t, s.Generate(ctx, "Space", "Planets"), ErrInvalidTransition)
	assert.ErrorIs(t, s.ViewPublished(ctx), ErrInvalidTransition)
	_, err = s.Publish(ctx, "Space")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, s.StartQuiz())
	assert.ErrorIs(t, s.SelectAnswer("q-9", "a-0-0"), ErrUnknownQuestion)
	assert.ErrorIs(t, s.SelectAnswer("q-0", "a-1-1"), ErrUnknownAnswer)
}

func TestBusyWhileLoading(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{
		quiz:    makeQuiz(1),
		gate:    make(chan struct{}),
		entered: make(chan struct{}),
	}
	s := New(backend)

	done := make(chan error)
	go func() { done <- s.Generate(ctx, "Space", "Planets") }()
	<-backend.entered

	assert.True(t, s.Snapshot().Loading)
	assert.ErrorIs(t, s.Generate(ctx, "Space", "Planets"), ErrBusy)
	assert.ErrorIs(t, s.ViewPublished(ctx), ErrBusy)
	assert.ErrorIs(t, s.Reset(), ErrBusy)

	close(backend.gate)
	require.NoError(t, <-done)
	assert.False(t, s.Snapshot().Loading)
	assert.Equal(t, Preview, s.State())
}

package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/saulo-duarte/quizmaker/internal/apperr"
	"github.com/saulo-duarte/quizmaker/internal/cache"
	"github.com/saulo-duarte/quizmaker/internal/category"
	"github.com/saulo-duarte/quizmaker/internal/config"
	"github.com/saulo-duarte/quizmaker/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.Open(sqlite.Open(":memory:"), "")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(category.Models()...))
	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

func newTestService(t *testing.T, db *gorm.DB, c cache.Cache) *service {
	t.Helper()
	svc := NewService(db, category.NewResolver(db, time.Second), c, time.Second, time.Minute)
	return svc.(*service)
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

// failCreates makes every insert into the named model fail with the error
// returned by next. A nil error lets the insert through.
func failCreates(t *testing.T, db *gorm.DB, schemaName string, next func() error) {
	t.Helper()
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_"+schemaName, func(tx *gorm.DB) {
		if tx.Statement.Schema == nil || tx.Statement.Schema.Name != schemaName {
			return
		}
		if err := next(); err != nil {
			_ = tx.AddError(err)
		}
	})
	require.NoError(t, err)
}

func sampleRequest(title string) models.PublishRequest {
	return models.PublishRequest{
		Title:        title,
		Description:  "How well do you know the solar system?",
		CategoryName: "Space",
		Questions: []models.Question{
			{
				ID:          "q-1",
				Question:    "Which planet is the largest?",
				Explanation: "Jupiter is more than twice as massive as all other planets combined.",
				Answers: []models.Answer{
					{ID: "a-1", Answer: "Saturn"},
					{ID: "a-2", Answer: "Jupiter", Correct: true},
					{ID: "a-3", Answer: "Neptune"},
				},
			},
			{
				ID:          "q-2",
				Question:    "Which planet is closest to the Sun?",
				Explanation: "Mercury orbits at about 0.39 AU.",
				Answers: []models.Answer{
					{ID: "a-4", Answer: "Mercury", Correct: true},
					{ID: "a-5", Answer: "Venus"},
				},
			},
		},
	}
}

func TestPublish(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTestService(t, db, nil)

		req := sampleRequest("Space Facts")
		result, err := svc.Publish(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, msgPublished, result.Message)
		assert.NotZero(t, result.QuizID)

		got, err := svc.GetQuizByID(ctx, result.QuizID)
		require.NoError(t, err)
		assert.Equal(t, req.Title, got.Title)
		assert.Equal(t, req.Description, got.Description)
		require.Len(t, got.Questions, 2)

		for i, q := range got.Questions {
			assert.True(t, strings.HasPrefix(q.ID, "q-db-"))
			assert.Equal(t, req.Questions[i].Question, q.Question)
			assert.Equal(t, req.Questions[i].Explanation, q.Explanation)
			require.Len(t, q.Answers, len(req.Questions[i].Answers))
			for j, a := range q.Answers {
				assert.True(t, strings.HasPrefix(a.ID, "a-db-"))
				assert.Equal(t, req.Questions[i].Answers[j].Answer, a.Answer)
				assert.Equal(t, req.Questions[i].Answers[j].Correct, a.Correct)
			}
		}
	})

	t.Run("StoresRowsAndPost", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTestService(t, db, nil)

		result, err := svc.Publish(ctx, sampleRequest("Space Facts!"))
		require.NoError(t, err)

		var row Quiz
		require.NoError(t, db.First(&row, result.QuizID).Error)
		assert.True(t, row.Published)
		assert.Equal(t, 1, row.Ordering)
		assert.Len(t, ParseQuestionIDs(row.QuestionIDs), 2)
		assert.Equal(t, "generator", row.Options["source"])
		require.NotNil(t, row.CustomPostID)
		require.NotNil(t, row.QuizURL)
		assert.Equal(t, "/quiz/space-facts/", *row.QuizURL)

		var post QuizPost
		require.NoError(t, db.First(&post, *row.CustomPostID).Error)
		assert.Equal(t, "space-facts", post.Slug)
		assert.Equal(t, postTypeQuiz, post.PostType)

		var question QuizQuestion
		require.NoError(t, db.First(&question).Error)
		assert.Equal(t, questionTypeRadio, question.Type)

		var answers []QuizAnswer
		require.NoError(t, db.Where("question_id = ?", question.ID).Order("ordering").Find(&answers).Error)
		require.Len(t, answers, 3)
		for i, a := range answers {
			assert.Equal(t, i+1, a.Ordering)
		}

		assert.EqualValues(t, 1, countRows(t, db, &category.QuizCategory{}))
		assert.EqualValues(t, 1, countRows(t, db, &category.QuestionCategory{}))
	})

	t.Run("CreateDateTruncatedToSeconds", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTestService(t, db, nil)
		fixed := time.Date(2025, 3, 14, 15, 9, 26, 535897932, time.FixedZone("BRT", -3*3600))
		svc.now = func() time.Time { return fixed }

		result, err := svc.Publish(ctx, sampleRequest("Pi Day"))
		require.NoError(t, err)
		assert.Equal(t, "2025-03-14 18:09:26", result.CreateDate.String())

		var stored Quiz
		require.NoError(t, db.First(&stored, result.QuizID).Error)
		assert.Equal(t, "2025-03-14 18:09:26", stored.CreateDate.String())

		var question QuizQuestion
		require.NoError(t, db.First(&question).Error)
		assert.True(t, question.CreateDate.Equal(result.CreateDate))
	})

	t.Run("Validation", func(t *testing.T) {
		cases := map[string]func(r *models.PublishRequest){
			"blank title":    func(r *models.PublishRequest) { r.Title = "  " },
			"no questions":   func(r *models.PublishRequest) { r.Questions = nil },
			"blank category": func(r *models.PublishRequest) { r.CategoryName = "" },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				db := newTestDB(t)
				svc := newTestService(t, db, nil)

				req := sampleRequest("Space Facts")
				mutate(&req)

				_, err := svc.Publish(ctx, req)
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperr.ErrValidation))
				assert.Equal(t, msgInvalidQuiz, apperr.UserMessage(err, ""))
				assert.EqualValues(t, 0, countRows(t, db, &Quiz{}))
				assert.EqualValues(t, 0, countRows(t, db, &category.QuizCategory{}))
			})
		}
	})

	t.Run("AtomicOnFailure", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTestService(t, db, nil)
		failCreates(t, db, "Quiz", func() error { return errors.New("disk full") })

		_, err := svc.Publish(ctx, sampleRequest("Space Facts"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrPersistence))
		assert.Equal(t, msgPublishFailed, apperr.UserMessage(err, ""))

		assert.EqualValues(t, 0, countRows(t, db, &QuizQuestion{}))
		assert.EqualValues(t, 0, countRows(t, db, &QuizAnswer{}))
		assert.EqualValues(t, 0, countRows(t, db, &Quiz{}))
		assert.EqualValues(t, 0, countRows(t, db, &QuizPost{}))
		assert.EqualValues(t, 0, countRows(t, db, &category.QuizCategory{}))
		assert.EqualValues(t, 0, countRows(t, db, &category.QuestionCategory{}))
	})

	t.Run("RetriesOnceOnDuplicate", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTestService(t, db, nil)
		calls := 0
		failCreates(t, db, "Quiz", func() error {
			calls++
			if calls == 1 {
				return gorm.ErrDuplicatedKey
			}
			return nil
		})

		_, err := svc.Publish(ctx, sampleRequest("Space Facts"))
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.EqualValues(t, 1, countRows(t, db, &Quiz{}))
		assert.EqualValues(t, 2, countRows(t, db, &QuizQuestion{}))
	})

	t.Run("GivesUpAfterSecondDuplicate", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTestService(t, db, nil)
		calls := 0
		failCreates(t, db, "Quiz", func() error {
			calls++
			return gorm.ErrDuplicatedKey
		})

		_, err := svc.Publish(ctx, sampleRequest("Space Facts"))
		require.Error(t, err)
		assert.Equal(t, maxPublishAttempts, calls)
		assert.True(t, errors.Is(err, apperr.ErrPersistence))
	})

	t.Run("SameContentTwiceCreatesTwoQuizzes", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTestService(t, db, nil)

		first, err := svc.Publish(ctx, sampleRequest("Space Facts"))
		require.NoError(t, err)
		second, err := svc.Publish(ctx, sampleRequest("Space Facts"))
		require.NoError(t, err)
		assert.NotEqual(t, first.QuizID, second.QuizID)

		var slugs []string
		require.NoError(t, db.Model(&QuizPost{}).Order("id").Pluck("slug", &slugs).Error)
		assert.Equal(t, []string{"space-facts", "space-facts-2"}, slugs)
		assert.EqualValues(t, 1, countRows(t, db, &category.QuizCategory{}))
	})

	// Publication trusts the generator for the one-correct-answer rule and
	// stores whatever flags it is given.
	t.Run("DoesNotEnforceSingleCorrectAnswer", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTestService(t, db, nil)

		req := sampleRequest("Two Right Answers")
		req.Questions[0].Answers[0].Correct = true

		result, err := svc.Publish(ctx, req)
		require.NoError(t, err)

		got, err := svc.GetQuizByID(ctx, result.QuizID)
		require.NoError(t, err)
		correct := 0
		for _, a := range got.Questions[0].Answers {
			if a.Correct {
				correct++
			}
		}
		assert.Equal(t, 2, correct)
	})
}

func TestGetQuizByID(t *testing.T) {
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		svc := newTestService(t, newTestDB(t), nil)

		_, err := svc.GetQuizByID(ctx, 999999)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
		assert.Equal(t, msgQuizNotFound, apperr.UserMessage(err, ""))
	})

	t.Run("EmptyOrMalformedIDList", func(t *testing.T) {
		for _, ids := range []string{"", "abc, ,x"} {
			db := newTestDB(t)
			svc := newTestService(t, db, nil)

			row := &Quiz{Title: "Empty", Description: "none", QuizCategoryID: 1, QuestionIDs: ids, Published: true}
			require.NoError(t, db.Create(row).Error)

			got, err := svc.GetQuizByID(ctx, row.ID)
			require.NoError(t, err)
			assert.Equal(t, "Empty", got.Title)
			assert.Empty(t, got.Questions)
		}
	})

	t.Run("FollowsStoredOrder", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTestService(t, db, nil)

		first := &QuizQuestion{Question: "first", Type: questionTypeRadio, Published: true}
		second := &QuizQuestion{Question: "second", Type: questionTypeRadio, Published: true}
		require.NoError(t, db.Create(first).Error)
		require.NoError(t, db.Create(second).Error)

		require.NoError(t, db.Create(&QuizAnswer{QuestionID: first.ID, Answer: "late", Ordering: 2}).Error)
		require.NoError(t, db.Create(&QuizAnswer{QuestionID: first.ID, Answer: "early", Ordering: 1, Correct: true}).Error)

		row := &Quiz{
			Title:       "Reversed",
			QuestionIDs: fmt.Sprintf("%d,%d", second.ID, first.ID),
			Published:   true,
		}
		require.NoError(t, db.Create(row).Error)

		got, err := svc.GetQuizByID(ctx, row.ID)
		require.NoError(t, err)
		require.Len(t, got.Questions, 2)
		assert.Equal(t, "second", got.Questions[0].Question)
		assert.Equal(t, "first", got.Questions[1].Question)
		assert.Empty(t, got.Questions[0].Answers)

		answers := got.Questions[1].Answers
		require.Len(t, answers, 2)
		assert.Equal(t, "early", answers[0].Answer)
		assert.True(t, answers[0].Correct)
		assert.Equal(t, "late", answers[1].Answer)
	})

	t.Run("ServedFromCache", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTestService(t, db, cache.NewMemory())

		result, err := svc.Publish(ctx, sampleRequest("Space Facts"))
		require.NoError(t, err)

		_, err = svc.GetQuizByID(ctx, result.QuizID)
		require.NoError(t, err)

		require.NoError(t, db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Quiz{}).Error)

		got, err := svc.GetQuizByID(ctx, result.QuizID)
		require.NoError(t, err)
		assert.Equal(t, "Space Facts", got.Title)
	})
}

func TestListPublished(t *testing.T) {
	ctx := context.Background()

	t.Run("GroupsByCategory", func(t *testing.T) {
		db := newTestDB(t)
		svc := newTestService(t, db, nil)
		base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

		publish := func(title, categoryName string, at time.Time) uint {
			svc.now = func() time.Time { return at }
			req := sampleRequest(title)
			req.CategoryName = categoryName
			result, err := svc.Publish(ctx, req)
			require.NoError(t, err)
			return result.QuizID
		}

		older := publish("Planets", "Space", base)
		newer := publish("Stars", "Space", base.Add(time.Hour))
		history := publish("Rome", "History", base)

		hidden := publish("Draft", "History", base.Add(2*time.Hour))
		require.NoError(t, db.Model(&Quiz{}).Where("id = ?", hidden).Update("published", false).Error)

		content, err := svc.ListPublished(ctx)
		require.NoError(t, err)
		require.Len(t, content, 2)

		assert.Equal(t, "History", content[0].Title)
		require.Len(t, content[0].Quizzes, 1)
		assert.Equal(t, history, content[0].Quizzes[0].ID)

		assert.Equal(t, "Space", content[1].Title)
		require.Len(t, content[1].Quizzes, 2)
		assert.Equal(t, newer, content[1].Quizzes[0].ID)
		assert.Equal(t, older, content[1].Quizzes[1].ID)
		assert.Equal(t, "2025-01-01 13:00:00", content[1].Quizzes[0].CreateDate.String())
	})

	t.Run("EmptyIsNotNil", func(t *testing.T) {
		svc := newTestService(t, newTestDB(t), nil)

		content, err := svc.ListPublished(ctx)
		require.NoError(t, err)
		assert.NotNil(t, content)
		assert.Empty(t, content)
	})

	t.Run("PublishInvalidatesCache", func(t *testing.T) {
		svc := newTestService(t, newTestDB(t), cache.NewMemory())

		content, err := svc.ListPublished(ctx)
		require.NoError(t, err)
		assert.Empty(t, content)

		_, err = svc.Publish(ctx, sampleRequest("Space Facts"))
		require.NoError(t, err)

		content, err = svc.ListPublished(ctx)
		require.NoError(t, err)
		require.Len(t, content, 1)
		assert.Len(t, content[0].Quizzes, 1)
	})
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Space Facts":            "space-facts",
		"  Hello,   World!  ":    "hello-world",
		"C++ & Go -- basics":     "c-go-basics",
		"snake_case stays":       "snake_case-stays",
		"???":                    "quiz",
		"":                       "quiz",
		"-leading and trailing-": "leading-and-trailing",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestParseQuestionIDs(t *testing.T) {
	assert.Equal(t, []uint{3, 1, 2}, ParseQuestionIDs("3, 1,2"))
	assert.Equal(t, []uint{5}, ParseQuestionIDs("x,5,,-1"))
	assert.Empty(t, ParseQuestionIDs(""))
}

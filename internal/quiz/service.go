package quiz

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/saulo-duarte/quizmaker/internal/apperr"
	"github.com/saulo-duarte/quizmaker/internal/cache"
	"github.com/saulo-duarte/quizmaker/internal/category"
	"github.com/saulo-duarte/quizmaker/internal/config"
	"github.com/saulo-duarte/quizmaker/internal/domain/models"
	util "github.com/saulo-duarte/quizmaker/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	msgInvalidQuiz     = "Invalid quiz data provided. Title, questions, and categoryName are required."
	msgPublishFailed   = "Database error while publishing quiz."
	msgPublished       = "Quiz published successfully!"
	msgQuizNotFound    = "Quiz not found."
	msgQuizFailed      = "Error fetching quiz details."
	msgContentFailed   = "Error fetching content from the database."
	msgInvalidQuizID   = "Invalid quiz id."
	publishSource      = "generator"
	maxPublishAttempts = 2

	keyPublishedContent = "published-content"
)

type Service interface {
	Publish(ctx context.Context, req models.PublishRequest) (*models.PublishResult, error)
	ListPublished(ctx context.Context) ([]models.CategoryWithQuizzes, error)
	GetQuizByID(ctx context.Context, id uint) (*models.Quiz, error)
}

type service struct {
	db         *gorm.DB
	categories category.Resolver
	cache      cache.Cache
	cacheTTL   time.Duration
	timeout    time.Duration
	now        func() time.Time
}

func NewService(db *gorm.DB, categories category.Resolver, c cache.Cache, storeTimeout, cacheTTL time.Duration) Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &service{
		db:         db,
		categories: categories,
		cache:      c,
		cacheTTL:   cacheTTL,
		timeout:    storeTimeout,
		now:        time.Now,
	}
}

func (s *service) Publish(ctx context.Context, req models.PublishRequest) (*models.PublishResult, error) {
	const op = "quiz.publish"
	log := config.WithContext(ctx)

	if err := validatePublish(op, req); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		result *models.PublishResult
		err    error
	)
	for attempt := 1; attempt <= maxPublishAttempts; attempt++ {
		result, err = s.publishOnce(ctx, req)
		if err == nil || !errors.Is(err, apperr.ErrDuplicate) {
			break
		}
		log.WithError(err).WithField("attempt", attempt).Warn("Publish collided with a concurrent write")
	}
	if err != nil {
		log.WithError(err).WithField("title", req.Title).Error("Failed to publish quiz")
		return nil, apperr.Persistence(op, msgPublishFailed, err)
	}

	if err := s.cache.Delete(ctx, keyPublishedContent); err != nil {
		log.WithError(err).Warn("Failed to invalidate published content cache")
	}

	log.WithFields(logrus.Fields{
		"quiz_id":   result.QuizID,
		"questions": len(req.Questions),
	}).Info("Quiz published")
	return result, nil
}

func (s *service) publishOnce(ctx context.Context, req models.PublishRequest) (*models.PublishResult, error) {
	const op = "quiz.publish"
	createDate := util.NewDateTime(s.now())

	var quiz *Quiz
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resolved, err := s.categories.WithTx(tx).ResolveOrCreate(ctx, req.CategoryName)
		if err != nil {
			return err
		}

		repo := NewRepository(tx)

		ids := make([]string, 0, len(req.Questions))
		for _, q := range req.Questions {
			row := newQuestionRow(q, resolved.QuestionCategoryID, createDate)
			if err := repo.CreateQuestion(ctx, row); err != nil {
				return apperr.FromStore(op, err)
			}
			ids = append(ids, strconv.FormatUint(uint64(row.ID), 10))
		}

		quiz = &Quiz{
			Title:          req.Title,
			Description:    req.Description,
			QuizCategoryID: resolved.QuizCategoryID,
			QuestionIDs:    strings.Join(ids, ","),
			Ordering:       1,
			Published:      true,
			CreateDate:     createDate,
			Options: datatypes.JSONMap{
				"source":         publishSource,
				"question_count": len(req.Questions),
			},
		}
		if err := repo.CreateQuiz(ctx, quiz); err != nil {
			return apperr.FromStore(op, err)
		}

		slug, err := nextFreeSlug(ctx, repo, Slugify(req.Title))
		if err != nil {
			return apperr.FromStore(op, err)
		}
		post := &QuizPost{
			Title:    req.Title,
			Slug:     slug,
			Content:  req.Description,
			Status:   postStatusPublish,
			PostType: postTypeQuiz,
		}
		if err := repo.CreatePost(ctx, post); err != nil {
			return apperr.FromStore(op, err)
		}
		if err := repo.AttachPost(ctx, quiz.ID, post.ID, quizURL(slug)); err != nil {
			return apperr.FromStore(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &models.PublishResult{
		Message:    msgPublished,
		QuizID:     quiz.ID,
		CreateDate: createDate,
	}, nil
}

func (s *service) ListPublished(ctx context.Context) ([]models.CategoryWithQuizzes, error) {
	const op = "quiz.list_published"
	log := config.WithContext(ctx)

	var cached []models.CategoryWithQuizzes
	if hit, err := cache.GetJSON(ctx, s.cache, keyPublishedContent, &cached); err != nil {
		log.WithError(err).Warn("Published content cache read failed")
	} else if hit {
		return cached, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := NewRepository(s.db).ListPublished(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to fetch published content")
		return nil, apperr.Persistence(op, msgContentFailed, err)
	}

	out := groupPublished(rows)
	if err := cache.SetJSON(ctx, s.cache, keyPublishedContent, out, s.cacheTTL); err != nil {
		log.WithError(err).Warn("Published content cache write failed")
	}
	return out, nil
}

func (s *service) GetQuizByID(ctx context.Context, id uint) (*models.Quiz, error) {
	const op = "quiz.get"
	log := config.WithContext(ctx).WithField("quiz_id", id)
	key := quizCacheKey(id)

	var cached models.Quiz
	if hit, err := cache.GetJSON(ctx, s.cache, key, &cached); err != nil {
		log.WithError(err).Warn("Quiz cache read failed")
	} else if hit {
		return &cached, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	repo := NewRepository(s.db)
	row, err := repo.FindQuiz(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to fetch quiz")
		return nil, apperr.Persistence(op, msgQuizFailed, err)
	}
	if row == nil {
		return nil, apperr.NotFound(op, msgQuizNotFound)
	}

	ids := ParseQuestionIDs(row.QuestionIDs)
	questions, err := repo.FindQuestions(ctx, ids)
	if err != nil {
		log.WithError(err).Error("Failed to fetch quiz questions")
		return nil, apperr.Persistence(op, msgQuizFailed, err)
	}

	out := &models.Quiz{
		Title:       row.Title,
		Description: row.Description,
		Questions:   assembleQuestions(ids, questions),
	}
	if err := cache.SetJSON(ctx, s.cache, key, out, s.cacheTTL); err != nil {
		log.WithError(err).Warn("Quiz cache write failed")
	}
	return out, nil
}

func (s *service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func validatePublish(op string, req models.PublishRequest) error {
	if strings.TrimSpace(req.Title) == "" ||
		len(req.Questions) == 0 ||
		strings.TrimSpace(req.CategoryName) == "" {
		return apperr.Validation(op, msgInvalidQuiz)
	}
	return nil
}

func newQuestionRow(q models.Question, categoryID uint, createDate util.DateTime) *QuizQuestion {
	answers := make([]QuizAnswer, 0, len(q.Answers))
	for i, a := range q.Answers {
		answers = append(answers, QuizAnswer{
			Answer:   a.Answer,
			Correct:  a.Correct,
			Ordering: i + 1,
		})
	}
	return &QuizQuestion{
		CategoryID:  categoryID,
		Question:    q.Question,
		Explanation: q.Explanation,
		Type:        questionTypeRadio,
		Published:   true,
		CreateDate:  createDate,
		Answers:     answers,
	}
}

// ParseQuestionIDs reads a comma separated id list. Malformed entries are
// skipped.
func ParseQuestionIDs(raw string) []uint {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 0)
		if err != nil || n == 0 {
			continue
		}
		ids = append(ids, uint(n))
	}
	return ids
}

// assembleQuestions orders questions as listed in ids and rewrites ids into
// their public form.
func assembleQuestions(ids []uint, rows []QuizQuestion) []models.Question {
	byID := make(map[uint]QuizQuestion, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}

	out := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			continue
		}
		answers := make([]models.Answer, 0, len(r.Answers))
		for _, a := range r.Answers {
			answers = append(answers, models.Answer{
				ID:      fmt.Sprintf("a-db-%d", a.ID),
				Answer:  a.Answer,
				Correct: a.Correct,
			})
		}
		out = append(out, models.Question{
			ID:          fmt.Sprintf("q-db-%d", r.ID),
			Question:    r.Question,
			Explanation: r.Explanation,
			Answers:     answers,
		})
	}
	return out
}

func groupPublished(rows []publishedRow) []models.CategoryWithQuizzes {
	out := make([]models.CategoryWithQuizzes, 0)
	index := make(map[uint]int)
	for _, r := range rows {
		i, ok := index[r.CategoryID]
		if !ok {
			out = append(out, models.CategoryWithQuizzes{
				ID:      r.CategoryID,
				Title:   r.CategoryTitle,
				Quizzes: []models.PublishedQuiz{},
			})
			i = len(out) - 1
			index[r.CategoryID] = i
		}
		out[i].Quizzes = append(out[i].Quizzes, models.PublishedQuiz{
			ID:          r.QuizID,
			Title:       r.QuizTitle,
			Description: r.QuizDescription,
			CreateDate:  r.QuizCreateDate,
		})
	}
	return out
}

func quizCacheKey(id uint) string {
	return "quiz:" + strconv.FormatUint(uint64(id), 10)
}

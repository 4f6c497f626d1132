package category

import (
	"context"
	"strings"
	"time"

	"github.com/saulo-duarte/quizmaker/internal/apperr"
	"github.com/saulo-duarte/quizmaker/internal/config"
	"github.com/saulo-duarte/quizmaker/internal/domain/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	msgTitleRequired = "Category title is required."
	msgDuplicate     = "A category with this title already exists."
	msgListFailed    = "Error fetching categories from the database."
	msgCreateFailed  = "Error creating category in the database."
)

// Resolver finds or creates categories. A title always exists in both the
// quiz and the question category tables once resolved.
type Resolver interface {
	List(ctx context.Context) ([]models.QuizCategory, error)
	Create(ctx context.Context, title string) (*models.QuizCategory, error)
	ResolveOrCreate(ctx context.Context, title string) (*Resolved, error)
	// WithTx binds the resolver to a caller-owned transaction.
	WithTx(tx *gorm.DB) Resolver
}

type resolver struct {
	db      *gorm.DB
	inTx    bool
	timeout time.Duration
}

func NewResolver(db *gorm.DB, timeout time.Duration) Resolver {
	return &resolver{db: db, timeout: timeout}
}

func (r *resolver) WithTx(tx *gorm.DB) Resolver {
	return &resolver{db: tx, inTx: true, timeout: r.timeout}
}

func (r *resolver) List(ctx context.Context) ([]models.QuizCategory, error) {
	log := config.WithContext(ctx)
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := NewRepository(r.db).ListPublished(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list categories")
		return nil, apperr.Persistence("category.list", msgListFailed, err)
	}

	out := make([]models.QuizCategory, 0, len(rows))
	for _, c := range rows {
		out = append(out, models.QuizCategory{ID: c.ID, Title: c.Title})
	}
	return out, nil
}

func (r *resolver) Create(ctx context.Context, title string) (*models.QuizCategory, error) {
	const op = "category.create"
	log := config.WithContext(ctx)

	title, err := normalizeTitle(op, title)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var created *QuizCategory
	err = r.transaction(ctx, func(repo Repository) error {
		c := &QuizCategory{Title: title, Published: true}
		if err := repo.CreateQuizCategory(ctx, c); err != nil {
			return err
		}
		if _, _, err := ensureQuestionCategory(ctx, repo, title); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		err = classify(op, msgCreateFailed, err)
		log.WithError(err).WithField("title", title).Warn("Failed to create category")
		return nil, err
	}

	log.WithFields(logrus.Fields{"category_id": created.ID, "title": title}).Info("Category created")
	return &models.QuizCategory{ID: created.ID, Title: created.Title}, nil
}

func (r *resolver) ResolveOrCreate(ctx context.Context, title string) (*Resolved, error) {
	const op = "category.resolve"
	log := config.WithContext(ctx)

	title, err := normalizeTitle(op, title)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out *Resolved
	err = r.transaction(ctx, func(repo Repository) error {
		qc, err := repo.FindQuizCategory(ctx, title)
		if err != nil {
			return err
		}
		created := false
		if qc == nil {
			qc = &QuizCategory{Title: title, Published: true}
			if err := repo.CreateQuizCategory(ctx, qc); err != nil {
				return err
			}
			created = true
		}

		questionCategory, questionCreated, err := ensureQuestionCategory(ctx, repo, title)
		if err != nil {
			return err
		}

		out = &Resolved{
			QuizCategoryID:     qc.ID,
			QuestionCategoryID: questionCategory.ID,
			Title:              title,
			Created:            created || questionCreated,
		}
		return nil
	})
	if err != nil {
		return nil, classify(op, msgCreateFailed, err)
	}

	if out.Created {
		log.WithFields(logrus.Fields{
			"quiz_category_id":     out.QuizCategoryID,
			"question_category_id": out.QuestionCategoryID,
		}).Info("Category resolved by creation")
	}
	return out, nil
}

func (r *resolver) transaction(ctx context.Context, fn func(repo Repository) error) error {
	if r.inTx {
		return fn(NewRepository(r.db))
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *resolver) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.inTx || r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func ensureQuestionCategory(ctx context.Context, repo Repository, title string) (*QuestionCategory, bool, error) {
	existing, err := repo.FindQuestionCategory(ctx, title)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	c := &QuestionCategory{Title: title, Published: true}
	if err := repo.CreateQuestionCategory(ctx, c); err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func normalizeTitle(op, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.Validation(op, msgTitleRequired)
	}
	return title, nil
}

func classify(op, message string, err error) error {
	if apperr.KindOf(err) != apperr.KindInternal {
		return err
	}
	if apperr.IsUniqueViolation(err) {
		return apperr.Duplicate(op, msgDuplicate, err)
	}
	return apperr.Persistence(op, message, err)
}

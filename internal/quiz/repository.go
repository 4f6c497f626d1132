package quiz

import (
	"context"
	"errors"

	"github.com/saulo-duarte/quizmaker/internal/category"
	"gorm.io/gorm"
)

type Repository interface {
	CreateQuestion(ctx context.Context, q *QuizQuestion) error
	CreateQuiz(ctx context.Context, q *Quiz) error
	CreatePost(ctx context.Context, p *QuizPost) error
	AttachPost(ctx context.Context, quizID, postID uint, url string) error
	SlugsLike(ctx context.Context, base string) ([]string, error)

	FindQuiz(ctx context.Context, id uint) (*Quiz, error)
	FindQuestions(ctx context.Context, ids []uint) ([]QuizQuestion, error)
	ListPublished(ctx context.Context) ([]publishedRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateQuestion inserts the question together with its answers.
func (r *repository) CreateQuestion(ctx context.Context, q *QuizQuestion) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *repository) CreateQuiz(ctx context.Context, q *Quiz) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *repository) CreatePost(ctx context.Context, p *QuizPost) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) AttachPost(ctx context.Context, quizID, postID uint, url string) error {
	return r.db.WithContext(ctx).
		Model(&Quiz{}).
		Where("id = ?", quizID).
		Updates(map[string]interface{}{
			"custom_post_id": postID,
			"quiz_url":       url,
		}).Error
}

func (r *repository) SlugsLike(ctx context.Context, base string) ([]string, error) {
	var slugs []string
	if err := r.db.WithContext(ctx).
		Model(&QuizPost{}).
		Where("slug = ? OR slug LIKE ?", base, base+"-%").
		Pluck("slug", &slugs).Error; err != nil {
		return nil, err
	}
	return slugs, nil
}

func (r *repository) FindQuiz(ctx context.Context, id uint) (*Quiz, error) {
	var q Quiz
	if err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *repository) FindQuestions(ctx context.Context, ids []uint) ([]QuizQuestion, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var questions []QuizQuestion
	if err := r.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("ordering ASC, id ASC")
		}).
		Where("id IN ?", ids).
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *repository) ListPublished(ctx context.Context) ([]publishedRow, error) {
	categories, err := tableName(r.db, &category.QuizCategory{})
	if err != nil {
		return nil, err
	}
	quizzes, err := tableName(r.db, &Quiz{})
	if err != nil {
		return nil, err
	}

	var rows []publishedRow
	if err := r.db.WithContext(ctx).
		Table(categories+" AS cat").
		Select("cat.id AS category_id, cat.title AS category_title, q.id AS quiz_id, " +
			"q.title AS quiz_title, q.description AS quiz_description, q.create_date AS quiz_create_date").
		Joins("JOIN "+quizzes+" AS q ON cat.id = q.quiz_category_id").
		Where("q.published = ? AND cat.published = ?", true, true).
		Order("cat.title ASC, q.create_date DESC, q.id DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// tableName resolves a model's table through the configured naming strategy,
// so a table prefix is honoured in raw joins.
func tableName(db *gorm.DB, model interface{}) (string, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return "", err
	}
	return stmt.Schema.Table, nil
}

package category

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	ListPublished(ctx context.Context) ([]QuizCategory, error)
	FindQuizCategory(ctx context.Context, title string) (*QuizCategory, error)
	CreateQuizCategory(ctx context.Context, c *QuizCategory) error
	FindQuestionCategory(ctx context.Context, title string) (*QuestionCategory, error)
	CreateQuestionCategory(ctx context.Context, c *QuestionCategory) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListPublished(ctx context.Context) ([]QuizCategory, error) {
	var categories []QuizCategory
	if err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Order("title ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) FindQuizCategory(ctx context.Context, title string) (*QuizCategory, error) {
	var c QuizCategory
	if err := r.db.WithContext(ctx).Where("title = ?", title).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) CreateQuizCategory(ctx context.Context, c *QuizCategory) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) FindQuestionCategory(ctx context.Context, title string) (*QuestionCategory, error) {
	var c QuestionCategory
	if err := r.db.WithContext(ctx).Where("title = ?", title).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) CreateQuestionCategory(ctx context.Context, c *QuestionCategory) error {
	return r.db.WithContext(ctx).Create(c).Error
}

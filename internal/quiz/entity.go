package quiz

import (
	"time"

	util "github.com/saulo-duarte/quizmaker/internal/utils"
	"gorm.io/datatypes"
)

const (
	questionTypeRadio = "radio"
	postStatusPublish = "publish"
	postTypeQuiz      = "quiz"
)

type Quiz struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	AuthorID       uint              `gorm:"not null;default:0" json:"author_id"`
	Title          string            `gorm:"type:varchar(256);not null" json:"title"`
	Description    string            `gorm:"type:text;not null" json:"description"`
	QuizImage      *string           `gorm:"type:text" json:"quiz_image,omitempty"`
	QuizCategoryID uint              `gorm:"not null;index" json:"quiz_category_id"`
	QuestionIDs    string            `gorm:"column:question_ids;type:text;not null" json:"question_ids"`
	Ordering       int               `gorm:"not null" json:"ordering"`
	QuizURL        *string           `gorm:"column:quiz_url;type:text" json:"quiz_url,omitempty"`
	Published      bool              `gorm:"not null" json:"published"`
	CreateDate     util.DateTime     `gorm:"column:create_date" json:"create_date"`
	CustomPostID   *uint             `gorm:"column:custom_post_id" json:"custom_post_id,omitempty"`
	Options        datatypes.JSONMap `json:"options"`
}

type QuizQuestion struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	AuthorID    uint          `gorm:"not null;default:0" json:"author_id"`
	CategoryID  uint          `gorm:"not null;index" json:"category_id"`
	Question    string        `gorm:"type:text;not null" json:"question"`
	Explanation string        `gorm:"type:text" json:"explanation"`
	Type        string        `gorm:"type:varchar(256);not null" json:"type"`
	Published   bool          `gorm:"not null" json:"published"`
	CreateDate  util.DateTime `gorm:"column:create_date" json:"create_date"`

	Answers []QuizAnswer `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

type QuizAnswer struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	Answer     string `gorm:"type:text;not null" json:"answer"`
	Correct    bool   `gorm:"not null" json:"correct"`
	Ordering   int    `gorm:"not null" json:"ordering"`
}

// QuizPost is the public page a published quiz is reachable at.
type QuizPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"not null;default:0" json:"author_id"`
	Title     string    `gorm:"type:varchar(256);not null" json:"title"`
	Slug      string    `gorm:"type:varchar(200);not null;uniqueIndex" json:"slug"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Status    string    `gorm:"type:varchar(20);not null" json:"status"`
	PostType  string    `gorm:"type:varchar(20);not null" json:"post_type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// publishedRow is one category/quiz pair of the published listing join.
type publishedRow struct {
	CategoryID      uint
	CategoryTitle   string
	QuizID          uint
	QuizTitle       string
	QuizDescription string
	QuizCreateDate  util.DateTime
}

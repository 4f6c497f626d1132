package category

// QuizCategory groups published quizzes.
type QuizCategory struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	AuthorID    uint   `gorm:"not null;default:0" json:"-"`
	Title       string `gorm:"type:varchar(256);not null;uniqueIndex" json:"title"`
	Description string `gorm:"type:text;not null" json:"-"`
	Published   bool   `gorm:"not null" json:"-"`
}

// QuestionCategory mirrors QuizCategory for question rows. Both tables are
// kept in sync by title through the Resolver.
type QuestionCategory struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	AuthorID    uint   `gorm:"not null;default:0" json:"-"`
	Title       string `gorm:"type:varchar(256);not null;uniqueIndex" json:"title"`
	Description string `gorm:"type:text;not null" json:"-"`
	Published   bool   `gorm:"not null" json:"-"`
}

// Resolved holds the ids of one title in both category tables.
type Resolved struct {
	QuizCategoryID     uint
	QuestionCategoryID uint
	Title              string
	Created            bool
}

type CreateCategoryDTO struct {
	Title string `json:"title"`
}

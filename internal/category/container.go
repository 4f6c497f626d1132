package category

import (
	"time"

	"gorm.io/gorm"
)

type Container struct {
	Handler  *Handler
	Resolver Resolver
}

func NewContainer(db *gorm.DB, storeTimeout time.Duration) *Container {
	resolver := NewResolver(db, storeTimeout)
	handler := NewHandler(resolver)

	return &Container{
		Handler:  handler,
		Resolver: resolver,
	}
}

// Models lists the tables owned by this package.
func Models() []interface{} {
	return []interface{}{&QuizCategory{}, &QuestionCategory{}}
}

package quiz

import (
	"time"

	"github.com/saulo-duarte/quizmaker/internal/cache"
	"github.com/saulo-duarte/quizmaker/internal/category"
	"gorm.io/gorm"
)

type QuizContainer struct {
	Handler *Handler
	Service Service
}

func NewQuizContainer(db *gorm.DB, categories category.Resolver, c cache.Cache, storeTimeout, cacheTTL time.Duration) *QuizContainer {
	service := NewService(db, categories, c, storeTimeout, cacheTTL)
	handler := NewHandler(service)

	return &QuizContainer{
		Handler: handler,
		Service: service,
	}
}

// Models lists the tables owned by this package, in migration order.
func Models() []interface{} {
	return []interface{}{&Quiz{}, &QuizQuestion{}, &QuizAnswer{}, &QuizPost{}}
}

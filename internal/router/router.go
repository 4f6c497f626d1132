package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/saulo-duarte/quizmaker/docs"
	"github.com/saulo-duarte/quizmaker/internal/aiquiz"
	"github.com/saulo-duarte/quizmaker/internal/category"
	"github.com/saulo-duarte/quizmaker/internal/config"
	"github.com/saulo-duarte/quizmaker/internal/middlewares"
	"github.com/saulo-duarte/quizmaker/internal/quiz"
)

type RouterConfig struct {
	CategoryHandler    *category.Handler
	QuizHandler        *quiz.Handler
	AIQuizHandler      *aiquiz.Handler
	CORSAllowedOrigins []string
}

func New(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CorsMiddleware(cfg.CORSAllowedOrigins))

	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		config.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Mount("/categories", category.Routes(cfg.CategoryHandler))
		r.Mount("/published-content", quiz.PublishedRoutes(cfg.QuizHandler))
		r.Mount("/quizzes/generate", aiquiz.Routes(cfg.AIQuizHandler))
		r.Mount("/quizzes", quiz.Routes(cfg.QuizHandler))
	})
	return r
}

package quiz

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/quizmaker/internal/apperr"
	"github.com/saulo-duarte/quizmaker/internal/config"
	"github.com/saulo-duarte/quizmaker/internal/domain/models"
)

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

// Publish godoc
// @Summary  Publish a quiz
// @Tags     quizzes
// @Accept   json
// @Produce  json
// @Param    body body     models.PublishRequest true "Quiz"
// @Success  201  {object} models.PublishResult
// @Failure  400  {object} config.ErrorResponse
// @Failure  500  {object} config.ErrorResponse
// @Router   /quizzes [post]
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var req models.PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Invalid request body for quiz")
		config.JSONError(w, http.StatusBadRequest, msgInvalidQuiz)
		return
	}

	result, err := h.service.Publish(r.Context(), req)
	if err != nil {
		config.JSONError(w, apperr.HTTPStatus(err), apperr.UserMessage(err, msgPublishFailed))
		return
	}

	config.JSON(w, http.StatusCreated, result)
}

// GetByID godoc
// @Summary  Get a published quiz with its questions
// @Tags     quizzes
// @Produce  json
// @Param    id  path     int true "Quiz ID"
// @Success  200 {object} models.Quiz
// @Failure  400 {object} config.ErrorResponse
// @Failure  404 {object} config.ErrorResponse
// @Failure  500 {object} config.ErrorResponse
// @Router   /quizzes/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		log.WithField("id", raw).Warn("Invalid quiz id")
		config.JSONError(w, http.StatusBadRequest, msgInvalidQuizID)
		return
	}

	quiz, err := h.service.GetQuizByID(r.Context(), uint(id))
	if err != nil {
		config.JSONError(w, apperr.HTTPStatus(err), apperr.UserMessage(err, msgQuizFailed))
		return
	}

	config.JSON(w, http.StatusOK, quiz)
}

// ListPublished godoc
// @Summary  List published quizzes grouped by category
// @Tags     quizzes
// @Produce  json
// @Success  200 {array}  models.CategoryWithQuizzes
// @Failure  500 {object} config.ErrorResponse
// @Router   /published-content [get]
func (h *Handler) ListPublished(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.ListPublished(r.Context())
	if err != nil {
		config.JSONError(w, apperr.HTTPStatus(err), apperr.UserMessage(err, msgContentFailed))
		return
	}

	config.JSON(w, http.StatusOK, content)
}

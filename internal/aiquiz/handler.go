package aiquiz

import (
	"encoding/json"
	"net/http"

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

// Generate godoc
// @Summary  Generate a quiz for a category and title
// @Tags     quizzes
// @Accept   json
// @Produce  json
// @Param    body body     models.GenerateRequest true "Topic"
// @Success  200  {object} models.Quiz
// @Failure  400  {object} config.ErrorResponse
// @Failure  502  {object} config.ErrorResponse
// @Router   /quizzes/generate [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Invalid request body for quiz generation")
		config.JSONError(w, http.StatusBadRequest, msgFieldsRequired)
		return
	}

	quiz, err := h.service.GenerateForTopic(r.Context(), req.Category, req.Title)
	if err != nil {
		config.JSONError(w, apperr.HTTPStatus(err), apperr.UserMessage(err, msgGenerationFailed))
		return
	}

	config.JSON(w, http.StatusOK, quiz)
}

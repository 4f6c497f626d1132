package category

import (
	"encoding/json"
	"net/http"

	"github.com/saulo-duarte/quizmaker/internal/apperr"
	"github.com/saulo-duarte/quizmaker/internal/config"
)

type Handler struct {
	resolver Resolver
}

func NewHandler(r Resolver) *Handler {
	return &Handler{resolver: r}
}

// List godoc
// @Summary  List quiz categories
// @Tags     categories
// @Produce  json
// @Success  200 {array}  models.QuizCategory
// @Failure  500 {object} config.ErrorResponse
// @Router   /categories [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	categories, err := h.resolver.List(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to fetch categories")
		config.JSONError(w, apperr.HTTPStatus(err), apperr.UserMessage(err, msgListFailed))
		return
	}

	config.JSON(w, http.StatusOK, categories)
}

// Create godoc
// @Summary  Create a quiz category
// @Tags     categories
// @Accept   json
// @Produce  json
// @Param    body body     CreateCategoryDTO true "Category"
// @Success  201  {object} models.QuizCategory
// @Failure  400  {object} config.ErrorResponse
// @Failure  409  {object} config.ErrorResponse
// @Failure  500  {object} config.ErrorResponse
// @Router   /categories [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var dto CreateCategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Warn("Invalid request body for category")
		config.JSONError(w, http.StatusBadRequest, msgTitleRequired)
		return
	}

	created, err := h.resolver.Create(r.Context(), dto.Title)
	if err != nil {
		status := apperr.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			log.WithError(err).Error("Failed to create category")
		}
		config.JSONError(w, status, apperr.UserMessage(err, msgCreateFailed))
		return
	}

	config.JSON(w, http.StatusCreated, created)
}

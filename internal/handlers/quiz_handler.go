package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexora-edu/learning-service/internal/models"
	"github.com/nexora-edu/learning-service/internal/services"
	"github.com/nexora-edu/learning-service/internal/utils"
)

type QuizHandler struct {
	BaseHandler
	quizService services.QuizService
}

func NewQuizHandler(quizService services.QuizService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		quizService: quizService,
	}
}

// CreateQuiz creates a quiz with its question set
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), &req, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Quiz created successfully", quiz)
}

// ListQuizzes lists active quizzes; answer keys hidden from students
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var category *models.TaskCategory
	if categoryStr := c.Query("category"); categoryStr != "" {
		cat := models.TaskCategory(categoryStr)
		category = &cat
	}

	quizzes, total, err := h.quizService.List(c.Request.Context(), category, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", ListResponse{Items: quizzes, Total: total})
}

// MyQuizzes lists quizzes the caller created
func (h *QuizHandler) MyQuizzes(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	quizzes, err := h.quizService.MyQuizzes(c.Request.Context(), p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", quizzes)
}

// GetQuiz returns one quiz with questions and attempts
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.GetByID(c.Request.Context(), id, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", quiz)
}

// UpdateQuiz edits quiz metadata or replaces its question set
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), id, &req, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Quiz updated successfully", quiz)
}

// DeleteQuiz removes a quiz; creator or admin only
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), id, p); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Quiz deleted successfully", nil)
}

// AttemptQuiz grades a student's single attempt and credits points
func (h *QuizHandler) AttemptQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.AttemptQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	attempt, err := h.quizService.Attempt(c.Request.Context(), id, &req, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Quiz completed successfully", attempt)
}

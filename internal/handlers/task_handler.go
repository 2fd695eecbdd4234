package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nexora-edu/learning-service/internal/models"
	"github.com/nexora-edu/learning-service/internal/services"
	"github.com/nexora-edu/learning-service/internal/storage"
	"github.com/nexora-edu/learning-service/internal/utils"
)

type TaskHandler struct {
	BaseHandler
	taskService services.TaskService
	uploads     *storage.UploadStore
}

func NewTaskHandler(taskService services.TaskService, uploads *storage.UploadStore, logger utils.Logger) *TaskHandler {
	return &TaskHandler{
		BaseHandler: NewBaseHandler(logger),
		taskService: taskService,
		uploads:     uploads,
	}
}

// CreateTask creates a task; multipart so a resource file can ride along
func (h *TaskHandler) CreateTask(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	req, ok := h.bindTaskForm(c)
	if !ok {
		return
	}

	var resource *models.FileRef
	if fileHeader, err := c.FormFile("resourceFile"); err == nil {
		ref, err := h.uploads.Save(c, fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid resource file",
				Details: err.Error(),
			})
			return
		}
		resource = ref
	}

	task, err := h.taskService.Create(c.Request.Context(), req, resource, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Task created successfully", task)
}

// ListTasks lists active tasks; students see only tasks open to them
func (h *TaskHandler) ListTasks(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	filters := services.TaskListFilters{}
	if categoryStr := c.Query("category"); categoryStr != "" {
		category := models.TaskCategory(categoryStr)
		filters.Category = &category
	}
	if difficultyStr := c.Query("difficulty"); difficultyStr != "" {
		difficulty := models.DifficultyLevel(difficultyStr)
		filters.Difficulty = &difficulty
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.SubmissionStatus(statusStr)
		filters.Status = &status
	}

	tasks, total, err := h.taskService.List(c.Request.Context(), filters, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", ListResponse{Items: tasks, Total: total})
}

// MyTasks lists the caller's tasks: assigned for students, created for teachers
func (h *TaskHandler) MyTasks(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.MyTasks(c.Request.Context(), p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", tasks)
}

// GetTask returns one task with submissions and assignments
func (h *TaskHandler) GetTask(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetByID(c.Request.Context(), id, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", task)
}

// UpdateTask updates task fields; creator or admin only
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), id, &req, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Task updated successfully", task)
}

// DeleteTask removes a task; open to any teacher or admin
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), id, p); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Task deleted successfully", nil)
}

// SubmitTask files a student submission; multipart with optional evidence file
func (h *TaskHandler) SubmitTask(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	req := &services.SubmitTaskRequest{
		Description: strings.TrimSpace(c.PostForm("description")),
	}

	var file *models.FileRef
	if fileHeader, err := c.FormFile("file"); err == nil {
		ref, err := h.uploads.Save(c, fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid submission file",
				Details: err.Error(),
			})
			return
		}
		file = ref
	}

	submission, err := h.taskService.Submit(c.Request.Context(), id, req, file, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Task submitted successfully", submission)
}

// ReviewSubmission approves or rejects a submission and settles points
func (h *TaskHandler) ReviewSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.ReviewSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	submission, err := h.taskService.Review(c.Request.Context(), id, &req, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Submission reviewed successfully", submission)
}

// bindTaskForm parses the multipart create-task form
func (h *TaskHandler) bindTaskForm(c *gin.Context) (*services.CreateTaskRequest, bool) {
	req := &services.CreateTaskRequest{
		Title:       strings.TrimSpace(c.PostForm("title")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Category:    models.TaskCategory(c.PostForm("category")),
		Difficulty:  models.DifficultyLevel(c.PostForm("difficulty")),
	}

	if pointsStr := c.PostForm("points"); pointsStr != "" {
		points, err := strconv.Atoi(pointsStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid points",
				Details: err.Error(),
			})
			return nil, false
		}
		req.Points = points
	}

	if dueDateStr := c.PostForm("dueDate"); dueDateStr != "" {
		dueDate, err := time.Parse(time.RFC3339, dueDateStr)
		if err != nil {
			// Date-only input is accepted as end of day semantics left to
			// the service validation.
			dueDate, err = time.Parse("2006-01-02", dueDateStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{
					Message: "Invalid dueDate",
					Details: err.Error(),
				})
				return nil, false
			}
		}
		req.DueDate = dueDate
	}

	if assignedStr := c.PostForm("assignedTo"); assignedStr != "" {
		if err := json.Unmarshal([]byte(assignedStr), &req.AssignedTo); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid assignedTo",
				Details: "must be a JSON array of student ids",
			})
			return nil, false
		}
	}

	return req, true
}

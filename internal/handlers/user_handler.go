package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexora-edu/learning-service/internal/models"
	"github.com/nexora-edu/learning-service/internal/services"
	"github.com/nexora-edu/learning-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// CreateUser creates an account directly (admin)
func (h *UserHandler) CreateUser(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "User created successfully", user)
}

// ListUsers lists accounts with optional role/active filters
func (h *UserHandler) ListUsers(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	filters := services.UserListFilters{
		Limit:  h.parseIntQuery(c, "limit", 50),
		Offset: h.parseIntQuery(c, "offset", 0),
	}
	if roleStr := c.Query("role"); roleStr != "" {
		role := models.UserRole(roleStr)
		filters.Role = &role
	}
	if activeStr := c.Query("is_active"); activeStr != "" {
		active := activeStr == "true"
		filters.IsActive = &active
	}

	users, total, err := h.userService.List(c.Request.Context(), filters, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", ListResponse{Items: users, Total: total})
}

// ListStudents lists active students (assignment pickers)
func (h *UserHandler) ListStudents(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	students, err := h.userService.Students(c.Request.Context(), p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", students)
}

// GetUser returns one account
func (h *UserHandler) GetUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", user)
}

// GetUserStats returns role counts for the dashboard
func (h *UserHandler) GetUserStats(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	stats, err := h.userService.Stats(c.Request.Context(), p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", stats)
}

// ApproveUser unlocks a pending registration
func (h *UserHandler) ApproveUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	user, err := h.userService.Approve(c.Request.Context(), id, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "User approved successfully", user)
}

// UpdateUserRole changes an account's role
func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	user, err := h.userService.UpdateRole(c.Request.Context(), id, &req, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "User role updated successfully", user)
}

// DeactivateUser hides an account everywhere without deleting it
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	if err := h.userService.Deactivate(c.Request.Context(), id, p); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "User deactivated successfully", nil)
}

// ReactivateUser restores a deactivated account
func (h *UserHandler) ReactivateUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	if err := h.userService.Reactivate(c.Request.Context(), id, p); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "User reactivated successfully", nil)
}

// AddPoints credits bonus points to a user
func (h *UserHandler) AddPoints(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.AddPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	user, err := h.userService.AddPoints(c.Request.Context(), id, &req, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Points added successfully", user)
}

// SetPoints overwrites a user's point total (admin correction)
func (h *UserHandler) SetPoints(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.SetPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	user, err := h.userService.SetPoints(c.Request.Context(), id, &req, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Points updated successfully", user)
}

// GetPoints returns a user's current point total
func (h *UserHandler) GetPoints(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	points, err := h.userService.GetPoints(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", gin.H{"points": points})
}

// GetLeaderboard returns the top students by points
func (h *UserHandler) GetLeaderboard(c *gin.Context) {
	limit := h.parseIntQuery(c, "limit", 10)

	entries, err := h.userService.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", entries)
}

// GetStreakLeaderboard returns the top students by daily streak
func (h *UserHandler) GetStreakLeaderboard(c *gin.Context) {
	limit := h.parseIntQuery(c, "limit", 10)

	entries, err := h.userService.StreakLeaderboard(c.Request.Context(), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", entries)
}

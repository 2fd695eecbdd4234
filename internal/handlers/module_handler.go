package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexora-edu/learning-service/internal/services"
	"github.com/nexora-edu/learning-service/internal/utils"
)

type ModuleHandler struct {
	BaseHandler
	moduleService services.ModuleService
}

func NewModuleHandler(moduleService services.ModuleService, logger utils.Logger) *ModuleHandler {
	return &ModuleHandler{
		BaseHandler:   NewBaseHandler(logger),
		moduleService: moduleService,
	}
}

func (h *ModuleHandler) CreateModule(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	module, err := h.moduleService.Create(c.Request.Context(), &req, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Module created successfully", module)
}

func (h *ModuleHandler) ListModules(c *gin.Context) {
	modules, err := h.moduleService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", modules)
}

func (h *ModuleHandler) GetModule(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	module, err := h.moduleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "", module)
}

func (h *ModuleHandler) UpdateModule(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.UpdateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	module, err := h.moduleService.Update(c.Request.Context(), id, &req, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Module updated successfully", module)
}

func (h *ModuleHandler) DeleteModule(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	if err := h.moduleService.Delete(c.Request.Context(), id, p); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Module deleted successfully", nil)
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nexora-edu/learning-service/internal/services"
	"github.com/nexora-edu/learning-service/internal/utils"
)

type GameHandler struct {
	BaseHandler
	gameService services.GameService
}

func NewGameHandler(gameService services.GameService, logger utils.Logger) *GameHandler {
	return &GameHandler{
		BaseHandler: NewBaseHandler(logger),
		gameService: gameService,
	}
}

// StartGame records a play and rolls the daily streak
func (h *GameHandler) StartGame(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.StartGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.gameService.Start(c.Request.Context(), &req, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Game started", result)
}

// DailyTip returns a random eco tip
func (h *GameHandler) DailyTip(c *gin.Context) {
	h.RespondWithSuccess(c, http.StatusOK, "", gin.H{"tip": h.gameService.DailyTip()})
}

// DailyChallenge returns today's rotating challenge
func (h *GameHandler) DailyChallenge(c *gin.Context) {
	h.RespondWithSuccess(c, http.StatusOK, "", h.gameService.TodaysChallenge(time.Now()))
}

// CompleteChallenge credits today's challenge points to the caller
func (h *GameHandler) CompleteChallenge(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.CompleteChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	points, err := h.gameService.CompleteChallenge(c.Request.Context(), &req, p)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Challenge completed", gin.H{"points": points})
}

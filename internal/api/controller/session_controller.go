package controller

import (
	"net/http"

	"ctchen222/tictactoe-engine/internal/api/models"
	"ctchen222/tictactoe-engine/internal/api/response"
	"ctchen222/tictactoe-engine/internal/api/service"
	"ctchen222/tictactoe-engine/internal/bot"
	"ctchen222/tictactoe-engine/internal/session"
	"ctchen222/tictactoe-engine/internal/validator"

	"github.com/gin-gonic/gin"
)

// SessionController handles session-related HTTP requests.
type SessionController struct {
	sessionService service.SessionService
}

// NewSessionController creates a new SessionController.
func NewSessionController(sessionService service.SessionService) *SessionController {
	return &SessionController{
		sessionService: sessionService,
	}
}

// Create handles the session creation endpoint. An empty body uses the defaults.
func (sc *SessionController) Create(c *gin.Context) {
	var req models.CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorResponse(c, http.StatusBadRequest, validator.Describe(err))
			return
		}
	}

	state, err := sc.sessionService.Create(c.Request.Context(), session.Mode(req.Mode), bot.Difficulty(req.Difficulty))
	if err != nil {
		response.ErrorResponseFrom(c, err)
		return
	}

	response.SuccessResponseWithCode(c, http.StatusCreated, state)
}

// Get returns the current state of a session.
func (sc *SessionController) Get(c *gin.Context) {
	state, err := sc.sessionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ErrorResponseFrom(c, err)
		return
	}

	response.SuccessResponse(c, state)
}

// Move plays a move for the player whose turn it is.
func (sc *SessionController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, validator.Describe(err))
		return
	}

	state, err := sc.sessionService.Move(c.Request.Context(), c.Param("id"), *req.Index)
	if err != nil {
		response.ErrorResponseFrom(c, err)
		return
	}

	response.SuccessResponse(c, state)
}

// NewRound clears the board and keeps the scores.
func (sc *SessionController) NewRound(c *gin.Context) {
	state, err := sc.sessionService.NewRound(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ErrorResponseFrom(c, err)
		return
	}

	response.SuccessResponse(c, state)
}

// SetMode switches between human and computer opponents.
func (sc *SessionController) SetMode(c *gin.Context) {
	var req models.SetModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, validator.Describe(err))
		return
	}

	state, err := sc.sessionService.SetMode(c.Request.Context(), c.Param("id"), session.Mode(req.Mode), bot.Difficulty(req.Difficulty))
	if err != nil {
		response.ErrorResponseFrom(c, err)
		return
	}

	response.SuccessResponse(c, state)
}

// Delete ends a session.
func (sc *SessionController) Delete(c *gin.Context) {
	if err := sc.sessionService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.ErrorResponseFrom(c, err)
		return
	}

	response.SuccessResponse(c, models.MessageResponse{Message: "Session deleted"})
}

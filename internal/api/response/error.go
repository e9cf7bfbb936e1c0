package response

import (
	"errors"
	"net/http"

	"ctchen222/tictactoe-engine/internal/bot"
	"ctchen222/tictactoe-engine/internal/game"
	"ctchen222/tictactoe-engine/internal/repository"
	"ctchen222/tictactoe-engine/internal/session"
)

type Error struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Extras  string `json:"extras"`
}

func (e Error) Error() string {
	return e.Extras
}

func NewError(success bool, code int, message string) Error {
	return Error{
		Success: success,
		Code:    code,
		Extras:  message,
	}
}

// StatusFor maps domain errors to HTTP status codes. Unknown errors are 500.
func StatusFor(err error) int {
	var apiErr Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code
	case errors.Is(err, repository.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrCellOccupied),
		errors.Is(err, game.ErrGameFinished),
		errors.Is(err, session.ErrComputerTurn),
		errors.Is(err, session.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidMove),
		errors.Is(err, bot.ErrUnknownDifficulty),
		errors.Is(err, session.ErrUnknownMode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

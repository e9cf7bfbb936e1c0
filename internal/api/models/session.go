package models

// CreateSessionRequest defines the structure for starting a new session.
type CreateSessionRequest struct {
	Mode       string `json:"mode" binding:"omitempty,oneof=pvp pvc"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// SetModeRequest defines the structure for switching mode and difficulty.
type SetModeRequest struct {
	Mode       string `json:"mode" binding:"required,oneof=pvp pvc"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// MoveRequest defines the structure for a move. Index is a pointer so that 0 passes "required".
type MoveRequest struct {
	Index *int `json:"index" binding:"required,min=0,max=8"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

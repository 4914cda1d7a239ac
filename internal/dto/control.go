package dto

import "recyclegame/internal/game"

// ControlMessage is a player command, received over the websocket or POST /api/control.
type ControlMessage struct {
	Action string `json:"action"`
	Value  string `json:"value,omitempty"`
}

// ControlResponse answers a control message.
type ControlResponse struct {
	Type  string        `json:"type"`
	OK    bool          `json:"ok"`
	Error string        `json:"error,omitempty"`
	State game.Snapshot `json:"state"`
}

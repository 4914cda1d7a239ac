package dto

import (
	"recyclegame/internal/detect"
	"recyclegame/internal/game"
)

// FramePayload is pushed to every viewer on each render.
type FramePayload struct {
	Type       string            `json:"type"`
	Detections []DetectionResult `json:"detections"`
	State      game.Snapshot     `json:"state"`
}

func NewFramePayload(detections []detect.Detection, snapshot game.Snapshot) FramePayload {
	return FramePayload{
		Type:       "frame",
		Detections: NewDetectionResults(detections),
		State:      snapshot,
	}
}

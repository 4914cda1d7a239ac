package dto

import "recyclegame/internal/detect"

// DetectionResult is one box as sent to viewers, in normalized coordinates.
type DetectionResult struct {
	Label      string  `json:"label"`
	ClassID    int     `json:"classId"`
	Confidence float64 `json:"confidence"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

func NewDetectionResults(detections []detect.Detection) []DetectionResult {
	results := make([]DetectionResult, 0, len(detections))
	for _, d := range detections {
		results = append(results, DetectionResult{
			Label:      d.ClassName,
			ClassID:    d.ClassID,
			Confidence: d.Score,
			X:          d.X,
			Y:          d.Y,
			Width:      d.Width,
			Height:     d.Height,
		})
	}
	return results
}

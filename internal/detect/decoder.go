package detect

import (
	"math"

	"github.com/pkg/errors"
)

// ErrMalformedBuffer is returned when a raw output buffer does not match the planar layout.
var ErrMalformedBuffer = errors.New("malformed detector output buffer")

// DefaultCandidateCount is the number of candidate slots a 320px YOLOv8 head emits.
const DefaultCandidateCount = 2100

// BoxDecoder turns one planar detector output buffer into candidate detections.
//
// The buffer holds (4 + C) planes of N values each: x-centers, y-centers,
// widths, heights, then one confidence plane per class. Box values are in
// model input pixels.
type BoxDecoder struct {
	InputSize      float64
	CandidateCount int
	ScoreThreshold float64
	Classes        ClassTable
}

// ExpectedLen returns the buffer length the decoder accepts.
func (d BoxDecoder) ExpectedLen() int {
	return (4 + d.Classes.Len()) * d.CandidateCount
}

// Decode returns at most one detection per candidate slot, in slot order.
// A buffer that does not match the layout decodes to zero detections and a
// wrapped ErrMalformedBuffer.
func (d BoxDecoder) Decode(output []float32) ([]Detection, error) {
	if err := d.check(output); err != nil {
		return []Detection{}, err
	}

	n := d.CandidateCount
	detections := make([]Detection, 0)
	for i := 0; i < n; i++ {
		maxScore := 0.0
		classID := 0
		for j := 0; j < d.Classes.Len(); j++ {
			score := float64(output[(4+j)*n+i])
			if score > maxScore {
				maxScore = score
				classID = j
			}
		}
		if !(maxScore > d.ScoreThreshold) {
			continue
		}

		xCenter := float64(output[i]) / d.InputSize
		yCenter := float64(output[n+i]) / d.InputSize
		width := float64(output[2*n+i]) / d.InputSize
		height := float64(output[3*n+i]) / d.InputSize

		x, w := clampSpan(xCenter, width)
		y, h := clampSpan(yCenter, height)

		detections = append(detections, Detection{
			X:         x,
			Y:         y,
			Width:     w,
			Height:    h,
			Score:     maxScore,
			ClassID:   classID,
			ClassName: d.Classes.Label(classID),
		})
	}
	return detections, nil
}

// CheckShape compares a detector output shape, [1, 4+C, N] or [4+C, N],
// with the class table and candidate count.
func (d BoxDecoder) CheckShape(shape []int) error {
	if len(shape) < 2 {
		return errors.Wrapf(ErrMalformedBuffer, "output shape %v", shape)
	}
	channels, candidates := shape[len(shape)-2], shape[len(shape)-1]
	if channels < 4 {
		return errors.Wrapf(ErrMalformedBuffer, "output shape %v has no score channels", shape)
	}
	if err := d.Classes.Validate(channels - 4); err != nil {
		return errors.Wrap(ErrMalformedBuffer, err.Error())
	}
	if candidates != d.CandidateCount {
		return errors.Wrapf(ErrMalformedBuffer, "detector emits %d candidates, decoder expects %d", candidates, d.CandidateCount)
	}
	return nil
}

func (d BoxDecoder) check(output []float32) error {
	if d.CandidateCount <= 0 || d.Classes.Len() == 0 || d.InputSize <= 0 {
		return errors.Wrapf(ErrMalformedBuffer, "decoder not configured (candidates=%d classes=%d input=%.0f)",
			d.CandidateCount, d.Classes.Len(), d.InputSize)
	}
	if len(output) != d.ExpectedLen() {
		return errors.Wrapf(ErrMalformedBuffer, "got %d values, want %d", len(output), d.ExpectedLen())
	}
	return nil
}

// clampSpan converts a center/size pair to a start/size pair inside [0,1].
func clampSpan(center, size float64) (float64, float64) {
	if math.IsNaN(center) || math.IsNaN(size) {
		return 0, 0
	}
	start := clamp01(center - size/2)
	end := clamp01(center + size/2)
	if end < start {
		return start, 0
	}
	return start, end - start
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

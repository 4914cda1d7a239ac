package detect

// Pipeline chains decoding and suppression for one raw detector output.
type Pipeline struct {
	Decoder    BoxDecoder
	Suppressor NonMaxSuppressor
}

// NewPipeline builds a pipeline from the detector geometry and thresholds.
func NewPipeline(classes ClassTable, inputSize float64, candidates int, scoreThreshold, iouThreshold float64, maxDetections int) *Pipeline {
	return &Pipeline{
		Decoder: BoxDecoder{
			InputSize:      inputSize,
			CandidateCount: candidates,
			ScoreThreshold: scoreThreshold,
			Classes:        classes,
		},
		Suppressor: NonMaxSuppressor{
			IoUThreshold:  iouThreshold,
			MaxDetections: maxDetections,
		},
	}
}

// Process decodes, suppresses and filters one output buffer. On a malformed
// buffer it returns no detections and the decode error.
func (p *Pipeline) Process(output []float32, filter Filter) ([]Detection, error) {
	candidates, err := p.Decoder.Decode(output)
	if err != nil {
		return candidates, err
	}
	return filter.Apply(p.Suppressor.Suppress(candidates)), nil
}

// CountByLabel tallies detections per display label.
func CountByLabel(detections []Detection) map[string]int {
	counts := make(map[string]int)
	for _, d := range detections {
		counts[d.ClassName]++
	}
	return counts
}

package ai

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"recyclegame/internal/config"
	"recyclegame/internal/detect"
	"recyclegame/internal/logger"
	"recyclegame/internal/services"
)

// MatFrame is a frame backed by an OpenCV matrix.
type MatFrame interface {
	services.Frame
	Mat() gocv.Mat
}

// YOLODetector runs a YOLOv8 ONNX model and returns its raw planar output.
type YOLODetector struct {
	net       gocv.Net
	ready     bool
	inputSize int
	modelPath string
	logger    *logger.Logger
	mu        sync.Mutex
}

// NewYOLODetector loads the model. A missing or broken model is logged and
// every later Infer call fails.
func NewYOLODetector(config *config.Config, logger *logger.Logger) *YOLODetector {
	d := &YOLODetector{
		inputSize: config.InputSize,
		modelPath: config.ModelPath,
		logger:    logger,
	}

	if err := d.initializeNet(); err != nil {
		d.logger.Warning("Could not initialize detection network: %v", err)
		return d
	}
	return d
}

func (d *YOLODetector) initializeNet() error {
	if _, err := os.Stat(d.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", d.modelPath)
	}

	net := gocv.ReadNetFromONNX(d.modelPath)
	if net.Empty() {
		return fmt.Errorf("failed to load network from %s", d.modelPath)
	}
	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	d.net = net
	d.ready = true
	d.logger.Info("🤖 Detection network initialized from %s", d.modelPath)
	return nil
}

// Infer runs one forward pass. The returned slice is a copy and outlives the frame.
func (d *YOLODetector) Infer(ctx context.Context, frame services.Frame) ([]float32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready {
		return nil, fmt.Errorf("detection network not initialized")
	}
	mf, ok := frame.(MatFrame)
	if !ok {
		return nil, fmt.Errorf("unsupported frame type %T", frame)
	}
	mat := mf.Mat()
	if mat.Empty() {
		return nil, fmt.Errorf("frame is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := image.Pt(d.inputSize, d.inputSize)
	blob := gocv.BlobFromImage(mat, 1.0/255.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read network output: %w", err)
	}
	result := make([]float32, len(data))
	copy(result, data)
	return result, nil
}

// OutputShape runs the network once on a blank frame and returns the shape
// of its output.
func (d *YOLODetector) OutputShape() ([]int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready {
		return nil, fmt.Errorf("detection network not initialized")
	}
	blank := gocv.NewMatWithSize(d.inputSize, d.inputSize, gocv.MatTypeCV8UC3)
	defer blank.Close()

	size := image.Pt(d.inputSize, d.inputSize)
	blob := gocv.BlobFromImage(blank, 1.0/255.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()
	return output.Size(), nil
}

// Close releases the network.
func (d *YOLODetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ready {
		d.ready = false
		return d.net.Close()
	}
	return nil
}

// DrawDetections draws normalized detections onto an encoded image and
// returns it re-encoded as JPEG.
func DrawDetections(img []byte, detections []detect.Detection) ([]byte, error) {
	green := color.RGBA{R: 0, G: 255, B: 0, A: 0}

	mat, err := gocv.IMDecode(img, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("decoded image is empty")
	}

	cols, rows := float64(mat.Cols()), float64(mat.Rows())
	for _, d := range detections {
		rect := image.Rect(
			int(d.X*cols), int(d.Y*rows),
			int((d.X+d.Width)*cols), int((d.Y+d.Height)*rows),
		)
		if err := gocv.Rectangle(&mat, rect, green, 2); err != nil {
			return nil, fmt.Errorf("failed to draw rectangle: %w", err)
		}

		label := fmt.Sprintf("%s %d%%", d.ClassName, int(d.Score*100))
		pt := image.Pt(rect.Min.X, rect.Min.Y-5)
		if err := gocv.PutText(&mat, label, pt, gocv.FontHersheySimplex, 0.5, green, 1); err != nil {
			return nil, fmt.Errorf("failed to draw text: %w", err)
		}
	}

	buf, err := gocv.IMEncode(".jpg", mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()
	encoded := make([]byte, len(buf.GetBytes()))
	copy(encoded, buf.GetBytes())
	return encoded, nil
}

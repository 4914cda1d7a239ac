package camera

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"recyclegame/internal/config"
	"recyclegame/internal/logger"
	"recyclegame/internal/services"
)

// Frame owns a captured matrix until closed.
type Frame struct {
	mat gocv.Mat
}

// Mat returns the frame's matrix. It is valid until Close.
func (f *Frame) Mat() gocv.Mat { return f.mat }

// Close releases the matrix.
func (f *Frame) Close() error { return f.mat.Close() }

// Encode returns the frame as a JPEG image.
func (f *Frame) Encode() ([]byte, error) {
	buf, err := gocv.IMEncode(".jpg", f.mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()
	encoded := make([]byte, buf.Len())
	copy(encoded, buf.GetBytes())
	return encoded, nil
}

// Camera grabs frames from a local capture device.
type Camera struct {
	device  int
	capture *gocv.VideoCapture
	logger  *logger.Logger
	mu      sync.Mutex
}

// New opens the configured device. A device that cannot be opened is
// retried on the next FrameReady call.
func New(config *config.Config, logger *logger.Logger) *Camera {
	c := &Camera{device: config.CameraDevice, logger: logger}
	if err := c.open(); err != nil {
		c.logger.Warning("⚠️  Camera %d unavailable: %v", c.device, err)
	}
	return c
}

func (c *Camera) open() error {
	capture, err := gocv.OpenVideoCapture(c.device)
	if err != nil {
		return fmt.Errorf("failed to open capture device %d: %w", c.device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("capture device %d not opened", c.device)
	}
	c.capture = capture
	c.logger.Info("📹 Camera %d opened", c.device)
	return nil
}

// FrameReady reports whether the device is open.
func (c *Camera) FrameReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capture == nil {
		if err := c.open(); err != nil {
			return false
		}
	}
	return c.capture.IsOpened()
}

// Grab reads the next frame. The caller closes it.
func (c *Camera) Grab() (services.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capture == nil {
		return nil, fmt.Errorf("capture device %d not opened", c.device)
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to read frame from device %d", c.device)
	}
	return &Frame{mat: mat}, nil
}

// Close releases the device.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.capture = nil
	return err
}

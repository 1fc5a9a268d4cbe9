package detector

import (
	"gocv.io/x/gocv"

	"github.com/anbu-systems/anbu-watch/internal/domain/detection"
)

// Detector maps one frame to the objects found in it. The alerting core
// only consumes this contract; it does not select or tune the model.
type Detector interface {
	// Detect analyzes a frame and returns the detected objects.
	// An empty slice means nothing was found.
	Detect(frame *gocv.Mat) ([]detection.Detection, error)

	// Close releases any resources held by the detector.
	Close() error
}

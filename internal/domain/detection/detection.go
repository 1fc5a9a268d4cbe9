package detection

import "image"

// Detection is a single object reported by the detector for one frame.
// Instances are produced fresh per frame and never retained.
type Detection struct {
	// Label is the class name assigned by the model, e.g. "person".
	Label string
	// Confidence is the model score in [0,1].
	Confidence float64
	// Box is the bounding box in frame pixel coordinates.
	Box image.Rectangle
}

// Present reports whether the subject of interest appears in the frame:
// at least one detection carries the target label with confidence at or
// above the threshold. Pure function, no state.
func Present(detections []Detection, targetLabel string, minConfidence float64) bool {
	for _, d := range detections {
		if d.Label == targetLabel && d.Confidence >= minConfidence {
			return true
		}
	}

	return false
}

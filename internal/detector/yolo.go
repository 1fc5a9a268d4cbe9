package detector

import (
	"errors"
	"fmt"
	"image"
	"os"
	"strings"

	"gocv.io/x/gocv"

	"github.com/anbu-systems/anbu-watch/internal/domain/detection"
)

const (
	// defaultInputSize is the square network input resolution.
	defaultInputSize = 416
	// defaultScoreThreshold drops raw candidates below this confidence
	// before non-maximum suppression.
	defaultScoreThreshold = 0.25
	// defaultNMSThreshold is the IoU threshold for non-maximum suppression.
	defaultNMSThreshold = 0.4
)

var (
	// errModelNotLoaded is returned when the network files cannot be read.
	errModelNotLoaded = errors.New("detection model could not be loaded")
	// errNoClasses is returned when the class names file is empty.
	errNoClasses = errors.New("class names file contains no classes")
)

// YOLOOptions configures a YOLO detector instance.
type YOLOOptions struct {
	// WeightsPath is the darknet weights file.
	WeightsPath string
	// ConfigPath is the darknet network configuration file.
	ConfigPath string
	// ClassesPath is the newline-separated class names file.
	ClassesPath string
	// InputSize overrides the square network input resolution.
	InputSize int
	// ScoreThreshold overrides the raw candidate confidence cutoff.
	ScoreThreshold float32
	// NMSThreshold overrides the non-maximum suppression IoU cutoff.
	NMSThreshold float32
}

// YOLO runs a darknet-family object detection network through the
// OpenCV DNN module. Not safe for concurrent use; the frame loop is the
// only caller.
type YOLO struct {
	// net is the loaded network.
	net gocv.Net
	// outputNames are the unconnected output layer names to forward to.
	outputNames []string
	// classes maps class IDs to label names.
	classes []string
	// inputSize is the square network input resolution.
	inputSize int
	// scoreThreshold is the raw candidate confidence cutoff.
	scoreThreshold float32
	// nmsThreshold is the non-maximum suppression IoU cutoff.
	nmsThreshold float32
}

// NewYOLO loads the network and class names from the provided paths.
func NewYOLO(opts YOLOOptions) (*YOLO, error) {
	classes, err := loadClassNames(opts.ClassesPath)
	if err != nil {
		return nil, err
	}

	net := gocv.ReadNet(opts.WeightsPath, opts.ConfigPath)
	if net.Empty() {
		return nil, fmt.Errorf("%w: weights %q, config %q", errModelNotLoaded, opts.WeightsPath, opts.ConfigPath)
	}

	// CPU inference is the portable default.
	_ = net.SetPreferableBackend(gocv.NetBackendDefault)
	_ = net.SetPreferableTarget(gocv.NetTargetCPU)

	d := &YOLO{
		net:            net,
		outputNames:    outputLayerNames(&net),
		classes:        classes,
		inputSize:      opts.InputSize,
		scoreThreshold: opts.ScoreThreshold,
		nmsThreshold:   opts.NMSThreshold,
	}

	if d.inputSize <= 0 {
		d.inputSize = defaultInputSize
	}

	if d.scoreThreshold <= 0 {
		d.scoreThreshold = defaultScoreThreshold
	}

	if d.nmsThreshold <= 0 {
		d.nmsThreshold = defaultNMSThreshold
	}

	return d, nil
}

// Detect runs one forward pass and returns the surviving detections with
// boxes scaled back to frame pixel coordinates.
func (d *YOLO) Detect(frame *gocv.Mat) ([]detection.Detection, error) {
	blob := gocv.BlobFromImage(
		*frame,
		1.0/255.0,
		image.Pt(d.inputSize, d.inputSize),
		gocv.NewScalar(0, 0, 0, 0),
		true,
		false,
	)
	defer func() {
		_ = blob.Close()
	}()

	d.net.SetInput(blob, "")

	outputs := d.net.ForwardLayers(d.outputNames)
	defer func() {
		for i := range outputs {
			_ = outputs[i].Close()
		}
	}()

	return d.parseOutputs(outputs, frame.Cols(), frame.Rows())
}

// Close releases the network.
func (d *YOLO) Close() error {
	if err := d.net.Close(); err != nil {
		return fmt.Errorf("release network: %w", err)
	}

	return nil
}

// parseOutputs decodes darknet output rows (cx, cy, w, h, objectness,
// per-class scores) and applies non-maximum suppression.
func (d *YOLO) parseOutputs(outputs []gocv.Mat, frameWidth, frameHeight int) ([]detection.Detection, error) {
	var (
		boxes    []image.Rectangle
		scores   []float32
		classIDs []int
	)

	for i := range outputs {
		data, err := outputs[i].DataPtrFloat32()
		if err != nil {
			return nil, fmt.Errorf("read network output: %w", err)
		}

		cols := outputs[i].Cols()
		if cols == 0 {
			continue
		}

		for row := 0; row < outputs[i].Rows(); row++ {
			candidate := data[row*cols : (row+1)*cols]

			classID, confidence := bestClass(candidate[5:])
			if confidence < d.scoreThreshold {
				continue
			}

			// Box center and size come back normalized to the input.
			centerX := candidate[0] * float32(frameWidth)
			centerY := candidate[1] * float32(frameHeight)
			width := candidate[2] * float32(frameWidth)
			height := candidate[3] * float32(frameHeight)

			left := int(centerX - width/2)
			top := int(centerY - height/2)

			boxes = append(boxes, image.Rect(left, top, left+int(width), top+int(height)))
			scores = append(scores, confidence)
			classIDs = append(classIDs, classID)
		}
	}

	if len(boxes) == 0 {
		return nil, nil
	}

	kept := gocv.NMSBoxes(boxes, scores, d.scoreThreshold, d.nmsThreshold)
	detections := make([]detection.Detection, 0, len(kept))

	for _, idx := range kept {
		label := "unknown"
		if classIDs[idx] < len(d.classes) {
			label = d.classes[classIDs[idx]]
		}

		detections = append(detections, detection.Detection{
			Label:      label,
			Confidence: float64(scores[idx]),
			Box:        boxes[idx],
		})
	}

	return detections, nil
}

// bestClass returns the index and score of the highest-scoring class.
func bestClass(classScores []float32) (int, float32) {
	bestID := 0
	best := float32(0)

	for id, score := range classScores {
		if score > best {
			best = score
			bestID = id
		}
	}

	return bestID, best
}

// outputLayerNames resolves the unconnected output layers of the network.
func outputLayerNames(net *gocv.Net) []string {
	var names []string

	for _, id := range net.GetUnconnectedOutLayers() {
		layer := net.GetLayer(id)
		name := layer.GetName()
		_ = layer.Close()

		if name != "" && name != "_input" {
			names = append(names, name)
		}
	}

	return names
}

// loadClassNames reads the newline-separated class list used to map
// class IDs to labels.
func loadClassNames(path string) ([]string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read class names: %w", err)
	}

	var classes []string

	for _, line := range strings.Split(string(contents), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			classes = append(classes, line)
		}
	}

	if len(classes) == 0 {
		return nil, fmt.Errorf("%s: %w", path, errNoClasses)
	}

	return classes, nil
}

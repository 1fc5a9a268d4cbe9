// Package detector runs a pretrained object detection model on single
// frames. The Detector interface is the contract the surveillance loop
// consumes; YOLO is the bundled implementation on top of the OpenCV DNN
// module.
package detector

package detection

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPresent covers label matching and the confidence threshold boundary.
func TestPresent(t *testing.T) {
	t.Parallel()

	frame := []Detection{
		{Label: "dog", Confidence: 0.99, Box: image.Rect(0, 0, 40, 40)},
		{Label: "person", Confidence: 0.60, Box: image.Rect(10, 10, 90, 200)},
	}

	cases := []struct {
		name          string
		detections    []Detection
		targetLabel   string
		minConfidence float64
		want          bool
	}{
		{
			name:          "match above threshold",
			detections:    frame,
			targetLabel:   "person",
			minConfidence: 0.5,
			want:          true,
		},
		{
			name:          "match exactly at threshold",
			detections:    frame,
			targetLabel:   "person",
			minConfidence: 0.60,
			want:          true,
		},
		{
			name:          "confidence below threshold",
			detections:    frame,
			targetLabel:   "person",
			minConfidence: 0.61,
			want:          false,
		},
		{
			name:          "label absent",
			detections:    frame,
			targetLabel:   "cat",
			minConfidence: 0.1,
			want:          false,
		},
		{
			name:          "empty frame",
			detections:    nil,
			targetLabel:   "person",
			minConfidence: 0.5,
			want:          false,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Present(tc.detections, tc.targetLabel, tc.minConfidence))
		})
	}
}

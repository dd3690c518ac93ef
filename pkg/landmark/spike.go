package landmark

import "github.com/chewxy/math32"

const defaultAngleTolerance = 1e-4

// SpikeDetector finds scan indices whose range is locally depressed versus
// both neighbors: a corner or a thin obstacle.
type SpikeDetector struct {
	Threshold      float32
	AngleTolerance float32
}

// SpikeOption configures a SpikeDetector.
type SpikeOption func(*SpikeDetector)

// WithSpikeThreshold sets the minimum combined depth, (A-B)+(C-B), that
// qualifies index i as a spike.
func WithSpikeThreshold(threshold float32) SpikeOption {
	return func(s *SpikeDetector) { s.Threshold = threshold }
}

// NewSpikeDetector builds a SpikeDetector with the given threshold,
// matching the defaults of original_source/landmark_extraction.py unless
// overridden.
func NewSpikeDetector(opts ...SpikeOption) *SpikeDetector {
	s := &SpikeDetector{
		Threshold:      0,
		AngleTolerance: defaultAngleTolerance,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract implements Extractor.
func (s *SpikeDetector) Extract(x, y, theta float32, scan []Observation) []Landmark {
	n := len(scan)
	if n == 0 {
		return nil
	}

	wrapAround := false
	if n > 1 {
		stepFirst := scan[1].DTheta - scan[0].DTheta
		stepWrap := scan[0].DTheta - scan[n-1].DTheta
		wrapAround = math32.Abs(stepFirst-stepWrap) <= s.AngleTolerance
	}

	var out []Landmark
	for i := 0; i < n; i++ {
		if !wrapAround && (i == 0 || i == n-1) {
			continue
		}

		prev := (i - 1 + n) % n
		next := (i + 1) % n

		a := scan[prev].Distance
		b := scan[i].Distance
		c := scan[next].Distance
		if a < 0 || b < 0 || c < 0 {
			continue
		}

		if (a-b)+(c-b) >= s.Threshold {
			p := worldPoint(x, y, theta, scan[i])
			out = append(out, newLandmark(Spike, p))
		}
	}

	return out
}

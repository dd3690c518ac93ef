package landmark

import (
	"math/rand"
	"time"

	"github.com/incherre/slam-bot/pkg/geometry"
)

// RansacDetector fits lines to point clusters in a scan and reports the
// perpendicular foot from the sensor origin to each fitted line — walls
// appear as one landmark each.
type RansacDetector struct {
	MaxTries  int
	Samples   int
	Range     float32
	Error     float32
	Consensus int

	rng *rand.Rand
}

// RansacOption configures a RansacDetector.
type RansacOption func(*RansacDetector)

func WithMaxTries(n int) RansacOption      { return func(r *RansacDetector) { r.MaxTries = n } }
func WithSamples(n int) RansacOption       { return func(r *RansacDetector) { r.Samples = n } }
func WithAngularRange(v float32) RansacOption { return func(r *RansacDetector) { r.Range = v } }
func WithError(v float32) RansacOption     { return func(r *RansacDetector) { r.Error = v } }
func WithConsensus(n int) RansacOption     { return func(r *RansacDetector) { r.Consensus = n } }

// WithSeed overrides the detector's RNG with one seeded deterministically,
// the determinism hook of spec.md 4.1.
func WithSeed(seed int64) RansacOption {
	return func(r *RansacDetector) { r.rng = rand.New(rand.NewSource(seed)) }
}

// NewRansacDetector builds a RansacDetector. Without WithSeed, the RNG is
// seeded from the current time, matching spec.md's "seedable object passed
// by reference, not a process-wide facility" design note.
func NewRansacDetector(opts ...RansacOption) *RansacDetector {
	r := &RansacDetector{
		MaxTries:  20,
		Samples:   4,
		Range:     0.35,
		Error:     0.2,
		Consensus: 6,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type scanPoint struct {
	point geometry.Point
	angle float32
}

// Extract implements Extractor.
func (r *RansacDetector) Extract(x, y, theta float32, scan []Observation) []Landmark {
	var pts []scanPoint
	for _, o := range scan {
		if !o.valid() {
			continue
		}
		pts = append(pts, scanPoint{
			point: worldPoint(x, y, theta, o),
			angle: geometry.Normalize(theta + o.DTheta),
		})
	}

	n := len(pts)
	if n == 0 {
		return nil
	}
	associated := make([]bool, n)
	numAssociated := 0

	var out []Landmark
	for try := 0; try < r.MaxTries; try++ {
		if n-numAssociated < r.Consensus {
			break
		}

		seedIdx := r.pickUnassociated(associated, n)
		if seedIdx < 0 {
			break
		}
		seedAngle := pts[seedIdx].angle

		window := r.angularWindow(pts, associated, seedIdx, seedAngle)
		if len(window) < r.Samples-1 {
			continue
		}

		sampleIdxs := r.sample(window, r.Samples-1)
		fitPts := make([]geometry.Point, 0, r.Samples)
		fitPts = append(fitPts, pts[seedIdx].point)
		for _, idx := range sampleIdxs {
			fitPts = append(fitPts, pts[idx].point)
		}
		line := geometry.LeastSquaresLine(fitPts)

		var supporters []int
		for i, p := range pts {
			if associated[i] {
				continue
			}
			if line.PerpendicularDistance(p.point) < r.Error {
				supporters = append(supporters, i)
			}
		}
		if len(supporters) < r.Consensus {
			continue
		}

		refitPts := make([]geometry.Point, len(supporters))
		for i, idx := range supporters {
			refitPts[i] = pts[idx].point
		}
		refit := geometry.LeastSquaresLine(refitPts)

		for _, idx := range supporters {
			associated[idx] = true
		}
		numAssociated += len(supporters)

		out = append(out, newLandmark(Ransac, refit.Foot()))
	}

	return out
}

func (r *RansacDetector) pickUnassociated(associated []bool, n int) int {
	var candidates []int
	for i := 0; i < n; i++ {
		if !associated[i] {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	return candidates[r.rng.Intn(len(candidates))]
}

// angularWindow collects the unassociated points whose angle lies within
// +-Range of seedAngle, treating the angle as circular (AngleDifference
// already picks the shortest signed distance around the circle).
func (r *RansacDetector) angularWindow(pts []scanPoint, associated []bool, seedIdx int, seedAngle float32) []int {
	var window []int
	for i, p := range pts {
		if i == seedIdx || associated[i] {
			continue
		}
		if absAngularDistance(seedAngle, p.angle) <= r.Range {
			window = append(window, i)
		}
	}
	return window
}

func absAngularDistance(a, b float32) float32 {
	d := geometry.AngleDifference(a, b)
	if d < 0 {
		d = -d
	}
	return d
}

func (r *RansacDetector) sample(pool []int, k int) []int {
	if k >= len(pool) {
		return pool
	}
	shuffled := make([]int, len(pool))
	copy(shuffled, pool)
	r.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:k]
}

// Package landmark extracts candidate landmarks from a polar range scan
// using the two complementary detectors described in
// original_source/landmark_extraction.py: a spike detector and a RANSAC
// line detector.
package landmark

import (
	"github.com/google/uuid"

	"github.com/incherre/slam-bot/pkg/geometry"
)

// Kind discriminates which detector produced a Landmark. Two landmarks
// only associate with each other when their Kind matches.
type Kind int

const (
	Spike Kind = iota
	Ransac
)

func (k Kind) String() string {
	switch k {
	case Spike:
		return "spike"
	case Ransac:
		return "ransac"
	default:
		return "unknown"
	}
}

// Observation is one (angular offset, distance) sample of a range scan. A
// negative Distance (or the sentinel below) marks "no return" and must be
// filtered by detectors, not passed on to the EKF.
type Observation struct {
	DTheta   float32
	Distance float32
}

// NoReturn is the sentinel distance value meaning "no return". It is
// negative, so detectors filter it like any other negative distance.
const NoReturn = -1

func (o Observation) valid() bool {
	return o.Distance >= 0
}

// Landmark is a detected landmark in world coordinates, tagged with the
// detector that produced it. ID is a stable identity independent of its
// position in any slice, useful once landmarks are logged or persisted.
type Landmark struct {
	ID   uuid.UUID
	Kind Kind
	X    float32
	Y    float32
}

// Extractor produces candidate landmarks from a scan taken at the given
// pose.
type Extractor interface {
	Extract(x, y, theta float32, scan []Observation) []Landmark
}

func newLandmark(kind Kind, p geometry.Point) Landmark {
	return Landmark{ID: uuid.New(), Kind: kind, X: p.X, Y: p.Y}
}

// worldPoint converts an observation taken at (x, y, theta) into a world
// coordinate, per spec.md 4.1.
func worldPoint(x, y, theta float32, o Observation) geometry.Point {
	return geometry.PolarToWorld(x, y, theta, o.DTheta, o.Distance)
}

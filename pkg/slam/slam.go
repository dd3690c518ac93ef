// Package slam couples a SensingAndControl capability with the landmark
// extractors, the EKF and the collision map into the single
// move-observe-and-update tick described in original_source/slam.py and
// original_source/robot_explorer.py.
package slam

import (
	"github.com/incherre/slam-bot/internal/rlog"
	"github.com/incherre/slam-bot/pkg/collision"
	"github.com/incherre/slam-bot/pkg/ekfslam"
	"github.com/incherre/slam-bot/pkg/landmark"
)

// SensingAndControl is the capability the orchestrator consumes: control of
// the robot's motion and its rotating rangefinder. Implementations may
// block on Move/DistanceReading; the core never does.
type SensingAndControl interface {
	// Move turns the robot by deltaTheta radians then advances it distance
	// linear units, returning the actual distance traveled.
	Move(deltaTheta, distance float32) float32

	// DistanceReading returns an evenly spaced polar range scan.
	DistanceReading() []landmark.Observation
}

// Orchestrator owns an EKF and a collision map exclusively and drives both
// from a borrowed SensingAndControl on each tick.
type Orchestrator struct {
	control    SensingAndControl
	ekf        *ekfslam.EKF
	map_       *collision.Map
	extractors []landmark.Extractor
}

// New constructs an Orchestrator. extractors are run in the given order on
// every tick; original_source/slam.py runs the spike and RANSAC detectors
// independently, so passing both is typical.
func New(control SensingAndControl, ekf *ekfslam.EKF, collisionMap *collision.Map, extractors ...landmark.Extractor) *Orchestrator {
	return &Orchestrator{
		control:    control,
		ekf:        ekf,
		map_:       collisionMap,
		extractors: extractors,
	}
}

// MoveObserveAndUpdate runs one SLAM tick: move, read, extract, EKF update,
// then record the collision map with the post-update pose. Ordering is
// strict, per spec.md 5.
func (o *Orchestrator) MoveObserveAndUpdate(deltaTheta, distance float32) {
	odometry := o.control.Move(deltaTheta, distance)
	scan := o.control.DistanceReading()

	x, y, theta := o.ekf.Pose()
	var observed []ekfslam.Observation
	for _, extractor := range o.extractors {
		for _, lm := range extractor.Extract(x, y, theta, scan) {
			observed = append(observed, ekfslam.Observation{X: lm.X, Y: lm.Y, Kind: lm.Kind})
		}
	}

	o.ekf.Update(deltaTheta, odometry, observed)

	px, py, ptheta := o.ekf.Pose()
	o.map_.Record(px, py, ptheta, toCollisionObservations(scan))

	rlog.Log.Debug().
		Float32("x", px).Float32("y", py).Float32("theta", ptheta).
		Int("landmarks_observed", len(observed)).
		Msg("move_observe_and_update")
}

func toCollisionObservations(scan []landmark.Observation) []collision.Observation {
	out := make([]collision.Observation, len(scan))
	for i, o := range scan {
		out[i] = collision.Observation{DTheta: o.DTheta, Distance: o.Distance}
	}
	return out
}

// GetEstimatedPosition returns the current (x, y, theta) pose estimate.
func (o *Orchestrator) GetEstimatedPosition() (x, y, theta float32) {
	return o.ekf.Pose()
}

// GetCollisionMap returns the orchestrator's owned collision map.
func (o *Orchestrator) GetCollisionMap() *collision.Map {
	return o.map_
}

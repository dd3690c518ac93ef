// Package ekfslam implements a growing-state Extended Kalman Filter for
// SLAM, following original_source/ekf.py: the state vector starts at
// pose-only (x, y, theta) and gains two entries per inserted landmark,
// with data association gated on Mahalanobis distance and heterogeneous
// landmark kinds. Method shapes (Predict-then-Update, Jacobian helpers,
// in-place builder style) are grounded on x/math/filter/ekalman/ekalman.go,
// adapted because the ekalman package's matrices are fixed-size at
// construction and the SLAM state is not.
package ekfslam

import (
	"errors"

	"github.com/chewxy/math32"

	"github.com/incherre/slam-bot/internal/slmat"
	"github.com/incherre/slam-bot/pkg/landmark"
)

// Option configures an EKF at construction.
type Option func(*EKF)

// WithInitialUncertainty sets the diagonal value of the initial pose
// covariance. Default 0.95.
func WithInitialUncertainty(v float32) Option {
	return func(e *EKF) { e.initialUncertainty = v }
}

// WithOdometryNoise sets the scale of the motion process noise. Default 0.05.
func WithOdometryNoise(v float32) Option {
	return func(e *EKF) { e.odometryNoise = v }
}

// WithRangeNoise sets the per-meter range measurement noise. Default 0.01.
func WithRangeNoise(v float32) Option {
	return func(e *EKF) { e.rangeNoise = v }
}

// WithBearingNoise sets the bearing measurement noise, in radians. Default
// 1 degree.
func WithBearingNoise(v float32) Option {
	return func(e *EKF) { e.bearingNoise = v }
}

// WithInnovationLambda sets the Mahalanobis-distance gate threshold for data
// association. Default 1.
func WithInnovationLambda(v float32) Option {
	return func(e *EKF) { e.innovationLambda = v }
}

// WithLandmarkThreshold sets the minimum sighting count (strictly greater
// than) before a landmark's re-observations influence the pose. Default 5.
func WithLandmarkThreshold(v int) Option {
	return func(e *EKF) { e.landmarkThreshold = v }
}

// Observation is one landmark sighting in world coordinates, as produced by
// pkg/landmark extractors.
type Observation struct {
	X    float32
	Y    float32
	Kind landmark.Kind
}

// EKF is a growing-state extended Kalman filter over pose and landmarks.
// The zero value is not usable; construct with New.
type EKF struct {
	state      slmat.Vector // 3 + 2L entries: x, y, theta, then (lx, ly) per landmark
	covariance slmat.Matrix // (3+2L) x (3+2L)

	kinds  []landmark.Kind
	counts []int

	initialUncertainty float32
	odometryNoise      float32
	rangeNoise         float32
	bearingNoise       float32
	innovationLambda   float32
	landmarkThreshold  int
}

// New constructs an EKF at pose (0,0,0) with no landmarks.
func New(opts ...Option) *EKF {
	e := &EKF{
		initialUncertainty: 0.95,
		odometryNoise:      0.05,
		rangeNoise:         0.01,
		bearingNoise:       math32.Pi / 180,
		innovationLambda:   1,
		landmarkThreshold:  5,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.state = slmat.NewVector(3)
	e.covariance = slmat.Identity(3).MulC(e.initialUncertainty)
	return e
}

func landmarkIndex(i int) int { return 3 + 2*i }

// LandmarkCount returns the number of landmarks currently in the state.
func (e *EKF) LandmarkCount() int { return len(e.kinds) }

// StateDim returns dim(mu) = 3 + 2*LandmarkCount().
func (e *EKF) StateDim() int { return landmarkIndex(e.LandmarkCount()) }

// Pose returns the current (x, y, theta) estimate.
func (e *EKF) Pose() (x, y, theta float32) {
	return e.state[0], e.state[1], e.state[2]
}

// LandmarkPosition returns the (x, y) estimate and kind of landmark i.
func (e *EKF) LandmarkPosition(i int) (x, y float32, kind landmark.Kind) {
	idx := landmarkIndex(i)
	return e.state[idx], e.state[idx+1], e.kinds[i]
}

// LandmarkCounts returns how many times each landmark has been observed,
// counting the sighting that inserted it, in insertion order.
func (e *EKF) LandmarkCounts() []int {
	out := make([]int, len(e.counts))
	copy(out, e.counts)
	return out
}

// Covariance returns the full covariance matrix. Callers must not mutate
// the result.
func (e *EKF) Covariance() slmat.Matrix { return e.covariance }

// assertInvariants panics if any of the documented EKF invariants have
// been violated. These represent programmer errors, not recoverable
// runtime conditions.
func (e *EKF) assertInvariants() {
	if len(e.kinds) != len(e.counts) {
		panic("ekfslam: len(kinds) != len(counts)")
	}
	want := landmarkIndex(len(e.kinds))
	if len(e.state) != want {
		panic("ekfslam: state dimension mismatch")
	}
	if e.covariance.Rows() != want || e.covariance.Cols() != want {
		panic("ekfslam: covariance dimension mismatch")
	}
	if !e.covariance.IsSymmetric(1e-6) {
		panic("ekfslam: covariance is not symmetric")
	}
}

// Update advances the filter by one control (deltaTheta, odometry) and
// incorporates a batch of observed landmarks, per spec.md 4.3: predict
// pose, associate observations to existing landmarks under a Mahalanobis
// gate, apply per-landmark Kalman updates for sufficiently-seen matches,
// and append unmatched observations as new landmarks.
func (e *EKF) Update(deltaTheta, odometry float32, observed []Observation) {
	e.predict(deltaTheta, odometry)

	associated, fresh := e.associate(observed)
	e.applyUpdates(associated)
	e.addLandmarks(fresh, odometry)

	e.assertInvariants()
}

// posAfterMove computes the turn-then-move prediction of the robot pose,
// without mutating the filter.
func (e *EKF) posAfterMove(deltaTheta, odometry float32) (x, y, theta float32) {
	theta = e.state[2] + deltaTheta
	x = e.state[0] + odometry*math32.Cos(theta)
	y = e.state[1] + odometry*math32.Sin(theta)
	return
}

func (e *EKF) predict(deltaTheta, odometry float32) {
	x, y, theta := e.posAfterMove(deltaTheta, odometry)
	e.state[0], e.state[1], e.state[2] = x, y, theta

	f := motionJacobian(theta, odometry)
	q := controlNoise(theta, deltaTheta, odometry, e.odometryNoise)

	pose := e.covariance.Submatrix(0, 0, 3, 3)
	tmp := slmat.NewMatrix(3, 3).Mul(f, pose)
	ft := slmat.NewMatrix(3, 3).Transpose(f)
	updated := slmat.NewMatrix(3, 3).Mul(tmp, ft).Add(q)
	e.covariance.SetSubmatrix(0, 0, updated)
}

// motionJacobian is the Jacobian of the turn-then-move motion model with
// respect to (x, y, theta), evaluated at the post-move heading theta'.
func motionJacobian(thetaPrime, odometry float32) slmat.Matrix {
	f := slmat.Identity(3)
	f[0][2] = -odometry * math32.Cos(thetaPrime)
	f[1][2] = odometry * math32.Sin(thetaPrime)
	return f
}

// controlNoise is Q = odometryNoise * v*v^T with v = (d*cos(theta'),
// d*sin(theta'), deltaTheta).
func controlNoise(thetaPrime, deltaTheta, odometry, odometryNoise float32) slmat.Matrix {
	v := slmat.Vector{odometry * math32.Cos(thetaPrime), odometry * math32.Sin(thetaPrime), deltaTheta}
	q := slmat.NewMatrix(3, 3)
	for i := range v {
		for j := range v {
			q[i][j] = odometryNoise * v[i] * v[j]
		}
	}
	return q
}

type association struct {
	obs   Observation
	index int
}

// errSingularInnovation marks an association attempt whose innovation
// covariance could not be inverted; the caller treats the observation as
// unassociated, per spec.md 7.
var errSingularInnovation = errors.New("ekfslam: singular innovation covariance")

// associate matches each observed landmark to the nearest existing
// landmark of the same kind, gated by Mahalanobis distance. Unmatched
// observations (including all of them, when there are no landmarks yet)
// are returned as fresh.
func (e *EKF) associate(observed []Observation) (associated []association, fresh []Observation) {
	if len(e.kinds) == 0 {
		return nil, observed
	}

	for _, obs := range observed {
		best := -1
		bestDist := float32(math32.Inf(1))
		for i, kind := range e.kinds {
			if kind != obs.Kind {
				continue
			}
			lx, ly := e.state[landmarkIndex(i)], e.state[landmarkIndex(i)+1]
			d := math32.Sqrt((lx-obs.X)*(lx-obs.X) + (ly-obs.Y)*(ly-obs.Y))
			if d < bestDist {
				bestDist, best = d, i
			}
		}

		if best < 0 {
			fresh = append(fresh, obs)
			continue
		}

		gate, err := e.innovationGate(best, obs)
		if err != nil || gate > e.innovationLambda {
			fresh = append(fresh, obs)
			continue
		}
		associated = append(associated, association{obs: obs, index: best})
	}

	return associated, fresh
}

// innovationGate computes nu^T S^-1 nu for the candidate association of
// obs against existing landmark i, where nu is the position-form
// difference (old - new), per spec.md 4.3.
func (e *EKF) innovationGate(i int, obs Observation) (float32, error) {
	lx, ly := e.state[landmarkIndex(i)], e.state[landmarkIndex(i)+1]
	x, y := e.state[0], e.state[1]

	s, err := e.landmarkInnovationCovariance(i, rangeNoiseFor(lx, ly, x, y, e.rangeNoise), e.bearingNoise)
	if err != nil {
		return 0, err
	}

	sInv := slmat.NewMatrix(2, 2)
	if err := s.Inverse(sInv); err != nil {
		return 0, errSingularInnovation
	}

	nu := slmat.Vector{lx - obs.X, ly - obs.Y}
	tmp := slmat.NewVector(2)
	sInv.MulVec(nu, tmp)
	return nu.Dot(tmp), nil
}

func rangeNoiseFor(lx, ly, x, y, rangeNoise float32) float32 {
	r := math32.Sqrt((lx-x)*(lx-x) + (ly-y)*(ly-y))
	return r * rangeNoise
}

// landmarkError builds the partial (range, bearing) measurement error
// matrix: diagonal with the range-dependent entry supplied by the caller
// and the fixed bearing noise.
func landmarkError(rangeErr, bearingNoise float32) slmat.Matrix {
	m := slmat.NewMatrix(2, 2)
	m[0][0] = rangeErr
	m[1][1] = bearingNoise
	return m
}

// landmarkInnovationCovariance computes S = H Sigma H^T + R for the
// landmark at index i.
func (e *EKF) landmarkInnovationCovariance(i int, rangeErr, bearingNoise float32) (slmat.Matrix, error) {
	h := e.measurementJacobian(i)
	n := e.StateDim()

	hSigma := slmat.NewMatrix(2, n).Mul(h, e.covariance)
	ht := slmat.NewMatrix(n, 2).Transpose(h)
	s := slmat.NewMatrix(2, 2).Mul(hSigma, ht)
	s.Add(landmarkError(rangeErr, bearingNoise))
	return s, nil
}

// measurementJacobian builds the 2 x (3+2L) Jacobian of the range-bearing
// measurement model for landmark i, per spec.md 4.3.
func (e *EKF) measurementJacobian(i int) slmat.Matrix {
	x, y := e.state[0], e.state[1]
	lx, ly := e.state[landmarkIndex(i)], e.state[landmarkIndex(i)+1]
	r := math32.Sqrt((x-lx)*(x-lx) + (y-ly)*(y-ly))

	h := slmat.NewMatrix(2, e.StateDim())
	h[0][0] = (x - lx) / r
	h[0][1] = (y - ly) / r
	h[1][0] = (ly - y) / (r * r)
	h[1][1] = (lx - x) / (r * r)
	h[1][2] = -1

	idx := landmarkIndex(i)
	h[0][idx] = -h[0][0]
	h[0][idx+1] = -h[0][1]
	h[1][idx] = -h[1][0]
	h[1][idx+1] = -h[1][1]
	return h
}

// applyUpdates increments sighting counters for every associated landmark
// and applies the Kalman update for those seen more than landmarkThreshold
// times.
func (e *EKF) applyUpdates(associated []association) {
	x, y, theta := e.state[0], e.state[1], e.state[2]

	for _, a := range associated {
		e.counts[a.index]++
		if e.counts[a.index] <= e.landmarkThreshold {
			continue
		}

		lx, ly := e.state[landmarkIndex(a.index)], e.state[landmarkIndex(a.index)+1]
		rangeErr := rangeNoiseFor(lx, ly, x, y, e.rangeNoise)

		h := e.measurementJacobian(a.index)
		s, err := e.landmarkInnovationCovariance(a.index, rangeErr, e.bearingNoise)
		if err != nil {
			continue
		}
		sInv := slmat.NewMatrix(2, 2)
		if err := s.Inverse(sInv); err != nil {
			// Singular innovation covariance: skip this update, per spec.md 7.
			continue
		}

		n := e.StateDim()
		ht := slmat.NewMatrix(n, 2).Transpose(h)
		sigmaHt := slmat.NewMatrix(n, 2).Mul(e.covariance, ht)
		k := slmat.NewMatrix(n, 2).Mul(sigmaHt, sInv)

		deltaVec := landmarkDeviation(a.obs.X, a.obs.Y, lx, ly, x, y, theta)
		kDelta := slmat.NewVector(n)
		k.MulVec(deltaVec, kDelta)
		e.state.Add(kDelta)

		// A conventional covariance deflation would go here:
		//   Sigma <- (I - K H) Sigma
		// The reference implementation never performs it for the
		// landmark-SLAM state (see DESIGN.md); we follow it as-is.

		x, y, theta = e.state[0], e.state[1], e.state[2]
	}
}

// landmarkDeviation computes delta, the 2x1 (range, bearing) deviation
// between the old and new landmark observations expressed relative to the
// robot pose, per spec.md 4.3.
func landmarkDeviation(newX, newY, oldX, oldY, x, y, theta float32) slmat.Vector {
	newR := math32.Sqrt((newX-x)*(newX-x) + (newY-y)*(newY-y))
	oldR := math32.Sqrt((oldX-x)*(oldX-x) + (oldY-y)*(oldY-y))
	newBearing := math32.Atan2(newY-y, newX-x) - theta
	oldBearing := math32.Atan2(oldY-y, oldX-x) - theta
	return slmat.Vector{newR - oldR, newBearing - oldBearing}
}

// addLandmarks grows the state once, by two entries per fresh observation, and fills
// the new rows/columns of mu and Sigma per spec.md 4.3.
func (e *EKF) addLandmarks(fresh []Observation, odometry float32) {
	if len(fresh) == 0 {
		return
	}

	nextIndex := e.StateDim()
	newSize := nextIndex + 2*len(fresh)

	x, y, theta := e.state[0], e.state[1], e.state[2]
	jxs := slmat.Matrix{
		{1, 0, -odometry * math32.Sin(theta)},
		{0, 1, odometry * math32.Cos(theta)},
	}
	jm := slmat.Matrix{
		{math32.Cos(theta), -odometry * math32.Sin(theta)},
		{math32.Sin(theta), odometry * math32.Cos(theta)},
	}
	jxsT := slmat.NewMatrix(3, 2).Transpose(jxs)
	jmT := slmat.NewMatrix(2, 2).Transpose(jm)

	e.state = slmat.Grow(e.state, newSize)
	e.covariance = slmat.Grow(e.covariance, newSize)

	for _, obs := range fresh {
		e.kinds = append(e.kinds, obs.Kind)
		e.counts = append(e.counts, 1)
		e.state[nextIndex] = obs.X
		e.state[nextIndex+1] = obs.Y

		rangeErr := rangeNoiseFor(obs.X, obs.Y, x, y, e.rangeNoise)
		r := landmarkError(rangeErr, e.bearingNoise)

		pose := e.covariance.Submatrix(0, 0, 3, 3)
		selfCov := slmat.NewMatrix(2, 3).Mul(jxs, pose)
		selfCov = slmat.NewMatrix(2, 2).Mul(selfCov, jxsT)
		rCov := slmat.NewMatrix(2, 2).Mul(jm, r)
		rCov = slmat.NewMatrix(2, 2).Mul(rCov, jmT)
		selfCov.Add(rCov)
		e.covariance.SetSubmatrix(nextIndex, nextIndex, selfCov)

		crossWithPose := slmat.NewMatrix(3, 2).Mul(pose, jxsT)
		e.covariance.SetSubmatrix(0, nextIndex, crossWithPose)
		crossWithPoseT := slmat.NewMatrix(2, 3).Transpose(crossWithPose)
		e.covariance.SetSubmatrix(nextIndex, 0, crossWithPoseT)

		for k := 0; k < len(e.kinds)-1; k++ {
			otherIdx := landmarkIndex(k)
			cross := e.covariance.Submatrix(0, otherIdx, 3, 2)
			cross = slmat.NewMatrix(2, 2).Mul(jxs, cross)
			e.covariance.SetSubmatrix(nextIndex, otherIdx, cross)
			crossT := slmat.NewMatrix(2, 2).Transpose(cross)
			e.covariance.SetSubmatrix(otherIdx, nextIndex, crossT)
		}

		nextIndex += 2
	}
}

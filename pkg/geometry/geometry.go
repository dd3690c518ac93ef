// Package geometry holds the angle, regression and distance primitives
// shared by landmark extraction, the collision map and the explorer.
// Formulas are grounded directly on original_source/landmark_extraction.py.
package geometry

import "github.com/chewxy/math32"

const Tau = 2 * math32.Pi

// Normalize wraps theta into [0, 2*Pi).
func Normalize(theta float32) float32 {
	theta = math32.Mod(theta, Tau)
	if theta < 0 {
		theta += Tau
	}
	return theta
}

// AngleDifference returns the element of {d, d+tau, d-tau} (d = b-a) with
// the smallest absolute value. Neither operand is normalized first: the
// source (original_source/landmark_extraction.py) computes this on the raw
// angles it is given, and the test suite depends on that exact behavior.
func AngleDifference(a, b float32) float32 {
	d := b - a
	best := d
	for _, cand := range [2]float32{d + Tau, d - Tau} {
		if math32.Abs(cand) < math32.Abs(best) {
			best = cand
		}
	}
	return best
}

// Point is a 2D world-coordinate point.
type Point struct {
	X, Y float32
}

// PolarToWorld converts an observation (dTheta, distance) taken from pose
// (x, y, theta) into a world-coordinate point.
func PolarToWorld(x, y, theta, dTheta, distance float32) Point {
	a := theta + dTheta
	return Point{
		X: x + distance*math32.Cos(a),
		Y: y + distance*math32.Sin(a),
	}
}

// Line is a general line ax + by + c = 0.
type Line struct {
	A, B, C float32
}

// PerpendicularDistance returns the unsigned perpendicular distance from p
// to l. It divides by sqrt(a^2+b^2), so l need not be normalized; a
// degenerate line with a = b = 0 yields 0.
func (l Line) PerpendicularDistance(p Point) float32 {
	num := math32.Abs(l.A*p.X + l.B*p.Y + l.C)
	den := math32.Sqrt(l.A*l.A + l.B*l.B)
	if den == 0 {
		return 0
	}
	return num / den
}

// Foot returns the foot of the perpendicular from the origin to l, per
// spec.md 4.1: ((b(b*0-a*0)-a*c)/(a^2+b^2), (a(a*0-b*0)-b*c)/(a^2+b^2))
// which, with (x0,y0)=(0,0), reduces to (-a*c/(a^2+b^2), -b*c/(a^2+b^2)).
func (l Line) Foot() Point {
	denom := l.A*l.A + l.B*l.B
	if denom == 0 {
		return Point{}
	}
	return Point{
		X: (l.B*(l.B*0-l.A*0) - l.A*l.C) / denom,
		Y: (l.A*(l.A*0-l.B*0) - l.B*l.C) / denom,
	}
}

// LeastSquaresLine fits ax+by+c=0 to pts, per spec.md 4.1's regression:
// sums n, Sx, Sy, Sxx, Sxy; a vertical fit (n*Sxx - Sx^2 == 0) returns
// a=-1, b=0, c=Sx/n instead of dividing by zero.
func LeastSquaresLine(pts []Point) Line {
	n := float32(len(pts))
	var sx, sy, sxx, sxy float32
	for _, p := range pts {
		sx += p.X
		sy += p.Y
		sxx += p.X * p.X
		sxy += p.X * p.Y
	}

	denom := n*sxx - sx*sx
	if denom == 0 {
		return Line{A: -1, B: 0, C: sx / n}
	}

	a := (n*sxy - sx*sy) / denom
	b := float32(-1)
	c := (sy - a*sx) / n
	return Line{A: a, B: b, C: c}
}

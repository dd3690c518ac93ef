package geometry

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestNormalizeRange(t *testing.T) {
	cases := []float32{0, Tau, -0.1, 3 * Tau, -Tau}
	for _, theta := range cases {
		n := Normalize(theta)
		if n < 0 || n >= Tau {
			t.Errorf("Normalize(%f) = %f, want in [0, Tau)", theta, n)
		}
	}
}

func TestAngleDifferenceBound(t *testing.T) {
	cases := [][2]float32{{0, math32.Pi}, {math32.Pi, -math32.Pi}, {0.1, 6.2}}
	for _, c := range cases {
		d := AngleDifference(c[0], c[1])
		if math32.Abs(d) > math32.Pi+1e-4 {
			t.Errorf("AngleDifference(%f, %f) = %f, want |d| <= Pi", c[0], c[1], d)
		}
	}
}

func TestLeastSquaresLineVertical(t *testing.T) {
	pts := []Point{{X: 3, Y: 0}, {X: 3, Y: 1}, {X: 3, Y: 2}}
	l := LeastSquaresLine(pts)
	if l.A != -1 || l.B != 0 {
		t.Fatalf("LeastSquaresLine() = %+v, want vertical fallback", l)
	}
	if math32.Abs(l.C-3) > 1e-4 {
		t.Errorf("LeastSquaresLine() c = %f, want 3", l.C)
	}
}

func TestLeastSquaresLineHorizontal(t *testing.T) {
	pts := []Point{{X: 0, Y: 5}, {X: 1, Y: 5}, {X: 2, Y: 5}}
	l := LeastSquaresLine(pts)
	d := l.PerpendicularDistance(Point{X: 10, Y: 5})
	if d > 1e-3 {
		t.Errorf("PerpendicularDistance() = %f, want ~0 for a point on the fitted line", d)
	}
}

func TestFootOfPerpendicular(t *testing.T) {
	// Vertical line x = 3 -> a=-1, b=0, c=3: foot should be (3, 0).
	l := Line{A: -1, B: 0, C: 3}
	f := l.Foot()
	if math32.Abs(f.X-3) > 1e-4 || math32.Abs(f.Y) > 1e-4 {
		t.Errorf("Foot() = %+v, want (3, 0)", f)
	}
}

func TestPolarToWorld(t *testing.T) {
	p := PolarToWorld(0, 0, 0, 0, 10)
	if math32.Abs(p.X-10) > 1e-4 || math32.Abs(p.Y) > 1e-4 {
		t.Errorf("PolarToWorld() = %+v, want (10, 0)", p)
	}
}

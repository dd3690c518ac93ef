package collision

import (
	"errors"

	"github.com/incherre/slam-bot/pkg/geometry"
)

// ErrInvalidRectangle is returned when the four corners passed to
// RectangleQuery are not a validly ordered rectangle.
var ErrInvalidRectangle = errors.New("collision: corners do not form a valid rectangle")

// RectangleQuery rasterizes the cell keys whose centers lie inside the
// rectangle described by corners (given in cyclic, clockwise or
// counter-clockwise order) and reports which of those keys are already
// materialized in the map. It returns (covered keys, total cell count).
func (m *Map) RectangleQuery(corners [4]geometry.Point) ([]Key, int, error) {
	if err := validateRectangle(corners); err != nil {
		return nil, 0, err
	}

	minX, maxX := corners[0].X, corners[0].X
	minY, maxY := corners[0].Y, corners[0].Y
	for _, c := range corners[1:] {
		minX, maxX = minf(minX, c.X), maxf(maxX, c.X)
		minY, maxY = minf(minY, c.Y), maxf(maxY, c.Y)
	}

	scale := m.Scale
	startX := quantize(minX, scale) - scale
	endX := quantize(maxX, scale) + scale
	startY := quantize(minY, scale) - scale
	endY := quantize(maxY, scale) + scale

	var covered []Key
	total := 0
	for x := startX; x <= endX; x += scale {
		for y := startY; y <= endY; y += scale {
			p := geometry.Point{X: float32(x), Y: float32(y)}
			if !insideRectangle(corners, p) {
				continue
			}
			total++
			k := Key{X: x, Y: y}
			if _, ok := m.cells[k]; ok {
				covered = append(covered, k)
			}
		}
	}

	return covered, total, nil
}

func validateRectangle(corners [4]geometry.Point) error {
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if corners[i] == corners[j] {
				return ErrInvalidRectangle
			}
		}
	}

	const tolerance = 1e-3
	sawPositive, sawNegative := false, false
	for i := 0; i < 4; i++ {
		a := corners[i]
		b := corners[(i+1)%4]
		c := corners[(i+2)%4]
		e1 := geometry.Point{X: a.X - b.X, Y: a.Y - b.Y}
		e2 := geometry.Point{X: c.X - b.X, Y: c.Y - b.Y}
		dot := e1.X*e2.X + e1.Y*e2.Y
		if dot > tolerance || dot < -tolerance {
			return ErrInvalidRectangle
		}

		cr := cross(a, b, c)
		if cr > 0 {
			sawPositive = true
		} else if cr < 0 {
			sawNegative = true
		}
	}
	if sawPositive && sawNegative {
		return ErrInvalidRectangle
	}

	return nil
}

// insideRectangle tests p against the convex quadrilateral corners using
// the half-plane test: p is inside iff it lies on the same side of every
// edge (or on the edge itself).
func insideRectangle(corners [4]geometry.Point, p geometry.Point) bool {
	sawPositive, sawNegative := false, false
	for i := 0; i < 4; i++ {
		a := corners[i]
		b := corners[(i+1)%4]
		cr := cross(a, b, p)
		if cr > 0 {
			sawPositive = true
		} else if cr < 0 {
			sawNegative = true
		}
	}
	return !(sawPositive && sawNegative)
}

func cross(a, b, p geometry.Point) float32 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

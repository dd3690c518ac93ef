// Package collision implements the unbounded, scale-quantized occupancy
// grid described in original_source/collision_map.py: integer stepped/
// missed/hit counters per cell, a custom 8-neighbor ray traversal (NOT
// Bresenham, NOT Bayesian log-odds — both explicitly out of scope), a
// rotated-rectangle query used by the explorer, and a versioned text
// serialization format.
package collision

import (
	"errors"

	"github.com/chewxy/math32"
)

// ErrInvalidConfig is returned by New when scale or maxDist is non-positive.
var ErrInvalidConfig = errors.New("collision: scale and maxDist must be positive")

// Cell holds the three non-negative integer counters of one grid cell.
type Cell struct {
	Stepped int
	Missed  int
	Hit     int
}

// Equal reports whether two cells have identical counters.
func (c Cell) Equal(o Cell) bool {
	return c.Stepped == o.Stepped && c.Missed == o.Missed && c.Hit == o.Hit
}

// Key is a quantized cell coordinate, always a multiple of the map's scale.
type Key struct {
	X int
	Y int
}

// Map is the scale-quantized occupancy grid. The zero value is not usable;
// construct with New.
type Map struct {
	Scale   int
	MaxDist int

	cells map[Key]Cell
	order []Key
}

// New constructs an empty Map. scale is the cell side and maxDist is the
// ray truncation distance; both must be positive.
func New(scale, maxDist int) (*Map, error) {
	if scale <= 0 || maxDist <= 0 {
		return nil, ErrInvalidConfig
	}
	return &Map{
		Scale:   scale,
		MaxDist: maxDist,
		cells:   make(map[Key]Cell),
	}, nil
}

// KeyOf quantizes a real-valued coordinate pair into a cell Key. Cell
// centers land on multiples of Scale, with half-open rounding: ±(scale/2-1)
// around any multiple of scale maps to that multiple.
func (m *Map) KeyOf(x, y float32) Key {
	return Key{X: quantize(x, m.Scale), Y: quantize(y, m.Scale)}
}

func quantize(c float32, scale int) int {
	v := (c + float32(scale)/2) / float32(scale)
	return scale * int(math32.Floor(v))
}

// Get returns the cell at key, or the zero Cell if it has never been
// written — missing cells read as all-zero, only writes materialize them.
func (m *Map) Get(key Key) Cell {
	return m.cells[key]
}

// Cells returns every materialized key in insertion order, for iteration;
// read each key's counters with Get.
func (m *Map) Cells() []Key {
	return m.order
}

func (m *Map) set(key Key, mutate func(*Cell)) {
	c, existed := m.cells[key]
	mutate(&c)
	m.cells[key] = c
	if !existed {
		m.order = append(m.order, key)
	}
}

func (m *Map) incStepped(key Key) {
	m.set(key, func(c *Cell) { c.Stepped++ })
}

func (m *Map) incMissed(key Key) {
	m.set(key, func(c *Cell) { c.Missed++ })
}

func (m *Map) incHit(key Key) {
	m.set(key, func(c *Cell) { c.Hit++ })
}

// Observation is one (angular offset, distance) range sample relative to
// the pose passed to Record.
type Observation struct {
	DTheta   float32
	Distance float32
}

// Record updates the map from a pose (x, y, theta) and a batch of range
// observations taken there: the agent's own cell is marked stepped, and
// each observation traces a ray from the agent cell to its endpoint,
// marking intervening cells missed and (if the ray was not truncated) the
// endpoint cell hit.
func (m *Map) Record(x, y, theta float32, observations []Observation) {
	agentKey := m.KeyOf(x, y)
	m.incStepped(agentKey)

	for _, o := range observations {
		if o.Distance < 0 {
			continue
		}
		m.recordRay(x, y, theta, o, agentKey)
	}
}

func (m *Map) recordRay(x, y, theta float32, o Observation, agentKey Key) {
	angle := theta + o.DTheta
	maxDist := float32(m.MaxDist)
	truncated := o.Distance
	if truncated > maxDist {
		truncated = maxDist
	}
	endX := x + truncated*math32.Cos(angle)
	endY := y + truncated*math32.Sin(angle)
	endKey := m.KeyOf(endX, endY)

	if o.Distance <= maxDist {
		m.incHit(endKey)
	}

	a, b, c := rayLine(x, y, angle)
	line := [3]float32{a, b, c}
	scale := float32(m.Scale)
	current := agentKey

	const maxSteps = 10000
	for step := 0; step < maxSteps; step++ {
		if withinRing(current, endKey, m.Scale) {
			return
		}

		currentDist := distanceToPoint(current, endX, endY)
		if currentDist > maxDist+scale {
			return
		}

		next, found := bestNeighbor(current, endX, endY, currentDist, line, m.Scale)
		if !found {
			return
		}

		if next != agentKey {
			m.incMissed(next)
		}
		current = next
	}
}

// rayLine builds the line ax+by+c=0 through (x0,y0) with the given angle,
// per spec.md 4.2: a=-sin(angle), b=cos(angle), c=x0*sin(angle)-y0*cos(angle).
func rayLine(x0, y0, angle float32) (a, b, c float32) {
	s, co := math32.Sin(angle), math32.Cos(angle)
	return -s, co, x0*s - y0*co
}

func perpendicularDistance(a, b, c float32, x, y float32) float32 {
	return math32.Abs(a*x + b*y + c)
}

func distanceToPoint(k Key, x, y float32) float32 {
	dx := float32(k.X) - x
	dy := float32(k.Y) - y
	return math32.Sqrt(dx*dx + dy*dy)
}

// withinRing reports whether k lies within the 8-neighbor ring of center
// (including center itself).
func withinRing(k, center Key, scale int) bool {
	dx := k.X - center.X
	dy := k.Y - center.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx <= scale && dy <= scale
}

// NeighborKeys returns the 8 neighbor keys of k, used by the exploration
// planner's grid search.
func (m *Map) NeighborKeys(k Key) []Key {
	return neighbors(k, m.Scale)
}

// neighbors returns the 8 neighbor keys of k, offsets {-scale,0,scale}^2
// excluding (0,0).
func neighbors(k Key, scale int) []Key {
	out := make([]Key, 0, 8)
	for _, dx := range [3]int{-scale, 0, scale} {
		for _, dy := range [3]int{-scale, 0, scale} {
			if dx == 0 && dy == 0 {
				continue
			}
			out = append(out, Key{X: k.X + dx, Y: k.Y + dy})
		}
	}
	return out
}

// bestNeighbor picks, among the 8 neighbors of current that strictly
// decrease the distance to (endX, endY), the one with the smallest
// perpendicular distance to the ray line, breaking ties by the first
// found in enumeration order.
func bestNeighbor(current Key, endX, endY, currentDist float32, line [3]float32, scale int) (Key, bool) {
	a, b, c := line[0], line[1], line[2]
	best := Key{}
	bestPerp := float32(math32.MaxFloat32)
	found := false

	for _, nb := range neighbors(current, scale) {
		if distanceToPoint(nb, endX, endY) >= currentDist {
			continue
		}
		perp := perpendicularDistance(a, b, c, float32(nb.X), float32(nb.Y))
		if !found || perp < bestPerp {
			best = nb
			bestPerp = perp
			found = true
		}
	}

	return best, found
}

// Package explorer implements the exploration planner of
// original_source/explorer.py: space classification over the collision
// map, rotated-rectangle travel-status checks, a Dijkstra search for the
// nearest unexplored cell, and path caching between ticks.
package explorer

import (
	"container/heap"

	"github.com/chewxy/math32"

	"github.com/incherre/slam-bot/internal/rlog"
	"github.com/incherre/slam-bot/pkg/collision"
	"github.com/incherre/slam-bot/pkg/geometry"
)

// SpaceStatus classifies a collision-map cell for the planner.
type SpaceStatus int

const (
	Unknown SpaceStatus = iota
	Passable
	Blocked
)

// Slam is the capability the planner borrows: it reads the pose and
// collision map and issues exactly one move_observe_and_update per Step.
type Slam interface {
	GetEstimatedPosition() (x, y, theta float32)
	GetCollisionMap() *collision.Map
	MoveObserveAndUpdate(deltaTheta, distance float32)
}

// Option configures an Explorer at construction.
type Option func(*Explorer)

// WithStepThreshold sets the minimum stepped count that marks a cell
// PASSABLE. Default 1.
func WithStepThreshold(v int) Option { return func(e *Explorer) { e.stepThreshold = v } }

// WithMissThreshold sets the minimum missed count that marks a cell
// PASSABLE. Default 5.
func WithMissThreshold(v int) Option { return func(e *Explorer) { e.missThreshold = v } }

// WithHitThreshold sets the minimum hit count that marks a cell BLOCKED.
// Default 2.
func WithHitThreshold(v int) Option { return func(e *Explorer) { e.hitThreshold = v } }

// Explorer is a robot controller that drives a Slam toward unexplored
// cells until none remain reachable.
type Explorer struct {
	slam Slam
	size float32

	stepThreshold int
	missThreshold int
	hitThreshold  int

	// path holds the cached route: index 0 is the goal cell, the tail is
	// the next immediate step.
	path          []collision.Key
	fullyExplored bool
}

// New constructs an Explorer with agent footprint size (the width of the
// rotated rectangle used for travel-status checks).
func New(s Slam, size float32, opts ...Option) *Explorer {
	e := &Explorer{
		slam:          s,
		size:          size,
		stepThreshold: 1,
		missThreshold: 5,
		hitThreshold:  2,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FullyExplored reports whether the last search found nothing reachable
// and unexplored.
func (e *Explorer) FullyExplored() bool { return e.fullyExplored }

// classify returns the SpaceStatus of a cell, checking stepped, then hit,
// then missed, first match wins (Open Question 1 of spec.md 9).
func (e *Explorer) classify(c collision.Cell) SpaceStatus {
	if c.Stepped >= e.stepThreshold {
		return Passable
	}
	if c.Hit >= e.hitThreshold {
		return Blocked
	}
	if c.Missed >= e.missThreshold {
		return Passable
	}
	return Unknown
}

// travelRectangle builds the rotated-rectangle corners of width e.size
// between (x1,y1) and (x2,y2), in the cyclic order collision.RectangleQuery
// requires, per original_source/explorer.py::get_travel_status.
func travelRectangle(x1, y1, x2, y2, size float32) [4]geometry.Point {
	angle := math32.Atan2(y2-y1, x2-x1)
	cosA, sinA := math32.Cos(angle), math32.Sin(angle)
	half := size / 2

	rotate := func(dx, dy float32) geometry.Point {
		return geometry.Point{X: dx*cosA - dy*sinA, Y: dx*sinA + dy*cosA}
	}

	p1 := rotate(-half, half)
	p2 := rotate(-half, -half)
	p3 := rotate(half, -half)
	p4 := rotate(half, half)

	return [4]geometry.Point{
		{X: p1.X + x1, Y: p1.Y + y1},
		{X: p2.X + x1, Y: p2.Y + y1},
		{X: p3.X + x2, Y: p3.Y + y2},
		{X: p4.X + x2, Y: p4.Y + y2},
	}
}

// travelStatus returns the most prohibitive status encountered along the
// rotated rectangle between (x1,y1) and (x2,y2), per spec.md 4.5.
func (e *Explorer) travelStatus(cmap *collision.Map, x1, y1, x2, y2 float32) SpaceStatus {
	corners := travelRectangle(x1, y1, x2, y2, e.size)
	covered, total, err := cmap.RectangleQuery(corners)
	if err != nil {
		panic("explorer: travel rectangle is malformed: " + err.Error())
	}

	status := Passable
	if len(covered) < total {
		status = Unknown
	}

	for _, k := range covered {
		this := e.classify(cmap.Get(k))
		if this == Unknown && status == Passable {
			status = Unknown
		} else if this == Blocked {
			status = Blocked
		}
	}

	return status
}

// Step runs one tick of exploration: recompute the cached path if it is
// stale, then issue one move toward the next cached step (or a no-op
// observation / fully_explored, per spec.md 4.5).
func (e *Explorer) Step() {
	if e.fullyExplored {
		return
	}

	x, y, theta := e.slam.GetEstimatedPosition()
	cmap := e.slam.GetCollisionMap()

	recompute := len(e.path) == 0
	if !recompute {
		goal := e.path[0]
		recompute = e.classify(cmap.Get(goal)) != Unknown
	}
	if !recompute {
		next := e.path[len(e.path)-1]
		recompute = e.travelStatus(cmap, x, y, float32(next.X), float32(next.Y)) == Blocked
	}

	if recompute {
		e.path = e.pathfind(cmap, x, y)
	}

	if len(e.path) == 0 {
		if e.classify(cmap.Get(cmap.KeyOf(x, y))) == Unknown {
			e.slam.MoveObserveAndUpdate(0, 0)
		} else {
			rlog.Log.Debug().Msg("explorer: nothing reachable left unexplored")
			e.fullyExplored = true
		}
		return
	}

	next := e.path[len(e.path)-1]
	e.path = e.path[:len(e.path)-1]

	dx := float32(next.X) - x
	dy := float32(next.Y) - y
	targetTheta := math32.Atan2(dy, dx)
	deltaTheta := geometry.AngleDifference(theta, targetTheta)
	distance := math32.Sqrt(dx*dx + dy*dy)

	e.slam.MoveObserveAndUpdate(deltaTheta, distance)
}

// pqItem is one entry of the Dijkstra open set.
type pqItem struct {
	key   collision.Key
	dist  float32
	index int
}

type priorityQueue []*pqItem

func (q priorityQueue) Len() int            { return len(q) }
func (q priorityQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q priorityQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *priorityQueue) Push(x interface{}) {
	item := x.(*pqItem)
	item.index = len(*q)
	*q = append(*q, item)
}
func (q *priorityQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// pathfind runs Dijkstra from (x, y)'s cell to the nearest cell whose
// status is UNKNOWN, rejecting edges whose travel status is BLOCKED, per
// spec.md 4.5. The result is ordered goal-first, next-step-last.
func (e *Explorer) pathfind(cmap *collision.Map, x, y float32) []collision.Key {
	start := cmap.KeyOf(x, y)

	dist := map[collision.Key]float32{start: 0}
	prev := map[collision.Key]collision.Key{}
	hasPrev := map[collision.Key]bool{}
	visited := map[collision.Key]bool{}

	pq := &priorityQueue{{key: start, dist: 0}}
	heap.Init(pq)

	var goal collision.Key
	found := false

	for pq.Len() > 0 {
		current := heap.Pop(pq).(*pqItem)
		if visited[current.key] {
			continue
		}
		visited[current.key] = true

		status := e.classify(cmap.Get(current.key))
		if status == Blocked {
			continue
		}
		if status == Unknown {
			goal = current.key
			found = true
			break
		}

		for _, next := range cmap.NeighborKeys(current.key) {
			if visited[next] {
				continue
			}
			cx, cy := float32(current.key.X), float32(current.key.Y)
			nx, ny := float32(next.X), float32(next.Y)
			if e.travelStatus(cmap, cx, cy, nx, ny) == Blocked {
				continue
			}

			edgeCost := math32.Sqrt((cx-nx)*(cx-nx) + (cy-ny)*(cy-ny))
			newDist := current.dist + edgeCost
			if old, ok := dist[next]; !ok || newDist < old {
				dist[next] = newDist
				prev[next] = current.key
				hasPrev[next] = true
				heap.Push(pq, &pqItem{key: next, dist: newDist})
			}
		}
	}

	if !found {
		return nil
	}

	// Walk back from goal to (but excluding) start. If goal is itself the
	// start cell (already UNKNOWN before any expansion) hasPrev[start] is
	// false and this returns an empty path, matching
	// original_source/explorer.py::pathfind's behavior in that case — the
	// caller's Step handles an empty path by checking the present cell
	// directly.
	var path []collision.Key
	current := goal
	for hasPrev[current] {
		path = append(path, current)
		current = prev[current]
	}

	return path
}

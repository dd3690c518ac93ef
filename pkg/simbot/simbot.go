// Package simbot provides a small, deterministic rectangular-room
// SensingAndControl implementation used to exercise the orchestrator and
// explorer end to end, the way the teacher's cmd/ binaries exercise
// their drivers against a mock transport. It is a simplified, analytic
// stand-in for original_source/sim_framework.py's resolution-stepped
// ray marcher: distances to the room's four walls are computed in closed
// form rather than by marching a ray in small steps, since our room is
// always a single convex rectangle.
package simbot

import (
	"github.com/chewxy/math32"

	"github.com/incherre/slam-bot/pkg/landmark"
)

// Option configures a Room at construction.
type Option func(*Room)

// WithRayCount sets how many evenly spaced range samples DistanceReading
// returns per call. Default 360, matching
// original_source/slam.py::SimBot.get_distance_reading.
func WithRayCount(n int) Option {
	return func(r *Room) { r.rayCount = n }
}

// WithStartPose sets the bot's initial pose. Default (0, 0, 0).
func WithStartPose(x, y, theta float32) Option {
	return func(r *Room) { r.x, r.y, r.theta = x, y, theta }
}

// Room is a rectangular arena centered on the origin, bounded by four
// walls at x = ±halfWidth and y = ±halfHeight. The bot is modeled as a
// point (no footprint radius).
type Room struct {
	halfWidth  float32
	halfHeight float32
	rayCount   int

	x, y, theta float32
}

// NewRoom builds a width x height rectangular room (centered at the
// origin) with a bot starting at the configured pose.
func NewRoom(width, height float32, opts ...Option) *Room {
	r := &Room{
		halfWidth:  width / 2,
		halfHeight: height / 2,
		rayCount:   360,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pose returns the bot's true (x, y, theta), for test assertions.
func (r *Room) Pose() (x, y, theta float32) { return r.x, r.y, r.theta }

// Move implements slam.SensingAndControl: it turns by deltaTheta, then
// advances toward the nearest wall in that heading, clamping distance so
// the bot never passes through a wall.
func (r *Room) Move(deltaTheta, distance float32) float32 {
	newTheta := r.theta + deltaTheta
	wallDist := r.rayDistance(r.x, r.y, newTheta)

	real := distance
	if real > wallDist {
		real = wallDist
	}
	if real < 0 {
		real = 0
	}

	r.x += real * math32.Cos(newTheta)
	r.y += real * math32.Sin(newTheta)
	r.theta = newTheta

	return real
}

// DistanceReading implements slam.SensingAndControl: rayCount evenly
// spaced samples, going clockwise starting in the forward direction, per
// original_source/slam.py's convention.
func (r *Room) DistanceReading() []landmark.Observation {
	out := make([]landmark.Observation, r.rayCount)
	step := math32.Pi * 2 / float32(r.rayCount)
	for i := 0; i < r.rayCount; i++ {
		dTheta := -step * float32(i)
		out[i] = landmark.Observation{
			DTheta:   dTheta,
			Distance: r.rayDistance(r.x, r.y, r.theta+dTheta),
		}
	}
	return out
}

// rayDistance returns the distance from (x, y) to the room's boundary
// along the given world-frame angle, via closed-form slab intersection
// against the four walls.
func (r *Room) rayDistance(x, y, angle float32) float32 {
	cosA, sinA := math32.Cos(angle), math32.Sin(angle)
	best := float32(math32.MaxFloat32)

	const eps = 1e-6
	if cosA > eps {
		if t := (r.halfWidth - x) / cosA; t > 0 && t < best {
			best = t
		}
	} else if cosA < -eps {
		if t := (-r.halfWidth - x) / cosA; t > 0 && t < best {
			best = t
		}
	}
	if sinA > eps {
		if t := (r.halfHeight - y) / sinA; t > 0 && t < best {
			best = t
		}
	} else if sinA < -eps {
		if t := (-r.halfHeight - y) / sinA; t > 0 && t < best {
			best = t
		}
	}

	return best
}

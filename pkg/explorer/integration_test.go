package explorer

import (
	"testing"

	"github.com/incherre/slam-bot/pkg/collision"
	"github.com/incherre/slam-bot/pkg/ekfslam"
	"github.com/incherre/slam-bot/pkg/landmark"
	"github.com/incherre/slam-bot/pkg/simbot"
	"github.com/incherre/slam-bot/pkg/slam"
)

// S7 — a mock SensingAndControl reporting the walls of a 30x30 arena;
// repeated Step calls should eventually mark the arena fully explored.
func TestExplorerMakesProgressInArena(t *testing.T) {
	room := simbot.NewRoom(30, 30, simbot.WithRayCount(36))
	cmap, err := collision.New(2, 20)
	if err != nil {
		t.Fatalf("collision.New() error = %v", err)
	}
	ekf := ekfslam.New(ekfslam.WithLandmarkThreshold(0))
	spike := landmark.NewSpikeDetector(landmark.WithSpikeThreshold(1))
	ransac := landmark.NewRansacDetector(landmark.WithSeed(1))

	orchestrator := slam.New(room, ekf, cmap, spike, ransac)
	e := New(orchestrator, 1)

	const maxSteps = 3000
	steps := 0
	for ; steps < maxSteps && !e.FullyExplored(); steps++ {
		e.Step()
	}

	if !e.FullyExplored() {
		t.Fatalf("exploration did not converge within %d steps", maxSteps)
	}
	if len(cmap.Cells()) == 0 {
		t.Errorf("collision map has no recorded cells after exploration")
	}
}

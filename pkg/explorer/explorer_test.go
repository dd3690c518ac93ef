package explorer

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/incherre/slam-bot/pkg/collision"
)

// fakeSlam is a minimal Slam backed directly by a collision map and a
// fixed pose, for unit-testing classification/travel-status/path logic
// without pulling in the EKF or a SensingAndControl.
type fakeSlam struct {
	x, y, theta float32
	cmap        *collision.Map
	moves       []struct{ deltaTheta, distance float32 }
}

func (f *fakeSlam) GetEstimatedPosition() (float32, float32, float32) { return f.x, f.y, f.theta }
func (f *fakeSlam) GetCollisionMap() *collision.Map                   { return f.cmap }
func (f *fakeSlam) MoveObserveAndUpdate(deltaTheta, distance float32) {
	f.moves = append(f.moves, struct{ deltaTheta, distance float32 }{deltaTheta, distance})
	newTheta := f.theta + deltaTheta
	f.x += distance * math32.Cos(newTheta)
	f.y += distance * math32.Sin(newTheta)
	f.theta = newTheta
	f.cmap.Record(f.x, f.y, f.theta, []collision.Observation{{DTheta: 0, Distance: 1}})
}

func TestClassifyOrderStepBeforeHit(t *testing.T) {
	e := New(nil, 1)
	c := collision.Cell{Stepped: 1, Hit: 5, Missed: 0}
	if got := e.classify(c); got != Passable {
		t.Errorf("classify(stepped&hit) = %v, want Passable (stepped checked first)", got)
	}
}

func TestClassifyBlockedBeforeMissed(t *testing.T) {
	e := New(nil, 1)
	c := collision.Cell{Stepped: 0, Hit: 5, Missed: 10}
	if got := e.classify(c); got != Blocked {
		t.Errorf("classify(hit&missed) = %v, want Blocked", got)
	}
}

func TestClassifyUnknownByDefault(t *testing.T) {
	e := New(nil, 1)
	if got := e.classify(collision.Cell{}); got != Unknown {
		t.Errorf("classify(zero cell) = %v, want Unknown", got)
	}
}

func TestStepObservesPresentCellFirst(t *testing.T) {
	cmap, _ := collision.New(5, 100)
	f := &fakeSlam{cmap: cmap}
	e := New(f, 1)

	e.Step()
	if len(f.moves) != 1 {
		t.Fatalf("expected exactly one move on the first step, got %d", len(f.moves))
	}
	if f.moves[0].deltaTheta != 0 || f.moves[0].distance != 0 {
		t.Errorf("first move = %+v, want a no-op (0,0) to observe the present cell", f.moves[0])
	}
}

func TestFullyExploredWhenStartIsBlocked(t *testing.T) {
	cmap, err := collision.Parse("v1\nscale,max_dist\n5,100\nx,y,stepped_count,missed_count,hit_count\n0,0,0,0,2")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	f := &fakeSlam{cmap: cmap}
	e := New(f, 1)

	e.Step()
	if !e.FullyExplored() {
		t.Fatalf("FullyExplored() = false, want true (start cell is BLOCKED, nothing reachable)")
	}
	if len(f.moves) != 0 {
		t.Errorf("Step() issued %d moves, want 0 once nothing is reachable", len(f.moves))
	}

	movesBefore := len(f.moves)
	e.Step()
	if len(f.moves) != movesBefore {
		t.Errorf("Step() issued a move after fully_explored was set")
	}
}

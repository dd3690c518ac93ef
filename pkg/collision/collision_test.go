package collision

import (
	"testing"

	"github.com/chewxy/math32"
)

func contains(keys []Key, k Key) bool {
	for _, x := range keys {
		if x == k {
			return true
		}
	}
	return false
}

// S1 — flat observation.
func TestRecordFlatObservation(t *testing.T) {
	m, err := New(5, 100)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	m.Record(0, 0, 0, []Observation{{DTheta: 0, Distance: 10}})

	want := []Key{{0, 0}, {5, 0}, {10, 0}}
	for _, k := range want {
		if !contains(m.Cells(), k) {
			t.Errorf("missing expected key %+v", k)
		}
	}

	if c := m.Get(Key{0, 0}); c.Stepped != 1 {
		t.Errorf("(0,0).Stepped = %d, want 1", c.Stepped)
	}
	if c := m.Get(Key{5, 0}); c.Missed != 1 {
		t.Errorf("(5,0).Missed = %d, want 1", c.Missed)
	}
	if c := m.Get(Key{10, 0}); c.Hit != 1 {
		t.Errorf("(10,0).Hit = %d, want 1", c.Hit)
	}
}

// S2 — 45 degree angled observation.
func TestRecordAngledObservation(t *testing.T) {
	m, _ := New(5, 100)
	d := float32(10 * 1.4142135)
	m.Record(0, 0, 0, []Observation{{DTheta: 0.7853981634, Distance: d}})

	want := []Key{{0, 0}, {5, 5}, {10, 10}}
	for _, k := range want {
		if !contains(m.Cells(), k) {
			t.Errorf("missing expected key %+v", k)
		}
	}
	if c := m.Get(Key{0, 0}); c.Stepped != 1 {
		t.Errorf("(0,0).Stepped = %d, want 1", c.Stepped)
	}
	if c := m.Get(Key{10, 10}); c.Hit != 1 {
		t.Errorf("(10,10).Hit = %d, want 1", c.Hit)
	}
}

// S3 — truncated ray.
func TestRecordTruncatedRay(t *testing.T) {
	m, _ := New(5, 8)
	m.Record(0, 0, 0, []Observation{{DTheta: 0, Distance: 10}})

	if c := m.Get(Key{0, 0}); c.Stepped != 1 {
		t.Errorf("(0,0).Stepped = %d, want 1", c.Stepped)
	}
	if c := m.Get(Key{5, 0}); c.Missed != 1 {
		t.Errorf("(5,0).Missed = %d, want 1", c.Missed)
	}
	if c := m.Get(Key{10, 0}); c.Hit != 0 {
		t.Errorf("(10,0).Hit = %d, want 0 (ray truncated)", c.Hit)
	}
}

// S4 — crossing rays.
func TestRecordCrossingRays(t *testing.T) {
	m, _ := New(5, 100)
	m.Record(0, 0, 0, []Observation{{DTheta: 0, Distance: 10}})
	m.Record(5, -5, math32.Pi/2, []Observation{{DTheta: 0, Distance: 10}})

	want := []Key{{0, 0}, {5, 0}, {10, 0}, {5, -5}, {5, 5}}
	for _, k := range want {
		if !contains(m.Cells(), k) {
			t.Errorf("missing expected key %+v", k)
		}
	}
	if c := m.Get(Key{5, 0}); c.Missed != 2 {
		t.Errorf("(5,0).Missed = %d, want 2", c.Missed)
	}
	if c := m.Get(Key{5, 5}); c.Hit != 1 {
		t.Errorf("(5,5).Hit = %d, want 1", c.Hit)
	}
}

// S5 — quantization.
func TestKeyOfQuantization(t *testing.T) {
	m, _ := New(5, 100)
	cases := []struct {
		x, y float32
		want Key
	}{
		{2, -2, Key{0, 0}},
		{3, 3, Key{5, 5}},
		{-10, -2, Key{-10, 0}},
	}
	for _, c := range cases {
		got := m.KeyOf(c.x, c.y)
		if got != c.want {
			t.Errorf("KeyOf(%f, %f) = %+v, want %+v", c.x, c.y, got, c.want)
		}
	}
}

func TestKeyOfIdempotence(t *testing.T) {
	m, _ := New(10, 100)
	base := m.KeyOf(0, 0)
	if base != (Key{0, 0}) {
		t.Fatalf("KeyOf(0,0) = %+v, want (0,0)", base)
	}
	for _, eps := range []float32{1, -1, 4.9, -4.9} {
		if got := m.KeyOf(eps, 0); got != base {
			t.Errorf("KeyOf(%f,0) = %+v, want %+v", eps, got, base)
		}
	}
}

func TestNewRejectsNonPositive(t *testing.T) {
	if _, err := New(0, 10); err != ErrInvalidConfig {
		t.Errorf("New(0, 10) error = %v, want ErrInvalidConfig", err)
	}
	if _, err := New(10, 0); err != ErrInvalidConfig {
		t.Errorf("New(10, 0) error = %v, want ErrInvalidConfig", err)
	}
}

func TestCountersNeverDecrease(t *testing.T) {
	m, _ := New(5, 100)
	before := map[Key]Cell{}
	m.Record(0, 0, 0, []Observation{{DTheta: 0, Distance: 10}})
	for _, k := range m.Cells() {
		before[k] = m.Get(k)
	}
	m.Record(0, 0, 0, []Observation{{DTheta: 0, Distance: 10}})
	for k, prev := range before {
		cur := m.Get(k)
		if cur.Stepped < prev.Stepped || cur.Missed < prev.Missed || cur.Hit < prev.Hit {
			t.Errorf("counters decreased for %+v: %+v -> %+v", k, prev, cur)
		}
	}
}

package collision

import "testing"

func TestSerializeRoundTrip(t *testing.T) {
	m, _ := New(5, 100)
	m.Record(0, 0, 0, []Observation{{DTheta: 0, Distance: 10}})
	m.Record(5, -5, 1.5707963, []Observation{{DTheta: 0, Distance: 10}})

	data := m.Serialize()
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !m.Equal(got) {
		t.Fatalf("round trip mismatch:\noriginal cells=%v\nparsed cells=%v", m.cells, got.cells)
	}
}

func TestSerializeEmptyMap(t *testing.T) {
	m, _ := New(10, 50)
	data := m.Serialize()
	want := "v1\nscale,max_dist\n10,50"
	if data != want {
		t.Errorf("Serialize() = %q, want %q", data, want)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !m.Equal(got) {
		t.Errorf("round trip mismatch on empty map")
	}
}

func TestSerializeNoTrailingNewline(t *testing.T) {
	m, _ := New(5, 100)
	m.Record(0, 0, 0, []Observation{{DTheta: 0, Distance: 10}})
	data := m.Serialize()
	if len(data) > 0 && data[len(data)-1] == '\n' {
		t.Errorf("Serialize() ends with trailing newline")
	}
}

func TestParseRejectsUnknownVersion(t *testing.T) {
	_, err := Parse("v2\nscale,max_dist\n5,100")
	if err == nil {
		t.Fatalf("Parse(v2) error = nil, want error")
	}
}

func TestParseAcceptsAnyRowOrder(t *testing.T) {
	a := "v1\nscale,max_dist\n5,100\nx,y,stepped_count,missed_count,hit_count\n0,0,1,0,0\n5,0,0,1,0\n10,0,0,0,1"
	b := "v1\nscale,max_dist\n5,100\nx,y,stepped_count,missed_count,hit_count\n10,0,0,0,1\n0,0,1,0,0\n5,0,0,1,0"

	ma, err := Parse(a)
	if err != nil {
		t.Fatalf("Parse(a) error = %v", err)
	}
	mb, err := Parse(b)
	if err != nil {
		t.Fatalf("Parse(b) error = %v", err)
	}
	if !ma.Equal(mb) {
		t.Errorf("row order affected parsed result")
	}
}

package collision

import (
	"fmt"
	"strconv"
	"strings"
)

const formatVersion = "v1"

// Serialize renders m in the stable, versioned v1 text format of
// spec.md 6. Cells are emitted in insertion order; no trailing newline.
func (m *Map) Serialize() string {
	var b strings.Builder
	b.WriteString(formatVersion)
	b.WriteByte('\n')
	b.WriteString("scale,max_dist")
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%d,%d", m.Scale, m.MaxDist)

	if len(m.order) > 0 {
		b.WriteByte('\n')
		b.WriteString("x,y,stepped_count,missed_count,hit_count")
	}
	for _, k := range m.order {
		c := m.cells[k]
		b.WriteByte('\n')
		fmt.Fprintf(&b, "%d,%d,%d,%d,%d", k.X, k.Y, c.Stepped, c.Missed, c.Hit)
	}

	return b.String()
}

// ErrMalformedSerialization is returned by Parse for any input that does
// not match the v1 format.
type ErrMalformedSerialization struct {
	Reason string
}

func (e *ErrMalformedSerialization) Error() string {
	return fmt.Sprintf("collision: malformed serialization: %s", e.Reason)
}

// Parse reconstructs a Map from its v1 text serialization. Rows may appear
// in any order; Parse(Serialize(m)) reproduces an equal map.
func Parse(data string) (*Map, error) {
	lines := strings.Split(data, "\n")
	if len(lines) < 3 {
		return nil, &ErrMalformedSerialization{Reason: "too few lines"}
	}
	if lines[0] != formatVersion {
		return nil, &ErrMalformedSerialization{Reason: "unsupported version " + lines[0]}
	}
	if lines[1] != "scale,max_dist" {
		return nil, &ErrMalformedSerialization{Reason: "missing scale,max_dist header"}
	}

	scale, maxDist, err := parseIntPair(lines[2])
	if err != nil {
		return nil, &ErrMalformedSerialization{Reason: err.Error()}
	}

	m, err := New(scale, maxDist)
	if err != nil {
		return nil, &ErrMalformedSerialization{Reason: err.Error()}
	}

	if len(lines) == 3 {
		return m, nil
	}

	if lines[3] != "x,y,stepped_count,missed_count,hit_count" {
		return nil, &ErrMalformedSerialization{Reason: "missing cell header"}
	}

	for _, line := range lines[4:] {
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 5 {
			return nil, &ErrMalformedSerialization{Reason: "cell row must have 5 fields: " + line}
		}
		vals := make([]int, 5)
		for i, f := range fields {
			v, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, &ErrMalformedSerialization{Reason: "non-integer field: " + f}
			}
			vals[i] = v
		}
		key := Key{X: vals[0], Y: vals[1]}
		m.set(key, func(c *Cell) {
			c.Stepped = vals[2]
			c.Missed = vals[3]
			c.Hit = vals[4]
		})
	}

	return m, nil
}

func parseIntPair(line string) (int, int, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected 2 fields, got %d", len(fields))
	}
	a, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// Equal reports whether m and o have the same configuration and the same
// materialized cells (order-independent).
func (m *Map) Equal(o *Map) bool {
	if m.Scale != o.Scale || m.MaxDist != o.MaxDist {
		return false
	}
	if len(m.cells) != len(o.cells) {
		return false
	}
	for k, c := range m.cells {
		oc, ok := o.cells[k]
		if !ok || !c.Equal(oc) {
			return false
		}
	}
	return true
}

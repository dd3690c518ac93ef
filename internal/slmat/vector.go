// Package slmat provides the small dense linear-algebra types backing the
// EKF-SLAM state: a dynamically growable Vector and Matrix. Method names and
// the row-major, in-place-mutating builder style mirror
// x/math/filter/ekalman and x/math/mat, but the backing storage is
// reallocated on Grow rather than fixed at construction, since the SLAM
// state vector grows by two entries every time a landmark is inserted.
package slmat

import "github.com/chewxy/math32"

// Vector is a dense column vector.
type Vector []float32

// NewVector allocates a zero vector of the given length.
func NewVector(n int) Vector {
	return make(Vector, n)
}

// Clone returns a copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// FillC sets every entry to c and returns v.
func (v Vector) FillC(c float32) Vector {
	for i := range v {
		v[i] = c
	}
	return v
}

// Add mutates v to v+o and returns v.
func (v Vector) Add(o Vector) Vector {
	for i := range v {
		v[i] += o[i]
	}
	return v
}

// Sub mutates v to v-o and returns v.
func (v Vector) Sub(o Vector) Vector {
	for i := range v {
		v[i] -= o[i]
	}
	return v
}

// Dot returns the dot product of v and o.
func (v Vector) Dot(o Vector) float32 {
	var sum float32
	for i := range v {
		sum += v[i] * o[i]
	}
	return sum
}

// Grow returns a vector of length n with v's entries copied into the
// leading positions and the rest zero-filled. v itself is left untouched.
func Grow(v Vector, n int) Vector {
	out := make(Vector, n)
	copy(out, v)
	return out
}

// Magnitude returns the Euclidean norm of v.
func (v Vector) Magnitude() float32 {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	return math32.Sqrt(sum)
}

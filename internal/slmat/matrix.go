package slmat

import (
	"errors"

	"github.com/chewxy/math32"
)

// Matrix is a dense, row-major matrix: Matrix[row][col].
type Matrix [][]float32

// ErrNotSquare is returned by Inverse when the receiver is not square.
var ErrNotSquare = errors.New("slmat: matrix must be square")

// ErrSingular is returned by Inverse when the matrix has no inverse.
var ErrSingular = errors.New("slmat: matrix is singular")

// NewMatrix allocates a zero matrix of the given shape.
func NewMatrix(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make([]float32, cols)
	}
	return m
}

// Identity returns an n x n identity matrix.
func Identity(n int) Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m[i][i] = 1
	}
	return m
}

// Rows returns the row count.
func (m Matrix) Rows() int { return len(m) }

// Cols returns the column count, or 0 for an empty matrix.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Clone returns a deep copy of m.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i := range m {
		out[i] = make([]float32, len(m[i]))
		copy(out[i], m[i])
	}
	return out
}

// Eye resets m to the identity matrix and returns it. m must be square.
func (m Matrix) Eye() Matrix {
	for i := range m {
		for j := range m[i] {
			m[i][j] = 0
		}
	}
	for i := range m {
		m[i][i] = 1
	}
	return m
}

// Transpose sets m to src^T and returns m. m must already be shaped
// Cols(src) x Rows(src).
func (m Matrix) Transpose(src Matrix) Matrix {
	for i := range src {
		for j := range src[i] {
			m[j][i] = src[i][j]
		}
	}
	return m
}

// Add mutates m to m+o and returns m.
func (m Matrix) Add(o Matrix) Matrix {
	for i := range m {
		for j := range m[i] {
			m[i][j] += o[i][j]
		}
	}
	return m
}

// Sub mutates m to m-o and returns m.
func (m Matrix) Sub(o Matrix) Matrix {
	for i := range m {
		for j := range m[i] {
			m[i][j] -= o[i][j]
		}
	}
	return m
}

// MulC scales every entry of m by c and returns m.
func (m Matrix) MulC(c float32) Matrix {
	for i := range m {
		for j := range m[i] {
			m[i][j] *= c
		}
	}
	return m
}

// Mul sets m to a*b and returns m. m must be shaped Rows(a) x Cols(b).
func (m Matrix) Mul(a, b Matrix) Matrix {
	inner := a.Cols()
	for i := range a {
		for j := 0; j < b.Cols(); j++ {
			var sum float32
			for k := 0; k < inner; k++ {
				sum += a[i][k] * b[k][j]
			}
			m[i][j] = sum
		}
	}
	return m
}

// MulVec sets dst to m*v and returns dst.
func (m Matrix) MulVec(v Vector, dst Vector) Vector {
	for i := range m {
		var sum float32
		for j := range m[i] {
			sum += m[i][j] * v[j]
		}
		dst[i] = sum
	}
	return dst
}

// Submatrix returns a copy of the rows x cols block starting at (row, col).
func (m Matrix) Submatrix(row, col, rows, cols int) Matrix {
	out := NewMatrix(rows, cols)
	for i := 0; i < rows; i++ {
		copy(out[i], m[row+i][col:col+cols])
	}
	return out
}

// SetSubmatrix overwrites the block starting at (row, col) with src and
// returns m.
func (m Matrix) SetSubmatrix(row, col int, src Matrix) Matrix {
	for i := range src {
		copy(m[row+i][col:col+len(src[i])], src[i])
	}
	return m
}

// IsSymmetric reports whether m equals its own transpose within tol.
func (m Matrix) IsSymmetric(tol float32) bool {
	for i := range m {
		for j := range m[i] {
			if math32.Abs(m[i][j]-m[j][i]) > tol {
				return false
			}
		}
	}
	return true
}

// Symmetrize averages m with its transpose in place, forcing exact
// symmetry after accumulated floating-point drift.
func (m Matrix) Symmetrize() Matrix {
	for i := range m {
		for j := i + 1; j < len(m[i]); j++ {
			avg := (m[i][j] + m[j][i]) / 2
			m[i][j] = avg
			m[j][i] = avg
		}
	}
	return m
}

// Grow returns an n x n matrix with m's entries copied into the top-left
// block and the rest zero-filled. m itself is left untouched.
func Grow(m Matrix, n int) Matrix {
	out := NewMatrix(n, n)
	for i := range m {
		copy(out[i], m[i])
	}
	return out
}

// Inverse computes m^-1 via Gauss-Jordan elimination with partial pivoting
// and writes it into dst, which must be the same shape as m.
func (m Matrix) Inverse(dst Matrix) error {
	n := len(m)
	if n == 0 || len(m[0]) != n {
		return ErrNotSquare
	}

	work := m.Clone()
	dst.Eye()

	for col := 0; col < n; col++ {
		pivot := col
		best := math32.Abs(work[col][col])
		for r := col + 1; r < n; r++ {
			if v := math32.Abs(work[r][col]); v > best {
				best = v
				pivot = r
			}
		}
		if best < 1e-9 {
			return ErrSingular
		}
		if pivot != col {
			work[col], work[pivot] = work[pivot], work[col]
			dst[col], dst[pivot] = dst[pivot], dst[col]
		}

		p := work[col][col]
		for j := 0; j < n; j++ {
			work[col][j] /= p
			dst[col][j] /= p
		}

		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := work[r][col]
			if factor == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				work[r][j] -= factor * work[col][j]
				dst[r][j] -= factor * dst[col][j]
			}
		}
	}

	return nil
}

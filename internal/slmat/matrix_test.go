package slmat

import "testing"

func TestIdentityMul(t *testing.T) {
	a := Identity(3)
	b := NewMatrix(3, 3)
	b[0] = []float32{1, 2, 3}
	b[1] = []float32{4, 5, 6}
	b[2] = []float32{7, 8, 9}

	dst := NewMatrix(3, 3)
	dst.Mul(a, b)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if dst[i][j] != b[i][j] {
				t.Errorf("dst[%d][%d] = %f, want %f", i, j, dst[i][j], b[i][j])
			}
		}
	}
}

func TestInverseIdentity(t *testing.T) {
	a := Identity(4)
	dst := NewMatrix(4, 4)
	if err := a.Inverse(dst); err != nil {
		t.Fatalf("Inverse() error = %v", err)
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := float32(0)
			if i == j {
				want = 1
			}
			if dst[i][j] != want {
				t.Errorf("dst[%d][%d] = %f, want %f", i, j, dst[i][j], want)
			}
		}
	}
}

func TestInverseSingular(t *testing.T) {
	m := NewMatrix(2, 2)
	m[0] = []float32{1, 2}
	m[1] = []float32{2, 4}
	dst := NewMatrix(2, 2)
	if err := m.Inverse(dst); err != ErrSingular {
		t.Errorf("Inverse() error = %v, want ErrSingular", err)
	}
}

func TestGrowPreservesContent(t *testing.T) {
	m := Identity(2)
	g := Grow(m, 4)
	if g.Rows() != 4 || g.Cols() != 4 {
		t.Fatalf("Grow() shape = %dx%d, want 4x4", g.Rows(), g.Cols())
	}
	if g[0][0] != 1 || g[1][1] != 1 {
		t.Errorf("Grow() did not preserve original block")
	}
	if g[2][2] != 0 || g[3][3] != 0 {
		t.Errorf("Grow() did not zero-fill new block")
	}
}

func TestSymmetrize(t *testing.T) {
	m := NewMatrix(2, 2)
	m[0] = []float32{1, 2}
	m[1] = []float32{2.0001, 3}
	m.Symmetrize()
	if !m.IsSymmetric(1e-9) {
		t.Errorf("Symmetrize() left matrix non-symmetric: %v", m)
	}
}

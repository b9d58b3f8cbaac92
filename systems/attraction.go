package systems

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/plife/config"
)

// AttractionMatrix holds the signed force coefficient between every ordered pair of types.
// Row is the acting particle's type, column the type it reacts to.
// Positive values attract, negative values repel. The table never changes after construction.
type AttractionMatrix struct {
	m *mat.Dense
	n int
}

// NewAttractionMatrix copies a row-major n x n table.
func NewAttractionMatrix(n int, data []float64) (*AttractionMatrix, error) {
	if n < 1 {
		return nil, fmt.Errorf("attraction matrix: need at least one type, got %d", n)
	}
	if len(data) != n*n {
		return nil, fmt.Errorf("attraction matrix: %d values for %d types, want %d", len(data), n, n*n)
	}
	for i, v := range data {
		if v < -1 || v > 1 {
			return nil, fmt.Errorf("attraction matrix: value %g at (%d,%d) outside [-1, 1]", v, i/n, i%n)
		}
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return &AttractionMatrix{m: mat.NewDense(n, n, buf), n: n}, nil
}

// AttractionFromConfig builds the matrix from the configured type table.
func AttractionFromConfig(cfg *config.Config) (*AttractionMatrix, error) {
	return NewAttractionMatrix(cfg.Derived.NumTypes, cfg.Derived.Attraction)
}

// Coefficient returns the coefficient type a feels toward type b.
func (a *AttractionMatrix) Coefficient(from, to int) float64 {
	return a.m.At(from, to)
}

// NumTypes returns the matrix dimension.
func (a *AttractionMatrix) NumTypes() int {
	return a.n
}

// IsSymmetric reports whether every pair reacts reciprocally.
func (a *AttractionMatrix) IsSymmetric() bool {
	return mat.Equal(a.m, a.m.T())
}

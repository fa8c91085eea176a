package sparse

import (
	"math"
	"slices"
)

// Vector is a sparse float vector of fixed dimension. Indices are strictly
// increasing and every index is below Dim.
type Vector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// FromMap builds a Vector from index → value pairs. Zero values are dropped.
func FromMap(dim int, m map[int]float64) Vector {
	idx := make([]int, 0, len(m))
	for i, v := range m {
		if v != 0 {
			idx = append(idx, i)
		}
	}
	slices.Sort(idx)
	vals := make([]float64, len(idx))
	for j, i := range idx {
		vals[j] = m[i]
	}
	return Vector{Dim: dim, Indices: idx, Values: vals}
}

// NNZ returns the number of stored entries.
func (v Vector) NNZ() int { return len(v.Indices) }

// At returns the value at index i.
func (v Vector) At(i int) float64 {
	j, ok := slices.BinarySearch(v.Indices, i)
	if !ok {
		return 0
	}
	return v.Values[j]
}

// Dot returns the inner product with a dense slice of length ≥ Dim.
func (v Vector) Dot(dense []float64) float64 {
	var sum float64
	for j, i := range v.Indices {
		sum += v.Values[j] * dense[i]
	}
	return sum
}

// SquaredNorm returns the squared L2 norm.
func (v Vector) SquaredNorm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return sum
}

// Scale returns a copy of v multiplied by f.
func (v Vector) Scale(f float64) Vector {
	out := Vector{Dim: v.Dim, Indices: slices.Clone(v.Indices), Values: make([]float64, len(v.Values))}
	for j, x := range v.Values {
		out.Values[j] = x * f
	}
	return out
}

// L2Normalize returns v scaled to unit L2 norm. A zero vector is returned
// unchanged.
func (v Vector) L2Normalize() Vector {
	n := math.Sqrt(v.SquaredNorm())
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// Dense expands v into a dense slice of length Dim.
func (v Vector) Dense() []float64 {
	out := make([]float64, v.Dim)
	for j, i := range v.Indices {
		out[i] = v.Values[j]
	}
	return out
}

// Equal reports whether two vectors have the same dimension and entries.
func (v Vector) Equal(o Vector) bool {
	return v.Dim == o.Dim && slices.Equal(v.Indices, o.Indices) && slices.Equal(v.Values, o.Values)
}

package normalize

import (
	"fmt"
	"math"

	"github.com/crimson-sun/happymail/internal/engine/sparse"
)

// MinMaxOptions configures min-max normalization.
type MinMaxOptions struct {
	// FixZero keeps zero at zero: each dimension is divided by its largest
	// absolute bound instead of being shifted by its minimum.
	FixZero bool `json:"fix_zero" yaml:"fix_zero"`
}

// DefaultMinMaxOptions enables FixZero.
func DefaultMinMaxOptions() MinMaxOptions {
	return MinMaxOptions{FixZero: true}
}

// MinMax rescales each dimension into [0,1] using bounds frozen at fit time.
type MinMax struct {
	opts   MinMaxOptions
	mins   []float64
	maxs   []float64
	scale  []float64
	offset []float64
}

// FitMinMax computes per-dimension bounds over rows. Dimensions absent
// from a row count as zero.
func FitMinMax(rows []sparse.Vector, dim int, opts MinMaxOptions) (*MinMax, error) {
	mins := make([]float64, dim)
	maxs := make([]float64, dim)
	seen := make([]int, dim)
	for r, row := range rows {
		if row.Dim != dim {
			return nil, fmt.Errorf("normalize: row %d has dim %d, want %d", r, row.Dim, dim)
		}
		for j, i := range row.Indices {
			x := row.Values[j]
			if seen[i] == 0 || x < mins[i] {
				mins[i] = x
			}
			if seen[i] == 0 || x > maxs[i] {
				maxs[i] = x
			}
			seen[i]++
		}
	}
	for i := range dim {
		if seen[i] < len(rows) {
			mins[i] = math.Min(mins[i], 0)
			maxs[i] = math.Max(maxs[i], 0)
		}
	}
	return FromBounds(opts, mins, maxs)
}

// FromBounds rebuilds a fitted MinMax from saved bounds.
func FromBounds(opts MinMaxOptions, mins, maxs []float64) (*MinMax, error) {
	if len(mins) != len(maxs) {
		return nil, fmt.Errorf("normalize: %d mins but %d maxs", len(mins), len(maxs))
	}
	m := &MinMax{
		opts:   opts,
		mins:   append([]float64(nil), mins...),
		maxs:   append([]float64(nil), maxs...),
		scale:  make([]float64, len(mins)),
		offset: make([]float64, len(mins)),
	}
	for i := range mins {
		if mins[i] > maxs[i] {
			return nil, fmt.Errorf("normalize: dim %d min %v > max %v", i, mins[i], maxs[i])
		}
		if opts.FixZero {
			if bound := math.Max(math.Abs(mins[i]), math.Abs(maxs[i])); bound > 0 {
				m.scale[i] = 1 / bound
			}
			continue
		}
		if maxs[i] > mins[i] {
			m.scale[i] = 1 / (maxs[i] - mins[i])
			m.offset[i] = mins[i]
		}
	}
	return m, nil
}

// Dim returns the number of dimensions the bounds cover.
func (m *MinMax) Dim() int { return len(m.mins) }

// Options returns the options used at fit time.
func (m *MinMax) Options() MinMaxOptions { return m.opts }

// Bounds returns copies of the frozen per-dimension minimums and maximums.
func (m *MinMax) Bounds() (mins, maxs []float64) {
	return append([]float64(nil), m.mins...), append([]float64(nil), m.maxs...)
}

// Apply rescales v with the frozen bounds and clamps into [0,1]. Entries
// that are implicit zeros stay implicit: for non-negative training data an
// implicit zero always maps to zero. v is expected to come from the
// featurizer the bounds were fitted on; the output always has Dim()
// dimensions and indices outside them are dropped.
func (m *MinMax) Apply(v sparse.Vector) sparse.Vector {
	out := sparse.Vector{Dim: m.Dim()}
	for j, i := range v.Indices {
		if i < 0 || i >= len(m.scale) {
			continue
		}
		x := clamp((v.Values[j] - m.offset[i]) * m.scale[i])
		if x == 0 {
			continue
		}
		out.Indices = append(out.Indices, i)
		out.Values = append(out.Values, x)
	}
	return out
}

func clamp(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}

package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/crimson-sun/happymail/internal/engine/sparse"
)

// ErrNoExamples is returned when Train is given an empty training set.
var ErrNoExamples = errors.New("trainer: no training examples")

// Example is one encoded training row.
type Example struct {
	Features sparse.Vector
	Label    int
}

// Options configures the SDCA maximum-entropy trainer.
type Options struct {
	// L2 is the regularization strength. Zero or negative infers 1/n.
	L2 float64 `json:"l2" yaml:"l2"`
	// MaxIterations caps the number of passes over the data.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`
	// ConvergenceTolerance is the relative duality gap at which training stops.
	ConvergenceTolerance float64 `json:"convergence_tolerance" yaml:"convergence_tolerance"`
	// Shuffle visits examples in a seeded random order each pass.
	Shuffle bool  `json:"shuffle" yaml:"shuffle"`
	Seed    int64 `json:"seed" yaml:"seed"`
}

// DefaultOptions returns the trainer defaults.
func DefaultOptions() Options {
	return Options{
		MaxIterations:        100,
		ConvergenceTolerance: 1e-3,
		Shuffle:              true,
		Seed:                 1,
	}
}

// Stats summarizes a training run.
type Stats struct {
	Iterations int
	Converged  bool
	L2         float64
	Primal     float64 // regularized mean log-loss
	Dual       float64
	Gap        float64 // Primal - Dual, never negative up to rounding
}

// Train fits L2-regularized multinomial logistic regression by stochastic
// dual coordinate ascent. Each example i owns a dual block α_i; the primal
// weights are kept equal to (1/λn)·Σ α_i x̃_iᵀ throughout.
func Train(ctx context.Context, examples []Example, numClasses, dim int, opts Options) (*Weights, Stats, error) {
	n := len(examples)
	if n == 0 {
		return nil, Stats{}, ErrNoExamples
	}
	if numClasses <= 0 {
		return nil, Stats{}, fmt.Errorf("trainer: need at least one class, got %d", numClasses)
	}
	for i, ex := range examples {
		if ex.Label < 0 || ex.Label >= numClasses {
			return nil, Stats{}, fmt.Errorf("trainer: example %d: label %d out of range [0,%d)", i, ex.Label, numClasses)
		}
		if ex.Features.Dim != dim {
			return nil, Stats{}, fmt.Errorf("trainer: example %d: dim %d, want %d", i, ex.Features.Dim, dim)
		}
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultOptions().MaxIterations
	}
	if numClasses == 1 {
		slog.Warn("trainer: single class in training data, every prediction will be that class")
	}

	lambda := opts.L2
	if lambda <= 0 {
		lambda = 1 / float64(n)
	}
	lambdaN := lambda * float64(n)

	w := newWeights(numClasses, dim)
	alpha := make([][]float64, n)
	steps := make([]float64, n)
	for i, ex := range examples {
		alpha[i] = make([]float64, numClasses)
		r2 := ex.Features.SquaredNorm() + 1
		steps[i] = lambdaN / (r2 + lambdaN)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	stats := Stats{L2: lambda}
	delta := make([]float64, numClasses)
	for epoch := 1; epoch <= opts.MaxIterations; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, stats, fmt.Errorf("trainer: %w", err)
		}
		if opts.Shuffle {
			rng.Shuffle(n, func(a, b int) { order[a], order[b] = order[b], order[a] })
		}

		for _, i := range order {
			ex := examples[i]
			p := w.Scores(ex.Features)
			s := steps[i]
			for c := range numClasses {
				target := -p[c]
				if c == ex.Label {
					target += 1
				}
				delta[c] = s * (target - alpha[i][c])
			}
			for c, d := range delta {
				if d == 0 {
					continue
				}
				alpha[i][c] += d
				w.addScaled(c, d/lambdaN, ex.Features)
			}
		}

		stats.Iterations = epoch
		stats.Primal, stats.Dual = objectives(w, examples, alpha, lambda)
		stats.Gap = stats.Primal - stats.Dual
		slog.Debug("trainer: epoch", "epoch", epoch, "primal", stats.Primal, "dual", stats.Dual, "gap", stats.Gap)

		if relativeGap(stats) <= opts.ConvergenceTolerance {
			stats.Converged = true
			break
		}
	}
	return w, stats, nil
}

// objectives evaluates the primal and dual objectives at the current
// iterate. The dual block α_i corresponds to the distribution
// q_i = e_y − α_i, whose entropy is the dual loss term.
func objectives(w *Weights, examples []Example, alpha [][]float64, lambda float64) (primal, dual float64) {
	n := float64(len(examples))
	var loss, entropy float64
	for i, ex := range examples {
		z := w.logits(ex.Features)
		lse := softmaxInPlace(append([]float64(nil), z...))
		loss += lse - z[ex.Label]

		for c, a := range alpha[i] {
			q := -a
			if c == ex.Label {
				q += 1
			}
			if q > 0 {
				entropy -= q * math.Log(q)
			}
		}
	}
	reg := lambda / 2 * w.frobeniusSq()
	return loss/n + reg, entropy/n - reg
}

func relativeGap(s Stats) float64 {
	return s.Gap / math.Max(math.Abs(s.Primal), 1e-12)
}

package trainer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/crimson-sun/happymail/internal/engine/sparse"
)

// Weights is a trained linear multiclass model: one row per class, one
// column per feature plus a trailing bias column.
type Weights struct {
	w       *mat.Dense
	classes int
	dim     int
}

func newWeights(classes, dim int) *Weights {
	return &Weights{
		w:       mat.NewDense(classes, dim+1, nil),
		classes: classes,
		dim:     dim,
	}
}

// NewWeights rebuilds Weights from row-major data of shape classes×(dim+1).
func NewWeights(classes, dim int, data []float64) (*Weights, error) {
	if classes <= 0 || dim < 0 {
		return nil, fmt.Errorf("trainer: invalid weight shape %d×%d", classes, dim+1)
	}
	if len(data) != classes*(dim+1) {
		return nil, fmt.Errorf("trainer: got %d weights, want %d for shape %d×%d",
			len(data), classes*(dim+1), classes, dim+1)
	}
	return &Weights{
		w:       mat.NewDense(classes, dim+1, append([]float64(nil), data...)),
		classes: classes,
		dim:     dim,
	}, nil
}

// Classes returns the number of output classes.
func (w *Weights) Classes() int { return w.classes }

// Dim returns the input feature dimension (bias excluded).
func (w *Weights) Dim() int { return w.dim }

// Data returns a row-major copy of the weights, bias last in each row.
func (w *Weights) Data() []float64 {
	out := make([]float64, 0, w.classes*(w.dim+1))
	for c := range w.classes {
		out = append(out, w.w.RawRowView(c)...)
	}
	return out
}

// Matrix exposes the weights as a read-only gonum matrix.
func (w *Weights) Matrix() mat.Matrix { return w.w }

// logits returns the raw per-class scores for x.
func (w *Weights) logits(x sparse.Vector) []float64 {
	z := make([]float64, w.classes)
	for c := range w.classes {
		row := w.w.RawRowView(c)
		z[c] = x.Dot(row) + row[w.dim]
	}
	return z
}

// Scores returns softmax class probabilities for x.
func (w *Weights) Scores(x sparse.Vector) []float64 {
	z := w.logits(x)
	softmaxInPlace(z)
	return z
}

// Predict returns the key of the highest scoring class and all scores.
// Ties go to the lowest key.
func (w *Weights) Predict(x sparse.Vector) (int, []float64) {
	p := w.Scores(x)
	return floats.MaxIdx(p), p
}

// softmaxInPlace replaces z with softmax(z) and returns log-sum-exp(z).
func softmaxInPlace(z []float64) float64 {
	lse := floats.LogSumExp(z)
	for i := range z {
		z[i] = math.Exp(z[i] - lse)
	}
	return lse
}

// frobeniusSq returns the squared Frobenius norm of the weights.
func (w *Weights) frobeniusSq() float64 {
	n := mat.Norm(w.w, 2)
	return n * n
}

// addScaled adds f·x̃ to row c, where x̃ is x with a trailing 1 for the bias.
func (w *Weights) addScaled(c int, f float64, x sparse.Vector) {
	row := w.w.RawRowView(c)
	for j, i := range x.Indices {
		row[i] += f * x.Values[j]
	}
	row[w.dim] += f
}

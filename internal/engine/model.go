package engine

import (
	"fmt"

	"github.com/crimson-sun/happymail/internal/engine/featurizer"
	"github.com/crimson-sun/happymail/internal/engine/labels"
	"github.com/crimson-sun/happymail/internal/engine/normalize"
	"github.com/crimson-sun/happymail/internal/engine/sparse"
	"github.com/crimson-sun/happymail/internal/engine/trainer"
	"github.com/crimson-sun/happymail/internal/model"
)

// Model is a fitted pipeline: the frozen transform parameters plus the
// trained classifier. It is immutable and safe for concurrent use.
type Model struct {
	labels     *labels.KeyMap
	featurizer *featurizer.Featurizer
	normalizer *normalize.MinMax
	weights    *trainer.Weights
	stats      trainer.Stats
}

// NewModel assembles a Model from fitted parts, checking their shapes agree.
func NewModel(keys *labels.KeyMap, feat *featurizer.Featurizer, mm *normalize.MinMax, w *trainer.Weights) (*Model, error) {
	switch {
	case keys.Len() != w.Classes():
		return nil, fmt.Errorf("engine: %d labels but %d weight rows", keys.Len(), w.Classes())
	case feat.Dim() != mm.Dim():
		return nil, fmt.Errorf("engine: featurizer dim %d != normalizer dim %d", feat.Dim(), mm.Dim())
	case feat.Dim() != w.Dim():
		return nil, fmt.Errorf("engine: featurizer dim %d != weights dim %d", feat.Dim(), w.Dim())
	}
	return &Model{labels: keys, featurizer: feat, normalizer: mm, weights: w}, nil
}

// Labels returns the fitted label key map.
func (m *Model) Labels() *labels.KeyMap { return m.labels }

// Featurizer returns the fitted text featurizer.
func (m *Model) Featurizer() *featurizer.Featurizer { return m.featurizer }

// Normalizer returns the fitted min-max normalizer.
func (m *Model) Normalizer() *normalize.MinMax { return m.normalizer }

// Weights returns the trained classifier weights.
func (m *Model) Weights() *trainer.Weights { return m.weights }

// TrainStats returns the trainer summary. It is zero for a loaded model.
func (m *Model) TrainStats() trainer.Stats { return m.stats }

// Transform maps text to its normalized Features vector.
func (m *Model) Transform(text string) sparse.Vector {
	return m.normalizer.Apply(m.featurizer.Transform(text))
}

// Predict scores text and decodes the winning label key.
func (m *Model) Predict(text string) (model.Prediction, error) {
	key, scores := m.weights.Predict(m.Transform(text))
	label, err := m.labels.Label(key)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("engine: %w", err)
	}
	out := model.Prediction{PredictedLabel: label, Score: make([]float32, len(scores))}
	for i, s := range scores {
		out.Score[i] = float32(s)
	}
	return out, nil
}

// PredictBatch scores several texts.
func (m *Model) PredictBatch(texts []string) ([]model.Prediction, error) {
	out := make([]model.Prediction, 0, len(texts))
	for _, text := range texts {
		p, err := m.Predict(text)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

package happymail

import (
	"context"
	"fmt"

	"github.com/crimson-sun/happymail/internal/artifact"
	"github.com/crimson-sun/happymail/internal/config"
	"github.com/crimson-sun/happymail/internal/engine"
	"github.com/crimson-sun/happymail/internal/model"
	"github.com/crimson-sun/happymail/internal/pipeline"
)

// Prediction is the scored output for one text.
type Prediction struct {
	Label  string             `json:"label"`
	Scores map[string]float32 `json:"scores"` // probability per label
	Score  []float32          `json:"-"`      // probabilities ordered as Model.Labels
}

// Result summarizes a training run.
type Result struct {
	ModelPath     string
	Rows          int
	Labels        []string
	Features      int
	Iterations    int
	MicroAccuracy float64 // on the training rows
	MacroAccuracy float64
	LogLoss       float64
}

// Train fits a model and writes it to the configured model path,
// overwriting any existing file.
func Train(ctx context.Context, opts ...Option) (*Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	cfg := o.apply(config.Default())
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("happymail: %w", err)
	}

	res, err := pipeline.New(cfg).Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("happymail: %w", err)
	}
	return &Result{
		ModelPath:     res.ModelPath,
		Rows:          res.Rows,
		Labels:        res.Labels,
		Features:      res.Dim,
		Iterations:    res.Iterations,
		MicroAccuracy: res.Metrics.MicroAccuracy,
		MacroAccuracy: res.Metrics.MacroAccuracy,
		LogLoss:       res.Metrics.LogLoss,
	}, nil
}

// Model is a trained sentiment model loaded from disk.
type Model struct {
	m      *engine.Model
	schema model.Schema
}

// Load reads a model archive written by Train.
func Load(path string) (*Model, error) {
	m, schema, err := artifact.Load(path)
	if err != nil {
		return nil, fmt.Errorf("happymail: %w", err)
	}
	if !schema.Equal(model.TrainingSchema()) {
		return nil, fmt.Errorf("happymail: %s was trained on an unsupported schema", path)
	}
	return &Model{m: m, schema: schema}, nil
}

// Labels returns the labels the model can predict, ordered by key.
func (m *Model) Labels() []string {
	return m.m.Labels().Labels()
}

// Columns returns the names of the training data columns in file order.
func (m *Model) Columns() []string {
	out := make([]string, len(m.schema.Columns))
	for i, c := range m.schema.Columns {
		out[i] = c.Name
	}
	return out
}

// Predict classifies one text.
func (m *Model) Predict(text string) (Prediction, error) {
	p, err := m.m.Predict(text)
	if err != nil {
		return Prediction{}, err
	}
	return m.toPublic(p), nil
}

// PredictBatch classifies several texts.
func (m *Model) PredictBatch(texts []string) ([]Prediction, error) {
	ps, err := m.m.PredictBatch(texts)
	if err != nil {
		return nil, err
	}
	out := make([]Prediction, len(ps))
	for i, p := range ps {
		out[i] = m.toPublic(p)
	}
	return out, nil
}

func (m *Model) toPublic(p model.Prediction) Prediction {
	labels := m.m.Labels().Labels()
	scores := make(map[string]float32, len(labels))
	for i, l := range labels {
		scores[l] = p.Score[i]
	}
	return Prediction{Label: p.PredictedLabel, Scores: scores, Score: p.Score}
}

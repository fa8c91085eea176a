package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crimson-sun/happymail/internal/engine/featurizer"
	"github.com/crimson-sun/happymail/internal/engine/labels"
	"github.com/crimson-sun/happymail/internal/engine/normalize"
	"github.com/crimson-sun/happymail/internal/engine/sparse"
	"github.com/crimson-sun/happymail/internal/engine/trainer"
	"github.com/crimson-sun/happymail/internal/model"
)

// Column names flowing through the pipeline.
const (
	LabelColumn          = "Sentiment"
	TextColumn           = "SentimentText"
	FeaturizedColumn     = "SentimentText_tf"
	FeaturesColumn       = "Features"
	PredictedLabelColumn = "PredictedLabel"
	ScoreColumn          = "Score"
)

// Stage names, in the order they run.
const (
	StageMapValueToKey = "MapValueToKey"
	StageFeaturizeText = "FeaturizeText"
	StageCopyColumns   = "CopyColumns"
	StageNormalize     = "NormalizeMinMax"
	StageCache         = "CacheCheckpoint"
	StageTrainer       = "SdcaMaximumEntropy"
	StageMapKeyToValue = "MapKeyToValue"
)

// Stages returns the fixed stage order of the training pipeline.
func Stages() []string {
	return []string{
		StageMapValueToKey, StageFeaturizeText, StageCopyColumns,
		StageNormalize, StageCache, StageTrainer, StageMapKeyToValue,
	}
}

// Options holds every setting the pipeline stages take. It is passed by
// value; stages share no mutable state.
type Options struct {
	Featurizer featurizer.Options      `json:"featurizer" yaml:"featurizer"`
	MinMax     normalize.MinMaxOptions `json:"min_max" yaml:"min_max"`
	Trainer    trainer.Options         `json:"trainer" yaml:"trainer"`
}

// DefaultOptions returns the defaults of each stage.
func DefaultOptions() Options {
	return Options{
		Featurizer: featurizer.DefaultOptions(),
		MinMax:     normalize.DefaultMinMaxOptions(),
		Trainer:    trainer.DefaultOptions(),
	}
}

// Engine fits the label → featurize → normalize → train pipeline.
type Engine struct {
	opts Options
}

// New creates an Engine with the provided options.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Fit runs every stage once against the full training set and returns the
// frozen model.
func (e *Engine) Fit(ctx context.Context, records []model.Record) (*Model, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("engine: %w", trainer.ErrNoExamples)
	}

	sentiments := make([]string, len(records))
	texts := make([]string, len(records))
	for i, r := range records {
		sentiments[i] = r.Sentiment
		texts[i] = r.SentimentText
	}

	keys := labels.Fit(sentiments)
	encoded, err := keys.Keys(sentiments)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	slog.Info("engine: labels encoded", "column", LabelColumn, "classes", keys.Len())

	feat, err := featurizer.Fit(texts, e.opts.Featurizer)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	raw := make([]sparse.Vector, len(texts))
	for i, text := range texts {
		raw[i] = feat.Transform(text)
	}
	slog.Info("engine: text featurized", "column", FeaturizedColumn, "dim", feat.Dim())

	// CopyColumns only renames SentimentText_tf to Features; nothing to compute.

	mm, err := normalize.FitMinMax(raw, feat.Dim(), e.opts.MinMax)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	// Cache checkpoint: normalized features are materialized once here and
	// reused by every trainer pass.
	examples := make([]trainer.Example, len(raw))
	for i, v := range raw {
		examples[i] = trainer.Example{Features: mm.Apply(v), Label: encoded[i]}
	}

	w, stats, err := trainer.Train(ctx, examples, keys.Len(), feat.Dim(), e.opts.Trainer)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	slog.Info("engine: trainer fitted",
		"trainer", StageTrainer,
		"iterations", stats.Iterations,
		"converged", stats.Converged,
		"l2", stats.L2,
		"duality_gap", stats.Gap,
	)

	m, err := NewModel(keys, feat, mm, w)
	if err != nil {
		return nil, err
	}
	m.stats = stats
	return m, nil
}

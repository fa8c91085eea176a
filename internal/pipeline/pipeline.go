package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crimson-sun/happymail/internal/artifact"
	"github.com/crimson-sun/happymail/internal/config"
	"github.com/crimson-sun/happymail/internal/dataset"
	"github.com/crimson-sun/happymail/internal/engine"
	"github.com/crimson-sun/happymail/internal/model"
)

// Result summarizes one training run.
type Result struct {
	Rows       int
	Labels     []string
	Dim        int
	Iterations int
	Converged  bool
	Metrics    engine.Metrics // on the training rows
	ModelPath  string
}

// Pipeline connects the loader, engine, and serializer: load → fit → save.
type Pipeline struct {
	cfg    config.Config
	engine *engine.Engine
	schema model.Schema
}

// New creates a Pipeline from the given configuration.
func New(cfg config.Config) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		engine: engine.New(cfg.EngineOptions()),
		schema: model.TrainingSchema(),
	}
}

// Run trains a model from the configured data file and writes it to the
// configured model path. Any error aborts the run; nothing is retried.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	start := time.Now()

	recs, err := p.load()
	if err != nil {
		return Result{}, fmt.Errorf("pipeline load: %w", err)
	}
	slog.Info("pipeline: data loaded", "path", p.cfg.Data.TrainPath, "rows", len(recs))

	m, err := p.engine.Fit(ctx, recs)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline fit: %w", err)
	}

	met, err := m.Evaluate(recs)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline evaluate: %w", err)
	}
	slog.Info("pipeline: training metrics",
		"micro_accuracy", met.MicroAccuracy,
		"macro_accuracy", met.MacroAccuracy,
		"log_loss", met.LogLoss,
		"log_loss_reduction", met.LogLossReduction,
	)

	if err := artifact.Save(p.cfg.Output.ModelPath, m, p.schema); err != nil {
		return Result{}, fmt.Errorf("pipeline save: %w", err)
	}
	slog.Info("pipeline: model saved", "path", p.cfg.Output.ModelPath, "elapsed", time.Since(start))

	stats := m.TrainStats()
	return Result{
		Rows:       len(recs),
		Labels:     m.Labels().Labels(),
		Dim:        m.Featurizer().Dim(),
		Iterations: stats.Iterations,
		Converged:  stats.Converged,
		Metrics:    met,
		ModelPath:  p.cfg.Output.ModelPath,
	}, nil
}

// load reads the training file through the cache checkpoint.
func (p *Pipeline) load() ([]model.Record, error) {
	r, err := dataset.Open(p.cfg.Data.TrainPath, p.cfg.DatasetOptions())
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return dataset.Materialize(r.Records())
}

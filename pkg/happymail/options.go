package happymail

import "github.com/crimson-sun/happymail/internal/config"

type options struct {
	trainData string
	modelPath string
	seed      int64
	hasSeed   bool
}

// Option configures Train.
type Option func(*options)

// WithTrainData sets the training file. Default: wikipedia-detox-250-line-data.tsv.
func WithTrainData(path string) Option {
	return func(o *options) {
		o.trainData = path
	}
}

// WithModelPath sets where the model archive is written. Default: MLModel.zip.
func WithModelPath(path string) Option {
	return func(o *options) {
		o.modelPath = path
	}
}

// WithSeed sets the trainer's random seed. Default: 1.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.hasSeed = true
	}
}

// apply overlays the options on the compiled-in configuration.
func (o options) apply(cfg config.Config) config.Config {
	if o.trainData != "" {
		cfg.Data.TrainPath = o.trainData
	}
	if o.modelPath != "" {
		cfg.Output.ModelPath = o.modelPath
	}
	if o.hasSeed {
		cfg.Engine.Seed = o.seed
	}
	return cfg
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/happymail/internal/dataset"
	"github.com/crimson-sun/happymail/internal/engine"
)

// Compiled-in defaults. A run with no config file and no HAPPYMAIL_*
// variables uses exactly these.
const (
	DefaultTrainDataPath = "wikipedia-detox-250-line-data.tsv"
	DefaultModelPath     = "MLModel.zip"
	DefaultSeed          = 1
)

// Config holds all model builder configuration.
type Config struct {
	Data   DataConfig   `yaml:"data"`
	Output OutputConfig `yaml:"output"`
	Engine EngineConfig `yaml:"engine"`
	Log    LogConfig    `yaml:"log"`
}

// DataConfig describes the training file.
type DataConfig struct {
	TrainPath string `yaml:"train_path"`
	HasHeader bool   `yaml:"has_header"`
	Separator string `yaml:"separator"` // single character
}

// OutputConfig holds the model artifact destination.
type OutputConfig struct {
	ModelPath string `yaml:"model_path"`
}

// EngineConfig holds pipeline and trainer settings.
type EngineConfig struct {
	Seed                 int64   `yaml:"seed"`
	L2                   float64 `yaml:"l2"` // 0 infers from the row count
	MaxIterations        int     `yaml:"max_iterations"`
	ConvergenceTolerance float64 `yaml:"convergence_tolerance"`
	WordNgramLength      int     `yaml:"word_ngram_length"`
	CharNgramLength      int     `yaml:"char_ngram_length"`
	FixZero              bool    `yaml:"fix_zero"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
	JSON  bool   `yaml:"json"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	eng := engine.DefaultOptions()
	return Config{
		Data: DataConfig{
			TrainPath: DefaultTrainDataPath,
			HasHeader: true,
			Separator: "\t",
		},
		Output: OutputConfig{
			ModelPath: DefaultModelPath,
		},
		Engine: EngineConfig{
			Seed:                 DefaultSeed,
			L2:                   eng.Trainer.L2,
			MaxIterations:        eng.Trainer.MaxIterations,
			ConvergenceTolerance: eng.Trainer.ConvergenceTolerance,
			WordNgramLength:      eng.Featurizer.WordNgramLength,
			CharNgramLength:      eng.Featurizer.CharNgramLength,
			FixZero:              eng.MinMax.FixZero,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load returns the defaults, overlaid with the YAML file named by
// HAPPYMAIL_CONFIG (if set) and then with HAPPYMAIL_* environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("HAPPYMAIL_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.Data.TrainPath = getenv("HAPPYMAIL_TRAIN_DATA", cfg.Data.TrainPath)
	cfg.Output.ModelPath = getenv("HAPPYMAIL_MODEL_PATH", cfg.Output.ModelPath)
	cfg.Engine.Seed = getenvInt64("HAPPYMAIL_SEED", cfg.Engine.Seed)
	cfg.Engine.MaxIterations = int(getenvInt64("HAPPYMAIL_MAX_ITERATIONS", int64(cfg.Engine.MaxIterations)))
	cfg.Engine.L2 = getenvFloat("HAPPYMAIL_L2", cfg.Engine.L2)
	cfg.Log.Level = getenv("HAPPYMAIL_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.JSON = getenvBool("HAPPYMAIL_LOG_JSON", cfg.Log.JSON)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no run could use.
func (c Config) Validate() error {
	var errs []error
	if c.Data.TrainPath == "" {
		errs = append(errs, errors.New("data.train_path is empty"))
	}
	if len([]rune(c.Data.Separator)) != 1 {
		errs = append(errs, fmt.Errorf("data.separator %q must be one character", c.Data.Separator))
	}
	if c.Output.ModelPath == "" {
		errs = append(errs, errors.New("output.model_path is empty"))
	}
	if c.Engine.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("engine.max_iterations must be positive, got %d", c.Engine.MaxIterations))
	}
	if c.Engine.L2 < 0 {
		errs = append(errs, fmt.Errorf("engine.l2 must not be negative, got %v", c.Engine.L2))
	}
	if c.Engine.ConvergenceTolerance < 0 {
		errs = append(errs, fmt.Errorf("engine.convergence_tolerance must not be negative, got %v", c.Engine.ConvergenceTolerance))
	}
	if c.Engine.WordNgramLength < 0 || c.Engine.CharNgramLength < 0 {
		errs = append(errs, fmt.Errorf("engine n-gram lengths must not be negative (word=%d, char=%d)",
			c.Engine.WordNgramLength, c.Engine.CharNgramLength))
	} else if c.Engine.WordNgramLength == 0 && c.Engine.CharNgramLength == 0 {
		errs = append(errs, errors.New("engine.word_ngram_length and engine.char_ngram_length are both zero"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DatasetOptions returns the loader settings.
func (c Config) DatasetOptions() dataset.Options {
	return dataset.Options{
		HasHeader: c.Data.HasHeader,
		Separator: []rune(c.Data.Separator)[0],
	}
}

// EngineOptions maps the engine settings onto the pipeline stage options.
func (c Config) EngineOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.Featurizer.WordNgramLength = c.Engine.WordNgramLength
	opts.Featurizer.CharNgramLength = c.Engine.CharNgramLength
	opts.MinMax.FixZero = c.Engine.FixZero
	opts.Trainer.Seed = c.Engine.Seed
	opts.Trainer.L2 = c.Engine.L2
	opts.Trainer.MaxIterations = c.Engine.MaxIterations
	opts.Trainer.ConvergenceTolerance = c.Engine.ConvergenceTolerance
	return opts
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

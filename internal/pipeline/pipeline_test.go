package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/happymail/internal/artifact"
	"github.com/crimson-sun/happymail/internal/config"
	"github.com/crimson-sun/happymail/internal/dataset"
	"github.com/crimson-sun/happymail/internal/engine/testdata"
	"github.com/crimson-sun/happymail/internal/model"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	path, err := testdata.WriteCorpus(dir)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Data.TrainPath = path
	cfg.Output.ModelPath = filepath.Join(dir, "MLModel.zip")
	return cfg
}

func TestRun_TrainsAndSaves(t *testing.T) {
	cfg := testConfig(t)

	res, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 45, res.Rows)
	assert.ElementsMatch(t, []string{"happy", "sad", "angry"}, res.Labels)
	assert.Greater(t, res.Dim, 0)
	assert.Greater(t, res.Iterations, 0)
	assert.Equal(t, cfg.Output.ModelPath, res.ModelPath)

	m, schema, err := artifact.Load(cfg.Output.ModelPath)
	require.NoError(t, err)
	assert.True(t, schema.Equal(model.TrainingSchema()))

	p, err := m.Predict("I love this!")
	require.NoError(t, err)
	assert.Equal(t, "happy", p.PredictedLabel)
}

func TestRun_ArtifactsAreByteIdentical(t *testing.T) {
	cfg := testConfig(t)
	_, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(cfg.Output.ModelPath)
	require.NoError(t, err)

	_, err = New(cfg).Run(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(cfg.Output.ModelPath)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_MissingFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.TrainPath = filepath.Join(t.TempDir(), "missing.tsv")

	_, err := New(cfg).Run(context.Background())
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, statErr := os.Stat(cfg.Output.ModelPath)
	assert.True(t, os.IsNotExist(statErr), "no artifact on failure")
}

func TestRun_MalformedRow(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Data.TrainPath, []byte("h\tt\tl\nhappy\tonly two\n"), 0o644))

	_, err := New(cfg).Run(context.Background())
	assert.True(t, errors.Is(err, dataset.ErrMalformedRow))
}

func TestRun_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(cfg).Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

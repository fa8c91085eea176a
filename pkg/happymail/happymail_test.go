package happymail

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/happymail/internal/engine/testdata"
)

func trainCorpus(t *testing.T, opts ...Option) *Result {
	t.Helper()
	dir := t.TempDir()
	data, err := testdata.WriteCorpus(dir)
	require.NoError(t, err)

	opts = append([]Option{WithTrainData(data), WithModelPath(filepath.Join(dir, "MLModel.zip"))}, opts...)
	res, err := Train(context.Background(), opts...)
	require.NoError(t, err)
	return res
}

func TestTrainAndLoad(t *testing.T) {
	res := trainCorpus(t)
	assert.Equal(t, 45, res.Rows)
	assert.Greater(t, res.Features, 0)
	assert.GreaterOrEqual(t, res.MicroAccuracy, 0.9)

	m, err := Load(res.ModelPath)
	require.NoError(t, err)
	assert.Equal(t, res.Labels, m.Labels())
	assert.Equal(t, []string{"Sentiment", "SentimentText", "LoggedIn"}, m.Columns())

	p, err := m.Predict("I love this!")
	require.NoError(t, err)
	assert.Equal(t, "happy", p.Label)
	assert.Len(t, p.Scores, 3)
	for label, s := range p.Scores {
		assert.LessOrEqual(t, s, p.Scores["happy"], label)
	}

	var sum float32
	for _, s := range p.Score {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestPredictBatch(t *testing.T) {
	res := trainCorpus(t)
	m, err := Load(res.ModelPath)
	require.NoError(t, err)

	ps, err := m.PredictBatch([]string{"I love this!", "my heart is broken", "I hate this stupid edit"})
	require.NoError(t, err)
	require.Len(t, ps, 3)
	assert.Equal(t, "happy", ps[0].Label)
	assert.Equal(t, "sad", ps[1].Label)
	assert.Equal(t, "angry", ps[2].Label)
}

func TestTrain_Seed(t *testing.T) {
	a := trainCorpus(t, WithSeed(1))
	b := trainCorpus(t, WithSeed(7))
	assert.Equal(t, a.Labels, b.Labels)
	assert.Equal(t, a.Features, b.Features)
}

func TestTrain_MissingData(t *testing.T) {
	dir := t.TempDir()
	_, err := Train(context.Background(),
		WithTrainData(filepath.Join(dir, "missing.tsv")),
		WithModelPath(filepath.Join(dir, "MLModel.zip")),
	)
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "MLModel.zip"))
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.zip"))
	assert.Error(t, err)
}

package engine

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/happymail/internal/engine/labels"
	"github.com/crimson-sun/happymail/internal/engine/testdata"
	"github.com/crimson-sun/happymail/internal/engine/trainer"
	"github.com/crimson-sun/happymail/internal/model"
)

// newTestModel fits the default pipeline on the embedded corpus.
func newTestModel(t *testing.T) (*Model, []model.Record) {
	t.Helper()
	recs, err := testdata.LoadCorpus()
	require.NoError(t, err)

	m, err := New(DefaultOptions()).Fit(context.Background(), recs)
	require.NoError(t, err)
	return m, recs
}

func TestFit_PredictsOnlySeenLabels(t *testing.T) {
	m, recs := newTestModel(t)

	seen := map[string]bool{}
	for _, r := range recs {
		seen[r.Sentiment] = true
	}
	assert.Equal(t, len(seen), m.Labels().Len())

	preds, err := m.PredictBatch([]string{"I love this!", "zzz qqq", "", "stop it", "so lonely"})
	require.NoError(t, err)
	for _, p := range preds {
		assert.True(t, seen[p.PredictedLabel], "unexpected label %q", p.PredictedLabel)
		assert.Len(t, p.Score, m.Labels().Len())
	}
}

func TestPredict_Example(t *testing.T) {
	m, _ := newTestModel(t)

	p, err := m.Predict("I love this!")
	require.NoError(t, err)
	assert.Equal(t, "happy", p.PredictedLabel)

	happy, err := m.Labels().Key("happy")
	require.NoError(t, err)
	var sum float32
	for _, s := range p.Score {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
	assert.Equal(t, happy, slices.Index(p.Score, slices.Max(p.Score)))
}

func TestPredict_UnseenPhrasing(t *testing.T) {
	m, _ := newTestModel(t)

	tests := []struct {
		text string
		want string
	}{
		{"wonderful and great, love it", "happy"},
		{"so sad and lonely", "sad"},
		{"stupid awful idiot, I hate it", "angry"},
	}
	for _, tt := range tests {
		p, err := m.Predict(tt.text)
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.PredictedLabel, tt.text)
	}
}

func TestTransform_UnitIntervalAndIdempotent(t *testing.T) {
	m, _ := newTestModel(t)

	first := m.Transform("I love this!")
	second := m.Transform("I love this!")
	assert.True(t, first.Equal(second))
	assert.Equal(t, m.Featurizer().Dim(), first.Dim)
	assert.NotZero(t, first.NNZ())
	for _, x := range first.Values {
		assert.GreaterOrEqual(t, x, 0.0)
		assert.LessOrEqual(t, x, 1.0)
	}
}

func TestFit_Deterministic(t *testing.T) {
	a, recs := newTestModel(t)
	b, err := New(DefaultOptions()).Fit(context.Background(), recs)
	require.NoError(t, err)

	assert.Equal(t, a.Featurizer().Vocabulary(), b.Featurizer().Vocabulary())
	assert.Equal(t, a.Weights().Data(), b.Weights().Data())
}

func TestFit_SingleLabel(t *testing.T) {
	recs := []model.Record{
		{Sentiment: "happy", SentimentText: "I love this!", LoggedIn: "true"},
		{Sentiment: "happy", SentimentText: "great day", LoggedIn: "false"},
	}
	m, err := New(DefaultOptions()).Fit(context.Background(), recs)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Labels().Len())

	p, err := m.Predict("anything at all")
	require.NoError(t, err)
	assert.Equal(t, "happy", p.PredictedLabel)
	assert.Equal(t, []float32{1}, p.Score)
}

func TestFit_Empty(t *testing.T) {
	_, err := New(DefaultOptions()).Fit(context.Background(), nil)
	assert.True(t, errors.Is(err, trainer.ErrNoExamples))
}

func TestEvaluate_TrainingSet(t *testing.T) {
	m, recs := newTestModel(t)

	met, err := m.Evaluate(recs)
	require.NoError(t, err)
	assert.Equal(t, len(recs), met.Rows)
	assert.GreaterOrEqual(t, met.MicroAccuracy, 0.9)
	assert.GreaterOrEqual(t, met.MacroAccuracy, 0.9)
	assert.Greater(t, met.LogLossReduction, 0.0)

	var total int
	for _, row := range met.ConfusionMatrix {
		for _, n := range row {
			total += n
		}
	}
	assert.Equal(t, len(recs), total)
}

func TestEvaluate_UnknownLabel(t *testing.T) {
	m, _ := newTestModel(t)
	_, err := m.Evaluate([]model.Record{{Sentiment: "bored", SentimentText: "meh"}})
	assert.True(t, errors.Is(err, labels.ErrUnknownLabel))
}

func TestNewModel_ShapeMismatch(t *testing.T) {
	m, _ := newTestModel(t)
	other := labels.Fit([]string{"only"})
	_, err := NewModel(other, m.Featurizer(), m.Normalizer(), m.Weights())
	assert.Error(t, err)
}

func TestStages(t *testing.T) {
	s := Stages()
	assert.Equal(t, StageMapValueToKey, s[0])
	assert.Equal(t, StageMapKeyToValue, s[len(s)-1])
	assert.Less(t, slices.Index(s, StageNormalize), slices.Index(s, StageCache))
	assert.Less(t, slices.Index(s, StageCache), slices.Index(s, StageTrainer))
}

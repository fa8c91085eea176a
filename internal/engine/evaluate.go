package engine

import (
	"fmt"
	"math"

	"github.com/crimson-sun/happymail/internal/model"
)

// probEpsilon bounds probabilities away from zero in the log-loss.
const probEpsilon = 1e-15

// Metrics are multiclass evaluation results.
type Metrics struct {
	Rows             int
	MicroAccuracy    float64 // fraction of rows predicted correctly
	MacroAccuracy    float64 // mean per-class recall over classes present
	LogLoss          float64
	LogLossReduction float64 // relative to predicting the class prior
	// ConfusionMatrix[gold][predicted] counts rows by label key.
	ConfusionMatrix [][]int
}

// Evaluate scores labelled records against the model. A gold label the
// model never saw is an error.
func (m *Model) Evaluate(records []model.Record) (Metrics, error) {
	k := m.labels.Len()
	met := Metrics{Rows: len(records), ConfusionMatrix: make([][]int, k)}
	for i := range met.ConfusionMatrix {
		met.ConfusionMatrix[i] = make([]int, k)
	}
	if len(records) == 0 {
		return met, nil
	}

	counts := make([]int, k)
	var correct int
	var logLoss float64
	for i, r := range records {
		gold, err := m.labels.Key(r.Sentiment)
		if err != nil {
			return Metrics{}, fmt.Errorf("engine: evaluate row %d: %w", i, err)
		}
		pred, scores := m.weights.Predict(m.Transform(r.SentimentText))
		met.ConfusionMatrix[gold][pred]++
		counts[gold]++
		if pred == gold {
			correct++
		}
		logLoss -= math.Log(math.Max(scores[gold], probEpsilon))
	}

	n := float64(len(records))
	met.MicroAccuracy = float64(correct) / n
	met.LogLoss = logLoss / n

	var recallSum float64
	var present int
	var priorLoss float64
	for c, cnt := range counts {
		if cnt == 0 {
			continue
		}
		present++
		recallSum += float64(met.ConfusionMatrix[c][c]) / float64(cnt)
		p := float64(cnt) / n
		priorLoss -= p * math.Log(p)
	}
	met.MacroAccuracy = recallSum / float64(present)
	if priorLoss > 0 {
		met.LogLossReduction = (priorLoss - met.LogLoss) / priorLoss
	}
	return met, nil
}

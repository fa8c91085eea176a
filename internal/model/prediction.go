package model

// Prediction is the scored output for one piece of text.
type Prediction struct {
	PredictedLabel string    // decoded label string
	Score          []float32 // per-class probability, indexed by label key
}

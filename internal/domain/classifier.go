package domain

import "context"

// Prediction is a classifier verdict; Confidence is the winning class probability.
type Prediction struct {
	Sentiment  Sentiment
	Confidence float64
}

type ModelStatus struct {
	Loaded bool
	Name   string
	Device string
}

// BatchResult pairs one input of a batch with its outcome.
type BatchResult struct {
	Text       string
	Prediction Prediction
	Err        error
}

// Classifier scores review text. Predict returns ErrModelNotLoaded when no
// model is available and an *InferenceError when scoring itself fails.
type Classifier interface {
	Predict(ctx context.Context, text string) (Prediction, error)
	PredictBatch(ctx context.Context, texts []string) []BatchResult
	Status() ModelStatus
}

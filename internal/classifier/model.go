package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
)

const deviceCPU = "cpu"

// Model is a loaded linear checkpoint. It is immutable after Load and safe for
// concurrent use. A Model whose load failed reports Loaded=false and rejects
// every prediction with domain.ErrModelNotLoaded.
type Model struct {
	cp        *Checkpoint
	maxLength int
	batchSize int
}

var _ domain.Classifier = (*Model)(nil)

// Load reads the checkpoint at path (a file, or a directory holding model.json).
// When path does not exist the bundled checkpoint is used. maxLength caps the
// number of scored tokens; the smaller of it and the checkpoint's own limit wins.
//
// The returned Model is never nil: on error it is the unloaded Model, so the
// caller can keep serving health checks.
func Load(path string, maxLength, batchSize int) (*Model, error) {
	m := &Model{maxLength: maxLength, batchSize: max(batchSize, 1)}

	raw, source, bundled, err := readCheckpoint(path)
	if err != nil {
		return m, err
	}
	if bundled {
		slog.Warn("Model path not found, using bundled checkpoint", "path", path)
	}

	cp, err := ParseCheckpoint(raw)
	if err != nil {
		return m, fmt.Errorf("failed to load model from %s: %w", source, err)
	}

	if cp.MaxLength > 0 && (m.maxLength <= 0 || cp.MaxLength < m.maxLength) {
		m.maxLength = cp.MaxLength
	}
	m.cp = cp

	slog.Info("Model loaded", "name", cp.Name, "source", source, "tokens", len(cp.Weights), "max_length", m.maxLength)
	return m, nil
}

// NewModel wraps an already parsed checkpoint.
func NewModel(cp *Checkpoint, maxLength, batchSize int) *Model {
	return &Model{cp: cp, maxLength: maxLength, batchSize: max(batchSize, 1)}
}

func (m *Model) Status() domain.ModelStatus {
	if m.cp == nil {
		return domain.ModelStatus{Device: deviceCPU}
	}
	return domain.ModelStatus{Loaded: true, Name: m.cp.Name, Device: deviceCPU}
}

func (m *Model) Predict(ctx context.Context, text string) (domain.Prediction, error) {
	if m.cp == nil {
		return domain.Prediction{}, domain.ErrModelNotLoaded
	}
	if err := ctx.Err(); err != nil {
		return domain.Prediction{}, &domain.InferenceError{Model: m.cp.Name, Err: err}
	}

	logits := m.cp.Bias
	for _, tok := range Tokenize(text, m.maxLength) {
		w, ok := m.cp.Weights[tok]
		if !ok {
			continue
		}
		logits[0] += w[0]
		logits[1] += w[1]
	}

	probs := softmax(logits)
	if math.IsNaN(probs[0]) || math.IsNaN(probs[1]) {
		return domain.Prediction{}, &domain.InferenceError{Model: m.cp.Name, Err: fmt.Errorf("non-finite logits %v", logits)}
	}

	// Ties go to class 0.
	best := 0
	if probs[1] > probs[0] {
		best = 1
	}

	return domain.Prediction{Sentiment: m.cp.Labels[best], Confidence: probs[best]}, nil
}

func (m *Model) PredictBatch(ctx context.Context, texts []string) []domain.BatchResult {
	results := make([]domain.BatchResult, 0, len(texts))
	for chunk := range slices.Chunk(texts, m.batchSize) {
		for _, text := range chunk {
			p, err := m.Predict(ctx, text)
			results = append(results, domain.BatchResult{Text: text, Prediction: p, Err: err})
		}
	}
	return results
}

func softmax(logits [2]float64) [2]float64 {
	hi := math.Max(logits[0], logits[1])
	e0 := math.Exp(logits[0] - hi)
	e1 := math.Exp(logits[1] - hi)
	sum := e0 + e1
	return [2]float64{e0 / sum, e1 / sum}
}

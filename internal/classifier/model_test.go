package classifier

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
)

func loadBundled(t *testing.T) *Model {
	t.Helper()
	m, err := Load(filepath.Join(t.TempDir(), "missing"), 512, 16)
	require.NoError(t, err)
	return m
}

func TestLoad_MissingPathUsesBundled(t *testing.T) {
	m := loadBundled(t)

	status := m.Status()
	assert.True(t, status.Loaded)
	assert.Equal(t, "game-review-lexicon-v1", status.Name)
	assert.Equal(t, "cpu", status.Device)
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	cp := `{"name":"tiny","labels":["negative","positive"],"bias":[0,0],"weights":{"Yay":[-2,2]}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.json"), []byte(cp), 0o600))

	m, err := Load(dir, 512, 4)
	require.NoError(t, err)
	assert.Equal(t, "tiny", m.Status().Name)

	p, err := m.Predict(context.Background(), "yay")
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentPositive, p.Sentiment)
}

func TestLoad_CorruptCheckpoint(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{this is not json"},
		{"missing labels", `{"name":"x","bias":[0,0],"weights":{}}`},
		{"wrong label", `{"name":"x","labels":["negative","neutral"],"bias":[0,0],"weights":{}}`},
		{"short weight", `{"name":"x","labels":["negative","positive"],"bias":[0,0],"weights":{"a":[1]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "model.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))

			m, err := Load(path, 512, 16)
			require.Error(t, err)
			require.NotNil(t, m)
			assert.False(t, m.Status().Loaded)

			_, err = m.Predict(context.Background(), "anything")
			assert.ErrorIs(t, err, domain.ErrModelNotLoaded)
		})
	}
}

func TestPredict_KnownSamples(t *testing.T) {
	m := loadBundled(t)

	tests := []struct {
		text string
		want domain.Sentiment
	}{
		{"Terrible game, full of bugs", domain.SentimentNegative},
		{"Terrible game, full of bugs and disappointing gameplay.", domain.SentimentNegative},
		{"This game is absolutely amazing! Great graphics and gameplay.", domain.SentimentPositive},
		{"Absolutely loved it, a masterpiece", domain.SentimentPositive},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			p, err := m.Predict(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Sentiment)
			assert.Greater(t, p.Confidence, 0.5)
			assert.LessOrEqual(t, p.Confidence, 1.0)
		})
	}
}

func TestPredict_TieResolvesToNegative(t *testing.T) {
	m := loadBundled(t)

	p, err := m.Predict(context.Background(), "zzz qqq")
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentNegative, p.Sentiment)
	assert.InDelta(t, 0.5, p.Confidence, 1e-9)
}

func TestPredict_TruncatesLongInput(t *testing.T) {
	cp := &Checkpoint{
		Name:    "trunc",
		Labels:  [2]domain.Sentiment{domain.SentimentNegative, domain.SentimentPositive},
		Weights: map[string][2]float64{"good": {-1, 1}, "bad": {5, -5}},
	}
	m := NewModel(cp, 3, 1)

	p, err := m.Predict(context.Background(), "good good good bad")
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentPositive, p.Sentiment)
}

func TestPredict_VeryLongInputNotRejected(t *testing.T) {
	m := loadBundled(t)

	_, err := m.Predict(context.Background(), strings.Repeat("great ", 5000))
	assert.NoError(t, err)
}

func TestPredict_CancelledContext(t *testing.T) {
	m := loadBundled(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Predict(ctx, "great")
	assert.ErrorIs(t, err, domain.ErrInference)
}

func TestPredictBatch_PreservesOrder(t *testing.T) {
	m, err := Load("", 512, 2)
	require.NoError(t, err)

	texts := []string{"great", "terrible", "amazing", "boring", "fun"}
	results := m.PredictBatch(context.Background(), texts)

	require.Len(t, results, len(texts))
	want := []domain.Sentiment{
		domain.SentimentPositive, domain.SentimentNegative, domain.SentimentPositive,
		domain.SentimentNegative, domain.SentimentPositive,
	}
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, texts[i], r.Text)
		assert.Equal(t, want[i], r.Prediction.Sentiment)
	}
}

func TestPredictBatch_UnloadedModel(t *testing.T) {
	m := &Model{batchSize: 16}

	results := m.PredictBatch(context.Background(), []string{"a", "b"})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, domain.ErrModelNotLoaded)
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"it's", "a", "10", "10", "game"}, Tokenize("It's a 10/10 game!!", 0))
	assert.Equal(t, []string{"great", "graphics"}, Tokenize("  Great  graphics, 'and' more", 2))
	assert.Empty(t, Tokenize("!!! ...", 10))
}

func TestSoftmax(t *testing.T) {
	p := softmax([2]float64{1000, 0})
	assert.InDelta(t, 1.0, p[0], 1e-9)
	assert.InDelta(t, 1.0, p[0]+p[1], 1e-9)
}

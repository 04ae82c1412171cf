package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	json "github.com/goccy/go-json"
	"github.com/go-resty/resty/v2"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/platform/retry"
	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/platform/version"
)

const deviceRemote = "remote"

type RemoteConfig struct {
	Endpoint  string
	Timeout   time.Duration
	MaxLength int
	BatchSize int
	Retry     retry.Policy
}

// DefaultRetryPolicy backs off from 200ms up to 2s over three attempts.
func DefaultRetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:      3,
		InitialBackoff:   200 * time.Millisecond,
		MaxBackoff:       2 * time.Second,
		RateLimitBackoff: 2 * time.Second,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Retrying inference request", "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
}

// RemoteClient calls a Hugging Face style text-classification endpoint.
type RemoteClient struct {
	http      *resty.Client
	endpoint  string
	name      string
	maxLength int
	batchSize int
	policy    retry.Policy
	cb        circuitbreaker.CircuitBreaker[any]
}

var _ domain.Classifier = (*RemoteClient)(nil)

func NewRemoteClient(cfg RemoteConfig) (*RemoteClient, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid model endpoint %q", cfg.Endpoint)
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryPolicy()
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", version.UserAgent())
	client.JSONMarshal = json.Marshal
	client.JSONUnmarshal = json.Unmarshal

	cb := circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.5, 5, 30*time.Second).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "inference",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
		}).
		Build()

	return &RemoteClient{
		http:      client,
		endpoint:  cfg.Endpoint,
		name:      u.Host,
		maxLength: cfg.MaxLength,
		batchSize: max(cfg.BatchSize, 1),
		policy:    cfg.Retry,
		cb:        cb,
	}, nil
}

func (c *RemoteClient) Status() domain.ModelStatus {
	return domain.ModelStatus{Loaded: true, Name: c.name, Device: deviceRemote}
}

func (c *RemoteClient) Predict(ctx context.Context, text string) (domain.Prediction, error) {
	scores, err := c.classify(ctx, text, 1)
	if err != nil {
		return domain.Prediction{}, &domain.InferenceError{Model: c.name, Err: err}
	}

	p, err := pick(scores[0])
	if err != nil {
		return domain.Prediction{}, &domain.InferenceError{Model: c.name, Err: err}
	}
	return p, nil
}

// PredictBatch sends one request per chunk of BatchSize texts. A failed
// request fails every text of its chunk.
func (c *RemoteClient) PredictBatch(ctx context.Context, texts []string) []domain.BatchResult {
	results := make([]domain.BatchResult, 0, len(texts))
	for chunk := range slices.Chunk(texts, c.batchSize) {
		scores, reqErr := c.classify(ctx, chunk, len(chunk))
		for i, text := range chunk {
			r := domain.BatchResult{Text: text}
			err := reqErr
			if err == nil {
				r.Prediction, err = pick(scores[i])
			}
			if err != nil {
				r.Err = &domain.InferenceError{Model: c.name, Err: err}
			}
			results = append(results, r)
		}
	}
	return results
}

type inferenceRequest struct {
	Inputs     any                 `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	Truncation bool `json:"truncation"`
	MaxLength  int  `json:"max_length,omitempty"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("inference endpoint returned %d: %s", e.Code, e.Body)
}

// clientFault reports errors caused by the request rather than the endpoint.
func (e *statusError) clientFault() bool {
	return e.Code >= 400 && e.Code < 500 && retry.ClassifyStatus(e.Code) == retry.Stop
}

func (c *RemoteClient) classify(ctx context.Context, inputs any, n int) ([][]labelScore, error) {
	if !c.cb.TryAcquirePermit() {
		return nil, circuitbreaker.ErrOpen
	}

	req := inferenceRequest{
		Inputs:     inputs,
		Parameters: inferenceParameters{Truncation: true, MaxLength: c.maxLength},
	}

	body, err := retry.Do(ctx, c.policy, classifyError, func() ([]byte, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(req).
			Post(c.endpoint)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, &statusError{Code: resp.StatusCode(), Body: snippet(resp.String())}
		}
		return resp.Body(), nil
	})
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.clientFault() {
			c.cb.RecordSuccess()
		} else {
			c.cb.RecordError(err)
		}
		return nil, err
	}
	c.cb.RecordSuccess()

	return parseScores(body, n)
}

func classifyError(err error) retry.Action {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retry.Stop
	}
	var se *statusError
	if errors.As(err, &se) {
		return retry.ClassifyStatus(se.Code)
	}
	return retry.Retry
}

// parseScores accepts both response shapes: a list of score lists (one per
// input) or a flat list that is either every label for a single input or the
// top label for each input.
func parseScores(body []byte, n int) ([][]labelScore, error) {
	var nested [][]labelScore
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) == n {
		return nested, nil
	}

	var flat []labelScore
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("malformed inference response: %w", err)
	}

	switch {
	case n == 1 && len(flat) > 0:
		return [][]labelScore{flat}, nil
	case len(flat) == n:
		out := make([][]labelScore, n)
		for i, s := range flat {
			out[i] = []labelScore{s}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("inference response has %d results for %d inputs", len(flat), n)
	}
}

// pick returns the highest scoring label that maps to a sentiment.
func pick(scores []labelScore) (domain.Prediction, error) {
	var (
		best  domain.Prediction
		found bool
	)
	for _, s := range scores {
		sentiment, ok := mapLabel(s.Label)
		if !ok {
			continue
		}
		if s.Score < 0 || s.Score > 1 {
			return domain.Prediction{}, fmt.Errorf("score %v for label %q out of range", s.Score, s.Label)
		}
		if !found || s.Score > best.Confidence {
			best = domain.Prediction{Sentiment: sentiment, Confidence: s.Score}
			found = true
		}
	}
	if !found {
		return domain.Prediction{}, errors.New("inference response has no usable label")
	}
	return best, nil
}

func mapLabel(label string) (domain.Sentiment, bool) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "POSITIVE", "LABEL_1":
		return domain.SentimentPositive, true
	case "NEGATIVE", "LABEL_0":
		return domain.SentimentNegative, true
	default:
		return "", false
	}
}

func snippet(s string) string {
	const limit = 200
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

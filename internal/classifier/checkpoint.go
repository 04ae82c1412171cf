package classifier

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
)

// checkpointFile is looked up inside MODEL_PATH when it names a directory.
const checkpointFile = "model.json"

//go:embed bundled/model.json
var bundledCheckpoint []byte

const checkpointSchema = `{
  "type": "object",
  "required": ["name", "labels", "bias", "weights"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "labels": {
      "type": "array",
      "items": {"enum": ["negative", "positive"]},
      "minItems": 2,
      "maxItems": 2,
      "uniqueItems": true
    },
    "bias": {"type": "array", "items": {"type": "number"}, "minItems": 2, "maxItems": 2},
    "max_length": {"type": "integer", "minimum": 1},
    "weights": {
      "type": "object",
      "additionalProperties": {"type": "array", "items": {"type": "number"}, "minItems": 2, "maxItems": 2}
    }
  }
}`

var schema = mustCompileSchema(checkpointSchema)

func mustCompileSchema(s string) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("classifier: invalid checkpoint schema: %v", err))
	}
	return compiled
}

// Checkpoint is the on-disk form of a linear two-class model. Weights holds one
// [class0, class1] pair per token, in Labels order.
type Checkpoint struct {
	Name      string                `json:"name"`
	Labels    [2]domain.Sentiment   `json:"labels"`
	Bias      [2]float64            `json:"bias"`
	MaxLength int                   `json:"max_length"`
	Weights   map[string][2]float64 `json:"weights"`
}

// ParseCheckpoint validates raw against the checkpoint schema and decodes it.
func ParseCheckpoint(raw []byte) (*Checkpoint, error) {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("invalid checkpoint: %s", strings.Join(msgs, "; "))
	}

	var cp Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}

	// Lexicon lookups are done on lowercased tokens.
	weights := make(map[string][2]float64, len(cp.Weights))
	for token, w := range cp.Weights {
		weights[strings.ToLower(token)] = w
	}
	cp.Weights = weights

	return &cp, nil
}

// readCheckpoint resolves path to checkpoint bytes. A missing path selects
// the bundled checkpoint; bundled reports whether that happened.
func readCheckpoint(path string) (raw []byte, source string, bundled bool, err error) {
	if path == "" {
		return bundledCheckpoint, "bundled", true, nil
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return bundledCheckpoint, "bundled", true, nil
	}
	if err != nil {
		return nil, path, false, fmt.Errorf("failed to stat model path: %w", err)
	}

	file := path
	if info.IsDir() {
		file = filepath.Join(path, checkpointFile)
	}

	raw, err = os.ReadFile(file)
	if err != nil {
		return nil, file, false, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	return raw, file, false, nil
}

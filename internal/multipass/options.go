package multipass

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/partstream/catalog-extractor/internal/common"
)

// Options tunes a multi-pass run. Zero values fall back to the configured
// defaults via Normalize.
type Options struct {
	DPI           int     `json:"dpi"`
	MinConfidence float64 `json:"min_confidence"`
	ForceOCR      bool    `json:"force_ocr"`
}

const optionsSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"dpi": {"type": "integer", "minimum": 72, "maximum": 1200},
		"min_confidence": {"type": "number", "minimum": 0, "maximum": 100},
		"force_ocr": {"type": "boolean"}
	}
}`

var compiledOptionsSchema = jsonschema.MustCompileString("options.json", optionsSchema)

// ParseOptions validates raw options JSON against the schema and decodes it.
// An empty document yields the zero Options.
func ParseOptions(data []byte) (Options, error) {
	if len(data) == 0 {
		return Options{}, nil
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Options{}, fmt.Errorf("%w: %s", common.ErrInvalidInput, err)
	}
	if err := compiledOptionsSchema.Validate(doc); err != nil {
		return Options{}, fmt.Errorf("%w: %s", common.ErrInvalidInput, strings.TrimSpace(err.Error()))
	}
	var opts Options
	if err := json.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("%w: %s", common.ErrInvalidInput, err)
	}
	return opts, nil
}

// Normalize fills unset fields from the configured defaults.
func (o Options) Normalize(defaultDPI int, defaultMinConfidence float64) Options {
	if o.DPI <= 0 {
		o.DPI = defaultDPI
	}
	if o.MinConfidence <= 0 {
		o.MinConfidence = defaultMinConfidence
	}
	return o
}

package quiz

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// bankSchemaDefinition describes an importable question bank.
var bankSchemaDefinition = map[string]any{
	"type":     "object",
	"required": []any{"questions"},
	"properties": map[string]any{
		"questions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"question", "options", "correct_answer"},
				"properties": map[string]any{
					"question": map[string]any{"type": "string", "minLength": 1},
					"options": map[string]any{
						"type":                 "object",
						"minProperties":        MinOptions,
						"additionalProperties": false,
						"patternProperties": map[string]any{
							"^[A-D]$": map[string]any{"type": "string"},
						},
					},
					"correct_answer":    map[string]any{"type": "string", "enum": []any{"A", "B", "C", "D"}},
					"explanation":       map[string]any{"type": "string"},
					"difficulty":        map[string]any{"type": "string"},
					"topic":             map[string]any{"type": "string"},
					"certificate_level": map[string]any{"type": "string"},
				},
			},
		},
	},
}

var (
	bankSchemaOnce sync.Once
	bankSchema     *jsonschema.Schema
	bankSchemaErr  error
)

func compiledBankSchema() (*jsonschema.Schema, error) {
	bankSchemaOnce.Do(func() {
		// The compiler wants a plain decoded JSON value.
		raw, err := json.Marshal(bankSchemaDefinition)
		if err != nil {
			bankSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(raw, &def); err != nil {
			bankSchemaErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://question-bank.json"
		if err := c.AddResource(url, def); err != nil {
			bankSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		bankSchema, bankSchemaErr = c.Compile(url)
	})
	return bankSchema, bankSchemaErr
}

type bankFile struct {
	Questions []Question `json:"questions"`
}

// ImportQuestions reads a JSON question bank. The document must match the
// bank schema and every question must pass Check.
func ImportQuestions(r io.Reader) ([]Question, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	schema, err := compiledBankSchema()
	if err != nil {
		return nil, fmt.Errorf("compile question bank schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("question bank does not match schema: %w", err)
	}

	var bank bankFile
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	for i, q := range bank.Questions {
		if err := Check(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return bank.Questions, nil
}

// ExportQuestions writes questions in the import format.
func ExportQuestions(w io.Writer, qs []Question) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(bankFile{Questions: qs})
}

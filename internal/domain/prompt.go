package domain

import "errors"

// ErrTruncatedResponse is returned by providers when the model stopped at its
// output token limit, so the text is incomplete.
var ErrTruncatedResponse = errors.New("model response truncated at token limit")

// SchemaType is the JSON type of a schema node.
type SchemaType string

const (
	SchemaObject  SchemaType = "object"
	SchemaArray   SchemaType = "array"
	SchemaString  SchemaType = "string"
	SchemaInteger SchemaType = "integer"
)

// Schema is the subset of JSON Schema both providers understand. It is
// translated by each integration into its native response-schema type.
type Schema struct {
	Type                 SchemaType         `json:"type"`
	Description          string             `json:"description,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	PropertyOrder        []string           `json:"-"`
	Items                *Schema            `json:"items,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Enum                 []string           `json:"enum,omitempty"`
	Minimum              *float64           `json:"minimum,omitempty"`
	Maximum              *float64           `json:"maximum,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
}

// ResponseFormat asks the provider for JSON output conforming to Schema.
type ResponseFormat struct {
	Name   string
	Schema *Schema
}

// Prompt is a single provider request: a system instruction, the ordered
// conversation turns and an optional structured-output contract.
type Prompt struct {
	System      string
	Messages    []PromptMessage
	Format      *ResponseFormat
	Temperature *float64
}

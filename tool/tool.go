// Package tool defines the serialized tool-schema surface that hosts hand to
// the engine as side-channel context. Schemas are always sent alongside the
// conversation, so they count toward the service's input limit; tool
// execution and input validation stay with the host.
package tool

import "encoding/json"

// Schema describes one tool as the generative service sees it.
type Schema struct {
	// Name is the tool name (used in API calls)
	Name string `json:"name"`

	// Description is a human-readable description of what the tool does
	Description string `json:"description,omitempty"`

	// Input is the JSON Schema for the tool's input parameters
	Input InputSchema `json:"input_schema"`
}

// InputSchema defines the JSON Schema for a tool's input parameters
type InputSchema struct {
	// Type must be "object"
	Type string `json:"type"`

	// Properties defines the tool's parameters
	Properties map[string]Property `json:"properties,omitempty"`

	// Required lists the names of required parameters
	Required []string `json:"required,omitempty"`
}

// Property defines a single property in the tool schema
type Property struct {
	// Type is the JSON Schema type (string, number, boolean, array, object)
	Type string `json:"type"`

	// Description explains what this parameter is for
	Description string `json:"description,omitempty"`

	// Enum restricts the parameter to specific values
	Enum []string `json:"enum,omitempty"`

	// Items defines the schema for array items (when Type is "array")
	Items *Property `json:"items,omitempty"`

	// Properties defines nested object properties (when Type is "object")
	Properties map[string]Property `json:"properties,omitempty"`
}

// EstimatedSize returns the schema's serialized length in estimator units.
func (s Schema) EstimatedSize() int {
	data, err := json.Marshal(s)
	if err != nil {
		return len(s.Name) + len(s.Description)
	}
	return len(data)
}

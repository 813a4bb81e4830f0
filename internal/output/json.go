package output

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// JSONFormatter handles JSON output formatting
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format marshals any report as indented JSON
func (j *JSONFormatter) Format(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// YAMLFormatter handles YAML output formatting
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format marshals any report as YAML
func (y *YAMLFormatter) Format(v interface{}) ([]byte, error) {
	return yaml.Marshal(v)
}

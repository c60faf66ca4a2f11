package snippets

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/buger/jsonparser"
	"gopkg.in/yaml.v3"
)

// Format names a snippet document encoding.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown snippet format %q (want json or yaml)", s)
}

// FormatForPath picks the format from a file extension, falling back to
// FormatAuto.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatAuto
}

// Load reads and decodes a snippet document from disk.
func Load(path string, format Format) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snippets: %w", err)
	}
	if format == FormatAuto {
		format = FormatForPath(path)
	}
	set, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Decode parses a snippet document: a single mapping from qualified item
// path to string text. Key order is preserved and repeated keys are an
// error. FormatAuto treats input starting with `{` as JSON and anything else
// as YAML.
func Decode(data []byte, format Format) (*Set, error) {
	if format == FormatAuto {
		format = FormatYAML
		if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
			format = FormatJSON
		}
	}
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	}
	return nil, fmt.Errorf("unknown snippet format %q", format)
}

func decodeJSON(data []byte) (*Set, error) {
	set := New()
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.String {
			return fmt.Errorf("snippet %q: expected string value, got %s", key, dataType)
		}
		text, err := jsonparser.ParseString(value)
		if err != nil {
			return fmt.Errorf("snippet %q: %w", key, err)
		}
		return set.Add(string(key), text)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode JSON snippets: %w", err)
	}
	return set, nil
}

func decodeYAML(data []byte) (*Set, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode YAML snippets: %w", err)
	}
	set := New()
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return set, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to decode YAML snippets: line %d: expected a mapping", root.Line)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if value.Kind != yaml.ScalarNode || value.ShortTag() != "!!str" {
			return nil, fmt.Errorf("failed to decode YAML snippets: line %d: snippet %q: expected string value", value.Line, key.Value)
		}
		if err := set.Add(key.Value, value.Value); err != nil {
			return nil, fmt.Errorf("failed to decode YAML snippets: line %d: %w", key.Line, err)
		}
	}
	return set, nil
}

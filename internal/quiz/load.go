package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a quiz definition from a .json, .yaml or .yml file.
// It only parses; call validation on the result before publishing.
func LoadFile(path string) (Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Quiz{}, fmt.Errorf("read quiz file: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes data as JSON when ext is ".json" and as YAML otherwise.
func Parse(data []byte, ext string) (Quiz, error) {
	if strings.EqualFold(ext, ".json") {
		return parseJSON(data)
	}
	return parseYAML(data)
}

func parseJSON(data []byte) (Quiz, error) {
	var q Quiz
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&q); err != nil {
		return Quiz{}, fmt.Errorf("parse json: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Quiz{}, fmt.Errorf("parse json: multiple documents are not supported")
		}
		return Quiz{}, fmt.Errorf("parse json: %w", err)
	}
	return q, nil
}

// parseYAML decodes into a generic tree and re-encodes it as JSON so that
// answers and options go through the same type-directed decoding.
func parseYAML(data []byte) (Quiz, error) {
	var doc any
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return Quiz{}, fmt.Errorf("parse yaml: empty document")
		}
		return Quiz{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Quiz{}, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return Quiz{}, fmt.Errorf("parse yaml: %w", err)
	}
	buf, err := json.Marshal(jsonable(doc))
	if err != nil {
		return Quiz{}, fmt.Errorf("parse yaml: %w", err)
	}
	return parseJSON(buf)
}

// jsonable turns yaml maps with non-string keys (e.g. matching answers {0: 1}) into string-keyed maps.
func jsonable(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = jsonable(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = jsonable(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = jsonable(val)
		}
		return out
	default:
		return v
	}
}

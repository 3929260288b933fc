package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ParseFormData decodes a flat JSON or YAML object into string values.
// Numbers and booleans are stringified, null becomes the empty string and
// nested values are rejected. An empty document yields an empty map.
func ParseFormData(data []byte) (map[string]string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return map[string]string{}, nil
	}
	if trimmed[0] == '{' {
		return parseJSONValues(trimmed)
	}
	return parseYAMLValues(trimmed)
}

func parseJSONValues(data []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("source: parse values: %w", err)
	}
	out := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			out[key] = ""
		case string:
			out[key] = v
		case json.Number:
			out[key] = v.String()
		case bool:
			out[key] = strconv.FormatBool(v)
		default:
			return nil, fmt.Errorf("source: parse values: %q must be a scalar", key)
		}
	}
	return out, nil
}

func parseYAMLValues(data []byte) (map[string]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("source: parse values: %w", err)
	}
	out := map[string]string{}
	if len(doc.Content) == 0 {
		return out, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("source: parse values: expected a mapping")
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("source: parse values: %q must be a scalar", key.Value)
		}
		if value.Tag == "!!null" {
			out[key.Value] = ""
			continue
		}
		out[key.Value] = value.Value
	}
	return out, nil
}

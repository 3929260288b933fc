package field

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a definition document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// wireDefinition mirrors the backend field-definition payload.
type wireDefinition struct {
	Placeholder          string        `json:"placeholder" yaml:"placeholder"`
	Label                string        `json:"label" yaml:"label"`
	Description          string        `json:"description" yaml:"description"`
	InputType            string        `json:"inputType" yaml:"inputType"`
	Group                string        `json:"group" yaml:"group"`
	Order                *float64      `json:"order" yaml:"order"`
	IsMerged             bool          `json:"isMerged" yaml:"isMerged"`
	MergedFields         []string      `json:"mergedFields" yaml:"mergedFields"`
	Separator            string        `json:"separator" yaml:"separator"`
	IsRadioGroup         bool          `json:"isRadioGroup" yaml:"isRadioGroup"`
	RadioOptions         []RadioOption `json:"radioOptions" yaml:"radioOptions"`
	DateFormat           string        `json:"dateFormat" yaml:"dateFormat"`
	DigitFormat          string        `json:"digitFormat" yaml:"digitFormat"`
	LocationOutputFormat string        `json:"locationOutputFormat" yaml:"locationOutputFormat"`
	DataType             string        `json:"dataType" yaml:"dataType"`
	Options              []string      `json:"options" yaml:"options"`
}

// Decode parses a definition document in the given format.
func Decode(data []byte, format Format) (Set, error) {
	switch format {
	case FormatYAML:
		return DecodeYAML(data)
	case FormatJSON, "":
		return DecodeJSON(data)
	default:
		return Set{}, fmt.Errorf("field: unsupported format %q", format)
	}
}

// DecodeJSON parses either an object keyed by placeholder identifier or an
// array of definitions. Object key order is preserved.
func DecodeJSON(data []byte) (Set, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Set{}, errors.New("field: definition document is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return Set{}, fmt.Errorf("field: decode json: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return Set{}, errors.New("field: decode json: expected object or array")
	}

	var defs []Definition
	for dec.More() {
		key := ""
		if delim == '{' {
			keyTok, err := dec.Token()
			if err != nil {
				return Set{}, fmt.Errorf("field: decode json: %w", err)
			}
			key, _ = keyTok.(string)
		}
		var wire wireDefinition
		if err := dec.Decode(&wire); err != nil {
			return Set{}, fmt.Errorf("field: decode json definition %q: %w", key, err)
		}
		defs = append(defs, wire.definition(key))
	}
	if _, err := dec.Token(); err != nil {
		return Set{}, fmt.Errorf("field: decode json: %w", err)
	}
	return NewSet(defs...), nil
}

// DecodeYAML parses the YAML equivalent of DecodeJSON, preserving mapping
// order.
func DecodeYAML(data []byte) (Set, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Set{}, errors.New("field: definition document is empty")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Set{}, fmt.Errorf("field: decode yaml: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return Set{}, errors.New("field: decode yaml: empty document")
	}
	node := root.Content[0]

	var defs []Definition
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			var wire wireDefinition
			if err := node.Content[i+1].Decode(&wire); err != nil {
				return Set{}, fmt.Errorf("field: decode yaml definition %q: %w", key, err)
			}
			defs = append(defs, wire.definition(key))
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			var wire wireDefinition
			if err := item.Decode(&wire); err != nil {
				return Set{}, fmt.Errorf("field: decode yaml definition: %w", err)
			}
			defs = append(defs, wire.definition(""))
		}
	default:
		return Set{}, errors.New("field: decode yaml: expected mapping or sequence")
	}
	return NewSet(defs...), nil
}

func (w wireDefinition) definition(key string) Definition {
	placeholder := strings.TrimSpace(w.Placeholder)
	if placeholder == "" {
		placeholder = Placeholder(key)
	}

	def := Definition{
		Placeholder:          placeholder,
		Label:                strings.TrimSpace(w.Label),
		Description:          strings.TrimSpace(w.Description),
		InputType:            ParseInputType(w.InputType),
		Group:                strings.TrimSpace(w.Group),
		Order:                DefaultOrder,
		DateFormat:           strings.TrimSpace(w.DateFormat),
		DigitFormat:          strings.TrimSpace(w.DigitFormat),
		LocationOutputFormat: w.LocationOutputFormat,
		DataType:             strings.TrimSpace(w.DataType),
		Options:              append([]string(nil), w.Options...),
		Composition:          Plain{},
	}
	if w.Order != nil {
		def.Order = int(*w.Order)
	}

	switch {
	case w.IsMerged:
		fields := make([]string, 0, len(w.MergedFields))
		for _, f := range w.MergedFields {
			fields = append(fields, BareKey(f))
		}
		def.Composition = Merged{Fields: fields, Separator: w.Separator}
	case w.IsRadioGroup:
		options := make([]RadioOption, 0, len(w.RadioOptions))
		for _, opt := range w.RadioOptions {
			opt.Placeholder = BareKey(opt.Placeholder)
			children := make([]string, 0, len(opt.ChildFields))
			for _, child := range opt.ChildFields {
				children = append(children, BareKey(child))
			}
			opt.ChildFields = children
			options = append(options, opt)
		}
		def.Composition = RadioGroup{Options: options}
	}
	return def
}

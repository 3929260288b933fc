package field

import "strings"

// InputType enumerates the input controls a field can be rendered with.
type InputType string

const (
	InputTypeText     InputType = "text"
	InputTypeDate     InputType = "date"
	InputTypeSelect   InputType = "select"
	InputTypeDigit    InputType = "digit"
	InputTypeLocation InputType = "location"
	InputTypeRadio    InputType = "radio"
	InputTypeMerged   InputType = "merged"
	InputTypeOther    InputType = "other"
)

// DefaultOrder is assigned to definitions that do not declare an order so
// they sort after every explicitly ordered field.
const DefaultOrder = 999999

// ParseInputType maps a wire value onto an InputType. Empty values read as
// text and unknown values as other.
func ParseInputType(raw string) InputType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "text", "string", "textarea":
		return InputTypeText
	case "date":
		return InputTypeDate
	case "select", "dropdown":
		return InputTypeSelect
	case "digit", "number", "numeric":
		return InputTypeDigit
	case "location", "address":
		return InputTypeLocation
	case "radio", "radio-group", "radio_group", "radio-group-member":
		return InputTypeRadio
	case "merged", "merged-member", "merged_member":
		return InputTypeMerged
	default:
		return InputTypeOther
	}
}

// UnmarshalText normalizes decoded values through ParseInputType so JSON and
// YAML documents accept the same aliases and casing as field definitions.
func (t *InputType) UnmarshalText(text []byte) error {
	*t = ParseInputType(string(text))
	return nil
}

// Composition describes how a field's raw value maps onto placeholders. The
// concrete variants are Plain, Merged and RadioGroup.
type Composition interface {
	composition()
}

// Plain fields substitute their raw value into their own placeholder.
type Plain struct{}

// Merged fields hold a single delimited value covering several placeholders.
type Merged struct {
	Fields    []string
	Separator string
}

// RadioGroup fields hold the placeholder key of the selected option.
type RadioGroup struct {
	Options []RadioOption
}

func (Plain) composition()      {}
func (Merged) composition()     {}
func (RadioGroup) composition() {}

// RadioOption is one choice inside a radio group.
type RadioOption struct {
	Placeholder string   `json:"placeholder" yaml:"placeholder"`
	Label       string   `json:"label,omitempty" yaml:"label,omitempty"`
	Value       string   `json:"value,omitempty" yaml:"value,omitempty"`
	ChildFields []string `json:"childFields,omitempty" yaml:"childFields,omitempty"`
}

// Key returns the bare placeholder key of the option.
func (o RadioOption) Key() string {
	return BareKey(o.Placeholder)
}

// Definition describes one logical form field. Definitions are read-only for
// the lifetime of a fill session.
type Definition struct {
	Placeholder          string
	Label                string
	Description          string
	InputType            InputType
	Group                string
	Order                int
	DateFormat           string
	DigitFormat          string
	LocationOutputFormat string
	DataType             string
	Options              []string
	Composition          Composition
}

// Key returns the form-data key for the definition.
func (d Definition) Key() string {
	return BareKey(d.Placeholder)
}

// Mode returns the composition of the definition, treating nil as Plain.
func (d Definition) Mode() Composition {
	if d.Composition == nil {
		return Plain{}
	}
	return d.Composition
}

// Merged reports the merged composition when the field is merged.
func (d Definition) Merged() (Merged, bool) {
	m, ok := d.Composition.(Merged)
	return m, ok
}

// RadioGroup reports the radio composition when the field is a radio group.
func (d Definition) RadioGroup() (RadioGroup, bool) {
	r, ok := d.Composition.(RadioGroup)
	return r, ok
}

// IsDate reports whether the field carries a date value.
func (d Definition) IsDate() bool {
	return d.InputType == InputTypeDate
}

// BareKey strips the {{ }} wrapper from a placeholder. It is idempotent and
// tolerates keys that were never wrapped.
func BareKey(placeholder string) string {
	key := strings.TrimSpace(placeholder)
	key = strings.TrimPrefix(key, "{{")
	key = strings.TrimSuffix(key, "}}")
	return strings.TrimSpace(key)
}

// Placeholder wraps a bare key in the canonical {{key}} form.
func Placeholder(key string) string {
	return "{{" + BareKey(key) + "}}"
}

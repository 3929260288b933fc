package field

// DataType carries the defaults of a configurable data type that field
// definitions can reference by name.
type DataType struct {
	InputType            InputType `json:"inputType" yaml:"inputType"`
	DateFormat           string    `json:"dateFormat" yaml:"dateFormat"`
	DigitFormat          string    `json:"digitFormat" yaml:"digitFormat"`
	LocationOutputFormat string    `json:"locationOutputFormat" yaml:"locationOutputFormat"`
	Options              []string  `json:"options" yaml:"options"`
}

// Catalog maps data type names to their defaults.
type Catalog map[string]DataType

// Apply returns a new Set where each definition referencing a known data type
// has its empty format hints filled from the catalog. Definitions typed as
// text or other adopt the data type's input type. Compositions are untouched.
func (c Catalog) Apply(set Set) Set {
	if len(c) == 0 {
		return set
	}
	defs := set.All()
	for i, def := range defs {
		dt, ok := c[def.DataType]
		if !ok || def.DataType == "" {
			continue
		}
		if dt.InputType != "" && (def.InputType == "" || def.InputType == InputTypeText || def.InputType == InputTypeOther) {
			def.InputType = dt.InputType
		}
		if def.DateFormat == "" {
			def.DateFormat = dt.DateFormat
		}
		if def.DigitFormat == "" {
			def.DigitFormat = dt.DigitFormat
		}
		if def.LocationOutputFormat == "" {
			def.LocationOutputFormat = dt.LocationOutputFormat
		}
		if len(def.Options) == 0 && len(dt.Options) > 0 {
			def.Options = append([]string(nil), dt.Options...)
		}
		defs[i] = def
	}
	return NewSet(defs...)
}

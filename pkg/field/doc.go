// Package field describes the field definitions attached to a document
// template. A Definition names the placeholder it fills, its input type, the
// visual group it belongs to, and how its raw form value is composed: a plain
// value, a merged value split across several placeholders, or a radio group
// whose selection activates one option placeholder. The composition mode is
// decided once when the definition is decoded and never re-derived by callers.
//
// Definitions arrive from the backend as a JSON (or YAML) object keyed by the
// bare placeholder identifier. Decode preserves the document key order so
// downstream grouping can break ties by encounter order.
package field

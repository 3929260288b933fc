// Package preview renders live document previews. The Engine substitutes the
// current form values into a template containing {{key}} placeholders,
// expanding merged and radio fields into their member placeholders, formatting
// date fields, and marking the active field so the user sees where typing
// lands. Placeholders that no value claims are resolved by a case-insensitive
// fallback lookup or removed, so no token survives into the output.
//
// Rendering never fails: missing definitions, partial merged values, unmatched
// radio selections and unparseable dates all degrade to empty or passthrough
// text. The Coordinator decides when to render, coalescing bursts of value
// updates into a single render of the latest snapshot.
package preview

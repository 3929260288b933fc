// Package source loads the inputs of a preview: the document template, the
// field definitions and the optional label aliases.
//
// A Source names where a document lives (a file path, an fs.FS entry or an
// HTTP URL). Loader reads raw bytes for any Source and LoadBundle turns a
// template, definitions and aliases triple into a Bundle ready for the
// preview engine. Markdown templates are converted to HTML on load and
// templates may be sanitized before the core ever sees them.
//
// Loading is the only fallible stage of the pipeline; every error is wrapped
// with a "source:" prefix.
package source

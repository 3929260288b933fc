// Package page wraps a rendered preview fragment in a standalone HTML page
// with a legend of its sections. Pages are rendered with pongo2 from an
// embedded layout that callers may replace.
package page

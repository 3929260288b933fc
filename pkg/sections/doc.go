// Package sections groups visible field definitions into ordered, colored
// sections and derives the key to color map the preview engine highlights
// active fields with. Output is a pure function of the definitions, aliases
// and palette so the legend and the preview always agree on colors.
package sections

package sections

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Legend renders sections as a colored terminal listing, one swatch per
// section followed by its field labels.
func Legend(sections []Section) string {
	var b strings.Builder
	for i, section := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		swatch := lipgloss.NewStyle().
			Background(lipgloss.Color(section.Color.Background)).
			Foreground(lipgloss.Color(section.Color.Foreground)).
			Bold(true).
			Padding(0, 1)
		b.WriteString(swatch.Render(section.Label))
		b.WriteString("\n")

		item := lipgloss.NewStyle().
			Foreground(lipgloss.Color(section.Color.Foreground)).
			PaddingLeft(2)
		for _, entry := range section.Fields {
			line := entry.Label
			if entry.Label != entry.Key {
				line += " (" + entry.Key + ")"
			}
			b.WriteString(item.Render(line))
			b.WriteString("\n")
		}
	}
	return b.String()
}

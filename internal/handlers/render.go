package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/netvlyx/vlyx/internal/classify"
	"github.com/netvlyx/vlyx/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6366F1")).
			Bold(true).
			MarginBottom(1)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A9A9A9")).
			Underline(true)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5A5A5A")).
			Italic(true)

	kindStyles = map[classify.Kind]lipgloss.Style{
		classify.KindFSL:      lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true),
		classify.KindFast:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true),
		classify.KindPixel:    lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Bold(true),
		classify.KindCloud:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8B5CF6")).Bold(true),
		classify.KindTelegram: lipgloss.NewStyle().Foreground(lipgloss.Color("#0EA5E9")).Bold(true),
	}
	otherStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB")).Bold(true)
)

func styleFor(provider string) lipgloss.Style {
	if s, ok := kindStyles[classify.KindOf(provider)]; ok {
		return s
	}
	return otherStyle
}

// QualityLabel is the text shown for a quality group in selects
func QualityLabel(g models.QualityGroup) string {
	parts := []string{string(g.Resolution)}
	if g.IsHEVC {
		parts = append(parts, "HEVC")
	}
	if g.SizeText != "" && g.SizeText != "N/A" {
		parts = append(parts, g.SizeText)
	}
	label := strings.Join(parts, " · ")
	if g.RawLabel != "" {
		label += "  " + metaStyle.Render(g.RawLabel)
	}
	return label
}

// RenderLinks formats the final links of a resolution, one per line, colored
// by server kind.
func RenderLinks(title string, links []models.ProviderLink) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(headerStyle.Render(title))
		b.WriteString("\n")
	}
	for i, l := range links {
		fmt.Fprintf(&b, "%2d. %s %s %s\n",
			i+1,
			styleFor(l.Provider).Render(l.Provider),
			metaStyle.Render("("+l.MediaType+")"),
			urlStyle.Render(l.URL),
		)
	}
	return b.String()
}

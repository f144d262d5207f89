package util

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	lightGreen  = lipgloss.Color("#90EE90")
	gray        = lipgloss.Color("#A9A9A9")
	darkGray    = lipgloss.Color("#5A5A5A")
	brightGreen = lipgloss.Color("#00FF7F")
	indigo      = lipgloss.Color("#6366F1") // matches the logger prefix

	titleStyle = lipgloss.NewStyle().
			Foreground(indigo).
			Bold(true).
			PaddingBottom(1).
			MarginLeft(2)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(gray).
			Italic(true).
			PaddingBottom(1).
			MarginLeft(2)

	sectionTitleStyle = lipgloss.NewStyle().
				Foreground(lightGreen).
				Bold(true).
				PaddingLeft(2)

	optionStyle = lipgloss.NewStyle().
			Foreground(brightGreen).
			Bold(true).
			PaddingLeft(4)

	descriptionStyle = lipgloss.NewStyle().
				Foreground(gray).
				PaddingLeft(6).
				Width(80 - 6)

	separatorStyle = lipgloss.NewStyle().
			Foreground(darkGray)
)

// HelpText renders the usage message
func HelpText() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("vlyx - resolve download links from the terminal"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Browse the catalog, pick a quality and follow the unlock hops down to the final servers."))
	b.WriteString("\n\n")

	section := func(name string) {
		b.WriteString(separatorStyle.Render(strings.Repeat("─", 80)))
		b.WriteString("\n")
		b.WriteString(sectionTitleStyle.Render(name))
		b.WriteString("\n")
	}

	section("Usage:")
	addEntry(&b, "vlyx [options] [search terms]", "Interactive mode; without search terms the latest catalog page is listed.")
	addEntry(&b, "vlyx -serve", "Run the JSON API instead of the interactive flow.")
	b.WriteString("\n")

	section("Options:")
	addEntry(&b, "-config <file>", "Read settings from this file instead of ./vlyx.yml or ~/.config/vlyx/vlyx.yml.")
	addEntry(&b, "-base <url>", "Site base URL (site.base_url).")
	addEntry(&b, "-page <n>", "Catalog page to open.")
	addEntry(&b, "-direct", "Resolve provider links through the resolve API instead of the two unlock hops.")
	addEntry(&b, "-serve", "Start the HTTP API on server.port.")
	addEntry(&b, "-port <n>", "Override server.port.")
	addEntry(&b, "-debug", "Enable debug logging and detailed errors.")
	addEntry(&b, "-perf", "Print hop timings on exit.")
	addEntry(&b, "-version", "Show version information.")
	addEntry(&b, "-help, -h", "Show this help message.")
	b.WriteString("\n")

	section("Environment:")
	addEntry(&b, "VLYX_SITE_BASE_URL, VLYX_RESOLVER_MODE, ...", "Every setting can be overridden with VLYX_ and its upper-cased key.")
	b.WriteString("\n")

	return b.String()
}

// ShowHelp prints the usage message
func ShowHelp() {
	fmt.Print(HelpText())
}

func addEntry(b *strings.Builder, opt, desc string) {
	b.WriteString(optionStyle.Render("  " + opt))
	b.WriteString("\n")
	b.WriteString(descriptionStyle.Render("    " + desc))
	b.WriteString("\n")
}

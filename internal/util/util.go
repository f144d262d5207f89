// Package util holds the logger, terminal styling and input helpers shared
// by the command line flow.
package util

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/manifoldco/promptui"
)

var (
	IsDebug        bool
	minQueryLength = 2

	// Error styling
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4757")).
			Bold(true)

	debugErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF4757")).
			Padding(1, 2)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA726")).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF69B4")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)
)

// SetDebugMode sets the debug mode
func SetDebugMode(debug bool) {
	IsDebug = debug
}

// GetSearchQuery returns the search query from the command line arguments,
// or asks for one. An empty answer means "browse the front page".
func GetSearchQuery() (string, error) {
	if len(flag.Args()) > 0 {
		query := strings.TrimSpace(strings.Join(flag.Args(), " "))
		fmt.Println(successStyle.Render("Searching for: " + query))
		return query, validateQuery(query)
	}

	return AskSearchQuery()
}

// AskSearchQuery prompts for a search query
func AskSearchQuery() (string, error) {
	fmt.Println(promptStyle.Render("Search the catalog (leave empty to browse latest)"))
	return getUserInput("Title")
}

func validateQuery(query string) error {
	if query != "" && len(query) < minQueryLength {
		return fmt.Errorf("search query must have at least %d characters, you entered: %q", minQueryLength, query)
	}
	return nil
}

// ErrorHandler returns a styled error message; -debug shows the full chain
func ErrorHandler(err error) string {
	if IsDebug {
		header := errorStyle.Render("DEBUG ERROR")
		return fmt.Sprintf("%s\n%s", header, debugErrorStyle.Render(fmt.Sprintf("%+v", err)))
	}

	styledError := errorStyle.Render(fmt.Sprintf("✗ %v", err))
	styledHint := warningStyle.Render("run the program with -debug to see details")
	return fmt.Sprintf("%s\n%s", styledError, styledHint)
}

// Success renders a confirmation line
func Success(msg string) string {
	return successStyle.Render("✓ " + msg)
}

// getUserInput prompts for a line of text
func getUserInput(label string) (string, error) {
	// readline misrenders ANSI prompts on Windows consoles
	if runtime.GOOS == "windows" {
		return getSimpleInput(label)
	}

	prompt := promptui.Prompt{
		Label:    promptStyle.Render(label),
		Validate: validateQuery,
	}
	input, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func getSimpleInput(label string) (string, error) {
	fmt.Print(promptStyle.Render(label + ": "))

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	input = strings.TrimSpace(input)
	return input, validateQuery(input)
}

// SelectMenuItem shows a simple menu and returns the chosen index and item
func SelectMenuItem(label string, items []string) (int, string, error) {
	if runtime.GOOS == "windows" {
		return simpleSelectMenu(label, items)
	}

	prompt := promptui.Select{
		Label: promptStyle.Render(label),
		Items: items,
	}
	index, result, err := prompt.Run()
	if err != nil {
		return -1, "", err
	}
	return index, result, nil
}

func simpleSelectMenu(label string, items []string) (int, string, error) {
	fmt.Println(promptStyle.Render(label))
	for i, item := range items {
		fmt.Printf("%d. %s\n", i+1, item)
	}

	fmt.Print(promptStyle.Render(fmt.Sprintf("Enter selection (1-%d): ", len(items))))
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return -1, "", err
	}

	input = strings.TrimSpace(input)
	var selection int
	if _, err := fmt.Sscanf(input, "%d", &selection); err != nil || selection < 1 || selection > len(items) {
		return -1, "", fmt.Errorf("invalid selection: %s", input)
	}
	selection--
	return selection, items[selection], nil
}

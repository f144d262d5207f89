package handlers

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"

	"github.com/netvlyx/vlyx/internal/models"
	"github.com/netvlyx/vlyx/internal/util"
)

// ErrCancelled is returned when the user backs out of a prompt
var ErrCancelled = errors.New("selection cancelled")

// Prompter asks the user for every choice a session waits on
type Prompter interface {
	PickItem(entries []models.CatalogEntry) (int, error)
	PickMode() (models.DownloadMode, error)
	PickQuality(groups []models.QualityGroup) (int, error)
	PickEpisode(entries []models.EpisodeEntry) (int, error)
	PickServer(links []models.ProviderLink) (int, error)
	Next() (Action, error)
}

// Action is what the user wants to do after a resolution
type Action int

const (
	ActionAnother Action = iota
	ActionSearch
	ActionQuit
)

var nextActions = []string{"Resolve another title", "New search", "Quit"}

// TerminalPrompter asks through fuzzy finders and huh selects
type TerminalPrompter struct{}

func (TerminalPrompter) PickItem(entries []models.CatalogEntry) (int, error) {
	if len(entries) == 1 {
		return 0, nil
	}
	idx, err := fuzzyfinder.Find(
		entries,
		func(i int) string { return entries[i].Title },
		fuzzyfinder.WithPromptString("Select title: "),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i >= 0 && i < len(entries) {
				return fmt.Sprintf("%s\n\nPoster: %s", entries[i].Title, entries[i].PosterURL)
			}
			return ""
		}),
	)
	return idx, cancelled(err)
}

func (TerminalPrompter) PickMode() (models.DownloadMode, error) {
	var mode models.DownloadMode
	err := huh.NewSelect[models.DownloadMode]().
		Title("Download mode").
		Description("Single episodes or the whole season as one archive").
		Options(
			huh.NewOption("Episodes", models.ModeEpisode),
			huh.NewOption("Season pack", models.ModeBatch),
		).
		Value(&mode).
		Run()
	return mode, cancelled(err)
}

func (TerminalPrompter) PickQuality(groups []models.QualityGroup) (int, error) {
	if len(groups) == 1 {
		return 0, nil
	}
	opts := make([]huh.Option[int], 0, len(groups))
	for i, g := range groups {
		opts = append(opts, huh.NewOption(QualityLabel(g), i))
	}
	var idx int
	err := huh.NewSelect[int]().
		Title("Quality").
		Options(opts...).
		Value(&idx).
		Run()
	return idx, cancelled(err)
}

func (TerminalPrompter) PickEpisode(entries []models.EpisodeEntry) (int, error) {
	if len(entries) == 1 {
		return 0, nil
	}
	idx, err := fuzzyfinder.Find(
		entries,
		func(i int) string { return entries[i].Title() },
		fuzzyfinder.WithPromptString("Select the episode: "),
	)
	return idx, cancelled(err)
}

func (TerminalPrompter) PickServer(links []models.ProviderLink) (int, error) {
	if len(links) == 1 {
		return 0, nil
	}
	opts := make([]huh.Option[int], 0, len(links))
	for i, l := range links {
		opts = append(opts, huh.NewOption(l.Provider, i))
	}
	var idx int
	err := huh.NewSelect[int]().
		Title("Server").
		Options(opts...).
		Value(&idx).
		Run()
	return idx, cancelled(err)
}

func (TerminalPrompter) Next() (Action, error) {
	idx, _, err := util.SelectMenuItem("What next?", nextActions)
	if err != nil {
		return ActionQuit, cancelled(err)
	}
	return Action(idx), nil
}

func cancelled(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fuzzyfinder.ErrAbort) || errors.Is(err, huh.ErrUserAborted) || errors.Is(err, promptui.ErrInterrupt) {
		return ErrCancelled
	}
	return err
}

// Spin runs action behind a terminal spinner
func Spin(title string, action func()) {
	if err := spinner.New().Title(title).Type(spinner.Dots).Action(action).Run(); err != nil {
		util.Debug("spinner", "error", err)
	}
}

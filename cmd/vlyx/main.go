package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/netvlyx/vlyx/internal/api"
	"github.com/netvlyx/vlyx/internal/config"
	"github.com/netvlyx/vlyx/internal/handlers"
	"github.com/netvlyx/vlyx/internal/resolver"
	"github.com/netvlyx/vlyx/internal/scraper"
	"github.com/netvlyx/vlyx/internal/util"
	"github.com/netvlyx/vlyx/internal/version"
)

func main() {
	startAll := time.Now()

	// Define all flags in one place
	configFlag := flag.String("config", "", "path to a vlyx.yml settings file")
	baseFlag := flag.String("base", "", "site base URL")
	pageFlag := flag.Int("page", 1, "catalog page to open")
	directFlag := flag.Bool("direct", false, "unlock provider links through the resolve API")
	serveFlag := flag.Bool("serve", false, "run the HTTP API")
	portFlag := flag.Int("port", 0, "HTTP API port")
	debugFlag := flag.Bool("debug", false, "enable debug mode")
	perfFlag := flag.Bool("perf", false, "print hop timings on exit")
	versionFlag := flag.Bool("version", false, "show version information")
	helpFlag := flag.Bool("help", false, "show help message")
	altHelpFlag := flag.Bool("h", false, "show help message")

	flag.Parse()

	if *versionFlag || version.HasVersionArg() {
		version.ShowVersion()
		return
	}

	if *helpFlag || *altHelpFlag {
		util.ShowHelp()
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		exit(err)
	}

	// Command-line flags override the file
	if *baseFlag != "" {
		cfg.Site.BaseURL = *baseFlag
	}
	if *directFlag {
		cfg.Resolver.Mode = string(resolver.ModeDirect)
	}
	if *portFlag != 0 {
		cfg.Server.Port = *portFlag
	}

	util.SetDebugMode(*debugFlag || cfg.Log.Debug)
	util.InitLogger()
	util.PerfEnabled = *perfFlag

	if err := cfg.Validate(); err != nil {
		exit(err)
	}
	util.Debug("starting", "version", version.Version, "mode", cfg.Resolver.Mode, "base", cfg.Site.BaseURL)

	def, others, err := buildResolvers(cfg)
	if err != nil {
		exit(err)
	}
	util.Debug("boot complete", "elapsed", time.Since(startAll))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if *serveFlag {
		err = api.NewServer(cfg.Site.BaseURL, def, others...).Run(ctx, fmt.Sprintf(":%d", cfg.Server.Port))
	} else {
		err = runInteractive(ctx, cfg.Site.BaseURL, def, *pageFlag)
	}
	stop()

	if util.PerfEnabled {
		util.PrintReport()
	}
	if err != nil {
		exit(err)
	}
}

// buildResolvers returns the resolver of the configured mode, plus a direct
// resolver when a resolve API is configured but not selected.
func buildResolvers(cfg *config.Config) (*resolver.Resolver, []*resolver.Resolver, error) {
	mode, err := resolver.ParseMode(cfg.Resolver.Mode)
	if err != nil {
		return nil, nil, err
	}

	fetcher := scraper.NewHTTPFetcher(scraper.FetcherOptions{
		Client:    util.NewHTTPClient(cfg.HTTP.Timeout),
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
		MaxBody:   cfg.HTTP.MaxBody,
	})

	opts := []resolver.Option{
		resolver.WithOrigins(cfg.Origins()...),
		resolver.WithObserver(logFailures),
	}
	if cfg.Resolver.APIBase != "" {
		opts = append(opts, resolver.WithDirectResolver(scraper.NewDirectResolver(fetcher, cfg.Resolver.APIBase, cfg.Resolver.APIKey)))
	}

	def := resolver.New(fetcher, append(opts, resolver.WithMode(mode))...)
	var others []*resolver.Resolver
	switch {
	case mode == resolver.ModeDirect:
		others = append(others, resolver.New(fetcher, append(opts, resolver.WithMode(resolver.ModeTwoHop))...))
	case cfg.Resolver.APIBase != "":
		others = append(others, resolver.New(fetcher, append(opts, resolver.WithMode(resolver.ModeDirect))...))
	}
	return def, others, nil
}

func logFailures(t resolver.Transition) {
	if t.To == resolver.StateFailed {
		util.Warn("resolution failed", "session", t.SessionID, "stage", t.Stage, "reason", resolver.ReasonOf(t.Err))
	}
}

func runInteractive(ctx context.Context, baseURL string, r *resolver.Resolver, page int) error {
	if baseURL == "" {
		return errors.New("no site configured: set site.base_url or pass -base")
	}

	query, err := util.GetSearchQuery()
	if err != nil {
		return err
	}

	flow := handlers.NewFlow(r)
	for {
		action, err := flow.Run(ctx, scraper.CatalogURL(baseURL, query, page))
		switch {
		case errors.Is(err, handlers.ErrCancelled):
			return nil
		case err != nil:
			return err
		case action != handlers.ActionSearch:
			return nil
		}

		if query, err = util.AskSearchQuery(); err != nil {
			return err
		}
		page = 1
	}
}

func exit(err error) {
	fmt.Fprintln(os.Stderr, util.ErrorHandler(err))
	os.Exit(1)
}

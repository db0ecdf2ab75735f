package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"issuesearch/internal/backend"
	"issuesearch/internal/config"
	"issuesearch/internal/eventbus"
	"issuesearch/internal/obs"
	"issuesearch/internal/smartsearch"
	"issuesearch/internal/stream"
	"issuesearch/internal/ui"
)

type globalFlags struct {
	configPath string
	org        string
	backend    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	var query string

	root := &cobra.Command{
		Use:   "issuesearch",
		Short: "Search issues with recent searches and tag autocomplete",
		Long: `issuesearch runs a terminal issue search bar. Suggestions come from a fixed
set of query hints, the organization's recent searches and tag values served by
the configured backend (memory, sqlite, postgres or a remote issuesearch API).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), flags, query)
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default: user config dir)")
	root.PersistentFlags().StringVar(&flags.org, "org", "", "Organization slug, overrides the config")
	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "Backend: memory, sqlite, postgres or remote")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level, overrides the config")
	root.Flags().StringVarP(&query, "query", "q", "", "Initial query")

	root.AddCommand(newServeCmd(flags), newRecentCmd(flags), newTagsCmd(flags))
	return root
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(flags *globalFlags, bus eventbus.EventBus) (*config.Config, config.ConfigService, error) {
	svc := config.NewConfigService()
	if flags.configPath != "" {
		svc = config.NewConfigServiceAt(flags.configPath)
	}
	if bus != nil {
		svc = config.WithBus(svc, bus)
	}

	cfg, err := svc.Load()
	if err != nil {
		return nil, nil, err
	}
	if flags.org != "" {
		cfg.Organization = flags.org
	}
	if flags.backend != "" {
		cfg.Backend = flags.backend
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config %s: %w", svc.Path(), err)
	}
	return cfg, svc, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func runTUI(parent context.Context, flags *globalFlags, query string) error {
	ctx, cancel := signalContext(parent)
	defer cancel()

	bus := eventbus.New()
	defer bus.Close()

	cfg, _, err := loadConfig(flags, bus)
	if err != nil {
		return err
	}

	// stdout belongs to the terminal UI, so logs go to a file
	logFile, err := obs.OpenFile(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	obs.Init(cfg.LogLevel, logFile)
	logger := obs.Logger("main")

	be, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.Close(); err != nil {
			log.Error().Err(err).Msg("close backend")
		}
	}()

	bar, err := stream.New(stream.Options{
		API:            be.Store,
		Organization:   cfg.Organization,
		Features:       cfg.Capabilities(),
		SavedSearch:    cfg.SavedSearch,
		TagValueLoader: be.Tags,
		OnSidebarToggle: func() {
			logger.Debug().Msg("sidebar toggled")
		},
		RecentLimit: cfg.RecentLimit,
		Bus:         bus,
		Bar: smartsearch.Props{
			Query:         query,
			SupportedTags: be.TagKeys(ctx),
		},
	})
	if err != nil {
		return err
	}
	defer bar.Close()

	model := ui.NewModel(ctx, bus, cfg, bar)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	forward := func(e eventbus.DomainEvent) { p.Send(ui.EventMsg{Event: e}) }
	for _, t := range []eventbus.EventType{
		eventbus.EventRecentSearchesFetched,
		eventbus.EventRecentSearchSaved,
		eventbus.EventSidebarToggled,
		eventbus.EventError,
		eventbus.EventConfigSaved,
	} {
		unsubscribe := bus.Subscribe(t, forward)
		defer unsubscribe()
	}

	logger.Info().
		Str("organization", cfg.Organization).
		Str("backend", cfg.Backend).
		Strs("features", cfg.Features).
		Msg("starting UI")

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Msg("program failed")
		return fmt.Errorf("run program: %w", err)
	}
	logger.Info().Msg("UI exited normally")
	return nil
}

package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"optionskew/internal/cache"
	"optionskew/internal/config"
	"optionskew/internal/feed"
	"optionskew/internal/logging"
	"optionskew/internal/skew"
	"optionskew/internal/store"
	"optionskew/internal/venue"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Venue   venue.Client
	Session feed.Session
	Cache   *cache.Cache
	Store   store.HistoryStore
	Engine  *skew.Engine
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	venueClient := venue.NewTastytradeClient(venue.TastytradeConfig{
		BaseURL:  cfg.Venue.BaseURL,
		Login:    cfg.Credentials.Tastytrade.Login,
		Password: cfg.Credentials.Tastytrade.Password,
		Logger:   logger,
	})
	app.Venue = venueClient

	app.Session = feed.NewDXLinkSession(feed.DXLinkConfig{
		URL:        cfg.Feed.URL,
		BufferSize: cfg.Feed.BufferSize,
		Logger:     logger,
	}, venueClient.QuoteToken)

	app.Cache = cache.NewWithConfig(cache.Config{
		TTL:           cfg.Engine.CacheTTL(),
		SweepInterval: cfg.Engine.SweepInterval(),
	})

	// History is best-effort: commands that stream still work without it.
	dbPath := config.DefaultConfigDir() + "/skew.db"
	historyStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize history store, snapshots disabled")
	} else {
		app.Store = historyStore
		logger.Debug().Str("path", dbPath).Msg("History store initialized")
	}

	app.Engine = skew.NewEngine(app.Venue, app.Session, app.Cache, app.Store, logger, skew.Config{
		TargetDTE:    cfg.Engine.TargetDTE,
		Phase1Window: cfg.Engine.Phase1Window(),
		Phase2Window: cfg.Engine.Phase2Window(),
	})

	rootCmd := &cobra.Command{
		Use:   "skew",
		Short: "Options open-interest skew engine",
		Long: `skew computes the put/call open-interest skew for option chains.

It resolves the expiration nearest 30 days out, streams live greeks to find
the contracts around 20 delta, then streams open interest for a balanced
call/put set and reports the put-to-call ratio.

Use 'skew help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/optionskew)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newComputeCmd(app))
	rootCmd.AddCommand(newBatchCmd(app))
	rootCmd.AddCommand(newCacheCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("skew v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Engine")
	output.Printf("  Target DTE:      %d\n", cfg.Engine.TargetDTE)
	output.Printf("  Phase 1 Window:  %s\n", cfg.Engine.Phase1Window())
	output.Printf("  Phase 2 Window:  %s\n", cfg.Engine.Phase2Window())
	output.Printf("  Cache TTL:       %s\n", cfg.Engine.CacheTTL())
	output.Printf("  Sweep Interval:  %s\n", cfg.Engine.SweepInterval())
	if len(cfg.Engine.Watchlist) > 0 {
		output.Printf("  Watchlist:       %v\n", cfg.Engine.Watchlist)
	}
	output.Println()

	output.Bold("Venue")
	output.Printf("  Base URL:        %s\n", cfg.Venue.BaseURL)
	output.Println()

	output.Bold("Feed")
	if cfg.Feed.URL != "" {
		output.Printf("  URL:             %s\n", cfg.Feed.URL)
	} else {
		output.Printf("  URL:             %s\n", "(from quote token)")
	}
	output.Printf("  Buffer Size:     %d\n", cfg.Feed.BufferSize)

	return nil
}

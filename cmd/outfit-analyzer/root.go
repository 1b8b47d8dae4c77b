package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/ironsheep/outfit-analyzer/internal/catalog"
	"github.com/ironsheep/outfit-analyzer/internal/config"
	"github.com/ironsheep/outfit-analyzer/internal/garment"
	"github.com/ironsheep/outfit-analyzer/internal/logging"
	"github.com/ironsheep/outfit-analyzer/internal/outfit"
	"github.com/ironsheep/outfit-analyzer/internal/server"
)

// app carries the resolved configuration shared by all commands.
type app struct {
	envFile  string
	logLevel string
	logJSON  bool
	provider string

	cfg    *config.Config
	logger hclog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "outfit-analyzer",
		Short: "Analyze garment photos and recommend outfits",
		Long: `outfit-analyzer extracts dominant colors, style features and a coarse
garment category from a clothing photo, then composes monochromatic and
contrasting outfit recommendations from a product catalog.

Configuration comes from defaults, a .env file, OUTFIT_* environment
variables and flags, in increasing order of precedence.

Examples:
  # Serve the HTTP API on :8000
  outfit-analyzer serve

  # Run as an MCP server on stdio
  outfit-analyzer mcp

  # Analyze a single image
  outfit-analyzer analyze shirt.jpg --gender men`,
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", "", "env file to load (default .env if present)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "log as JSON lines")
	rootCmd.PersistentFlags().StringVar(&a.provider, "provider", "", "product search provider (shein, fallback)")

	rootCmd.SetVersionTemplate(versionString() + "\n")

	rootCmd.AddCommand(
		a.serveCmd(),
		a.mcpCmd(),
		a.analyzeCmd(),
		versionCmd(),
	)
	return rootCmd
}

// setup resolves configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = a.logJSON
	}
	if flags.Changed("provider") {
		cfg.Search.Provider = a.provider
	}
	if flags.Changed("addr") {
		cfg.HTTP.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("num-colors") {
		cfg.Analysis.NumColors, _ = flags.GetInt("num-colors")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	a.logger = logging.New(logging.Options{
		Level:  cfg.Log.Level,
		JSON:   cfg.Log.JSON,
		Output: cmd.ErrOrStderr(),
	})
	a.logger.Debug("configuration loaded", "provider", cfg.SearchProvider(),
		"addr", cfg.HTTP.Addr, "num_colors", cfg.Analysis.NumColors)
	return nil
}

// searcher builds the configured product-search provider.
func (a *app) searcher() catalog.Searcher {
	formatter := catalog.NewFormatter(catalog.DefaultPrices(), catalog.DefaultBrandStrip())

	if a.cfg.SearchProvider() == config.ProviderSHEIN {
		return catalog.NewClient(catalog.ClientConfig{
			BaseURL:   a.cfg.Search.BaseURL,
			APIKey:    a.cfg.Search.APIKey,
			Host:      a.cfg.Search.Host,
			Timeout:   a.cfg.Search.Timeout,
			UserAgent: catalog.UserAgentName + "/" + Version,
			Formatter: formatter,
			Logger:    a.logger.Named("shein"),
		})
	}
	return catalog.NewFallbackSearcher(formatter)
}

func (a *app) analyzer(searcher catalog.Searcher) *outfit.Analyzer {
	return outfit.New(outfit.Config{
		Searcher:     searcher,
		NumColors:    a.cfg.Analysis.NumColors,
		QueryTimeout: a.cfg.Search.Timeout,
		Logger:       a.logger.Named("analyzer"),
	})
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP analysis API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			api := server.NewAPI(server.APIConfig{
				Analyzer:       a.analyzer(a.searcher()),
				AllowedOrigins: a.cfg.HTTP.CORSOrigins,
				MaxUploadBytes: a.cfg.HTTP.MaxUploadBytes,
				Logger:         a.logger.Named("http"),
			})
			a.logger.Info("outfit-analyzer starting", "version", Version, "commit", GitCommit)
			return api.ListenAndServe(ctx, a.cfg.HTTP.Addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8000)")
	cmd.Flags().Int("num-colors", 0, "dominant colors to extract (default 5)")
	return cmd
}

func (a *app) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run as an MCP server on stdin/stdout",
		Long: `Run as an MCP server communicating via JSON-RPC over stdin/stdout.
Configure it in your MCP client; logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			searcher := a.searcher()
			srv := server.New(server.Config{
				Searcher:  searcher,
				Analyzer:  a.analyzer(searcher),
				NumColors: a.cfg.Analysis.NumColors,
				Version:   Version,
				Logger:    a.logger.Named("mcp"),
			})
			a.logger.Debug("mcp server starting", "version", Version, "built", BuildTime, "commit", GitCommit)
			return srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func (a *app) analyzeCmd() *cobra.Command {
	var gender string

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Analyze one image and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := garment.ParseGender(gender)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			result, err := a.analyzer(a.searcher()).Analyze(cmd.Context(), data, g)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&gender, "gender", string(garment.DefaultGender), "whose wear to recommend (women, men)")
	cmd.Flags().Int("num-colors", 0, "dominant colors to extract (default 5)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Version output needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}

func versionString() string {
	return fmt.Sprintf("outfit-analyzer %s\n  Build time: %s\n  Git commit: %s", Version, BuildTime, GitCommit)
}

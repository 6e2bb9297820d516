package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tokentrackr/internal/bot"
	"tokentrackr/internal/common"
	"tokentrackr/internal/config"
	"tokentrackr/internal/rsi"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	envFile  string
	logLevel string
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		log.Fatal().Err(err).Msg("tokentrackr stopped")
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "tokentrackr",
		Short:         "Discord bot for token awards, kill logs and RSI profile lookups",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file with environment variables")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	root.AddCommand(&cobra.Command{
		Use:   "initdb",
		Short: "Create the database tables and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			database := bot.CreateDatabaseBot(cfg.TokensDatabase(), cfg.KillsDatabase())
			return database.InitSchema()
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "lookup <rsi_handle>",
		Short: "Look up an RSI profile and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			scraper := rsi.NewScraper(rsi.NewRodLauncher(cfg.BrowserPath), cfg.RSIBaseURL, int64(cfg.LookupConcurrency))
			profile, err := scraper.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Handle: %s\nBio: %s\nAvatar: %s\nProfile: %s\n",
				profile.Handle, profile.Bio, profile.AvatarURL, profile.SourceURL)
			return nil
		},
	})

	return root
}

// Load the configuration and set up logging accordingly
func setup() (*config.Config, error) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)
	return cfg, nil
}

func serve(cmd *cobra.Command, args []string) error {

	cfg, err := setup()
	if err != nil {
		return err
	}

	// Database first, the token is only needed to connect
	database := bot.CreateDatabaseBot(cfg.TokensDatabase(), cfg.KillsDatabase())
	if err := database.InitSchema(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Profile lookups
	scraper := rsi.NewScraper(rsi.NewRodLauncher(cfg.BrowserPath), cfg.RSIBaseURL, int64(cfg.LookupConcurrency))
	limiter := common.NewRateLimiter([]common.Restriction{{Requests: cfg.LookupRate, Duration: cfg.LookupPeriod}})

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	b := bot.CreateBot(cfg.DiscordToken, cfg.GuildID, database, scraper, limiter)
	return b.Run(ctx)
}

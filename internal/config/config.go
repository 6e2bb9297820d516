package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var ErrNoToken = errors.New("bot token not found, please set DISCORD_BOT_TOKEN in the .env file")

// Config holds everything the bot reads from its environment
type Config struct {
	// Discord
	DiscordToken string
	GuildID      string

	// Storage
	DataDir string

	// Profile lookups
	BrowserPath       string
	RSIBaseURL        string
	LookupConcurrency int
	LookupRate        int
	LookupPeriod      time.Duration

	LogLevel string
}

// Load reads the configuration from the environment, after loading
// the provided env files if they exist
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil {
			log.Debug().Msg(fmt.Sprintf("No env file %s, reading from environment", file))
		}
	}

	cfg := &Config{
		DiscordToken: os.Getenv("DISCORD_BOT_TOKEN"),
		GuildID:      os.Getenv("GUILD_ID"),
		DataDir:      getEnvOrDefault("DATA_DIR", "."),
		BrowserPath:  os.Getenv("CHROMEDRIVER_PATH"),
		RSIBaseURL:   getEnvOrDefault("RSI_BASE_URL", "https://robertsspaceindustries.com/citizens/"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.LookupConcurrency, err = getPositiveInt("LOOKUP_CONCURRENCY", 2); err != nil {
		return nil, err
	}
	if cfg.LookupRate, err = getPositiveInt("LOOKUP_RATE", 10); err != nil {
		return nil, err
	}
	if cfg.LookupPeriod, err = time.ParseDuration(getEnvOrDefault("LOOKUP_PERIOD", "1m")); err != nil {
		return nil, fmt.Errorf("invalid LOOKUP_PERIOD: %w", err)
	}

	return cfg, nil
}

// Validate checks what is needed to connect to discord
func (cfg *Config) Validate() error {
	if cfg.DiscordToken == "" {
		return ErrNoToken
	}
	return nil
}

func (cfg *Config) TokensDatabase() string {
	return filepath.Join(cfg.DataDir, "tokens.db")
}

func (cfg *Config) KillsDatabase() string {
	return filepath.Join(cfg.DataDir, "kill_log.db")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getPositiveInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if value < 1 {
		return 0, fmt.Errorf("invalid %s: must be at least 1, got %d", key, value)
	}
	return value, nil
}

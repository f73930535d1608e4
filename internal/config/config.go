package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// TMDB
	TMDBAPIKey string

	// Schedule engine thresholds (day granularity, UTC)
	ScheduleDailyCap  int  // max items per generated schedule, negative = unlimited
	IdleHideDays      int  // hide idle shows from the schedule (default: 90)
	AutoAbandonDays   int  // auto-transition idle watching shows to abandoned (default: 180)
	NotStartedBacklog int  // unwatched aired episodes before an unstarted airing show is parked (default: 6)
	PickupAgainDays   int  // idle days before a show becomes a pick-up-again nudge (default: 14)
	WeeklyGapDays     int  // minimum gap between appearances for weekly-paced shows (default: 6)
	FastEpisodeLimit  int  // max episodes a fast-paced show contributes per run (default: 2)
	StrictHistory     bool // recompute watched state from raw history instead of the cached flag

	// Refresh
	EpisodeRefreshHours int // hours between TMDB episode refreshes (default: 12)

	// Server
	ServerPort string

	// Paths
	DatabaseFile string // $CONFIG_DIR/nextup.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("SCHEDULE_DAILY_CAP", -1)
	viper.SetDefault("IDLE_HIDE_DAYS", 90)
	viper.SetDefault("AUTO_ABANDON_DAYS", 180)
	viper.SetDefault("NOT_STARTED_BACKLOG", 6)
	viper.SetDefault("PICKUP_AGAIN_DAYS", 14)
	viper.SetDefault("WEEKLY_GAP_DAYS", 6)
	viper.SetDefault("FAST_EPISODE_LIMIT", 2)
	viper.SetDefault("STRICT_HISTORY", false)
	viper.SetDefault("EPISODE_REFRESH_HOURS", 12)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "nextup")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	databaseFile := viper.GetString("DATABASE_FILE")
	if databaseFile == "" {
		databaseFile = filepath.Join(configDir, "nextup.db")
	}

	config := &Config{
		// TMDB
		TMDBAPIKey: viper.GetString("TMDB_API_KEY"),

		// Schedule engine
		ScheduleDailyCap:  viper.GetInt("SCHEDULE_DAILY_CAP"),
		IdleHideDays:      viper.GetInt("IDLE_HIDE_DAYS"),
		AutoAbandonDays:   viper.GetInt("AUTO_ABANDON_DAYS"),
		NotStartedBacklog: viper.GetInt("NOT_STARTED_BACKLOG"),
		PickupAgainDays:   viper.GetInt("PICKUP_AGAIN_DAYS"),
		WeeklyGapDays:     viper.GetInt("WEEKLY_GAP_DAYS"),
		FastEpisodeLimit:  viper.GetInt("FAST_EPISODE_LIMIT"),
		StrictHistory:     viper.GetBool("STRICT_HISTORY"),

		// Refresh
		EpisodeRefreshHours: viper.GetInt("EPISODE_REFRESH_HOURS"),

		// Server
		ServerPort: viper.GetString("SERVER_PORT"),

		// Paths
		DatabaseFile: databaseFile,

		// Logging
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// Validate required fields
	if config.TMDBAPIKey == "" {
		return nil, fmt.Errorf("TMDB_API_KEY is required")
	}

	return config, nil
}

/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/mikeb26/donuts/internal"
)

type Config struct {
	// Discord Bot
	DiscordToken     string
	DiscordPublicKey string
	DiscordAppID     string
	// empty until the command has been registered once
	DonutCmdID string
	// sha256 of the last registered command definition
	DonutCmdHash string

	// Web Server
	ListenAddr string

	// Storage
	CacheBucket string
	HistoryURI  string

	// Defaults for pairing runs
	DefaultMeets int
	DefaultSeed  int64
}

// Load reads configuration from the environment, loading a .env file
// first if present. Discord settings are only checked by RequireDiscord.
func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken:     os.Getenv("DISCORD_TOKEN"),
		DiscordPublicKey: os.Getenv("DISCORD_PUBLIC_KEY"),
		DiscordAppID:     os.Getenv("DISCORD_APP_ID"),
		DonutCmdID:       os.Getenv("DONUTS_CMD_ID"),
		DonutCmdHash:     os.Getenv("DONUTS_CMD_HASH"),
		ListenAddr:       getEnvDefault("DONUTS_LISTEN_ADDR", ":8080"),
		CacheBucket:      getEnvDefault("DONUTS_CACHE_BUCKET", internal.DefaultCacheBucket),
		HistoryURI:       os.Getenv("DONUTS_HISTORY"),
	}

	var err error
	cfg.DefaultMeets, err = strconv.Atoi(getEnvDefault("DONUTS_MEETS", "1"))
	if err != nil {
		return nil, fmt.Errorf("DONUTS_MEETS: %w", err)
	}
	cfg.DefaultSeed, err = strconv.ParseInt(getEnvDefault("DONUTS_SEED", "1"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("DONUTS_SEED: %w", err)
	}

	return cfg, nil
}

// RequireDiscord returns an error naming the first missing Discord setting.
func (cfg *Config) RequireDiscord() error {
	if cfg.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.DiscordPublicKey == "" {
		return fmt.Errorf("DISCORD_PUBLIC_KEY is required")
	}
	if cfg.DiscordAppID == "" {
		return fmt.Errorf("DISCORD_APP_ID is required")
	}

	return nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

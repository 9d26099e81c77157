package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server
	ServerPort    string
	PublicBaseURL string // Base URL used when building public upload URLs

	// Admin bootstrap
	AdminEmail    string // Account created (with the admin role) on first start
	AdminPassword string // Only used when the account does not exist yet

	// Sessions
	SessionTTLHours int

	// Paths
	DatabaseFile string // $DATA_DIR/homietv.db
	UploadDir    string // $DATA_DIR/uploads

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SESSION_TTL_HOURS", 24*7)
	viper.SetDefault("LOG_LEVEL", "info")

	dataDir := viper.GetString("DATA_DIR")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".config", "homietv")
	} else {
		absPath, err := filepath.Abs(dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for DATA_DIR: %w", err)
		}
		dataDir = absPath
	}

	uploadDir := filepath.Join(dataDir, "uploads")
	for _, dir := range []string{dataDir, uploadDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	port := viper.GetString("SERVER_PORT")

	publicBaseURL := viper.GetString("PUBLIC_BASE_URL")
	if publicBaseURL == "" {
		publicBaseURL = "http://localhost:" + port
	}

	config := &Config{
		ServerPort:      port,
		PublicBaseURL:   publicBaseURL,
		AdminEmail:      viper.GetString("ADMIN_EMAIL"),
		AdminPassword:   viper.GetString("ADMIN_PASSWORD"),
		SessionTTLHours: viper.GetInt("SESSION_TTL_HOURS"),
		DatabaseFile:    filepath.Join(dataDir, "homietv.db"),
		UploadDir:       uploadDir,
		LogLevel:        viper.GetString("LOG_LEVEL"),
	}

	if config.AdminEmail == "" {
		return nil, fmt.Errorf("ADMIN_EMAIL is required")
	}

	return config, nil
}

package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	Media   MediaConfig   `mapstructure:"media"`
	AI      AIConfig      `mapstructure:"ai"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`      // json or text
	Output     string `mapstructure:"output"`      // stdout or file
	MaxSize    int    `mapstructure:"max_size"`    // megabytes
	MaxBackups int    `mapstructure:"max_backups"` // rotated files to keep
	MaxAge     int    `mapstructure:"max_age"`     // days
	Compress   bool   `mapstructure:"compress"`    // compress rotated files
}

type StorageConfig struct {
	DataDir         string `mapstructure:"data_dir"`          // settings.json and history.json live here
	MaxHistoryItems int    `mapstructure:"max_history_items"` // history list cap
}

type MediaConfig struct {
	TempDir         string `mapstructure:"temp_dir"`         // downloaded media lands here
	YtdlpPath       string `mapstructure:"ytdlp_path"`       // yt-dlp binary
	MaxAudioSizeMB  int    `mapstructure:"max_audio_size_mb"`
	FileTTLHours    int    `mapstructure:"file_ttl_hours"`    // janitor removes older temp files
	CleanupSchedule string `mapstructure:"cleanup_schedule"` // cron spec for the janitor
}

type AIConfig struct {
	BaseURL string `mapstructure:"base_url"` // Gemini API endpoint
}

func Load() *Config {
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("no config file found, using defaults")
		} else {
			log.Fatalf("failed to read config file: %v", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("failed to decode config: %v", err)
	}

	if err := validateConfig(&config); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}

	return &config
}

// setDefaults registers the default configuration.
func setDefaults() {
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", "5000")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.max_size", 100)
	viper.SetDefault("log.max_backups", 3)
	viper.SetDefault("log.max_age", 28)
	viper.SetDefault("log.compress", true)

	viper.SetDefault("storage.data_dir", "data")
	viper.SetDefault("storage.max_history_items", 50)

	viper.SetDefault("media.temp_dir", "tmp")
	viper.SetDefault("media.ytdlp_path", "yt-dlp")
	viper.SetDefault("media.max_audio_size_mb", 20)
	viper.SetDefault("media.file_ttl_hours", 24)
	viper.SetDefault("media.cleanup_schedule", "@hourly")

	viper.SetDefault("ai.base_url", "https://generativelanguage.googleapis.com")
}

// validateConfig checks the loaded configuration for obvious mistakes.
func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is not set")
	}
	if config.Storage.MaxHistoryItems <= 0 {
		return fmt.Errorf("storage.max_history_items must be positive")
	}
	if config.Media.MaxAudioSizeMB <= 0 {
		return fmt.Errorf("media.max_audio_size_mb must be positive")
	}
	return nil
}

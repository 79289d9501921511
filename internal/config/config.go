package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultOutputFormat is the release line template of the releases command.
const DefaultOutputFormat = "{{.Date}}  {{.Artist}} - {{.Name}} ({{.Type}})"

// Config holds application configuration
type Config struct {
	// muspy account. Password is only ever read from the environment
	// (MUSPY_PASSWORD) and never written by Save.
	Email    string
	Password string

	// API endpoint and HTTP behaviour
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64

	// Output format template for the releases command
	// Default: DefaultOutputFormat
	OutputFormat string

	// Maximum display width of a release line, 0 for unlimited
	OutputWidth int

	Log LogConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
	File  string
	JSON  bool
}

// Load reads configuration from .env, the config file and the environment
func Load() (*Config, error) {
	// A missing .env is fine
	_ = godotenv.Load()

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	v.AddConfigPath(GetConfigDir())
	v.AddConfigPath(".")

	// Set defaults
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("requests_per_second", 0)
	v.SetDefault("output_format", DefaultOutputFormat)
	v.SetDefault("output_width", 0)
	v.SetDefault("log.level", "info")

	// Read config file (optional - don't fail if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Read from environment variables, MUSPY_LOG_LEVEL for log.level
	v.SetEnvPrefix("MUSPY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("email")
	_ = v.BindEnv("password")
	_ = v.BindEnv("base_url")

	cfg := &Config{
		Email:             v.GetString("email"),
		Password:          os.Getenv("MUSPY_PASSWORD"),
		BaseURL:           v.GetString("base_url"),
		Timeout:           v.GetDuration("timeout"),
		RequestsPerSecond: v.GetFloat64("requests_per_second"),
		OutputFormat:      v.GetString("output_format"),
		OutputWidth:       v.GetInt("output_width"),
		Log: LogConfig{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
			JSON:  v.GetBool("log.json"),
		},
	}

	return cfg, nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	if dir := os.Getenv("MUSPY_CONFIG_DIR"); dir != "" {
		return dir
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(homeDir, ".config", "muspy")
}

// Save writes configuration to file. The password is not saved.
func (c *Config) Save() error {
	v := viper.New()

	configDir := GetConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	configFile := filepath.Join(configDir, "config.yaml")

	// Set values in viper
	v.Set("email", c.Email)
	if c.BaseURL != "" {
		v.Set("base_url", c.BaseURL)
	}
	v.Set("timeout", c.Timeout.String())
	v.Set("requests_per_second", c.RequestsPerSecond)
	v.Set("output_format", c.OutputFormat)
	v.Set("output_width", c.OutputWidth)
	v.Set("log.level", c.Log.Level)
	if c.Log.File != "" {
		v.Set("log.file", c.Log.File)
	}
	v.Set("log.json", c.Log.JSON)

	// Write to file
	return v.WriteConfigAs(configFile)
}

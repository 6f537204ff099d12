package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration. It is constructed once by
// Load and passed by value into the components that need it; nothing in
// this package keeps global state.
type Config struct {
	App        App        `mapstructure:"app"`
	AI         AI         `mapstructure:"ai"`
	Screenshot Screenshot `mapstructure:"screenshot"`
	Email      Email      `mapstructure:"email"`
	Server     Server     `mapstructure:"server"`
	Feeds      Feeds      `mapstructure:"feeds"`
}

// App holds general application configuration.
type App struct {
	NewsletterName string `mapstructure:"newsletter_name"`
	SiteURL        string `mapstructure:"site_url"`
	DataDir        string `mapstructure:"data_dir"`
	LogLevel       string `mapstructure:"log_level"`
}

// AI holds configuration for the generative content providers.
type AI struct {
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Perplexity PerplexityConfig `mapstructure:"perplexity"`
}

// GeminiConfig holds Google Gemini configuration for the search and
// verification stages.
type GeminiConfig struct {
	APIKey      string `mapstructure:"api_key"`
	SearchModel string `mapstructure:"search_model"`
	VerifyModel string `mapstructure:"verify_model"`
	Timeout     string `mapstructure:"timeout"`
}

// PerplexityConfig holds Perplexity configuration (OpenAI-compatible API).
type PerplexityConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	Timeout string `mapstructure:"timeout"`
}

// Screenshot holds embed screenshot service configuration.
type Screenshot struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout string `mapstructure:"timeout"`
}

// Email holds outbound email configuration. Resend is tried first when an
// API key is present, then SMTP.
type Email struct {
	ResendAPIKey string     `mapstructure:"resend_api_key"`
	FromEmail    string     `mapstructure:"from_email"`
	SMTP         SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig holds SMTP fallback configuration.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Server holds HTTP server configuration.
type Server struct {
	BindAddr string `mapstructure:"bind_addr"`
}

// Feeds holds RSS fetch configuration.
type Feeds struct {
	UserAgent string `mapstructure:"user_agent"`
	Timeout   string `mapstructure:"timeout"`
}

// Load reads configuration from an optional config file, the environment,
// and a .env file when one exists in the working directory.
func Load(configFile string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName(".newsletter")
		v.SetConfigType("yaml")
	}

	setDefaults(v)
	bindEnvironmentVariables(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return config, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.newsletter_name", "Your Sports Digest")
	v.SetDefault("app.site_url", "http://localhost:8000")
	v.SetDefault("app.data_dir", "data")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("ai.gemini.search_model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.verify_model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.timeout", "90s")

	v.SetDefault("ai.perplexity.model", "sonar")
	v.SetDefault("ai.perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("ai.perplexity.timeout", "60s")

	v.SetDefault("screenshot.base_url", "https://tweetpik.com/api/v2")
	v.SetDefault("screenshot.timeout", "30s")

	v.SetDefault("email.from_email", "newsletter@example.com")
	v.SetDefault("email.smtp.port", 587)

	v.SetDefault("server.bind_addr", ":8000")

	v.SetDefault("feeds.user_agent", "SportsDigest RSS Reader/1.0")
	v.SetDefault("feeds.timeout", "30s")
}

// bindEnvironmentVariables maps well-known environment variables onto
// config keys so credentials can be supplied without a config file.
func bindEnvironmentVariables(v *viper.Viper) {
	bindings := map[string]string{
		"ai.gemini.api_key":     "GEMINI_API_KEY",
		"ai.perplexity.api_key": "PERPLEXITY_API_KEY",
		"screenshot.api_key":    "TWEETPIK_API_KEY",
		"email.resend_api_key":  "RESEND_API_KEY",
		"email.from_email":      "FROM_EMAIL",
		"email.smtp.host":       "SMTP_HOST",
		"email.smtp.port":       "SMTP_PORT",
		"email.smtp.username":   "SMTP_USER",
		"email.smtp.password":   "SMTP_PASSWORD",
		"server.bind_addr":      "BIND_ADDR",
		"app.newsletter_name":   "NEWSLETTER_NAME",
		"app.site_url":          "SITE_URL",
		"app.data_dir":          "DATA_DIR",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			fmt.Printf("Warning: failed to bind %s: %v\n", env, err)
		}
	}
}

// ParseDuration parses a duration config string, falling back to the given
// default when the value is empty or invalid.
func ParseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

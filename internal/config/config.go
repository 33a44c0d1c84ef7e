// Package config loads coin's settings from the config file, COIN_
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/itsNik05/Coin-Tracker-01/internal/auth"
	"github.com/itsNik05/Coin-Tracker-01/internal/common"
	"github.com/itsNik05/Coin-Tracker-01/internal/llm"
	"github.com/itsNik05/Coin-Tracker-01/internal/model"
	"github.com/itsNik05/Coin-Tracker-01/internal/sheets"
)

// EnvPrefix is the prefix of environment overrides, e.g. COIN_DATABASE_PATH.
const EnvPrefix = "COIN"

// Config is the full application configuration.
type Config struct {
	Database   DatabaseConfig
	Logging    LoggingConfig
	Auth       AuthConfig
	Sheets     sheets.Config
	Categories []model.Category
	LLM        llm.Config
}

// DatabaseConfig locates the SQLite document store.
type DatabaseConfig struct {
	Path string
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// AuthConfig configures sign-in and the cached session.
type AuthConfig struct {
	SessionPath   string
	SessionSecret string
	Google        auth.GoogleConfig
	SessionTTL    time.Duration
	BcryptCost    int
}

// GoogleEnabled reports whether Google sign-in is configured.
func (a AuthConfig) GoogleEnabled() bool {
	return a.Google.ClientID != "" && a.Google.ClientSecret != ""
}

type categoryEntry struct {
	Name string `mapstructure:"name"`
	Icon string `mapstructure:"icon"`
	Type string `mapstructure:"type"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "$HOME/.local/share/coin/coin.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("llm.provider", llm.ProviderOpenAI)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", time.Second)
	v.SetDefault("llm.cache_ttl", 24*time.Hour)
	v.SetDefault("llm.rate_limit", 30)
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.max_tokens", 50)

	v.SetDefault("auth.session_path", "$HOME/.config/coin/session.jwt")
	v.SetDefault("auth.session_ttl", 30*24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", bcrypt.DefaultCost)
	v.SetDefault("auth.google.callback_addr", auth.DefaultCallbackAddr)

	d := sheets.DefaultConfig()
	v.SetDefault("sheets.token_file", "$HOME/.config/coin/sheets_token.json")
	v.SetDefault("sheets.spreadsheet_name", d.SpreadsheetName)
	v.SetDefault("sheets.time_zone", d.TimeZone)
	v.SetDefault("sheets.batch_size", d.BatchSize)
	v.SetDefault("sheets.retry_attempts", d.RetryAttempts)
	v.SetDefault("sheets.retry_delay", d.RetryDelay)
	v.SetDefault("sheets.enable_formatting", d.EnableFormatting)
}

// BindEnv makes every key overridable through COIN_ environment variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load builds a Config from v. Paths are expanded; provider keys fall back
// to the usual OPENAI_API_KEY / ANTHROPIC_API_KEY variables.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Database: DatabaseConfig{Path: ExpandPath(v.GetString("database.path"))},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		LLM: llm.Config{
			Provider:    strings.ToLower(v.GetString("llm.provider")),
			APIKey:      v.GetString("llm.api_key"),
			Model:       v.GetString("llm.model"),
			BaseURL:     v.GetString("llm.base_url"),
			MaxRetries:  v.GetInt("llm.max_retries"),
			RetryDelay:  v.GetDuration("llm.retry_delay"),
			CacheTTL:    v.GetDuration("llm.cache_ttl"),
			RateLimit:   v.GetInt("llm.rate_limit"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
		},
		Auth: AuthConfig{
			SessionPath:   ExpandPath(v.GetString("auth.session_path")),
			SessionSecret: v.GetString("auth.session_secret"),
			SessionTTL:    v.GetDuration("auth.session_ttl"),
			BcryptCost:    v.GetInt("auth.bcrypt_cost"),
			Google: auth.GoogleConfig{
				ClientID:     v.GetString("auth.google.client_id"),
				ClientSecret: v.GetString("auth.google.client_secret"),
				CallbackAddr: v.GetString("auth.google.callback_addr"),
			},
		},
		Sheets: sheets.Config{
			ClientID:           v.GetString("sheets.client_id"),
			ClientSecret:       v.GetString("sheets.client_secret"),
			TokenFile:          ExpandPath(v.GetString("sheets.token_file")),
			ServiceAccountPath: ExpandPath(v.GetString("sheets.service_account_path")),
			SpreadsheetID:      v.GetString("sheets.spreadsheet_id"),
			SpreadsheetName:    v.GetString("sheets.spreadsheet_name"),
			TimeZone:           v.GetString("sheets.time_zone"),
			CallbackAddr:       v.GetString("auth.google.callback_addr"),
			BatchSize:          v.GetInt("sheets.batch_size"),
			RetryAttempts:      v.GetInt("sheets.retry_attempts"),
			RetryDelay:         v.GetDuration("sheets.retry_delay"),
			EnableFormatting:   v.GetBool("sheets.enable_formatting"),
		},
	}

	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case llm.ProviderOpenAI:
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case llm.ProviderAnthropic:
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}

	// Sheets export reuses the Google sign-in client unless it has its own.
	if cfg.Sheets.ClientID == "" && cfg.Sheets.ClientSecret == "" {
		cfg.Sheets.ClientID = cfg.Auth.Google.ClientID
		cfg.Sheets.ClientSecret = cfg.Auth.Google.ClientSecret
	}
	// A service account replaces the user token.
	if cfg.Sheets.ServiceAccountPath != "" {
		cfg.Sheets.ClientID = ""
		cfg.Sheets.ClientSecret = ""
		cfg.Sheets.TokenFile = ""
	}

	if v.IsSet("categories") {
		var entries []categoryEntry
		if err := v.UnmarshalKey("categories", &entries); err != nil {
			return nil, fmt.Errorf("failed to read categories: %w", err)
		}
		for i, e := range entries {
			typ := model.CategoryType(strings.ToLower(e.Type))
			if typ == "" {
				typ = model.CategoryTypeExpense
				if strings.EqualFold(e.Name, model.CategoryIncome) {
					typ = model.CategoryTypeIncome
				}
			}
			cfg.Categories = append(cfg.Categories, model.Category{
				ID:   fmt.Sprintf("cat-%d", i+1),
				Name: e.Name,
				Icon: e.Icon,
				Type: typ,
			})
		}
	}

	return cfg, nil
}

// LLMEnabled reports whether categorization can be attempted.
func (c *Config) LLMEnabled() bool {
	return c.LLM.APIKey != ""
}

// Taxonomy returns the configured categories or the defaults.
func (c *Config) Taxonomy() (*model.Taxonomy, error) {
	if len(c.Categories) == 0 {
		return model.DefaultTaxonomy(), nil
	}
	return model.NewTaxonomy(c.Categories)
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required"))
	}

	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		errs = append(errs, fmt.Errorf("invalid log format: %s", c.Logging.Format))
	}

	switch c.LLM.Provider {
	case llm.ProviderOpenAI, llm.ProviderAnthropic:
	default:
		errs = append(errs, fmt.Errorf("unsupported LLM provider: %s", c.LLM.Provider))
	}
	if c.LLM.MaxRetries < 0 {
		errs = append(errs, errors.New("llm.max_retries cannot be negative"))
	}
	if c.LLM.RateLimit < 0 {
		errs = append(errs, errors.New("llm.rate_limit cannot be negative"))
	}

	if strings.TrimSpace(c.Auth.SessionPath) == "" {
		errs = append(errs, errors.New("auth.session_path is required"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("auth.session_ttl must be positive"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if (c.Auth.Google.ClientID == "") != (c.Auth.Google.ClientSecret == "") {
		errs = append(errs, errors.New("auth.google needs both client_id and client_secret"))
	}

	if _, err := c.Taxonomy(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

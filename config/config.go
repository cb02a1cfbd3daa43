package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"pairs.service/catalog"
	"pairs.service/core"
	m "pairs.service/models"
)

const envPrefix = "PAIRS"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Report    ReportConfig    `mapstructure:"report"`
	ZScore    ZScoreConfig    `mapstructure:"zscore"`
	Variation VariationConfig `mapstructure:"variation"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Universe  UniverseConfig  `mapstructure:"universe"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
}

type ProviderConfig struct {
	Name              string        `mapstructure:"name" validate:"oneof=yahoo alphavantage"`
	Host              string        `mapstructure:"host"`
	APIKey            string        `mapstructure:"api_key" validate:"required_if=Name alphavantage"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gte=0"` // 0 disables throttling
	Burst             int           `mapstructure:"burst" validate:"gte=1"`
	Concurrency       int           `mapstructure:"concurrency" validate:"gte=1,lte=64"`
}

type ReportConfig struct {
	Window          int     `mapstructure:"window" validate:"gte=2"`
	LookbackDays    int     `mapstructure:"lookback_days" validate:"gte=1"`
	Extremes        int     `mapstructure:"extremes" validate:"gte=1"`
	LowFitThreshold float64 `mapstructure:"low_fit_threshold" validate:"gte=0,lte=1"`
	Band            float64 `mapstructure:"band" validate:"gt=0"`
	Footer          string  `mapstructure:"footer"`
	Output          string  `mapstructure:"output" validate:"required"`
}

type ZScoreConfig struct {
	Window int    `mapstructure:"window" validate:"gte=2"`
	Output string `mapstructure:"output" validate:"required"`
}

type VariationConfig struct {
	Horizons []int  `mapstructure:"horizons" validate:"min=1,dive,gte=1"` // business days
	Output   string `mapstructure:"output" validate:"required"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// UniverseConfig replaces the built-in instrument universe when Instruments is not empty.
type UniverseConfig struct {
	Instruments   []InstrumentConfig `mapstructure:"instruments" validate:"dive"`
	BaseCurrency  string             `mapstructure:"base_currency"`
	FlagshipIndex string             `mapstructure:"flagship_index"`
	RateProxy     string             `mapstructure:"rate_proxy"`
}

type InstrumentConfig struct {
	ID       string `mapstructure:"id" validate:"required"`
	Category string `mapstructure:"category" validate:"oneof=currency index commodity rate equity"`
	Label    string `mapstructure:"label"`
}

// Load reads .env, then the config file (configPath, or config.yaml in the usual places),
// then PAIRS_ prefixed environment variables, and validates the result.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// no config file, defaults and environment only
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	defaults := core.DefaultSettings()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)

	v.SetDefault("provider.name", "yahoo")
	v.SetDefault("provider.host", "")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.timeout", 30*time.Second)
	v.SetDefault("provider.requests_per_second", 4.0)
	v.SetDefault("provider.burst", 2)
	v.SetDefault("provider.concurrency", 4)

	v.SetDefault("report.window", defaults.Window)
	v.SetDefault("report.lookback_days", defaults.LookbackDays)
	v.SetDefault("report.extremes", defaults.Extremes)
	v.SetDefault("report.low_fit_threshold", defaults.LowFitThreshold)
	v.SetDefault("report.band", defaults.Band)
	v.SetDefault("report.footer", defaults.Footer)
	v.SetDefault("report.output", "pairs_report.pdf")

	v.SetDefault("zscore.window", defaults.ZScoreWindow)
	v.SetDefault("zscore.output", "zscore_report.pdf")

	v.SetDefault("variation.horizons", defaults.VariationHorizons)
	v.SetDefault("variation.output", "variation_report.pdf")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("universe.base_currency", catalog.DefaultBaseCurrency)
	v.SetDefault("universe.flagship_index", catalog.DefaultFlagshipIndex)
	v.SetDefault("universe.rate_proxy", catalog.DefaultRateProxy)
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("error validating config: %w", err)
	}
	return nil
}

// Catalog builds the configured universe, or the built-in one.
func (c *Config) Catalog() (*catalog.Catalog, error) {
	if len(c.Universe.Instruments) == 0 {
		return catalog.Default(), nil
	}

	instruments := make([]m.Instrument, 0, len(c.Universe.Instruments))
	for _, ic := range c.Universe.Instruments {
		category, err := m.ParseCategory(ic.Category)
		if err != nil {
			return nil, fmt.Errorf("error parsing instrument %s: %w", ic.ID, err)
		}
		instruments = append(instruments, m.Instrument{ID: ic.ID, Category: category, Label: ic.Label})
	}

	cat, err := catalog.New(instruments, c.Universe.BaseCurrency, c.Universe.FlagshipIndex, c.Universe.RateProxy)
	if err != nil {
		return nil, fmt.Errorf("error building catalog: %w", err)
	}
	return cat, nil
}

func (c *Config) Settings() core.Settings {
	return core.Settings{
		Window:          c.Report.Window,
		LookbackDays:    c.Report.LookbackDays,
		Extremes:        c.Report.Extremes,
		LowFitThreshold: c.Report.LowFitThreshold,
		Band:            c.Report.Band,
		Footer:          c.Report.Footer,

		ZScoreWindow:      c.ZScore.Window,
		VariationHorizons: slices.Clone(c.Variation.Horizons),
	}
}

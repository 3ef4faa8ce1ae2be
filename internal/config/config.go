package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"MarketAnalyst/internal/catalog"
	"MarketAnalyst/internal/forecast"
	"MarketAnalyst/internal/model"
)

// Data source providers.
const (
	ProviderYahoo  = "yahoo"
	ProviderBarAPI = "barapi"
	ProviderMock   = "mock"
)

// Config holds all application configuration.
type Config struct {
	Analysis struct {
		Symbols    []string               `yaml:"symbols"`
		Names      []string               `yaml:"names"`
		MaxSymbols int                    `yaml:"max_symbols"`
		Period     string                 `yaml:"period"`
		Interval   string                 `yaml:"interval"`
		Indicators model.IndicatorOptions `yaml:"indicators"`
		// Fundamentals adds the company table to each report.
		Fundamentals bool `yaml:"fundamentals"`
	} `yaml:"analysis"`
	Forecast struct {
		Method     string `yaml:"method"`
		Horizon    int    `yaml:"horizon"`
		MinHorizon int    `yaml:"min_horizon"`
		MaxHorizon int    `yaml:"max_horizon"`
		// SeasonPeriods maps an interval to its smoothing season length in steps.
		SeasonPeriods map[string]int `yaml:"season_periods"`
		WeekdayOnly   []string       `yaml:"weekday_only"`
		Holidays      bool           `yaml:"holidays"`
	} `yaml:"forecast"`
	DataSource struct {
		Provider    string  `yaml:"provider"`
		BaseURL     string  `yaml:"base_url"`
		APIKey      string  `yaml:"api_key"`
		Concurrency int     `yaml:"concurrency"`
		MockPrice   float64 `yaml:"mock_price"`
	} `yaml:"data_source"`
	Schedule struct {
		ReportCron string `yaml:"report_cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Report struct {
		Path string `yaml:"path"`
	} `yaml:"report"`
	Server struct {
		// Port of the HTTP API; 0 disables it.
		Port int `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("ANALYST_SYMBOLS"); v != "" {
		c.Analysis.Symbols = splitList(v)
	}
	if v := os.Getenv("ANALYST_PERIOD"); v != "" {
		c.Analysis.Period = v
	}
	if v := os.Getenv("ANALYST_INTERVAL"); v != "" {
		c.Analysis.Interval = v
	}
	if v := os.Getenv("ANALYST_FUNDAMENTALS"); v != "" {
		c.Analysis.Fundamentals = v == "true" || v == "1"
	}
	if v := os.Getenv("FORECAST_METHOD"); v != "" {
		c.Forecast.Method = v
	}
	if v := os.Getenv("FORECAST_HORIZON"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FORECAST_HORIZON: %w", err)
		}
		c.Forecast.Horizon = n
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("BARAPI_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("BARAPI_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("REPORT_CRON"); v != "" {
		c.Schedule.ReportCron = v
	}
	if v := os.Getenv("REPORT_PATH"); v != "" {
		c.Report.Path = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		c.Schedule.RunOnStart = v == "true" || v == "1"
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SERVER_PORT: %w", err)
		}
		c.Server.Port = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if len(c.Analysis.Symbols) == 0 && len(c.Analysis.Names) == 0 {
		c.Analysis.Names = []string{"Apple", "Amazon", "NVIDIA"}
	}
	if c.Analysis.MaxSymbols == 0 {
		c.Analysis.MaxSymbols = catalog.DefaultMax
	}
	if c.Analysis.Period == "" {
		c.Analysis.Period = string(model.Period1y)
	}
	if c.Analysis.Interval == "" {
		c.Analysis.Interval = string(model.Interval1d)
	}

	def := forecast.DefaultConfig()
	if c.Forecast.MinHorizon == 0 {
		c.Forecast.MinHorizon = def.MinHorizon
	}
	if c.Forecast.MaxHorizon == 0 {
		c.Forecast.MaxHorizon = def.MaxHorizon
	}
	if c.Forecast.SeasonPeriods == nil {
		c.Forecast.SeasonPeriods = make(map[string]int, len(def.SeasonPeriods))
		for iv, p := range def.SeasonPeriods {
			c.Forecast.SeasonPeriods[string(iv)] = p
		}
	}
	if c.Forecast.WeekdayOnly == nil {
		c.Forecast.WeekdayOnly = []string{string(model.Interval1d)}
	}
	if c.Forecast.Method != "" && c.Forecast.Horizon == 0 {
		c.Forecast.Horizon = 30
	}

	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderYahoo
		if c.DataSource.BaseURL != "" {
			c.DataSource.Provider = ProviderBarAPI
		}
	}
	if c.DataSource.Concurrency == 0 {
		c.DataSource.Concurrency = 4
	}
	if c.DataSource.MockPrice == 0 {
		c.DataSource.MockPrice = 100
	}
	if c.Schedule.ReportCron == "" {
		c.Schedule.ReportCron = "0 30 22 * * 1-5"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that every field parses and is within range.
func (c *Config) Validate() error {
	if _, err := model.ParsePeriod(c.Analysis.Period); err != nil {
		return fmt.Errorf("analysis.period: %w", err)
	}
	if _, err := model.ParseInterval(c.Analysis.Interval); err != nil {
		return fmt.Errorf("analysis.interval: %w", err)
	}
	if c.Analysis.MaxSymbols < 1 {
		return fmt.Errorf("analysis.max_symbols must be positive")
	}
	if _, err := model.ParseForecastMethod(c.Forecast.Method); err != nil {
		return fmt.Errorf("forecast.method: %w", err)
	}
	if c.Forecast.MinHorizon < 1 || c.Forecast.MaxHorizon < c.Forecast.MinHorizon {
		return fmt.Errorf("forecast horizon bounds [%d, %d] are invalid", c.Forecast.MinHorizon, c.Forecast.MaxHorizon)
	}
	if h := c.Forecast.Horizon; h != 0 && (h < c.Forecast.MinHorizon || h > c.Forecast.MaxHorizon) {
		return fmt.Errorf("forecast.horizon %d outside [%d, %d]", h, c.Forecast.MinHorizon, c.Forecast.MaxHorizon)
	}
	for _, iv := range c.Forecast.WeekdayOnly {
		if _, err := model.ParseInterval(iv); err != nil {
			return fmt.Errorf("forecast.weekday_only: %w", err)
		}
	}
	for iv, p := range c.Forecast.SeasonPeriods {
		if _, err := model.ParseInterval(iv); err != nil {
			return fmt.Errorf("forecast.season_periods: %w", err)
		}
		if p < 0 {
			return fmt.Errorf("forecast.season_periods[%s] must not be negative", iv)
		}
	}
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderBarAPI:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for provider %q", ProviderBarAPI)
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, barapi, mock", c.DataSource.Provider)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Schedule.ReportCron != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.Schedule.ReportCron); err != nil {
			return fmt.Errorf("schedule.report_cron: %w", err)
		}
	}
	return nil
}

// Selection resolves the configured symbols and catalog names.
func (c *Config) Selection(cat *catalog.Catalog) catalog.Selection {
	return cat.Resolve(c.Analysis.Names, strings.Join(c.Analysis.Symbols, ","), c.Analysis.MaxSymbols)
}

// ForecastConfig returns the forecaster settings.
func (c *Config) ForecastConfig() forecast.Config {
	fc := forecast.Config{
		MinHorizon:    c.Forecast.MinHorizon,
		MaxHorizon:    c.Forecast.MaxHorizon,
		SeasonPeriods: make(map[model.Interval]int, len(c.Forecast.SeasonPeriods)),
		WeekdayOnly:   make(map[model.Interval]bool, len(c.Forecast.WeekdayOnly)),
		Holidays:      c.Forecast.Holidays,
	}
	for iv, p := range c.Forecast.SeasonPeriods {
		fc.SeasonPeriods[model.Interval(iv)] = p
	}
	for _, iv := range c.Forecast.WeekdayOnly {
		fc.WeekdayOnly[model.Interval(iv)] = true
	}
	return fc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

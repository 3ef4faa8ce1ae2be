package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketAnalyst/internal/catalog"
	"MarketAnalyst/internal/model"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ANALYST_SYMBOLS", "ANALYST_PERIOD", "ANALYST_FUNDAMENTALS", "ANALYST_INTERVAL", "FORECAST_METHOD", "FORECAST_HORIZON",
		"DATA_SOURCE", "BARAPI_BASE_URL", "BARAPI_API_KEY", "HTTPS_PROXY", "REPORT_CRON", "REPORT_PATH",
		"RUN_ON_START", "LOG_LEVEL", "SERVER_PORT",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"Apple", "Amazon", "NVIDIA"}, cfg.Analysis.Names)
	assert.Equal(t, "1y", cfg.Analysis.Period)
	assert.Equal(t, "1d", cfg.Analysis.Interval)
	assert.Equal(t, catalog.DefaultMax, cfg.Analysis.MaxSymbols)
	assert.Equal(t, ProviderYahoo, cfg.DataSource.Provider)
	assert.Equal(t, 4, cfg.DataSource.Concurrency)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Zero(t, cfg.Forecast.Horizon)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
analysis:
  symbols: [msft, sap.de]
  period: 5y
  interval: 1wk
  indicators:
    sma50: true
    rsi: true
forecast:
  method: seasonal
  horizon: 12
  holidays: true
data_source:
  base_url: http://bars.local
schedule:
  report_cron: "0 0 7 * * *"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"msft", "sap.de"}, cfg.Analysis.Symbols)
	assert.Nil(t, cfg.Analysis.Names)
	assert.Equal(t, model.IndicatorOptions{SMA50: true, RSI: true}, cfg.Analysis.Indicators)
	assert.Equal(t, ProviderBarAPI, cfg.DataSource.Provider, "base_url selects the bar API")
	assert.Equal(t, 12, cfg.Forecast.Horizon)

	sel := cfg.Selection(catalog.Default())
	assert.Equal(t, []string{"MSFT", "SAP.DE"}, sel.Symbols)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANALYST_SYMBOLS", "AAPL, ,NVDA")
	t.Setenv("ANALYST_PERIOD", "2y")
	t.Setenv("FORECAST_METHOD", "exponential_smoothing")
	t.Setenv("FORECAST_HORIZON", "20")
	t.Setenv("DATA_SOURCE", "mock")
	t.Setenv("RUN_ON_START", "true")
	t.Setenv("ANALYST_FUNDAMENTALS", "1")
	t.Setenv("REPORT_PATH", "/tmp/report.json")
	t.Setenv("SERVER_PORT", "8080")

	cfg, err := Load(writeConfig(t, "analysis:\n  period: 1mo\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"AAPL", "NVDA"}, cfg.Analysis.Symbols)
	assert.Equal(t, "2y", cfg.Analysis.Period)
	assert.Equal(t, "exponential_smoothing", cfg.Forecast.Method)
	assert.Equal(t, 20, cfg.Forecast.Horizon)
	assert.Equal(t, ProviderMock, cfg.DataSource.Provider)
	assert.True(t, cfg.Schedule.RunOnStart)
	assert.True(t, cfg.Analysis.Fundamentals)
	assert.Equal(t, "/tmp/report.json", cfg.Report.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_MethodWithoutHorizonDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("FORECAST_METHOD", "seasonal")
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Forecast.Horizon)
}

func TestLoad_BadInput(t *testing.T) {
	clearEnv(t)
	t.Setenv("FORECAST_HORIZON", "soon")
	_, err := Load(writeConfig(t, ""))
	require.Error(t, err)

	clearEnv(t)
	_, err = Load(writeConfig(t, "analysis: [unclosed"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"period", func(c *Config) { c.Analysis.Period = "7y" }},
		{"interval", func(c *Config) { c.Analysis.Interval = "2h" }},
		{"method", func(c *Config) { c.Forecast.Method = "arima" }},
		{"horizon above max", func(c *Config) { c.Forecast.Method = "seasonal"; c.Forecast.Horizon = 181 }},
		{"horizon below min", func(c *Config) { c.Forecast.Method = "seasonal"; c.Forecast.Horizon = 2 }},
		{"bounds", func(c *Config) { c.Forecast.MinHorizon = 10; c.Forecast.MaxHorizon = 5 }},
		{"weekday interval", func(c *Config) { c.Forecast.WeekdayOnly = []string{"1y"} }},
		{"season interval", func(c *Config) { c.Forecast.SeasonPeriods = map[string]int{"2d": 5} }},
		{"negative season", func(c *Config) { c.Forecast.SeasonPeriods = map[string]int{"1d": -1} }},
		{"provider", func(c *Config) { c.DataSource.Provider = "stooq" }},
		{"barapi without url", func(c *Config) { c.DataSource.Provider = ProviderBarAPI }},
		{"cron", func(c *Config) { c.Schedule.ReportCron = "every day" }},
		{"max symbols", func(c *Config) { c.Analysis.MaxSymbols = -1 }},
		{"port", func(c *Config) { c.Server.Port = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestForecastConfig(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, "forecast:\n  weekday_only: [1d, 1h]\n  max_horizon: 60\n  holidays: true\n"))
	require.NoError(t, err)

	fc := cfg.ForecastConfig()
	assert.Equal(t, 3, fc.MinHorizon)
	assert.Equal(t, 60, fc.MaxHorizon)
	assert.Equal(t, map[model.Interval]int{model.Interval1d: 5}, fc.SeasonPeriods)
	assert.True(t, fc.Holidays)
	assert.True(t, fc.WeekdayOnly[model.Interval1d])
	assert.True(t, fc.WeekdayOnly[model.Interval1h])
	assert.False(t, fc.WeekdayOnly[model.Interval1wk])
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ex "pairs.service/extensions"
	m "pairs.service/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("error writing config: %v", err)
	}
	return path
}

func Test_Config_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	ex.AssertAreEqual(t, "window", 756, cfg.Report.Window)
	ex.AssertAreEqual(t, "lookback", 365, cfg.Report.LookbackDays)
	ex.AssertAreEqual(t, "extremes", 15, cfg.Report.Extremes)
	ex.AssertAreEqual(t, "provider", "yahoo", cfg.Provider.Name)
	ex.AssertAreEqual(t, "write timeout", 5*time.Minute, cfg.Server.WriteTimeout)
	assert.InDelta(t, 0.1, cfg.Report.LowFitThreshold, 1e-12)
	assert.InDelta(t, 1.5, cfg.Report.Band, 1e-12)

	ex.AssertAreEqual(t, "zscore window", 20, cfg.ZScore.Window)
	ex.AssertAreEqual(t, "zscore output", "zscore_report.pdf", cfg.ZScore.Output)
	assert.Equal(t, []int{7, 45, 90}, cfg.Variation.Horizons)
	ex.AssertAreEqual(t, "variation output", "variation_report.pdf", cfg.Variation.Output)

	cat, err := cfg.Catalog()
	require.NoError(t, err)
	ex.AssertAreEqual(t, "base currency", "USDBRL=X", cat.BaseCurrency)
}

func Test_Config_SnapshotReports(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
zscore:
  window: 60
variation:
  horizons: [5, 20]
`))
	require.NoError(t, err)

	settings := cfg.Settings()
	ex.AssertAreEqual(t, "zscore window", 60, settings.ZScoreWindow)
	assert.Equal(t, []int{5, 20}, settings.VariationHorizons)
}

func Test_Config_RejectsInvalidHorizons(t *testing.T) {
	_, err := Load(writeConfig(t, `variation:
  horizons: [7, 0]
`))
	require.Error(t, err)

	_, err = Load(writeConfig(t, `zscore:
  window: 1
`))
	require.Error(t, err)
}

func Test_Config_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
report:
  window: 500
  footer: "Macro Desk"
provider:
  timeout: 45s
`)
	t.Setenv("PAIRS_REPORT_EXTREMES", "10")
	t.Setenv("PAIRS_LOGGING_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)

	ex.AssertAreEqual(t, "window", 500, cfg.Report.Window)
	ex.AssertAreEqual(t, "footer", "Macro Desk", cfg.Report.Footer)
	ex.AssertAreEqual(t, "extremes", 10, cfg.Report.Extremes)
	ex.AssertAreEqual(t, "timeout", 45*time.Second, cfg.Provider.Timeout)
	ex.AssertAreEqual(t, "format", "json", cfg.Logging.Format)

	settings := cfg.Settings()
	ex.AssertAreEqual(t, "settings window", 500, settings.Window)
	ex.AssertAreEqual(t, "settings extremes", 10, settings.Extremes)
}

func Test_Config_RejectsUnknownProvider(t *testing.T) {
	_, err := Load(writeConfig(t, "provider:\n  name: bloomberg\n"))
	require.Error(t, err)
}

func Test_Config_AlphaVantageRequiresKey(t *testing.T) {
	path := writeConfig(t, "provider:\n  name: alphavantage\n")

	_, err := Load(path)
	require.Error(t, err)

	t.Setenv("PAIRS_PROVIDER_API_KEY", "av-test-api-key")
	cfg, err := Load(path)
	require.NoError(t, err)
	ex.AssertAreEqual(t, "api key", "av-test-api-key", cfg.Provider.APIKey)
}

func Test_Config_RejectsTinyWindow(t *testing.T) {
	_, err := Load(writeConfig(t, "report:\n  window: 1\n"))
	require.Error(t, err)
}

func Test_Config_CustomUniverse(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
universe:
  base_currency: USDBRL=X
  flagship_index: ^BVSP
  rate_proxy: ^TNX
  instruments:
    - {id: USDBRL=X, category: currency, label: USD/BRL}
    - {id: ^BVSP, category: index, label: Bovespa}
    - {id: ^TNX, category: rate, label: Treasury 10Y}
    - {id: GC=F, category: commodity}
`))
	require.NoError(t, err)

	cat, err := cfg.Catalog()
	require.NoError(t, err)
	assert.Equal(t, []string{"GC=F"}, cat.Members(m.CategoryCommodity))
	ex.AssertAreEqual(t, "label fallback", "GC=F", cat.LabelOf("GC=F"))
}

func Test_Config_RejectsUnknownCategory(t *testing.T) {
	_, err := Load(writeConfig(t, `
universe:
  instruments:
    - {id: BTC-USD, category: crypto}
`))
	require.Error(t, err)
}

func Test_Config_NewLogger(t *testing.T) {
	logger, err := LoggingConfig{Level: "debug", Format: "json"}.NewLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	_, err = LoggingConfig{Level: "loud", Format: "text"}.NewLogger()
	require.Error(t, err)
}

package main

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	av "pairs.service/api/alpha_vantage"
	"pairs.service/api/yahoo"
	"pairs.service/config"
)

func Test_Commands_NewProvider(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := config.ProviderConfig{Name: "yahoo", Timeout: time.Second, RequestsPerSecond: 2, Burst: 1, Concurrency: 2}

	p, err := newProvider(cfg, logger)
	require.NoError(t, err)
	assert.IsType(t, &yahoo.YahooClient{}, p)

	cfg.Name = "alphavantage"
	cfg.APIKey = "key"
	p, err = newProvider(cfg, logger)
	require.NoError(t, err)
	assert.IsType(t, &av.AlphaVantageClient{}, p)

	cfg.Name = "bloomberg"
	_, err = newProvider(cfg, logger)
	require.Error(t, err)
}

func Test_Commands_RootHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := []string{}
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "generate")
	assert.Contains(t, names, "zscore")
	assert.Contains(t, names, "variation")
	assert.Contains(t, names, "serve")
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func Test_Commands_DocumentCommandsTakeAnOutputFlag(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"generate", "zscore", "variation"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		flag := cmd.Flags().ShorthandLookup("o")
		require.NotNil(t, flag, name)
		assert.Equal(t, "out", flag.Name)
	}
}

func Test_Commands_DocumentOutputDefaultsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Report:    config.ReportConfig{Output: "pairs.pdf"},
		ZScore:    config.ZScoreConfig{Output: "zscore.pdf"},
		Variation: config.VariationConfig{Output: "variation.pdf"},
	}
	for _, tc := range []struct {
		doc      toFile
		expected string
	}{
		{pairsDocument, "pairs.pdf"},
		{zScoreDocument, "zscore.pdf"},
		{variationDocument, "variation.pdf"},
	} {
		assert.Equal(t, tc.expected, tc.doc.output(cfg))
	}
}

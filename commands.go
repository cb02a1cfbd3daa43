package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"pairs.service/api"
	av "pairs.service/api/alpha_vantage"
	"pairs.service/api/yahoo"
	"pairs.service/config"
	c "pairs.service/core"
	m "pairs.service/models"
	"pairs.service/server"
)

const shutdownTimeout = 10 * time.Second

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "pairs",
		Short:        "Pairwise regression residual, z-score and variation reports",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (default ./config.yaml)")

	root.AddCommand(
		newDocumentCommand(&configPath, pairsDocument),
		newDocumentCommand(&configPath, zScoreDocument),
		newDocumentCommand(&configPath, variationDocument),
		newServeCommand(&configPath),
	)
	return root
}

// toFile writes one kind of document to a file, output is the configured default path.
type toFile struct {
	use, short string
	output     func(cfg *config.Config) string
	generate   func(sc *c.ServiceContext, ctx context.Context, path string) (*m.ReportSummary, error)
}

var (
	pairsDocument = toFile{
		use:      "generate",
		short:    "Generate the pair residual report into a pdf file",
		output:   func(cfg *config.Config) string { return cfg.Report.Output },
		generate: (*c.ServiceContext).GenerateToFile,
	}
	zScoreDocument = toFile{
		use:      "zscore",
		short:    "Generate the portfolio z-score report into a pdf file",
		output:   func(cfg *config.Config) string { return cfg.ZScore.Output },
		generate: (*c.ServiceContext).GenerateZScoreToFile,
	}
	variationDocument = toFile{
		use:      "variation",
		short:    "Generate the asset variation report into a pdf file",
		output:   func(cfg *config.Config) string { return cfg.Variation.Output },
		generate: (*c.ServiceContext).GenerateVariationToFile,
	}
)

func newDocumentCommand(configPath *string, doc toFile) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   doc.use,
		Short: doc.short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, sc, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			if out == "" {
				out = doc.output(cfg)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, err := doc.generate(sc, ctx, out)
			if err != nil {
				return err
			}

			sc.Logger.WithFields(logrus.Fields{
				"run_id": summary.RunID,
				"report": summary.Kind,
				"output": out,
				"pages":  summary.Pages,
			}).Info("report written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default from config)")
	return cmd
}

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the reports over http",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, sc, err := bootstrap(*configPath)
			if err != nil {
				return err
			}

			// listen for interrupt and term signals
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := server.GetHttpServer(cfg.Server, sc, sc.Logger)

			errs := make(chan error, 1)
			go func() {
				sc.Logger.WithField("addr", s.Addr).Info("starting pairs server")
				if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errs <- err
				}
				close(errs)
			}()

			select {
			case err := <-errs:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			sc.Logger.Info("received shutdown signal, shutting down gracefully")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := s.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown error: %w", err)
			}

			sc.Logger.Info("server stopped successfully")
			return nil
		},
	}
}

// bootstrap loads the configuration and wires the service context.
func bootstrap(configPath string) (*config.Config, *c.ServiceContext, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		return nil, nil, err
	}

	cat, err := cfg.Catalog()
	if err != nil {
		return nil, nil, err
	}

	provider, err := newProvider(cfg.Provider, logger)
	if err != nil {
		return nil, nil, err
	}

	return cfg, &c.ServiceContext{
		Provider: provider,
		Catalog:  cat,
		Logger:   logger,
		Settings: cfg.Settings(),
	}, nil
}

func newProvider(cfg config.ProviderConfig, logger logrus.FieldLogger) (c.SeriesProvider, error) {
	bulk := api.BulkOptions{Concurrency: cfg.Concurrency}
	if cfg.RequestsPerSecond > 0 {
		bulk.Limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}

	switch cfg.Name {
	case "yahoo":
		return yahoo.GetClient(cfg.Host, cfg.Timeout, bulk, logger), nil
	case "alphavantage":
		return av.GetClient(cfg.Host, cfg.APIKey, cfg.Timeout, bulk, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}

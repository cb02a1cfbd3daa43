package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"pairs.service/config"
	m "pairs.service/models"
)

// Generator produces one document per call, core.ServiceContext satisfies it.
type Generator interface {
	Generate(ctx context.Context, w io.Writer) (*m.ReportSummary, error)
	GenerateZScore(ctx context.Context, w io.Writer) (*m.ReportSummary, error)
	GenerateVariation(ctx context.Context, w io.Writer) (*m.ReportSummary, error)
}

type generateFunc func(ctx context.Context, w io.Writer) (*m.ReportSummary, error)

func GetHttpServer(cfg config.ServerConfig, gen Generator, logger logrus.FieldLogger) *http.Server {
	return &http.Server{
		Addr:           cfg.Addr,
		Handler:        NewRouter(gen, logger),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func NewRouter(gen Generator, logger logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", ping)
	r.Get("/api/report", document("pairs_report", gen.Generate, logger))
	r.Get("/api/zscore", document("zscore_report", gen.GenerateZScore, logger))
	r.Get("/api/variation", document("variation_report", gen.GenerateVariation, logger))

	return r
}

func ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, m.ResponseOk(map[string]string{"message": "pong"}))
}

// document runs a generation per request. The document is buffered so a failed run
// answers with a JSON error and never a partial pdf.
func document(name string, generate generateFunc, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		summary, err := generate(r.Context(), &buf)
		if err != nil {
			logger.WithError(err).WithField("request_id", middleware.GetReqID(r.Context())).Error("error generating report")
			writeJSON(w, http.StatusInternalServerError, m.ResponseError(err))
			return
		}

		filename := fmt.Sprintf("%s_%s.pdf", name, time.Now().Format(time.DateOnly))
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.Header().Set("X-Run-Id", summary.RunID)
		w.Header().Set("X-Report-Kind", summary.Kind)
		w.Header().Set("X-Report-Pages", strconv.Itoa(summary.Pages))
		w.WriteHeader(http.StatusOK)

		if _, err := buf.WriteTo(w); err != nil {
			logger.WithError(err).Warn("error streaming report")
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func requestLogger(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request handled")
		})
	}
}

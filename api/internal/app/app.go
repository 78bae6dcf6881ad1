package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"kyc-verifier/api/internal/config"
	"kyc-verifier/api/internal/identity"
	"kyc-verifier/api/internal/llm"
	"kyc-verifier/api/internal/llm/gemini"
	"kyc-verifier/api/internal/llm/openai"
	"kyc-verifier/api/internal/metrics"
	"kyc-verifier/api/internal/ocr"
	"kyc-verifier/api/internal/ocr/yandex"
	"kyc-verifier/api/internal/pipeline"
)

// App owns the pipeline and the clients behind it.
type App struct {
	Pipeline *pipeline.Pipeline
	Oracle   llm.Oracle
	closers  []func() error
}

// New builds the configured oracle and OCR engine and the pipeline around them.
// reg may be nil to skip metrics.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*App, error) {
	a := &App{}
	engines := &llm.Engines{}

	switch cfg.OracleProvider {
	case config.ProviderOpenAI:
		engines.OpenAI = openai.New(cfg.OpenAIAPIKey, cfg.OpenAITextModel, cfg.OpenAIVisionModel)
	case config.ProviderGemini:
		g, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		engines.Gemini = g
		a.closers = append(a.closers, g.Close)
	}
	oracle, err := engines.GetEngine(cfg.OracleProvider)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Oracle = oracle

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithComparator(identity.New(cfg.Abbreviations)),
		pipeline.WithPromptDir(cfg.PromptDir),
	}
	if cfg.OCREnabled() {
		rec := yandex.New(cfg.YCOAuthToken, cfg.YCFolderID, ocr.Options{Langs: cfg.YCOCRLangs, Model: cfg.YCOCRModel})
		opts = append(opts, pipeline.WithRecognizer(rec))
	} else {
		logger.Warn("YC_OAUTH_TOKEN/YC_FOLDER_ID not set: text-relay strategy disabled")
	}
	if reg != nil {
		opts = append(opts, pipeline.WithMetrics(metrics.New(reg)))
	}

	a.Pipeline = pipeline.New(oracle, opts...)
	logger.Info("pipeline ready",
		zap.String("oracle", oracle.Name()),
		zap.Bool("ocr", cfg.OCREnabled()),
		zap.String("default_strategy", cfg.DefaultStrategy))
	return a, nil
}

func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = fmt.Errorf("close: %w", err)
		}
	}
	return first
}

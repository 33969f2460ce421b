package container

import (
	"net/http"

	"github.com/dsaini64/food-tracker-sub001/internal/config"
	"github.com/dsaini64/food-tracker-sub001/internal/gemini"
	"github.com/dsaini64/food-tracker-sub001/internal/imaging"
	"github.com/dsaini64/food-tracker-sub001/internal/logger"
	"github.com/dsaini64/food-tracker-sub001/internal/nutrition"
	"github.com/dsaini64/food-tracker-sub001/internal/observer"
	"github.com/dsaini64/food-tracker-sub001/internal/pipeline"
	"github.com/dsaini64/food-tracker-sub001/internal/storage"
	"github.com/dsaini64/food-tracker-sub001/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config   *config.Config
	uploads  *storage.UploadQueue
	analysis *pipeline.AnalysisPipeline
	summary  *pipeline.SummaryPipeline
	handler  http.Handler
}

// NewContainer builds the dependency graph from configuration
func NewContainer(cfg *config.Config) (*Container, error) {
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(observer.NewMetricsObserver())

	normalizer := imaging.NewNormalizer(cfg.MaxImageDimension, cfg.JPEGQuality)
	geminiClient := gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)

	var enhancer nutrition.Enhancer
	if cfg.EdamamAppID != "" && cfg.EdamamAppKey != "" {
		enhancer = nutrition.NewEdamamEnhancer(cfg.EdamamAppID, cfg.EdamamAppKey, nil)
	}

	var archiver storage.ImageArchiver
	if cfg.ArchiveEnabled() {
		azure, err := storage.NewAzureArchive(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.AzureContainer)
		if err != nil {
			return nil, err
		}
		archiver = azure
	} else {
		archiver = storage.NopArchiver{}
	}

	uploads := storage.NewUploadQueue(0)
	uploads.Start()

	analysis := pipeline.NewAnalysisPipeline(
		normalizer,
		geminiClient,
		enhancer,
		archiver,
		uploads,
		events,
		cfg.RecognitionTimeout,
		cfg.EnrichmentTimeout,
	)
	summaryPipeline := pipeline.NewSummaryPipeline(geminiClient, events, cfg.GenerationTimeout)

	handler := transport.NewHandler(analysis, summaryPipeline, geminiClient, cfg)

	return &Container{
		config:   cfg,
		uploads:  uploads,
		analysis: analysis,
		summary:  summaryPipeline,
		handler:  handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close drains the upload queue and stops its workers
func (c *Container) Close() {
	c.uploads.Wait()
	c.uploads.Close()
}

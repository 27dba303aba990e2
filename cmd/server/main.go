package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/shopscout/shopscout-backend/internal/conf"
	"github.com/shopscout/shopscout-backend/internal/data"
	deliverybiz "github.com/shopscout/shopscout-backend/internal/delivery/biz"
	deliverydata "github.com/shopscout/shopscout-backend/internal/delivery/data"
	deliveryservice "github.com/shopscout/shopscout-backend/internal/delivery/service"
	feedbackbiz "github.com/shopscout/shopscout-backend/internal/feedback/biz"
	feedbackdata "github.com/shopscout/shopscout-backend/internal/feedback/data"
	feedbackservice "github.com/shopscout/shopscout-backend/internal/feedback/service"
	"github.com/shopscout/shopscout-backend/internal/intent"
	"github.com/shopscout/shopscout-backend/internal/pkg/logger"
	"github.com/shopscout/shopscout-backend/internal/pkg/workerpool"
	scoringbiz "github.com/shopscout/shopscout-backend/internal/scoring/biz"
	"github.com/shopscout/shopscout-backend/internal/search/adapter"
	searchbiz "github.com/shopscout/shopscout-backend/internal/search/biz"
	searchservice "github.com/shopscout/shopscout-backend/internal/search/service"
	"github.com/shopscout/shopscout-backend/internal/search/types"
	"github.com/shopscout/shopscout-backend/internal/server"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger with config
	logConfig := &logger.Config{
		Level:            config.Log.Level,
		Format:           config.Log.Format,
		Output:           config.Log.Output,
		EnableCaller:     config.Log.EnableCaller,
		EnableStacktrace: config.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   config.Log.File.Filename,
			MaxSize:    config.Log.File.MaxSize,
			MaxAge:     config.Log.File.MaxAge,
			MaxBackups: config.Log.File.MaxBackups,
			Compress:   config.Log.File.Compress,
		},
	}

	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize global logger
	if err := logger.InitGlobal(logConfig); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded successfully")

	// Initialize data layer
	d, cleanup, err := data.NewData(config, log)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// Delivery gate
	lookupClient := deliverydata.NewHTTPLookupClient(config.Delivery.LookupBaseURL, config.Delivery.LookupTimeout)
	gate := deliverybiz.NewGate(lookupClient, &deliverybiz.Config{
		CacheTTL: config.Delivery.CacheTTL,
	}, log.Logger)
	defer gate.Close()

	// Source adapters
	factory := adapter.NewFactory()
	adapters := make([]adapter.SourceAdapter, 0, len(config.Search.Sources))
	for _, src := range config.Search.Sources {
		a, err := factory.Create(&types.SourceConfig{
			ID:         types.SourceID(src.ID),
			Name:       src.Name,
			BaseURL:    src.BaseURL,
			APIKey:     src.APIKey,
			Timeout:    src.Timeout,
			MaxRetries: src.MaxRetries,
			RateLimit:  src.RateLimit,
			MaxResults: src.MaxResults,
		})
		if err != nil {
			log.Fatal("failed to create source adapter",
				zap.String("source", src.ID),
				zap.Error(err))
		}
		adapters = append(adapters, a)
	}

	// Worker pool for source fetches
	pool, err := workerpool.New(&workerpool.Config{
		Workers:   config.Pool.Workers,
		QueueSize: config.Pool.QueueSize,
	}, log.Logger)
	if err != nil {
		log.Fatal("failed to create worker pool", zap.Error(err))
	}
	defer pool.Shutdown()

	orchestrator := searchbiz.NewOrchestrator(adapters, gate, pool, &searchbiz.Config{
		SourceTimeout: config.Search.SourceTimeout,
	}, log.Logger)

	// Scoring engine
	engine := scoringbiz.NewEngine(scoringbiz.Weights{
		BudgetFit:     config.Scoring.BudgetFit,
		FeatureMatch:  config.Scoring.FeatureMatch,
		DeliverySpeed: config.Scoring.DeliverySpeed,
		Trust:         config.Scoring.Trust,
	}, log.Logger)

	// Feedback store
	var store feedbackbiz.EventStore
	if config.Feedback.Store == "redis" {
		store = feedbackdata.NewRedisStore(d.Redis)
	} else {
		store = feedbackdata.NewMemoryStore()
	}
	aggregator := feedbackbiz.NewAggregator(store, log.Logger)

	// Intent extractor
	var extractor intent.Extractor = intent.NewRuleExtractor()
	if config.Intent.Enabled {
		extractor = intent.NewAIExtractor(&intent.Config{
			Enabled: config.Intent.Enabled,
			APIKey:  config.Intent.APIKey,
			BaseURL: config.Intent.BaseURL,
			Model:   config.Intent.Model,
		}, log.Logger)
	}

	// Weight tuning loop driven by feedback analytics
	tuneCtx, tuneCancel := context.WithCancel(context.Background())
	defer tuneCancel()
	if config.Scoring.TuneInterval > 0 {
		go runTuner(tuneCtx, engine, aggregator, config.Scoring.TuneInterval, log)
	}

	// Initialize services
	searchService := searchservice.NewSearchService(orchestrator, engine, extractor, log)
	deliveryService := deliveryservice.NewDeliveryService(gate, log)
	feedbackService := feedbackservice.NewFeedbackService(aggregator, log)

	httpServer := server.NewHTTPServer(config, log, searchService, deliveryService, feedbackService)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

// runTuner periodically recomputes feedback analytics and lets the
// tuner nudge the scoring weights.
func runTuner(
	ctx context.Context,
	engine *scoringbiz.Engine,
	aggregator *feedbackbiz.Aggregator,
	interval time.Duration,
	log *logger.Logger,
) {
	tuner := scoringbiz.NewConservativeTuner()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			analytics, err := aggregator.Analytics(ctx)
			if err != nil {
				log.Warn("failed to compute analytics for tuning", zap.Error(err))
				continue
			}
			engine.SetWeights(tuner.Tune(engine.Weights(), analytics))
		}
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dietcoach/backend/config"
	httpDelivery "github.com/dietcoach/backend/internal/delivery/http"
	"github.com/dietcoach/backend/internal/infrastructure/elevenst"
	"github.com/dietcoach/backend/internal/infrastructure/llm"
	"github.com/dietcoach/backend/internal/infrastructure/metrics"
	"github.com/dietcoach/backend/internal/infrastructure/mockcatalog"
	"github.com/dietcoach/backend/internal/pkg/logger"
	"github.com/dietcoach/backend/internal/usecase"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	zlog.Info("Starting DietCoach Backend v1.0.0",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	recorder := metrics.NewRecorder()

	// Infrastructure
	marketplace := elevenst.NewClient(elevenst.Config{
		BaseURL:           cfg.Elevenst.BaseURL,
		APIKey:            cfg.Elevenst.APIKey,
		ConnectTimeout:    cfg.Elevenst.ConnectTimeout,
		ReadTimeout:       cfg.Elevenst.ReadTimeout,
		RequestsPerSecond: cfg.Elevenst.RequestsPerSecond,
		Burst:             cfg.Elevenst.Burst,
	}, zlog)
	if cfg.Elevenst.APIKey == "" {
		zlog.Warn("11st API key NOT CONFIGURED - live searches will fail",
			zap.Bool("use_mock_when_error", cfg.Shopping.UseMockWhenError),
		)
	}

	catalog := mockcatalog.Default()
	zlog.Info("Mock catalog loaded", zap.Int("products", catalog.Len()))

	ai := llm.NewClient(llm.Config{
		BaseURL:        cfg.AI.BaseURL,
		APIKey:         cfg.AI.APIKey,
		Model:          cfg.AI.Model,
		ConnectTimeout: cfg.AI.ConnectTimeout,
		Timeout:        cfg.AI.Timeout,
		Temperature:    cfg.AI.Temperature,
	}, zlog)
	if cfg.Shopping.RerankEnabled && cfg.AI.APIKey == "" {
		zlog.Warn("AI rerank enabled but API key NOT CONFIGURED - scorer choice will be kept")
	}

	// Usecase layer
	normalizer := usecase.NewQueryNormalizer()
	source := usecase.NewHybridProductSource(marketplace, catalog, cfg.Shopping.UseMockWhenError, recorder, zlog)
	shoppingService := usecase.NewShoppingService(
		normalizer,
		usecase.NewCategoryService(cfg.Shopping.StrictCategoryCodes, zlog),
		source,
		usecase.NewProductScorer(normalizer, zlog),
		usecase.NewProductReranker(ai, cfg.Shopping.RerankTopK, recorder, zlog),
		usecase.ShoppingServiceConfig{
			PageSize:         cfg.Shopping.PageSize,
			RerankEnabled:    cfg.Shopping.RerankEnabled,
			BatchConcurrency: cfg.Shopping.BatchConcurrency,
		},
		zlog,
	)
	budgetService := usecase.NewBudgetService(recorder, zlog)

	zlog.Info("Shopping configured",
		zap.Int("page_size", cfg.Shopping.PageSize),
		zap.Bool("rerank", cfg.Shopping.RerankEnabled),
		zap.Int("rerank_top_k", cfg.Shopping.RerankTopK),
		zap.Bool("strict_category_codes", cfg.Shopping.StrictCategoryCodes),
		zap.Int("batch_concurrency", cfg.Shopping.BatchConcurrency),
	)

	handler := httpDelivery.NewHandler(shoppingService, budgetService, zlog)
	router := httpDelivery.SetupRouter(cfg, handler, recorder.Handler(), zlog)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zlog.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}
	zlog.Info("Server exited")
}

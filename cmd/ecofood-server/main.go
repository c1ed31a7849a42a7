package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ecofood-backend/internal/api"
	"ecofood-backend/internal/assistant"
	"ecofood-backend/internal/config"
	"ecofood-backend/internal/database"
	"ecofood-backend/internal/household"
	"ecofood-backend/internal/jobs"
	"ecofood-backend/internal/llm"
	"ecofood-backend/internal/mealplan"
	"ecofood-backend/internal/metrics"
	"ecofood-backend/internal/notify"
	"ecofood-backend/internal/planner"
	"ecofood-backend/internal/recipes"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	var textGen llm.TextGenerator
	switch cfg.LLMProvider {
	case "gemini":
		gemini, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			logger.Fatal("failed to initialize Gemini client", zap.Error(err))
		}
		if closer, ok := gemini.(llm.Closer); ok {
			defer closer.Close()
		}
		textGen = llm.WithBreaker(gemini, logger)
	case "groq":
		textGen = llm.WithBreaker(llm.NewGroqClient(cfg), logger)
	case "none":
		logger.Info("no LLM configured, planning from the recipe catalogue")
	}

	households := household.NewRepository(db.SQL)
	plans := mealplan.NewRepository(db.SQL)
	recipeRepo := recipes.NewRepository(db.SQL)
	catalogue := recipes.NewCatalogue(recipeRepo)
	metricsStore := metrics.NewStore(db.SQL)

	crew := planner.NewCrew(catalogue, textGen, logger)
	workflow := planner.NewWorkflow(crew, logger)

	var notifier jobs.Notifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		telegram, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, logger)
		if err != nil {
			logger.Fatal("failed to initialize Telegram notifier", zap.Error(err))
		}
		notifier = telegram
	}

	registry := jobs.NewRegistry(
		jobs.NewRepository(db.SQL),
		households,
		plans,
		workflow,
		notifier,
		metricsStore,
		logger,
	)

	var importer *recipes.Importer
	if textGen != nil {
		importer = recipes.NewImporter(recipeRepo, textGen)
	}

	server := api.NewServer(
		households,
		plans,
		registry,
		workflow,
		assistant.New(households),
		importer,
		catalogue,
		metricsStore,
		cfg.FrontendOrigin,
		logger,
	)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	// Let in-flight planning jobs reach a terminal state before the
	// database closes underneath them.
	registry.Wait()
}

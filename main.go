package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutrition-engine/analytics"
	"nutrition-engine/cache"
	"nutrition-engine/config"
	"nutrition-engine/handlers"
	"nutrition-engine/logger"
	"nutrition-engine/mealplan"
	"nutrition-engine/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.LevelError, nil).Fatal("Invalid configuration: %v", err)
	}
	log := logger.New(logger.ParseLevel(cfg.LogLevel), os.Stdout)

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open database at %s: %v", cfg.DBPath, err)
	}
	defer db.Close()
	log.Info("Opened database at %s", cfg.DBPath)

	checks := map[string]handlers.Check{"sqlite": db.Ping}

	// The report cache is optional; without REDIS_ADDR every analysis is recomputed.
	var reportCache analytics.ReportCache
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.AnalysisCacheTTL)
		cancel()
		if err != nil {
			log.Fatal("Failed to connect to Redis at %s: %v", cfg.RedisAddr, err)
		}
		defer redisClient.Close()
		reportCache = redisClient
		checks["redis"] = redisClient.Ping
		log.Info("Connected to Redis at %s", cfg.RedisAddr)
	}

	engine := analytics.NewEngine(db.Metrics(), reportCache, log, analytics.EngineOptions{
		Methods:    cfg.OutlierMethods,
		OnOutliers: handlers.RecordOutliers,
	})
	generator := mealplan.NewGenerator(db.Recipes(), db.Preferences(), db.MealPlans(), log, mealplan.GeneratorOptions{
		Seed: cfg.PlanRandomSeed,
	})

	r := handlers.NewRouter(
		handlers.NewMetricHandler(engine, cfg.AnalysisDays, log),
		handlers.NewMealPlanHandler(generator, log),
		handlers.NewHealthHandler(checks),
	)

	srv := &http.Server{
		Addr:           cfg.Addr,
		Handler:        r,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info("Server starting on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
		return
	}
	log.Info("Server exited")
}

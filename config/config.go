package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"nutrition-engine/models"
)

type Config struct {
	Addr             string
	RedisAddr        string // empty disables the report cache
	DBPath           string
	LogLevel         string
	AnalysisCacheTTL time.Duration
	AnalysisDays     int
	OutlierMethods   []models.OutlierMethod
	PlanRandomSeed   uint64 // 0 seeds from the clock
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		Addr:      getEnv("ADDR", ":8080"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
		DBPath:    getEnv("DB_PATH", "./data/nutrition.db"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.AnalysisCacheTTL, err = time.ParseDuration(getEnv("ANALYSIS_CACHE_TTL", "5m")); err != nil {
		return nil, fmt.Errorf("ANALYSIS_CACHE_TTL: %w", err)
	}
	if cfg.AnalysisDays, err = strconv.Atoi(getEnv("DEFAULT_ANALYSIS_DAYS", "90")); err != nil || cfg.AnalysisDays <= 0 {
		return nil, fmt.Errorf("DEFAULT_ANALYSIS_DAYS must be a positive integer")
	}
	if cfg.OutlierMethods, err = models.ParseOutlierMethods(getEnv("OUTLIER_METHODS", "z_score,iqr,mad,data_quality")); err != nil {
		return nil, fmt.Errorf("OUTLIER_METHODS: %w", err)
	}
	if len(cfg.OutlierMethods) == 0 {
		return nil, fmt.Errorf("OUTLIER_METHODS must name at least one method")
	}
	if cfg.PlanRandomSeed, err = strconv.ParseUint(getEnv("PLAN_RANDOM_SEED", "0"), 10, 64); err != nil {
		return nil, fmt.Errorf("PLAN_RANDOM_SEED: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

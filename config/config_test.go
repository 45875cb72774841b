package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"nutrition-engine/models"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ADDR", "REDIS_ADDR", "DB_PATH", "ANALYSIS_CACHE_TTL", "OUTLIER_METHODS", "PLAN_RANDOM_SEED", "DEFAULT_ANALYSIS_DAYS"} {
		t.Setenv(k, "")
	}
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("Addr=%q", cfg.Addr)
	}
	if cfg.AnalysisCacheTTL != 5*time.Minute {
		t.Fatalf("TTL=%v", cfg.AnalysisCacheTTL)
	}
	want := []models.OutlierMethod{models.MethodZScore, models.MethodIQR, models.MethodMAD, models.MethodDataQuality}
	if len(cfg.OutlierMethods) != len(want) {
		t.Fatalf("methods=%v", cfg.OutlierMethods)
	}
	for i := range want {
		if cfg.OutlierMethods[i] != want[i] {
			t.Fatalf("methods=%v", cfg.OutlierMethods)
		}
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	for _, k := range []string{"ADDR", "OUTLIER_METHODS", "PLAN_RANDOM_SEED"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	path := filepath.Join(t.TempDir(), ".env")
	content := "ADDR=:9090\nOUTLIER_METHODS=iqr,isolation_forest\nPLAN_RANDOM_SEED=42\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.PlanRandomSeed != 42 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.OutlierMethods) != 2 || cfg.OutlierMethods[1] != models.MethodIsolationForest {
		t.Fatalf("methods=%v", cfg.OutlierMethods)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("ANALYSIS_CACHE_TTL", "soon")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for bad TTL")
	}
	t.Setenv("ANALYSIS_CACHE_TTL", "1m")
	t.Setenv("OUTLIER_METHODS", "z_score,astrology")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for unknown method")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	// テスト用の環境変数を設定
	testCases := map[string]string{
		"PORT":           "9090",
		"ENVIRONMENT":    "test",
		"GEMINI_API_KEY": "test-key",
		"GEMINI_MODEL":   "gemini-test",
		"RUN_DAYS":       "30",
		"AI_DAYS":        "3",
		"MAX_WORKERS":    "2",
		"OUTPUT_PATH":    "out/test.json",
	}

	// 環境変数を設定
	for key, value := range testCases {
		os.Setenv(key, value)
	}

	// テスト後にクリーンアップ
	defer func() {
		for key := range testCases {
			os.Unsetenv(key)
		}
	}()

	// 設定を読み込み
	cfg := LoadConfig()

	// 検証
	if cfg.Port != "9090" {
		t.Errorf("Expected Port to be '9090', got '%s'", cfg.Port)
	}

	if cfg.Environment != "test" {
		t.Errorf("Expected Environment to be 'test', got '%s'", cfg.Environment)
	}

	if cfg.GeminiAPIKey != "test-key" {
		t.Errorf("Expected GeminiAPIKey to be 'test-key', got '%s'", cfg.GeminiAPIKey)
	}

	if cfg.GeminiModel != "gemini-test" {
		t.Errorf("Expected GeminiModel to be 'gemini-test', got '%s'", cfg.GeminiModel)
	}

	if cfg.RunDays != 30 {
		t.Errorf("Expected RunDays to be 30, got %d", cfg.RunDays)
	}

	if cfg.AIDays != 3 {
		t.Errorf("Expected AIDays to be 3, got %d", cfg.AIDays)
	}

	if cfg.MaxWorkers != 2 {
		t.Errorf("Expected MaxWorkers to be 2, got %d", cfg.MaxWorkers)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	// 環境変数をクリア
	vars := []string{
		"PORT", "ENVIRONMENT", "GEMINI_API_KEY", "GEMINI_MODEL",
		"RUN_DAYS", "AI_DAYS", "MAX_WORKERS", "OUTPUT_PATH",
	}

	for _, v := range vars {
		os.Unsetenv(v)
	}

	// 設定を読み込み
	cfg := LoadConfig()

	// デフォルト値の検証
	if cfg.Port != "8080" {
		t.Errorf("Expected default Port to be '8080', got '%s'", cfg.Port)
	}

	if cfg.RunDays != 90 {
		t.Errorf("Expected default RunDays to be 90, got %d", cfg.RunDays)
	}

	if cfg.AIDays != 7 {
		t.Errorf("Expected default AIDays to be 7, got %d", cfg.AIDays)
	}

	if cfg.MaxWorkers != 4 {
		t.Errorf("Expected default MaxWorkers to be 4, got %d", cfg.MaxWorkers)
	}

	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("Expected default GeminiModel to be 'gemini-2.5-flash', got '%s'", cfg.GeminiModel)
	}
}

func TestLoadConfigInvalidInt(t *testing.T) {
	os.Setenv("RUN_DAYS", "not-a-number")
	defer os.Unsetenv("RUN_DAYS")

	cfg := LoadConfig()
	if cfg.RunDays != 90 {
		t.Errorf("Expected invalid RUN_DAYS to fall back to 90, got %d", cfg.RunDays)
	}
}

func TestDefaultAreaConfig(t *testing.T) {
	cfg := DefaultAreaConfig()

	if len(cfg.Areas) == 0 {
		t.Fatal("DefaultAreaConfig() returned no areas")
	}

	// 新宿エリアが存在することを確認
	found := false
	for _, a := range cfg.Areas {
		if a.ID == "tokyo_shinjuku" {
			found = true
			if a.JMACode != "130000" {
				t.Errorf("Expected tokyo_shinjuku JMACode '130000', got '%s'", a.JMACode)
			}
		}
	}
	if !found {
		t.Error("tokyo_shinjuku not found in default areas")
	}

	if len(cfg.JobKeys) != 5 {
		t.Errorf("Expected 5 job keys, got %d", len(cfg.JobKeys))
	}

	holidays := cfg.HolidaySet()
	if !holidays["2026-01-01"] {
		t.Error("Expected 2026-01-01 to be a holiday")
	}
}

func TestLoadAreaConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "areas.yaml")
	cfgText := `areas:
  - id: testarea
    name: テストエリア
    jma_code: "130000"
    amedas_code: "44132"
    lat: 35.0
    lon: 139.0
    feature: テスト用
holidays:
  - "2026-12-31"
`
	if err := os.WriteFile(path, []byte(cfgText), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadAreaConfig(path)
	if err != nil {
		t.Fatalf("LoadAreaConfig() error: %v", err)
	}

	if len(cfg.Areas) != 1 || cfg.Areas[0].ID != "testarea" {
		t.Fatalf("unexpected areas: %+v", cfg.Areas)
	}

	// job_keys省略時はデフォルトを補完
	if len(cfg.JobKeys) != 5 {
		t.Errorf("Expected default job keys to be applied, got %v", cfg.JobKeys)
	}

	if !cfg.HolidaySet()["2026-12-31"] {
		t.Error("Expected 2026-12-31 to be a holiday")
	}
}

func TestLoadAreaConfigMissingFile(t *testing.T) {
	if _, err := LoadAreaConfig("/no/such/file.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}

package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "eagle-eye-api/configs"
	"eagle-eye-api/pkg/gemini"
	"eagle-eye-api/pkg/jma"
	"eagle-eye-api/pkg/models"
	"eagle-eye-api/pkg/openmeteo"
	"eagle-eye-api/pkg/services"
)

const sampleOutput = `{
  "tokyo_shinjuku": [
    {
      "date": "02月06日 (金)",
      "is_long_term": false,
      "rank": "B",
      "weather_overview": {
        "condition": "☀️",
        "high": "最高11℃",
        "low": "最低3℃",
        "rain": "午前10% / 午後20%",
        "rain_am": "10%",
        "rain_pm": "20%",
        "rain_night": "0%",
        "warning": "特になし"
      },
      "event_traffic_facts": [],
      "peak_windows": {"taxi": "", "delivery": "", "restaurant": "", "retail": "", "hotel": ""},
      "job_actions": {"taxi": "", "delivery": "", "restaurant": "", "retail": "", "hotel": ""},
      "daily_schedule_and_impact": "",
      "timeline": null,
      "confidence": 70
    }
  ]
}`

func setupRouter(t *testing.T, areas []models.Area) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := &config.Config{
		OutputPath: filepath.Join(dir, "eagle_eye_data.json"),
		MaxWorkers: 1,
	}
	areaCfg := &config.AreaConfig{Areas: areas, JobKeys: config.JobKeys}

	gen := gemini.NewClient("", "gemini-2.5-flash")
	svc := services.NewForecastService(
		cfg,
		areaCfg,
		services.NewWeatherService(jma.NewClient()),
		services.NewSlotBuilder(),
		services.NewFactsService(gen),
		services.NewAdviceSynthesizer(gen, areaCfg.JobKeys, areaCfg.HolidaySet()),
		openmeteo.NewClient(),
	)

	h := NewForecastHandler(svc, areaCfg, cfg)

	r := gin.New()
	r.GET("/health", HealthCheck)
	v1 := r.Group("/api/v1")
	{
		v1.GET("/forecast", h.GetForecast)
		v1.GET("/forecast/:areaID", h.GetAreaForecast)
		v1.GET("/areas", h.GetAreas)
		v1.POST("/admin/generate", h.Generate)
	}
	return r, cfg
}

func testAreas() []models.Area {
	return []models.Area{
		{ID: "tokyo_shinjuku", Name: "東京 新宿・歌舞伎町", JMACode: "130000"},
	}
}

func TestHealthCheck(t *testing.T) {
	r, _ := setupRouter(t, testAreas())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestGetForecast(t *testing.T) {
	r, cfg := setupRouter(t, testAreas())
	require.NoError(t, os.WriteFile(cfg.OutputPath, []byte(sampleOutput), 0o644))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/forecast", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), "tokyo_shinjuku")
}

func TestGetForecastNotGenerated(t *testing.T) {
	r, _ := setupRouter(t, testAreas())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/forecast", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAreaForecast(t *testing.T) {
	r, cfg := setupRouter(t, testAreas())
	require.NoError(t, os.WriteFile(cfg.OutputPath, []byte(sampleOutput), 0o644))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/forecast/tokyo_shinjuku", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "02月06日 (金)")

	// 存在しないエリア
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/forecast/unknown_area", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAreas(t *testing.T) {
	r, _ := setupRouter(t, testAreas())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/areas", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "東京 新宿・歌舞伎町")
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestGenerate(t *testing.T) {
	// エリアなし設定なら外部APIに触れずにジョブが完走する
	r, cfg := setupRouter(t, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/admin/generate", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)

	require.Eventually(t, func() bool {
		_, err := os.Stat(cfg.OutputPath)
		return err == nil
	}, 3*time.Second, 20*time.Millisecond, "出力ファイルが生成されるはず")
}

func TestGenerateConflict(t *testing.T) {
	r, _ := setupRouter(t, testAreas())

	isGenerating.Store(true)
	defer isGenerating.Store(false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/admin/generate", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

package main

import (
	"log"

	config "eagle-eye-api/configs"
	"eagle-eye-api/pkg/gemini"
	"eagle-eye-api/pkg/handlers"
	"eagle-eye-api/pkg/jma"
	"eagle-eye-api/pkg/openmeteo"
	"eagle-eye-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// 設定の読み込み
	cfg := config.LoadConfig()
	areaCfg, err := config.LoadAreaConfig(cfg.AreasFile)
	if err != nil {
		log.Fatalf("エリア設定の読み込みに失敗: %v", err)
	}

	// Ginルーターの初期化
	r := gin.Default()

	// サービスの初期化
	gen := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	forecastService := services.NewForecastService(
		cfg,
		areaCfg,
		services.NewWeatherService(jma.NewClient()),
		services.NewSlotBuilder(),
		services.NewFactsService(gen),
		services.NewAdviceSynthesizer(gen, areaCfg.JobKeys, areaCfg.HolidaySet()),
		openmeteo.NewClient(),
	)

	// ハンドラーの初期化
	forecastHandler := handlers.NewForecastHandler(forecastService, areaCfg, cfg)

	// ミドルウェアの登録
	r.Use(cors.Default())

	// ヘルスチェックエンドポイント
	r.GET("/health", handlers.HealthCheck)

	// APIバージョン1のルートグループ
	v1 := r.Group("/api/v1")
	{
		v1.GET("/forecast", forecastHandler.GetForecast)
		v1.GET("/forecast/:areaID", forecastHandler.GetAreaForecast)
		v1.GET("/areas", forecastHandler.GetAreas)

		// 管理者向けAPI
		admin := v1.Group("/admin")
		{
			admin.POST("/generate", forecastHandler.Generate)
		}
	}

	log.Printf("Starting Eagle Eye API server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

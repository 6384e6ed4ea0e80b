package main

import (
	"context"
	"log"
	"time"

	config "eagle-eye-api/configs"
	"eagle-eye-api/pkg/gemini"
	"eagle-eye-api/pkg/jma"
	"eagle-eye-api/pkg/models"
	"eagle-eye-api/pkg/openmeteo"
	"eagle-eye-api/pkg/services"

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

	now := time.Now().In(models.JST)
	log.Printf("🦅 Eagle Eye 起動: %s", now.Format("2006/01/02 15:04"))
	if cfg.GeminiAPIKey == "" {
		log.Println("GEMINI_API_KEY 未設定のため、全日フォールバック生成になります")
	}

	// サービスの初期化
	gen := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	svc := services.NewForecastService(
		cfg,
		areaCfg,
		services.NewWeatherService(jma.NewClient()),
		services.NewSlotBuilder(),
		services.NewFactsService(gen),
		services.NewAdviceSynthesizer(gen, areaCfg.JobKeys, areaCfg.HolidaySet()),
		openmeteo.NewClient(),
	)

	data := svc.Run(context.Background())

	if err := services.WriteOutput(cfg.OutputPath, data); err != nil {
		log.Fatalf("出力の書き込みに失敗: %v", err)
	}
	log.Printf("✅ 保存完了: %s", cfg.OutputPath)

	if cfg.ExportXLSXPath != "" {
		if err := services.ExportSummaryXLSX(cfg.ExportXLSXPath, areaCfg.Areas, data); err != nil {
			log.Fatalf("Excelサマリーの出力に失敗: %v", err)
		}
		log.Printf("✅ Excelサマリー保存完了: %s", cfg.ExportXLSXPath)
	}

	log.Println("✅ 全工程完了")
}

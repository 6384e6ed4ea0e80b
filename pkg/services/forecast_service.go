package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	config "eagle-eye-api/configs"
	"eagle-eye-api/pkg/models"
)

// HourlySource 時間別予報の取得元。テストではモックに差し替える。
type HourlySource interface {
	FetchHourly(ctx context.Context, lat, lon float64, days int) (*models.HourlySeries, error)
}

// ForecastService 全エリアの予報生成を統括するサービス。
// エリア単位で外部データを一度だけ取得し、日付ごとにエントリを組み立てる。
type ForecastService struct {
	cfg     *config.Config
	areaCfg *config.AreaConfig
	weather *WeatherService
	slots   *SlotBuilder
	facts   *FactsService
	advice  *AdviceSynthesizer
	hourly  HourlySource

	// Now は現在時刻の供給元。テストで固定時刻に差し替える。
	Now func() time.Time
}

// NewForecastService 新しいForecastServiceを作成
func NewForecastService(cfg *config.Config, areaCfg *config.AreaConfig, weather *WeatherService, slots *SlotBuilder, facts *FactsService, advice *AdviceSynthesizer, hourly HourlySource) *ForecastService {
	return &ForecastService{
		cfg:     cfg,
		areaCfg: areaCfg,
		weather: weather,
		slots:   slots,
		facts:   facts,
		advice:  advice,
		hourly:  hourly,
		Now:     func() time.Time { return time.Now().In(models.JST) },
	}
}

// Run 全エリアの予報を生成する。エリアはワーカープールで並行処理し、
// 1エリアの失敗が全体を止めることはない。
// 戻り値のキーはエリアID、値は今日から日付昇順のエントリ列。
func (fs *ForecastService) Run(ctx context.Context) map[string][]models.ForecastEntry {
	results := make(map[string][]models.ForecastEntry, len(fs.areaCfg.Areas))
	var mu sync.Mutex

	jobs := make(chan models.Area)
	var wg sync.WaitGroup

	workers := fs.cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for area := range jobs {
				entries := fs.processArea(ctx, area)
				mu.Lock()
				results[area.ID] = entries
				mu.Unlock()
			}
		}()
	}

	for _, area := range fs.areaCfg.Areas {
		jobs <- area
	}
	close(jobs)
	wg.Wait()

	return results
}

// processArea 1エリア分のエントリ列を生成する。
// 外部データ（予報・時間別・イベント情報・長期傾向）はここで一度だけ取得し、
// 日付ループ内では再取得しない。
func (fs *ForecastService) processArea(ctx context.Context, area models.Area) []models.ForecastEntry {
	log.Printf("📍 %s 開始", area.Name)

	db, warning := fs.weather.FetchArea(ctx, area)

	series, err := fs.hourly.FetchHourly(ctx, area.Lat, area.Lon, fs.cfg.AIDays)
	if err != nil {
		log.Printf("時間別予報の取得エラー (%s): %v", area.Name, err)
		series = nil
	}

	today := fs.Now()
	nearDates := make([]time.Time, fs.cfg.AIDays)
	for i := range nearDates {
		nearDates[i] = today.AddDate(0, 0, i)
	}

	factsByDate := fs.facts.FetchEventTraffic(ctx, area, nearDates)
	longTermText := fs.advice.LongTermText(ctx, area)

	entries := make([]models.ForecastEntry, 0, fs.cfg.RunDays)
	todayKey := today.Format("2006-01-02")

	for i := 0; i < fs.cfg.RunDays; i++ {
		target := today.AddDate(0, 0, i)
		dateKey := target.Format("2006-01-02")

		if i >= fs.cfg.AIDays {
			entries = append(entries, fs.advice.BuildLongTermEntry(target, longTermText))
			continue
		}

		day := db[dateKey]
		daySlots := fs.slots.BuildDaySlots(series, target)
		rec := fs.weather.ReconcileDaily(ctx, area, day, target, dateKey == todayKey, warning)

		entry, err := fs.advice.GenerateRichEntry(ctx, area, target, day, rec, daySlots, factsByDate[dateKey])
		if err != nil {
			log.Printf("🤖 %s / %s NG → fallback: %v", area.Name, dateKey, err)
			entries = append(entries, fs.advice.BuildLongTermEntry(target, longTermText))
			continue
		}
		log.Printf("🤖 %s / %s OK", area.Name, dateKey)
		entries = append(entries, *entry)
	}

	log.Printf("✅ %s 完了", area.Name)
	return entries
}

// WriteOutput 生成結果をJSONファイルに書き出す。
// 出力ディレクトリが無ければ作成する。
func WriteOutput(path string, data map[string][]models.ForecastEntry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("出力ディレクトリの作成に失敗: %w", err)
		}
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("出力のJSON化に失敗: %w", err)
	}

	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("出力ファイルの書き込みに失敗: %w", err)
	}
	return nil
}

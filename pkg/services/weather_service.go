package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"eagle-eye-api/pkg/jma"
	"eagle-eye-api/pkg/models"
)

// ForecastSource 気象庁データの取得元。テストではモックに差し替える。
type ForecastSource interface {
	GetDailyForecasts(ctx context.Context, areaCode string) (map[string]*models.DailyForecast, error)
	GetWarningText(ctx context.Context, areaCode string) string
	GetStationDailyStats(ctx context.Context, stationCode string, day time.Time) (*models.StationStats, error)
}

// WeatherService 複数ソースの気象データを日別レコードに統合するサービス
type WeatherService struct {
	source ForecastSource
}

// NewWeatherService 新しい気象データサービスを作成
func NewWeatherService(source ForecastSource) *WeatherService {
	return &WeatherService{source: source}
}

// FetchArea エリアの予報データベースと警報テキストを取得する。
// 予報の取得に失敗しても処理は止めず、空のデータベースで続行する。
func (ws *WeatherService) FetchArea(ctx context.Context, area models.Area) (map[string]*models.DailyForecast, string) {
	db, err := ws.source.GetDailyForecasts(ctx, area.JMACode)
	if err != nil {
		log.Printf("予報取得エラー (%s): %v", area.Name, err)
		db = map[string]*models.DailyForecast{}
	}
	warning := ws.source.GetWarningText(ctx, area.JMACode)
	return db, warning
}

// ReconcileDaily 日別の気象レコードを確定する。
// 当日分のみアメダス実況で気温を方向付きで補正する。
// 観測最低が予報最低より低ければ採用、観測最高が予報最高より高ければ採用。
// 逆方向の上書きはしない（当日これから更新される可能性があるため）。
func (ws *WeatherService) ReconcileDaily(ctx context.Context, area models.Area, day *models.DailyForecast, date time.Time, isToday bool, warning string) models.DailyWeatherRecord {
	high, low := decideHighLow(day)

	if isToday {
		obs, err := ws.source.GetStationDailyStats(ctx, area.AmedasCode, date)
		if err != nil {
			log.Printf("アメダス取得エラー (%s): %v", area.Name, err)
		}
		high, low = applyStationOverride(high, low, obs)
	}

	// 最高<最低は統合の矛盾なので両方とも不明に落とす
	if high != nil && low != nil && *high < *low {
		high, low = nil, nil
	}

	condition := ""
	if day != nil {
		condition = day.Code
	}

	return models.DailyWeatherRecord{
		Condition:   condition,
		High:        high,
		Low:         low,
		RainDisplay: RainDisplayJMA(day),
		Warning:     warning,
	}
}

// decideHighLow 週間サマリーを優先し、欠けた側のみ短期読み取りで補完する
func decideHighLow(day *models.DailyForecast) (high, low *float64) {
	if day == nil {
		return nil, nil
	}
	high = day.TempMax
	low = day.TempMin

	var valid []float64
	for _, x := range day.TempRaw {
		if v, err := strconv.ParseFloat(x, 64); err == nil {
			valid = append(valid, v)
		}
	}
	if len(valid) > 0 {
		if high == nil {
			hi := valid[0]
			for _, v := range valid[1:] {
				if v > hi {
					hi = v
				}
			}
			high = &hi
		}
		if low == nil {
			lo := valid[0]
			for _, v := range valid[1:] {
				if v < lo {
					lo = v
				}
			}
			low = &lo
		}
	}
	return high, low
}

// applyStationOverride 当日観測による方向付き補正
func applyStationOverride(high, low *float64, obs *models.StationStats) (*float64, *float64) {
	if obs == nil {
		return high, low
	}
	if low == nil || *low > obs.Min {
		v := obs.Min
		low = &v
	}
	if high == nil || obs.Max > *high {
		v := obs.Max
		high = &v
	}
	return high, low
}

// RainDisplayJMA 気象庁の降水確率読み取りから表示値を決める。
// 複数の読み取りがある場合は平均せず最大値を採用する（リスク優先）。
func RainDisplayJMA(day *models.DailyForecast) string {
	if day == nil || len(day.RainRaw) == 0 {
		return models.Unknown
	}
	best := -1
	for _, x := range day.RainRaw {
		if x == "-" || x == "" {
			continue
		}
		v, err := strconv.Atoi(x)
		if err != nil {
			continue
		}
		if v > best {
			best = v
		}
	}
	if best < 0 {
		return models.Unknown
	}
	return fmt.Sprintf("%d%%", best)
}

// DecideRainAMPM スロット天気から午前・午後・夜の降水表示を決める。
// 3スロットすべて欠測なら気象庁の値にフォールバックする。
func DecideRainAMPM(slots *models.DaySlots, jmaFallback string) (am, pm, night string) {
	if slots != nil {
		am = slots.Morning.Rain
		pm = slots.Daytime.Rain
		night = slots.Night.Rain
		if am != models.Unknown || pm != models.Unknown || night != models.Unknown {
			return am, pm, night
		}
	}
	return jmaFallback, jmaFallback, jmaFallback
}

// HighLowDisplay 統合済みレコードの気温表示文字列
func HighLowDisplay(r models.DailyWeatherRecord) (high, low string) {
	return FormatTemp(r.High), FormatTemp(r.Low)
}

var _ ForecastSource = (*jma.Client)(nil)

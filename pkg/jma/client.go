package jma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eagle-eye-api/pkg/models"
)

const (
	forecastURLFormat = "https://www.jma.go.jp/bosai/forecast/data/forecast/%s.json"
	warningURLFormat  = "https://www.jma.go.jp/bosai/warning/data/warning/%s.json"
	amedasURLFormat   = "https://www.jma.go.jp/bosai/amedas/data/point/%s/%s_1h.json"

	// WarningNone 警報・注意報なしの表示文言
	WarningNone = "特になし"
	// WarningActive 警報・注意報発表中の表示文言
	WarningActive = "気象警報・注意報 発表中"
)

// Client 気象庁API（予報・警報・アメダス）へのクライアント
type Client struct {
	httpClient *http.Client
}

// NewClient 新しい気象庁APIクライアントを作成
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// forecastReport 気象庁予報レスポンスの構造体。
// レスポンス配列の先頭が短期詳細、2番目が週間予報。
type forecastReport struct {
	PublishingOffice string `json:"publishingOffice"`
	ReportDatetime   string `json:"reportDatetime"`
	TimeSeries       []struct {
		TimeDefines []string `json:"timeDefines"`
		Areas       []struct {
			Area struct {
				Name string `json:"name"`
				Code string `json:"code"`
			} `json:"area"`
			WeatherCodes []string `json:"weatherCodes,omitempty"`
			Pops         []string `json:"pops,omitempty"`
			Temps        []string `json:"temps,omitempty"`
			TempsMin     []string `json:"tempsMin,omitempty"`
			TempsMax     []string `json:"tempsMax,omitempty"`
		} `json:"areas"`
	} `json:"timeSeries"`
}

// warningReport 警報レスポンスのうち参照する部分のみ
type warningReport struct {
	Warnings []struct {
		Status string `json:"status"`
	} `json:"warnings"`
}

// amedasPoint アメダス1時間値のうち気温のみ参照。値は[気温, 品質フラグ]。
type amedasPoint struct {
	Temp []float64 `json:"temp"`
}

// GetDailyForecasts 指定地域コードの予報を取得し、日付キーのマップに集約する
func (c *Client) GetDailyForecasts(ctx context.Context, areaCode string) (map[string]*models.DailyForecast, error) {
	url := fmt.Sprintf(forecastURLFormat, areaCode)

	var reports []forecastReport
	if err := c.getJSON(ctx, url, 15*time.Second, &reports); err != nil {
		return nil, fmt.Errorf("予報データの取得に失敗 (%s): %w", areaCode, err)
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("予報データが空です (%s)", areaCode)
	}

	return mergeReports(reports), nil
}

// ParseDailyForecasts JSONバイト列から日別予報マップを構築する
func ParseDailyForecasts(data []byte) (map[string]*models.DailyForecast, error) {
	var reports []forecastReport
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("JSON解析に失敗: %w", err)
	}
	return mergeReports(reports), nil
}

// mergeReports 短期詳細と週間予報を同一の日別マップにマージする。
// 短期の値は週間の値で上書きしない（より新しく詳細なソースを優先）。
func mergeReports(reports []forecastReport) map[string]*models.DailyForecast {
	db := make(map[string]*models.DailyForecast)
	if len(reports) == 0 {
		return db
	}

	// 短期詳細: timeSeries[0]=天気コード, [1]=降水確率, [2]=気温
	short := reports[0]
	if len(short.TimeSeries) > 0 && len(short.TimeSeries[0].Areas) > 0 {
		ts := short.TimeSeries[0]
		codes := ts.Areas[0].WeatherCodes
		for i, d := range ts.TimeDefines {
			day := ensureDay(db, dateKey(d))
			if i < len(codes) {
				day.Code = codes[i]
			}
		}
	}
	if len(short.TimeSeries) > 1 && len(short.TimeSeries[1].Areas) > 0 {
		ts := short.TimeSeries[1]
		pops := ts.Areas[0].Pops
		for i, d := range ts.TimeDefines {
			day, ok := db[dateKey(d)]
			if !ok {
				continue
			}
			if i < len(pops) {
				day.RainRaw = append(day.RainRaw, pops[i])
			}
		}
	}
	if len(short.TimeSeries) > 2 && len(short.TimeSeries[2].Areas) > 0 {
		ts := short.TimeSeries[2]
		temps := ts.Areas[0].Temps
		for i, d := range ts.TimeDefines {
			day, ok := db[dateKey(d)]
			if !ok {
				continue
			}
			if i < len(temps) {
				day.TempRaw = append(day.TempRaw, temps[i])
			}
		}
	}

	// 週間予報: timeSeries[0]=コード・降水確率, timeSeries[1]=最高最低気温
	if len(reports) > 1 && len(reports[1].TimeSeries) > 0 {
		weekly := reports[1].TimeSeries
		if len(weekly[0].Areas) > 0 {
			ts := weekly[0]
			codes := ts.Areas[0].WeatherCodes
			pops := ts.Areas[0].Pops
			for i, d := range ts.TimeDefines {
				day := ensureDay(db, dateKey(d))
				if day.Code == "" && i < len(codes) {
					day.Code = codes[i]
				}
				if len(day.RainRaw) == 0 && i < len(pops) && validReading(pops[i]) {
					day.RainRaw = []string{pops[i]}
				}
			}
		}
		if len(weekly) > 1 && len(weekly[1].Areas) > 0 {
			ts := weekly[1]
			mins := ts.Areas[0].TempsMin
			maxs := ts.Areas[0].TempsMax
			for i, d := range ts.TimeDefines {
				day, ok := db[dateKey(d)]
				if !ok {
					continue
				}
				if i < len(mins) {
					if v, err := parseReading(mins[i]); err == nil {
						day.TempMin = &v
					}
				}
				if i < len(maxs) {
					if v, err := parseReading(maxs[i]); err == nil {
						day.TempMax = &v
					}
				}
			}
		}
	}

	return db
}

// GetWarningText 警報・注意報の発表状況を表示文言で返す。
// 取得失敗は「特になし」扱い（警報の欠測で全体を止めない）。
func (c *Client) GetWarningText(ctx context.Context, areaCode string) string {
	url := fmt.Sprintf(warningURLFormat, areaCode)

	var report warningReport
	if err := c.getJSON(ctx, url, 8*time.Second, &report); err != nil {
		return WarningNone
	}

	for _, w := range report.Warnings {
		if w.Status != "発表なし" && w.Status != "解除" {
			return WarningActive
		}
	}
	return WarningNone
}

// GetStationDailyStats アメダス1時間値から当日0時以降の最高・最低気温を取得。
// 観測点コードが空、または有効な気温がない場合はnilを返す。
func (c *Client) GetStationDailyStats(ctx context.Context, stationCode string, day time.Time) (*models.StationStats, error) {
	if stationCode == "" {
		return nil, nil
	}

	url := fmt.Sprintf(amedasURLFormat, stationCode, day.In(models.JST).Format("20060102"))

	var points map[string]amedasPoint
	if err := c.getJSON(ctx, url, 10*time.Second, &points); err != nil {
		return nil, fmt.Errorf("アメダスデータの取得に失敗 (%s): %w", stationCode, err)
	}

	var stats *models.StationStats
	for _, p := range points {
		if len(p.Temp) == 0 {
			continue
		}
		t := p.Temp[0]
		if stats == nil {
			stats = &models.StationStats{Min: t, Max: t}
			continue
		}
		if t < stats.Min {
			stats.Min = t
		}
		if t > stats.Max {
			stats.Max = t
		}
	}
	return stats, nil
}

// getJSON タイムアウト付きでGETし、JSONをデコードする共通処理
func (c *Client) getJSON(ctx context.Context, url string, timeout time.Duration, out interface{}) error {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの実行に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("JSON解析に失敗: %w", err)
	}
	return nil
}

func dateKey(timeDefine string) string {
	if i := strings.Index(timeDefine, "T"); i >= 0 {
		return timeDefine[:i]
	}
	return timeDefine
}

func ensureDay(db map[string]*models.DailyForecast, key string) *models.DailyForecast {
	if day, ok := db[key]; ok {
		return day
	}
	day := &models.DailyForecast{}
	db[key] = day
	return day
}

// validReading 読み取り値が有効か（"-"や空文字は欠測扱い）
func validReading(s string) bool {
	return s != "" && s != "-"
}

// parseReading 文字列の読み取り値をfloatに変換。欠測はエラー。
func parseReading(s string) (float64, error) {
	if !validReading(s) {
		return 0, fmt.Errorf("欠測値: %q", s)
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"eagle-eye-api/pkg/models"
)

const baseURL = "https://api.open-meteo.com/v1/forecast"

// Client Open-Meteo予報APIへのクライアント。
// 時間帯スロット構築用の時間別データのみ取得する。
type Client struct {
	httpClient *http.Client
}

// NewClient 新しいOpen-Meteoクライアントを作成
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// hourlyResponse APIレスポンスのうち参照する部分。
// 欠測はnullで返るためポインタで受ける。
type hourlyResponse struct {
	Hourly struct {
		Time                     []string   `json:"time"`
		Temperature2M            []*float64 `json:"temperature_2m"`
		RelativeHumidity2M       []*float64 `json:"relative_humidity_2m"`
		PrecipitationProbability []*float64 `json:"precipitation_probability"`
		WeatherCode              []*int     `json:"weathercode"`
	} `json:"hourly"`
}

// FetchHourly 指定座標の時間別予報を今日からdays日分取得する。
// データが得られない場合はエラーを返す（呼び出し側で欠測扱いにする）。
func (c *Client) FetchHourly(ctx context.Context, lat, lon float64, days int) (*models.HourlySeries, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("hourly", "temperature_2m,relative_humidity_2m,precipitation_probability,weathercode")
	q.Set("timezone", "Asia/Tokyo")
	q.Set("forecast_days", strconv.Itoa(days))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Open-Meteo API呼び出しエラー: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Open-Meteo API応答エラー: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}

	var parsed hourlyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("JSON解析に失敗: %w", err)
	}

	return &models.HourlySeries{
		Time:     parsed.Hourly.Time,
		Temp:     parsed.Hourly.Temperature2M,
		Humidity: parsed.Hourly.RelativeHumidity2M,
		Pop:      parsed.Hourly.PrecipitationProbability,
		Code:     parsed.Hourly.WeatherCode,
	}, nil
}

package models

import "time"

// JST 日本標準時（全エリア共通のタイムゾーン）
var JST = time.FixedZone("JST", 9*60*60)

// Unknown 表示用の「不明」センチネル値
const Unknown = "-"

// 時間帯スロットの識別子
const (
	SlotMorning = "morning"
	SlotDaytime = "daytime"
	SlotNight   = "night"
)

// Area 配信対象エリアの定義（静的設定から読み込み、実行中は不変）
type Area struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	JMACode    string  `json:"jma_code" yaml:"jma_code"`
	AmedasCode string  `json:"amedas_code" yaml:"amedas_code"`
	Lat        float64 `json:"lat" yaml:"lat"`
	Lon        float64 `json:"lon" yaml:"lon"`
	Feature    string  `json:"feature" yaml:"feature"`
}

// DailyForecast 気象庁予報から日付ごとに集約した生データ。
// TempRaw は短期予報の気温読み取り値（文字列のまま保持）、
// TempMin/TempMax は週間予報のサマリー値。
type DailyForecast struct {
	Code    string   `json:"code"`
	RainRaw []string `json:"rain_raw"`
	TempRaw []string `json:"temp_raw"`
	TempMin *float64 `json:"temp_min"`
	TempMax *float64 `json:"temp_max"`
}

// StationStats アメダス当日観測の最高・最低気温
type StationStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// HourlySeries 時間別予報の時系列。欠損値はnilで表現する。
type HourlySeries struct {
	Time     []string
	Temp     []*float64
	Humidity []*float64
	Pop      []*float64
	Code     []*int
}

// DailyWeatherRecord 複数ソースを統合した日別の気象レコード
type DailyWeatherRecord struct {
	Condition   string   `json:"condition"`
	High        *float64 `json:"high"`
	Low         *float64 `json:"low"`
	RainDisplay string   `json:"rain_display"`
	Warning     string   `json:"warning"`
}

// SlotWeather 時間帯スロットごとの代表気象値（表示用文字列）
type SlotWeather struct {
	Weather  string `json:"weather"`
	Temp     string `json:"temp"`
	TempHigh string `json:"temp_high"`
	TempLow  string `json:"temp_low"`
	Humidity string `json:"humidity"`
	Rain     string `json:"rain"`
	Code     *int   `json:"wcode"`
}

// DaySlots 朝・昼・夜の3スロット
type DaySlots struct {
	Morning SlotWeather `json:"morning"`
	Daytime SlotWeather `json:"daytime"`
	Night   SlotWeather `json:"night"`
}

// Get スロット名からSlotWeatherを取得
func (d *DaySlots) Get(name string) SlotWeather {
	switch name {
	case SlotMorning:
		return d.Morning
	case SlotDaytime:
		return d.Daytime
	default:
		return d.Night
	}
}

// WeatherOverview ForecastEntryに埋め込む天気概況。
// RainAM等は長期予測エントリではnull。
type WeatherOverview struct {
	Condition string  `json:"condition"`
	High      string  `json:"high"`
	Low       string  `json:"low"`
	Rain      string  `json:"rain"`
	RainAM    *string `json:"rain_am"`
	RainPM    *string `json:"rain_pm"`
	RainNight *string `json:"rain_night"`
	Warning   string  `json:"warning"`
}

// TimelineSlot タイムライン内の1スロット（天気サマリー＋職業別アドバイス）
type TimelineSlot struct {
	Weather  string            `json:"weather"`
	Temp     string            `json:"temp"`
	TempHigh string            `json:"temp_high"`
	TempLow  string            `json:"temp_low"`
	Humidity string            `json:"humidity"`
	Rain     string            `json:"rain"`
	Advice   map[string]string `json:"advice"`
}

// Timeline 朝・昼・夜のタイムライン
type Timeline struct {
	Morning TimelineSlot `json:"morning"`
	Daytime TimelineSlot `json:"daytime"`
	Night   TimelineSlot `json:"night"`
}

// ForecastEntry 出力の単位。AI生成のリッチエントリ、または
// フォールバックの簡易エントリ（IsLongTerm=true、Timeline=nil）のいずれか。
// 生成後は不変。
type ForecastEntry struct {
	Date              string            `json:"date"`
	IsLongTerm        bool              `json:"is_long_term"`
	Rank              string            `json:"rank"`
	WeatherOverview   WeatherOverview   `json:"weather_overview"`
	EventTrafficFacts []string          `json:"event_traffic_facts"`
	PeakWindows       map[string]string `json:"peak_windows"`
	JobActions        map[string]string `json:"job_actions"`
	DailySchedule     string            `json:"daily_schedule_and_impact"`
	Timeline          *Timeline         `json:"timeline"`
	Confidence        int               `json:"confidence"`
}

// DateLabel 出力用の日付ラベル（例: "01月02日 (金)"）
func DateLabel(t time.Time) string {
	wd := []string{"日", "月", "火", "水", "木", "金", "土"}[t.Weekday()]
	return t.Format("01月02日") + " (" + wd + ")"
}

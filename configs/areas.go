package config

import (
	"fmt"
	"os"

	"eagle-eye-api/pkg/models"

	"gopkg.in/yaml.v3"
)

// JobKeys 固定の職業カテゴリ（MVPは5職種）
var JobKeys = []string{"taxi", "delivery", "restaurant", "retail", "hotel"}

// AreaConfig エリア・祝日・職業カテゴリの静的設定。
// 実行中は不変。YAMLファイルで差し替え可能（テスト用の小規模テーブル等）。
type AreaConfig struct {
	Areas    []models.Area `yaml:"areas"`
	Holidays []string      `yaml:"holidays"`
	JobKeys  []string      `yaml:"job_keys"`
}

// HolidaySet 祝日をYYYY-MM-DDキーのセットとして返す
func (c *AreaConfig) HolidaySet() map[string]bool {
	set := make(map[string]bool, len(c.Holidays))
	for _, d := range c.Holidays {
		set[d] = true
	}
	return set
}

// LoadAreaConfig エリア設定を読み込む。pathが空なら組み込みのデフォルトを返す。
func LoadAreaConfig(path string) (*AreaConfig, error) {
	if path == "" {
		return DefaultAreaConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("エリア設定ファイルの読み込みに失敗: %w", err)
	}

	cfg := &AreaConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("エリア設定のYAML解析に失敗: %w", err)
	}

	if len(cfg.Areas) == 0 {
		return nil, fmt.Errorf("エリア設定にareasがありません: %s", path)
	}
	if len(cfg.JobKeys) == 0 {
		cfg.JobKeys = JobKeys
	}
	return cfg, nil
}

// DefaultAreaConfig 組み込みのデフォルト設定（対象30エリア・2026年祝日）
func DefaultAreaConfig() *AreaConfig {
	return &AreaConfig{
		Areas:    defaultAreas,
		Holidays: holidays2026,
		JobKeys:  JobKeys,
	}
}

// --- 2026年の祝日（振替含む） ---
var holidays2026 = []string{
	"2026-01-01", "2026-01-12", "2026-02-11", "2026-02-23", "2026-03-20",
	"2026-04-29", "2026-05-03", "2026-05-04", "2026-05-05", "2026-05-06",
	"2026-07-20", "2026-08-11", "2026-09-21", "2026-09-22", "2026-09-23",
	"2026-10-12", "2026-11-03", "2026-11-23", "2026-11-24",
}

// --- 対象エリア（30） ---
var defaultAreas = []models.Area{
	{ID: "hakodate", Name: "北海道 函館", JMACode: "014100", AmedasCode: "23411", Lat: 41.7687, Lon: 140.7288, Feature: "観光・夜景・海鮮。冬は雪の影響大。クルーズ船寄港地。"},
	{ID: "sapporo", Name: "北海道 札幌", JMACode: "016000", AmedasCode: "14163", Lat: 43.0618, Lon: 141.3545, Feature: "北日本最大の歓楽街ススキノ。雪まつり等のイベント。"},
	{ID: "sendai", Name: "宮城 仙台", JMACode: "040000", AmedasCode: "34392", Lat: 38.2682, Lon: 140.8694, Feature: "東北のビジネス拠点。国分町の夜間需要。"},
	{ID: "tokyo_marunouchi", Name: "東京 丸の内・東京駅", JMACode: "130000", AmedasCode: "44132", Lat: 35.6812, Lon: 139.7671, Feature: "日本のビジネス中心地。出張・接待・富裕層需要。"},
	{ID: "tokyo_ginza", Name: "東京 銀座・新橋", JMACode: "130000", AmedasCode: "44132", Lat: 35.6701, Lon: 139.7630, Feature: "夜の接待需要とサラリーマンの聖地。高級店多し。"},
	{ID: "tokyo_shinjuku", Name: "東京 新宿・歌舞伎町", JMACode: "130000", AmedasCode: "44132", Lat: 35.6914, Lon: 139.7020, Feature: "世界一の乗降客数と眠らない街。タクシー需要最強。"},
	{ID: "tokyo_shibuya", Name: "東京 渋谷・原宿", JMACode: "130000", AmedasCode: "44132", Lat: 35.6580, Lon: 139.7016, Feature: "若者とインバウンド、IT企業の街。トレンド発信地。"},
	{ID: "tokyo_roppongi", Name: "東京 六本木・赤坂", JMACode: "130000", AmedasCode: "44132", Lat: 35.6641, Lon: 139.7336, Feature: "富裕層、外国人、メディア関係者の夜の移動。"},
	{ID: "tokyo_ikebukuro", Name: "東京 池袋", JMACode: "130000", AmedasCode: "44132", Lat: 35.7295, Lon: 139.7109, Feature: "埼玉方面への玄関口、サブカルチャー。"},
	{ID: "tokyo_shinagawa", Name: "東京 品川・高輪", JMACode: "130000", AmedasCode: "44132", Lat: 35.6285, Lon: 139.7397, Feature: "リニア・新幹線拠点。ホテルとビジネス需要。"},
	{ID: "tokyo_ueno", Name: "東京 上野", JMACode: "130000", AmedasCode: "44132", Lat: 35.7141, Lon: 139.7741, Feature: "北の玄関口、美術館、アメ横。観光客多し。"},
	{ID: "tokyo_asakusa", Name: "東京 浅草", JMACode: "130000", AmedasCode: "44132", Lat: 35.7119, Lon: 139.7983, Feature: "インバウンド観光の絶対王者。人力車や食べ歩き。"},
	{ID: "tokyo_akihabara", Name: "東京 秋葉原・神田", JMACode: "130000", AmedasCode: "44132", Lat: 35.6983, Lon: 139.7731, Feature: "オタク文化とビジネスの融合。電気街。"},
	{ID: "tokyo_omotesando", Name: "東京 表参道・青山", JMACode: "130000", AmedasCode: "44132", Lat: 35.6652, Lon: 139.7123, Feature: "ファッション、富裕層のランチ・買い物需要。"},
	{ID: "tokyo_ebisu", Name: "東京 恵比寿・代官山", JMACode: "130000", AmedasCode: "44132", Lat: 35.6467, Lon: 139.7101, Feature: "オシャレな飲食需要、タクシー利用率高め。"},
	{ID: "tokyo_odaiba", Name: "東京 お台場・有明", JMACode: "130000", AmedasCode: "44132", Lat: 35.6278, Lon: 139.7745, Feature: "ビッグサイトのイベント、観光、デートスポット。"},
	{ID: "tokyo_toyosu", Name: "東京 豊洲・湾岸", JMACode: "130000", AmedasCode: "44132", Lat: 35.6568, Lon: 139.7960, Feature: "タワマン住民の生活需要と市場関係。"},
	{ID: "tokyo_haneda", Name: "東京 羽田空港エリア", JMACode: "130000", AmedasCode: "44166", Lat: 35.5494, Lon: 139.7798, Feature: "旅行・出張客の送迎需要。天候による遅延影響。"},
	{ID: "chiba_maihama", Name: "千葉 舞浜(ディズニー)", JMACode: "120000", AmedasCode: "45156", Lat: 35.6329, Lon: 139.8804, Feature: "ディズニーリゾート。イベントと天候への依存度極大。"},
	{ID: "kanagawa_yokohama", Name: "神奈川 横浜", JMACode: "140000", AmedasCode: "46106", Lat: 35.4437, Lon: 139.6380, Feature: "みなとみらい観光とビジネスが融合。中華街。"},
	{ID: "aichi_nagoya", Name: "愛知 名古屋", JMACode: "230000", AmedasCode: "51106", Lat: 35.1815, Lon: 136.9066, Feature: "トヨタ系ビジネスと独自の飲食文化。車社会。"},
	{ID: "osaka_kita", Name: "大阪 キタ (梅田)", JMACode: "270000", AmedasCode: "62078", Lat: 34.7025, Lon: 135.4959, Feature: "西日本最大のビジネス街兼繁華街。地下街発達。"},
	{ID: "osaka_minami", Name: "大阪 ミナミ (難波)", JMACode: "270000", AmedasCode: "62078", Lat: 34.6655, Lon: 135.5011, Feature: "インバウンド人気No.1。食い倒れの街。"},
	{ID: "osaka_hokusetsu", Name: "大阪 北摂", JMACode: "270000", AmedasCode: "62078", Lat: 34.7809, Lon: 135.4624, Feature: "伊丹空港/新幹線・ビジネス・高級住宅街。"},
	{ID: "osaka_bay", Name: "大阪 ベイエリア(USJ)", JMACode: "270000", AmedasCode: "62078", Lat: 34.6654, Lon: 135.4323, Feature: "USJや海遊館。海風強くイベント依存度高い。"},
	{ID: "osaka_tennoji", Name: "大阪 天王寺・阿倍野", JMACode: "270000", AmedasCode: "62078", Lat: 34.6477, Lon: 135.5135, Feature: "ハルカス/通天閣。新旧文化の融合。"},
	{ID: "kyoto_shijo", Name: "京都 四条河原町", JMACode: "260000", AmedasCode: "61286", Lat: 35.0037, Lon: 135.7706, Feature: "世界最強の観光都市。インバウンド需要が桁違い。"},
	{ID: "hyogo_kobe", Name: "兵庫 神戸(三宮)", JMACode: "280000", AmedasCode: "63518", Lat: 34.6946, Lon: 135.1956, Feature: "オシャレな港町。観光とビジネス。"},
	{ID: "hiroshima", Name: "広島", JMACode: "340000", AmedasCode: "67437", Lat: 34.3853, Lon: 132.4553, Feature: "平和公園・宮島。欧米系インバウンド多い。"},
	{ID: "fukuoka", Name: "福岡 博多・中洲", JMACode: "400000", AmedasCode: "82182", Lat: 33.5902, Lon: 130.4017, Feature: "アジアの玄関口。屋台文化など夜の需要が強い。"},
	{ID: "okinawa_naha", Name: "沖縄 那覇", JMACode: "471000", AmedasCode: "91197", Lat: 26.2124, Lon: 127.6809, Feature: "国際通り。観光客メイン。台風等の天候影響大。"},
}

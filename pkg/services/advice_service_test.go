package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "eagle-eye-api/configs"
	"eagle-eye-api/pkg/models"
)

func testSynthesizer(gen ReportGenerator) *AdviceSynthesizer {
	cfg := config.DefaultAreaConfig()
	return NewAdviceSynthesizer(gen, cfg.JobKeys, cfg.HolidaySet())
}

func TestBaseRank(t *testing.T) {
	s := testSynthesizer(&fakeGenerator{})

	testCases := []struct {
		date     string
		expected string
		reason   string
	}{
		{"2026-02-04", "C", "平日（水曜）"},
		{"2026-02-06", "B", "金曜"},
		{"2026-02-07", "B", "土曜"},
		{"2026-02-08", "C", "日曜は昇格しない"},
		{"2026-02-11", "B", "祝日（建国記念の日）"},
		{"2026-02-10", "B", "祝前日"},
		{"2026-05-05", "B", "祝日かつ祝前日"},
	}
	for _, tc := range testCases {
		d, err := time.ParseInLocation("2006-01-02", tc.date, models.JST)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, s.BaseRank(d), "%s: %s", tc.date, tc.reason)
	}
}

func TestBuildLongTermEntry(t *testing.T) {
	s := testSynthesizer(&fakeGenerator{})
	d := time.Date(2026, 2, 6, 0, 0, 0, 0, models.JST)

	entry := s.BuildLongTermEntry(d, "安定した冬型の気圧配置。")

	assert.True(t, entry.IsLongTerm)
	assert.Nil(t, entry.Timeline)
	assert.Equal(t, 0, entry.Confidence)
	assert.Equal(t, "02月06日 (金)", entry.Date)
	assert.Equal(t, "B", entry.Rank)
	assert.Equal(t, "☁️", entry.WeatherOverview.Condition)
	assert.Equal(t, models.Unknown, entry.WeatherOverview.High)
	assert.Nil(t, entry.WeatherOverview.RainAM)
	assert.Empty(t, entry.EventTrafficFacts)
	assert.Contains(t, entry.DailySchedule, "【02月06日の長期予測】")
	assert.Contains(t, entry.DailySchedule, "安定した冬型の気圧配置。")

	// 全職業キーが空文字で埋まっている
	for _, k := range config.JobKeys {
		v, ok := entry.PeakWindows[k]
		assert.True(t, ok, "peak_windows に %s が無い", k)
		assert.Equal(t, "", v)
		_, ok = entry.JobActions[k]
		assert.True(t, ok, "job_actions に %s が無い", k)
	}
}

func TestGenerateRichEntrySanitizesPartialResponse(t *testing.T) {
	// LLMが一部の職業キーやフィールドを落としても、
	// 全職業キーが埋まり天気概況が観測値で補完される。
	gen := &fakeGenerator{
		available: true,
		jsonText: `{
			"rank": "A",
			"peak_windows": {"taxi": "18-22時"},
			"job_actions": {"taxi": "駅前待機を厚めに"},
			"daily_schedule_and_impact": "■総括\n夜に需要集中。",
			"timeline": {
				"morning": {"advice": {"taxi": "朝は控えめ"}}
			},
			"confidence": 78
		}`,
	}
	s := testSynthesizer(gen)

	d := time.Date(2026, 2, 6, 0, 0, 0, 0, models.JST)
	day := &models.DailyForecast{Code: "101", RainRaw: []string{"10", "30"}}
	rec := models.DailyWeatherRecord{
		Condition:   "101",
		High:        fp(12),
		Low:         fp(4),
		RainDisplay: "30%",
		Warning:     "特になし",
	}
	slots := NewSlotBuilder().BuildDaySlots(hourlyFixture(), d)
	require.NotNil(t, slots)

	entry, err := s.GenerateRichEntry(context.Background(), testArea(), d, day, rec, slots, "")
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.False(t, entry.IsLongTerm)
	assert.Equal(t, "A", entry.Rank)
	assert.Equal(t, 78, entry.Confidence)
	assert.Equal(t, "02月06日 (金)", entry.Date)

	// 欠けた天気概況は観測ベースで補完
	assert.Equal(t, "☀️", entry.WeatherOverview.Condition)
	assert.Equal(t, "最高12℃", entry.WeatherOverview.High)
	assert.Equal(t, "最低4℃", entry.WeatherOverview.Low)
	require.NotNil(t, entry.WeatherOverview.RainAM)
	assert.Equal(t, slots.Morning.Rain, *entry.WeatherOverview.RainAM)
	assert.Equal(t, "特になし", entry.WeatherOverview.Warning)

	// 全職業キーの網羅（欠けたキーは空文字）
	require.NotNil(t, entry.Timeline)
	for _, m := range []map[string]string{
		entry.PeakWindows,
		entry.JobActions,
		entry.Timeline.Morning.Advice,
		entry.Timeline.Daytime.Advice,
		entry.Timeline.Night.Advice,
	} {
		for _, k := range config.JobKeys {
			_, ok := m[k]
			assert.True(t, ok, "職業キー %s が欠けている", k)
		}
	}
	assert.Equal(t, "18-22時", entry.PeakWindows["taxi"])
	assert.Equal(t, "", entry.PeakWindows["hotel"])
	assert.Equal(t, "朝は控えめ", entry.Timeline.Morning.Advice["taxi"])

	// タイムラインの天気はスロット値で穴埋め
	assert.Equal(t, slots.Daytime.Temp, entry.Timeline.Daytime.Temp)
	assert.Equal(t, slots.Night.Rain, entry.Timeline.Night.Rain)
}

func TestGenerateRichEntryWithoutSlots(t *testing.T) {
	// スロットが構築できない日はJMAの値だけでタイムラインを埋める
	gen := &fakeGenerator{available: true, jsonText: `{}`}
	s := testSynthesizer(gen)

	d := time.Date(2026, 2, 10, 0, 0, 0, 0, models.JST)
	day := &models.DailyForecast{Code: "300", RainRaw: []string{"70"}}
	rec := models.DailyWeatherRecord{Condition: "300", RainDisplay: "70%", Warning: "特になし"}

	entry, err := s.GenerateRichEntry(context.Background(), testArea(), d, day, rec, nil, "")
	require.NoError(t, err)

	require.NotNil(t, entry.Timeline)
	assert.Equal(t, "☔", entry.Timeline.Morning.Weather)
	assert.Equal(t, "70%", entry.Timeline.Morning.Rain)
	require.NotNil(t, entry.WeatherOverview.RainAM)
	assert.Equal(t, "70%", *entry.WeatherOverview.RainAM)
	assert.Equal(t, "午前70% / 午後70%", entry.WeatherOverview.Rain)
}

func TestGenerateRichEntryFailure(t *testing.T) {
	s := testSynthesizer(&fakeGenerator{available: true, jsonErr: assert.AnError})

	d := time.Date(2026, 2, 6, 0, 0, 0, 0, models.JST)
	_, err := s.GenerateRichEntry(context.Background(), testArea(), d, nil, models.DailyWeatherRecord{RainDisplay: models.Unknown}, nil, "")
	assert.Error(t, err)
}

func TestGenerateRichEntryUnavailable(t *testing.T) {
	s := testSynthesizer(&fakeGenerator{available: false})

	d := time.Date(2026, 2, 6, 0, 0, 0, 0, models.JST)
	_, err := s.GenerateRichEntry(context.Background(), testArea(), d, nil, models.DailyWeatherRecord{RainDisplay: models.Unknown}, nil, "")
	assert.Error(t, err)
}

func TestLongTermText(t *testing.T) {
	// LLMなしは固定文
	s := testSynthesizer(&fakeGenerator{available: false})
	text := s.LongTermText(context.Background(), testArea())
	assert.Contains(t, text, "東京 新宿・歌舞伎町")
	assert.Contains(t, text, "季節の変わり目")

	// LLMありは検索結果を採用
	s = testSynthesizer(&fakeGenerator{available: true, searchText: " 2月は雪の可能性。 "})
	assert.Equal(t, "2月は雪の可能性。", s.LongTermText(context.Background(), testArea()))

	// 検索失敗は固定文に戻る
	s = testSynthesizer(&fakeGenerator{available: true, searchErr: assert.AnError})
	assert.True(t, strings.Contains(s.LongTermText(context.Background(), testArea()), "季節の変わり目"))
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"eagle-eye-api/pkg/gemini"
	"eagle-eye-api/pkg/models"
)

// AdviceSynthesizer 職業別アドバイス付きレポートの生成を担うサービス。
// LLMが使える日はリッチなレポート、それ以外は決定的なフォールバックを作る。
type AdviceSynthesizer struct {
	gen      ReportGenerator
	jobKeys  []string
	holidays map[string]bool
}

// NewAdviceSynthesizer 新しいAdviceSynthesizerを作成
func NewAdviceSynthesizer(gen ReportGenerator, jobKeys []string, holidays map[string]bool) *AdviceSynthesizer {
	return &AdviceSynthesizer{
		gen:      gen,
		jobKeys:  jobKeys,
		holidays: holidays,
	}
}

// BaseRank 日付から決定的に需要ランクを決める。
// 既定はC。金曜・土曜、祝日、祝前日はBに昇格する。降格はしない。
func (s *AdviceSynthesizer) BaseRank(date time.Time) string {
	rank := "C"
	if wd := date.Weekday(); wd == time.Friday || wd == time.Saturday {
		rank = "B"
	}
	if s.holidays[date.Format("2006-01-02")] {
		rank = "B"
	}
	if s.holidays[date.AddDate(0, 0, 1).Format("2006-01-02")] {
		rank = "B"
	}
	return rank
}

// LongTermText 長期予測エントリ共通の傾向テキストを返す。
// LLMが使えれば検索で補強し、失敗時は固定文に落とす。
func (s *AdviceSynthesizer) LongTermText(ctx context.Context, area models.Area) string {
	base := fmt.Sprintf(
		"エリア: %s\n向こう数ヶ月は季節の変わり目で天候が変動しやすい時期です。\n雨・強風・寒暖差で移動需要や外出行動がブレるため、当日朝の最新情報を前提に運用してください。\n",
		area.Name,
	)
	if !s.gen.Available() {
		return base
	}

	prompt := fmt.Sprintf(
		"エリア: %s\n向こう3ヶ月の気象傾向と主要イベントの傾向をGoogle検索し、自然な日本語の短い文章でまとめて。\nJSON形式は禁止。Markdownテキストのみ。\n",
		area.Name,
	)
	res, err := s.gen.GenerateWithSearch(ctx, prompt)
	if err != nil || strings.TrimSpace(res) == "" {
		return base
	}
	return strings.TrimSpace(res)
}

// BuildLongTermEntry 長期予測のフォールバックエントリを組み立てる。
// 天気は全て不明表示、タイムラインなし、信頼度0。常に成功する。
func (s *AdviceSynthesizer) BuildLongTermEntry(date time.Time, longTermText string) models.ForecastEntry {
	return models.ForecastEntry{
		Date:       models.DateLabel(date),
		IsLongTerm: true,
		Rank:       s.BaseRank(date),
		WeatherOverview: models.WeatherOverview{
			Condition: "☁️",
			High:      models.Unknown,
			Low:       models.Unknown,
			Rain:      models.Unknown,
			Warning:   models.Unknown,
		},
		EventTrafficFacts: []string{},
		PeakWindows:       s.emptyJobMap(),
		JobActions:        s.emptyJobMap(),
		DailySchedule:     fmt.Sprintf("【%sの長期予測】\n\n■長期傾向\n%s\n", date.Format("01月02日"), longTermText),
		Timeline:          nil,
		Confidence:        0,
	}
}

// GenerateRichEntry LLMで近日分のリッチエントリを生成する。
// 失敗したらエラーを返し、呼び出し側がBuildLongTermEntryに切り替える。
func (s *AdviceSynthesizer) GenerateRichEntry(ctx context.Context, area models.Area, date time.Time, day *models.DailyForecast, rec models.DailyWeatherRecord, slots *models.DaySlots, factsText string) (*models.ForecastEntry, error) {
	if !s.gen.Available() {
		return nil, fmt.Errorf("LLMが利用できません")
	}

	code := "200"
	if day != nil && day.Code != "" {
		code = day.Code
	}
	emoji := models.EmojiForJMACode(code)

	high, low := HighLowDisplay(rec)
	jmaRain := rec.RainDisplay

	if slots == nil {
		fallback := EmptySlot()
		fallback.Weather = emoji
		fallback.Rain = jmaRain
		slots = &models.DaySlots{Morning: fallback, Daytime: fallback, Night: fallback}
	}

	rainAM, rainPM, rainNight := DecideRainAMPM(slots, jmaRain)
	rainDisplay := fmt.Sprintf("午前%s / 午後%s", rainAM, rainPM)

	facts := ParseFacts(factsText)

	hint := s.schemaHint(date, emoji, high, low, rainDisplay, rainAM, rainPM, rainNight, rec.Warning, slots)
	prompt := s.buildReportPrompt(area, date, code, emoji, high, low, rainAM, rainPM, rainNight, rec.Warning, slots, facts, hint)

	res, err := s.gen.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("レポート生成に失敗: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(gemini.ExtractJSONBlock(res)), &raw); err != nil {
		return nil, fmt.Errorf("レポートのJSON解析に失敗: %w", err)
	}

	entry := s.sanitize(raw, date, emoji, high, low, rainDisplay, rainAM, rainPM, rainNight, rec.Warning, slots, facts)
	return &entry, nil
}

// schemaHint LLMに提示する出力スキーマの見本を組み立てる
func (s *AdviceSynthesizer) schemaHint(date time.Time, emoji, high, low, rainDisplay, rainAM, rainPM, rainNight, warning string, slots *models.DaySlots) string {
	timeline := &models.Timeline{
		Morning: s.hintSlot(slots.Morning),
		Daytime: s.hintSlot(slots.Daytime),
		Night:   s.hintSlot(slots.Night),
	}
	hint := models.ForecastEntry{
		Date:       models.DateLabel(date),
		IsLongTerm: false,
		Rank:       "S/A/B/C",
		WeatherOverview: models.WeatherOverview{
			Condition: emoji,
			High:      fmt.Sprintf("最高%s℃", high),
			Low:       fmt.Sprintf("最低%s℃", low),
			Rain:      rainDisplay,
			RainAM:    &rainAM,
			RainPM:    &rainPM,
			RainNight: &rainNight,
			Warning:   warning,
		},
		EventTrafficFacts: []string{"(max 6)"},
		PeakWindows:       s.emptyJobMap(),
		JobActions:        s.emptyJobMap(),
		DailySchedule:     "レポート本文（改行OK。最後に職業別要点を含める）",
		Timeline:          timeline,
		Confidence:        0,
	}
	b, _ := json.MarshalIndent(hint, "", "  ")
	return string(b)
}

func (s *AdviceSynthesizer) hintSlot(w models.SlotWeather) models.TimelineSlot {
	return models.TimelineSlot{
		Weather:  w.Weather,
		Temp:     w.Temp,
		TempHigh: w.TempHigh,
		TempLow:  w.TempLow,
		Humidity: w.Humidity,
		Rain:     w.Rain,
		Advice:   s.emptyJobMap(),
	}
}

// buildReportPrompt 事実セットとルールからレポート生成プロンプトを組み立てる
func (s *AdviceSynthesizer) buildReportPrompt(area models.Area, date time.Time, code, emoji, high, low, rainAM, rainPM, rainNight, warning string, slots *models.DaySlots, facts []string, hint string) string {
	factsText := "(特段の情報なし)"
	if len(facts) > 0 {
		lines := make([]string, len(facts))
		for i, f := range facts {
			lines[i] = "- " + f
		}
		factsText = strings.Join(lines, "\n")
	}

	slotLine := func(label string, w models.SlotWeather) string {
		return fmt.Sprintf("%s: %s / 気温 %s（高%s 低%s）/ 湿度 %s / 降水 %s",
			label, w.Weather, w.Temp, w.TempHigh, w.TempLow, w.Humidity, w.Rain)
	}

	factsBlock := strings.Join([]string{
		"[Area]",
		area.Name,
		fmt.Sprintf("特徴: %s", area.Feature),
		"",
		"[Date]",
		fmt.Sprintf("%s / %s", date.Format("2006-01-02"), models.DateLabel(date)),
		"",
		"[Weather Overview]",
		fmt.Sprintf("天気: %s (JMA code %s)", emoji, code),
		fmt.Sprintf("最高: %s℃ / 最低: %s℃", high, low),
		fmt.Sprintf("降水（Open-Meteo/10%%丸め）: 午前%s / 午後%s / 夜%s", rainAM, rainPM, rainNight),
		fmt.Sprintf("警報注意報: %s", warning),
		"",
		"[Time Slots Weather]（Open-Meteo/10%丸め）",
		slotLine("朝(06-12)", slots.Morning),
		slotLine("昼(12-18)", slots.Daytime),
		slotLine("夜(18-24)", slots.Night),
		"",
		"[Event & Traffic Facts]",
		factsText,
	}, "\n")

	var b strings.Builder
	b.WriteString("あなたは世界トップクラスの戦略コンサルタントです。\n")
	fmt.Fprintf(&b, "以下の事実セットから、%d個の職業（%s）向けに、\n", len(s.jobKeys), strings.Join(s.jobKeys, "/"))
	b.WriteString("「その職業の意思決定が変わる」具体的な提案を作ってください。\n\n")
	b.WriteString("【ルール】\n")
	b.WriteString("- フェイク禁止。事実セットにない固有名詞を勝手に作らない。\n")
	b.WriteString("- 曖昧なら「未確認」と明記。\n")
	b.WriteString("- 断定の命令口調は禁止。\n")
	b.WriteString("- 一般論だけは禁止。必ず事実セット（天候/交通/イベント）に結びつける。\n")
	b.WriteString("- peak_windows / timeline.*.advice / job_actions は必ず全職業キーを埋める。\n")
	b.WriteString("- job_actions は「職業別の打ち手（要点）」として各職業1行で高密度（区切りは「｜」推奨）。\n\n")
	b.WriteString("【出力はJSONのみ】\n")
	b.WriteString("次のスキーマを満たすこと（キー追加は可。ただし最低限これを満たす）。\n\n")
	b.WriteString(hint)
	b.WriteString("\n\n【レポート本文（daily_schedule_and_impact）に含めるべき構成】\n")
	b.WriteString("- ■Event & Traffic（事実セットの範囲で段落分けして要約）\n")
	b.WriteString("- ■総括（その日全体の読み：短め）\n")
	b.WriteString("- ■職業別の打ち手（要点）\n")
	b.WriteString("  ・タクシー: ...\n")
	b.WriteString("  ・デリバリー: ...\n")
	b.WriteString("  ・飲食店: ...\n")
	b.WriteString("  ・小売: ...\n")
	b.WriteString("  ・ホテル: ...\n\n")
	b.WriteString("【事実セット】\n")
	b.WriteString(factsBlock)
	return b.String()
}

// sanitize LLM応答を検証し、欠けたフィールドを決定的な値で補完する。
// peak_windows / job_actions / timeline.*.advice は必ず全職業キーを持つ。
func (s *AdviceSynthesizer) sanitize(raw map[string]any, date time.Time, emoji, high, low, rainDisplay, rainAM, rainPM, rainNight, warning string, slots *models.DaySlots, facts []string) models.ForecastEntry {
	entry := models.ForecastEntry{
		Date:       strOr(raw, "date", models.DateLabel(date)),
		IsLongTerm: false,
		Rank:       strOr(raw, "rank", s.BaseRank(date)),
	}

	wo := asMap(raw["weather_overview"])
	entry.WeatherOverview = models.WeatherOverview{
		Condition: strOr(wo, "condition", emoji),
		High:      strOr(wo, "high", fmt.Sprintf("最高%s℃", high)),
		Low:       strOr(wo, "low", fmt.Sprintf("最低%s℃", low)),
		Rain:      strOr(wo, "rain", rainDisplay),
		RainAM:    strPtrOr(wo, "rain_am", rainAM),
		RainPM:    strPtrOr(wo, "rain_pm", rainPM),
		RainNight: strPtrOr(wo, "rain_night", rainNight),
		Warning:   strOr(wo, "warning", warning),
	}

	entry.EventTrafficFacts = facts
	if list, ok := raw["event_traffic_facts"].([]any); ok {
		cleaned := []string{}
		for _, v := range list {
			if str := strings.TrimSpace(fmt.Sprint(v)); str != "" {
				cleaned = append(cleaned, str)
			}
			if len(cleaned) >= maxFacts {
				break
			}
		}
		entry.EventTrafficFacts = cleaned
	}

	entry.PeakWindows = s.jobMap(asMap(raw["peak_windows"]))
	entry.JobActions = s.jobMap(asMap(raw["job_actions"]))
	entry.DailySchedule = strOr(raw, "daily_schedule_and_impact", "")

	tl := asMap(raw["timeline"])
	timeline := models.Timeline{
		Morning: s.sanitizeSlot(asMap(tl[models.SlotMorning]), slots.Morning),
		Daytime: s.sanitizeSlot(asMap(tl[models.SlotDaytime]), slots.Daytime),
		Night:   s.sanitizeSlot(asMap(tl[models.SlotNight]), slots.Night),
	}
	entry.Timeline = &timeline

	if conf, ok := raw["confidence"].(float64); ok {
		entry.Confidence = int(conf)
	}
	return entry
}

// sanitizeSlot タイムラインの1スロットを検証し、観測ベースの値で穴埋めする
func (s *AdviceSynthesizer) sanitizeSlot(src map[string]any, base models.SlotWeather) models.TimelineSlot {
	orBase := func(key, fallback string) string {
		if v := strings.TrimSpace(strOr(src, key, "")); v != "" {
			return v
		}
		if fallback != "" {
			return fallback
		}
		return models.Unknown
	}
	return models.TimelineSlot{
		Weather:  orBase("weather", base.Weather),
		Temp:     orBase("temp", base.Temp),
		TempHigh: orBase("temp_high", base.TempHigh),
		TempLow:  orBase("temp_low", base.TempLow),
		Humidity: orBase("humidity", base.Humidity),
		Rain:     orBase("rain", base.Rain),
		Advice:   s.jobMap(asMap(src["advice"])),
	}
}

// jobMap 入力マップから全職業キーを保証したマップを作る
func (s *AdviceSynthesizer) jobMap(src map[string]any) map[string]string {
	out := make(map[string]string, len(s.jobKeys))
	for _, k := range s.jobKeys {
		out[k] = strings.TrimSpace(strOr(src, k, ""))
	}
	return out
}

func (s *AdviceSynthesizer) emptyJobMap() map[string]string {
	out := make(map[string]string, len(s.jobKeys))
	for _, k := range s.jobKeys {
		out[k] = ""
	}
	return out
}

// --- 型ゆるめのJSONヘルパー ---

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func strOr(m map[string]any, key, def string) string {
	if m == nil {
		return def
	}
	if v, ok := m[key]; ok && v != nil {
		if str, ok := v.(string); ok && str != "" {
			return str
		}
	}
	return def
}

func strPtrOr(m map[string]any, key, def string) *string {
	v := strOr(m, key, def)
	return &v
}

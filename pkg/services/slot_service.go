package services

import (
	"strconv"
	"strings"
	"time"

	"eagle-eye-api/pkg/models"
)

// slotDef スロットの時間範囲と代表時刻
type slotDef struct {
	startHour  int
	endHour    int
	anchorHour int
}

var slotDefs = map[string]slotDef{
	models.SlotMorning: {6, 12, 9},
	models.SlotDaytime: {12, 18, 15},
	models.SlotNight:   {18, 24, 21},
}

// SlotBuilder 時間別予報から朝・昼・夜の3スロットを組み立てるサービス
type SlotBuilder struct{}

// NewSlotBuilder 新しいSlotBuilderを作成
func NewSlotBuilder() *SlotBuilder {
	return &SlotBuilder{}
}

// BuildDaySlots 対象日の時間帯スロットを構築する。
// 対象日のデータが時系列に1件もなければnilを返す（呼び出し側でフォールバック）。
// エラーは返さない。個々の欠測値はセンチネル表示に落ちる。
func (b *SlotBuilder) BuildDaySlots(series *models.HourlySeries, target time.Time) *models.DaySlots {
	if series == nil || len(series.Time) == 0 {
		return nil
	}

	dateStr := target.Format("2006-01-02")
	var idxs []int
	for i, t := range series.Time {
		if strings.HasPrefix(t, dateStr) {
			idxs = append(idxs, i)
		}
	}
	if len(idxs) == 0 {
		return nil
	}

	return &models.DaySlots{
		Morning: b.buildSlot(series, idxs, slotDefs[models.SlotMorning]),
		Daytime: b.buildSlot(series, idxs, slotDefs[models.SlotDaytime]),
		Night:   b.buildSlot(series, idxs, slotDefs[models.SlotNight]),
	}
}

// EmptySlot データが無い時間帯のセンチネル値
func EmptySlot() models.SlotWeather {
	return models.SlotWeather{
		Weather:  "☁️",
		Temp:     models.Unknown,
		TempHigh: models.Unknown,
		TempLow:  models.Unknown,
		Humidity: models.Unknown,
		Rain:     models.Unknown,
		Code:     nil,
	}
}

// buildSlot 1スロット分の代表値を集計する。
// 代表値は指定時刻に最も近い時間の値、高低は範囲内の最大・最小、
// 降水確率はリスク側に倒して範囲内の最大値を使う。
func (b *SlotBuilder) buildSlot(series *models.HourlySeries, dayIdxs []int, def slotDef) models.SlotWeather {
	var ids []int
	for _, gi := range dayIdxs {
		hh, ok := hourOf(series.Time[gi])
		if !ok {
			continue
		}
		if def.startHour <= hh && hh < def.endHour {
			ids = append(ids, gi)
		}
	}
	if len(ids) == 0 {
		return EmptySlot()
	}

	// 代表時刻に最も近い時間を選ぶ（同差なら先勝ち）
	bestK := -1
	bestDiff := 1 << 30
	for _, gi := range ids {
		hh, ok := hourOf(series.Time[gi])
		if !ok {
			continue
		}
		d := hh - def.anchorHour
		if d < 0 {
			d = -d
		}
		if d < bestDiff {
			bestDiff = d
			bestK = gi
		}
	}

	var tvals []float64
	for _, gi := range ids {
		if v := at(series.Temp, gi); v != nil {
			tvals = append(tvals, *v)
		}
	}
	var tHigh, tLow *float64
	if len(tvals) > 0 {
		hi, lo := tvals[0], tvals[0]
		for _, v := range tvals[1:] {
			if v > hi {
				hi = v
			}
			if v < lo {
				lo = v
			}
		}
		tHigh, tLow = &hi, &lo
	}

	var tRep *float64
	if bestK >= 0 {
		tRep = at(series.Temp, bestK)
	}
	if tRep == nil && len(tvals) > 0 {
		sum := 0.0
		for _, v := range tvals {
			sum += v
		}
		avg := sum / float64(len(tvals))
		tRep = &avg
	}

	var hRep *float64
	if bestK >= 0 {
		hRep = at(series.Humidity, bestK)
	}
	if hRep == nil {
		var hvals []float64
		for _, gi := range ids {
			if v := at(series.Humidity, gi); v != nil {
				hvals = append(hvals, *v)
			}
		}
		if len(hvals) > 0 {
			sum := 0.0
			for _, v := range hvals {
				sum += v
			}
			avg := sum / float64(len(hvals))
			hRep = &avg
		}
	}

	// 降水確率は平均せず最大値（リスク優先）
	var pMax *float64
	for _, gi := range ids {
		if v := at(series.Pop, gi); v != nil {
			if pMax == nil || *v > *pMax {
				pMax = v
			}
		}
	}

	var wcode *int
	if bestK >= 0 && bestK < len(series.Code) {
		wcode = series.Code[bestK]
	}
	emoji := "☁️"
	if wcode != nil {
		emoji = models.EmojiForOpenMeteoCode(*wcode)
	}

	humidity := models.Unknown
	if hRep != nil {
		humidity = Round10Percent(*hRep)
	}
	rain := models.Unknown
	if pMax != nil {
		rain = Round10Percent(*pMax)
	}

	return models.SlotWeather{
		Weather:  emoji,
		Temp:     FormatTempC(tRep),
		TempHigh: FormatTempC(tHigh),
		TempLow:  FormatTempC(tLow),
		Humidity: humidity,
		Rain:     rain,
		Code:     wcode,
	}
}

// hourOf "2026-02-06T15:00" 形式から時を取り出す
func hourOf(t string) (int, bool) {
	parts := strings.SplitN(t, "T", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hh, err := strconv.Atoi(strings.SplitN(parts[1], ":", 2)[0])
	if err != nil {
		return 0, false
	}
	return hh, true
}

// at 範囲外アクセスをnilに丸めるヘルパー
func at(vals []*float64, i int) *float64 {
	if i < 0 || i >= len(vals) {
		return nil
	}
	return vals[i]
}

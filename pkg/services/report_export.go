package services

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"eagle-eye-api/pkg/models"
)

// ExportSummaryXLSX 生成結果の運用確認用サマリーをExcelに書き出す。
// 1行 = エリア×日付。配信物はJSONであり、これは運用者向けの補助出力。
func ExportSummaryXLSX(path string, areas []models.Area, data map[string][]models.ForecastEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Summary"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"エリアID", "エリア名", "日付", "長期", "ランク", "天気", "最高", "最低", "降水", "警報", "信頼度"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("セル座標の計算に失敗: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("ヘッダーの書き込みに失敗: %w", err)
		}
	}

	nameByID := make(map[string]string, len(areas))
	for _, a := range areas {
		nameByID[a.ID] = a.Name
	}

	// 出力順を安定させるためエリアIDでソート
	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	row := 2
	for _, id := range ids {
		for _, e := range data[id] {
			longTerm := ""
			if e.IsLongTerm {
				longTerm = "○"
			}
			values := []any{
				id,
				nameByID[id],
				e.Date,
				longTerm,
				e.Rank,
				e.WeatherOverview.Condition,
				e.WeatherOverview.High,
				e.WeatherOverview.Low,
				e.WeatherOverview.Rain,
				e.WeatherOverview.Warning,
				e.Confidence,
			}
			for col, v := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, row)
				if err != nil {
					return fmt.Errorf("セル座標の計算に失敗: %w", err)
				}
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return fmt.Errorf("セルの書き込みに失敗: %w", err)
				}
			}
			row++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("Excelファイルの保存に失敗: %w", err)
	}
	return nil
}

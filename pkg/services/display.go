package services

import (
	"fmt"
	"math"

	"eagle-eye-api/pkg/models"
)

// Round10Percent パーセント値を0〜100に丸め、10%刻みの表示文字列にする。
// アプリ側の表示が10%刻みのため、中途半端な値をここで揃える。
func Round10Percent(v float64) string {
	x := int(math.Round(v))
	if x < 0 {
		x = 0
	}
	if x > 100 {
		x = 100
	}
	x = int(math.Round(float64(x)/10.0)) * 10
	return fmt.Sprintf("%d%%", x)
}

// FormatTemp 気温を整数の表示文字列にする（nilは"-"）
func FormatTemp(v *float64) string {
	if v == nil {
		return models.Unknown
	}
	return fmt.Sprintf("%d", int(math.Round(*v)))
}

// FormatTempC 気温を「N℃」形式にする（nilは"-"）
func FormatTempC(v *float64) string {
	if v == nil {
		return models.Unknown
	}
	return fmt.Sprintf("%d℃", int(math.Round(*v)))
}

package models

import "strconv"

// EmojiForJMACode 気象庁の天気コードを表示用絵文字に変換。
// 不明なコードは曇りにフォールバックする。
func EmojiForJMACode(code string) string {
	c, err := strconv.Atoi(code)
	if err != nil {
		return "☁️"
	}
	switch {
	case c == 100 || c == 101 || c == 123 || c == 124 || c == 0:
		return "☀️"
	case c >= 102 && c <= 112, c >= 1 && c <= 3:
		return "🌤️"
	case c >= 200 && c <= 212, c == 45, c == 48:
		return "☁️"
	case c >= 300 && c < 350:
		return "☔"
	case c == 51 || c == 53 || c == 55 || c == 61 || c == 63 || c == 65 ||
		c == 80 || c == 81 || c == 82:
		return "☔"
	case c >= 350 && c < 500:
		return "☃️"
	case c == 71 || c == 73 || c == 75 || c == 77 || c == 85 || c == 86:
		return "☃️"
	case c >= 95:
		return "⛈️"
	}
	return "☁️"
}

// EmojiForOpenMeteoCode Open-Meteoの天気コード(WMO)を表示用絵文字に変換
func EmojiForOpenMeteoCode(code int) string {
	switch code {
	case 0:
		return "☀️"
	case 1, 2:
		return "🌤️"
	case 3, 45, 48:
		return "☁️"
	case 51, 53, 55, 56, 57, 61, 63, 65, 66, 67, 80, 81, 82:
		return "☔"
	case 71, 73, 75, 77, 85, 86:
		return "☃️"
	case 95, 96, 99:
		return "⛈️"
	}
	return "☁️"
}

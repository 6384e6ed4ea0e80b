package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"eagle-eye-api/pkg/gemini"
	"eagle-eye-api/pkg/models"
)

// FactsService イベント・交通情報の収集と整形を担うサービス。
// 検索ツール付き生成で情報を集め、JSONモードで日付別に構造化する二段構え。
type FactsService struct {
	gen ReportGenerator
}

// NewFactsService 新しいFactsServiceを作成
func NewFactsService(gen ReportGenerator) *FactsService {
	return &FactsService{gen: gen}
}

// FetchEventTraffic 期間内の全日付についてイベント・交通情報を取得する。
// 戻り値のキーは "YYYY-MM-DD"。LLMが使えない・失敗した場合も
// エラーにせず、全日付を空文字で埋めたマップを返す。
func (fs *FactsService) FetchEventTraffic(ctx context.Context, area models.Area, dates []time.Time) map[string]string {
	keys := make([]string, len(dates))
	for i, d := range dates {
		keys[i] = d.Format("2006-01-02")
	}

	empty := func() map[string]string {
		out := make(map[string]string, len(keys))
		for _, k := range keys {
			out[k] = ""
		}
		return out
	}

	if len(keys) == 0 {
		return map[string]string{}
	}
	if !fs.gen.Available() {
		return empty()
	}

	text, err := fs.gen.GenerateWithSearch(ctx, buildSearchPrompt(area, keys))
	if err != nil {
		log.Printf("イベント・交通情報の検索に失敗 (%s): %v", area.Name, err)
		return empty()
	}

	jtxt, err := fs.gen.GenerateJSON(ctx, buildStructurePrompt(keys, text))
	if err != nil {
		log.Printf("イベント・交通情報の構造化に失敗 (%s): %v", area.Name, err)
		return empty()
	}

	var parsed map[string]string
	if err := json.Unmarshal([]byte(gemini.ExtractJSONBlock(jtxt)), &parsed); err != nil {
		log.Printf("イベント・交通情報のJSON解析に失敗 (%s): %v", area.Name, err)
		return empty()
	}

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = strings.TrimSpace(parsed[k])
	}
	return out
}

// buildSearchPrompt 検索用プロンプトを組み立てる
func buildSearchPrompt(area models.Area, keys []string) string {
	var b strings.Builder
	b.WriteString("あなたはプロの調査員です。\n")
	fmt.Fprintf(&b, "対象エリア: %s\n", area.Name)
	fmt.Fprintf(&b, "期間: %s から %s（%d日）\n\n", keys[0], keys[len(keys)-1], len(keys))
	b.WriteString("次の情報を、日付ごとに整理して検索してまとめてください。\n")
	b.WriteString("優先順位:\n")
	b.WriteString("1) 交通: 鉄道/バス/航空の遅延・運休、道路の通行止め、規制、渋滞、事故\n")
	b.WriteString("2) イベント: ライブ/スポーツ/展示会/祭り等（中止/変更も）\n")
	b.WriteString("3) 注意情報: 大雪/強風/警報級など交通に影響しうる情報\n\n")
	b.WriteString("出力は「日付見出し + 箇条書き」形式で、必ず全日分を作ること。\n")
	b.WriteString("日付が分からない情報は「不明」にまとめること。\n")
	b.WriteString("フェイクは書かない。曖昧なら「未確認」と明記。\n")
	return b.String()
}

// buildStructurePrompt 検索結果を日付別JSONに変換するプロンプトを組み立てる
func buildStructurePrompt(keys []string, text string) string {
	var b strings.Builder
	b.WriteString("次の文章を解析して、期間内の日数分を必ず埋めたJSONに変換してください。\n")
	b.WriteString("キーは日付(YYYY-MM-DD)、値はその日のEvent/Traffic要約（箇条書き文字列、改行OK）。\n")
	fmt.Fprintf(&b, "期間: %s から %s\n", keys[0], keys[len(keys)-1])
	b.WriteString("文章:\n")
	b.WriteString(text)
	b.WriteString("\n\n出力はこのJSONのみ:\n{\n")
	for i, k := range keys {
		fmt.Fprintf(&b, "  %q: \"...\"", k)
		if i < len(keys)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}

const maxFacts = 6

var bulletPrefixRe = regexp.MustCompile(`^[\-•\*・]+\s*`)

// ParseFacts 箇条書きテキストをファクトの配列に整形する。
// 行頭の記号を除去し、日付見出し・定型の空振り行・重複を捨てて最大6件に絞る。
func ParseFacts(text string) []string {
	if text == "" {
		return []string{}
	}

	facts := []string{}
	seen := make(map[string]bool)
	for _, raw := range strings.Split(text, "\n") {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		s = bulletPrefixRe.ReplaceAllString(s, "")
		if s == "" {
			continue
		}
		// 日付見出し（"2026-..." 等）はファクトではない
		if strings.HasPrefix(s, "202") || strings.HasPrefix(s, "203") {
			continue
		}
		if s == "特段の検索結果なし" {
			continue
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		facts = append(facts, s)
		if len(facts) >= maxFacts {
			break
		}
	}
	return facts
}

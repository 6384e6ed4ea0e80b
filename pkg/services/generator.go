package services

import (
	"context"

	"eagle-eye-api/pkg/gemini"
)

// ReportGenerator LLMテキスト生成の抽象。geminiパッケージのClientが実装する。
// テストでは固定応答のモックに差し替える。
type ReportGenerator interface {
	Available() bool
	GenerateWithSearch(ctx context.Context, prompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

var _ ReportGenerator = (*gemini.Client)(nil)

package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"eagle-eye-api/pkg/retry"

	"golang.org/x/time/rate"
)

const baseURLFormat = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

// Client はGemini REST APIへのリクエストを管理します。
// APIキー未設定のクライアントは常に「利用不可」として振る舞い、
// 呼び出し側はフォールバック生成に切り替えます。
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	policy     retry.Policy
}

// NewClient 新しいGeminiクライアントを作成。
// LLM呼び出しの同時負荷を抑えるため、毎秒1リクエスト程度に制限する。
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 75 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(1), 2),
		policy:  retry.DefaultPolicy(retry.ClassifyHTTP),
	}
}

// Available APIキーが設定されているか
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// --- データ構造定義 ---

type generateRequest struct {
	Contents         []content         `json:"contents"`
	Tools            []tool            `json:"tools,omitempty"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type tool struct {
	GoogleSearch struct{} `json:"googleSearch"`
}

type generationConfig struct {
	Temperature      float32 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// errorResponse Gemini APIのエラーレスポンス
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// --- メソッド定義 ---

// GenerateWithSearch Google検索ツール付きでテキストを生成する。
// イベント・交通情報の調査と長期傾向の要約に使う。
func (c *Client) GenerateWithSearch(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		Tools:            []tool{{}},
		GenerationConfig: &generationConfig{Temperature: 0.4},
	}
	return c.generate(ctx, req)
}

// GenerateJSON JSONレスポンスモードでテキストを生成する。
// レポート生成と検索結果の構造化に使う。
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:      0.3,
			ResponseMimeType: "application/json",
		},
	}
	return c.generate(ctx, req)
}

// generate リトライとレート制限を適用してAPIを呼び出す共通処理
func (c *Client) generate(ctx context.Context, reqData generateRequest) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("Gemini APIキーが設定されていません")
	}

	var result string
	err := c.policy.Do(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		text, err := c.doRequest(ctx, reqData)
		if err != nil {
			return err
		}
		result = text
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("Gemini API 呼び出しに失敗: %w", err)
	}
	return result, nil
}

// doRequest HTTPリクエストの実行と基本的なレスポンス処理
func (c *Client) doRequest(ctx context.Context, reqData generateRequest) (string, error) {
	requestBody, err := json.Marshal(reqData)
	if err != nil {
		return "", fmt.Errorf("リクエストのJSON化に失敗: %w", err)
	}

	url := fmt.Sprintf(baseURLFormat, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの実行に失敗: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return "", &retry.HTTPStatusError{StatusCode: resp.StatusCode, Body: errResp.Error.Message}
		}
		return "", &retry.HTTPStatusError{StatusCode: resp.StatusCode}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("レスポンスのJSON解析に失敗: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("Geminiからの応答が空です")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSONBlock テキストから最初の {...} ブロックを抽出する。
// LLMがJSONの前後に説明文を付けた場合の保険。見つからなければ原文を返す。
func ExtractJSONBlock(text string) string {
	if m := jsonBlockRe.FindString(text); m != "" {
		return m
	}
	return text
}

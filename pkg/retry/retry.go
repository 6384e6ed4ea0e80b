package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Class 失敗の分類。バックオフの基準時間を切り替えるために使う。
type Class int

const (
	// Permanent 再試行しても無駄な失敗（4xx、解析不能なリクエスト等）
	Permanent Class = iota
	// Transient 一時的な失敗（タイムアウト、5xx、ネットワークエラー）
	Transient
	// RateLimited レート制限（429）。通常より長いバックオフを適用する。
	RateLimited
)

// Classifier エラーを失敗クラスに分類する関数
type Classifier func(error) Class

// Policy 外部呼び出し共通の再試行ポリシー。
// 呼び出し先ごとに試行回数とバックオフ基準時間を設定する。
type Policy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	RateLimitDelay time.Duration
	MaxDelay       time.Duration
	Classify       Classifier
}

// DefaultPolicy LLM呼び出し向けのデフォルト（3回、2秒基準、429は60秒基準）
func DefaultPolicy(classify Classifier) Policy {
	return Policy{
		MaxAttempts:    3,
		BaseDelay:      2 * time.Second,
		RateLimitDelay: 60 * time.Second,
		MaxDelay:       5 * time.Minute,
		Classify:       classify,
	}
}

// Do opを再試行付きで実行する。Permanentに分類された失敗は即座に返す。
// バックオフは指数（base * 2^attempt）で、コンテキストのキャンセルを尊重する。
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := p.sleep(ctx, attempt, p.Classify(lastErr)); err != nil {
				return err
			}
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if p.Classify(lastErr) == Permanent {
			return lastErr
		}
	}
	return lastErr
}

// sleep 失敗クラスに応じたバックオフ時間だけ待機する
func (p Policy) sleep(ctx context.Context, attempt int, class Class) error {
	base := p.BaseDelay
	if class == RateLimited && p.RateLimitDelay > 0 {
		base = p.RateLimitDelay
	}

	delay := base << (attempt - 1)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HTTPStatusError ステータスコード付きのエラー。分類器から参照する。
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// ClassifyHTTP HTTP呼び出し向けの標準分類器。
// 429はRateLimited、5xxとネットワークエラーはTransient、それ以外はPermanent。
func ClassifyHTTP(err error) Class {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == 429:
			return RateLimited
		case statusErr.StatusCode >= 500:
			return Transient
		default:
			return Permanent
		}
	}
	// ステータスが取れないエラーはネットワーク起因とみなす
	return Transient
}

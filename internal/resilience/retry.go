// Package resilience は外部API呼び出しの再試行方針を提供します。
// 過負荷や一時的な障害だけを再試行の対象とし、それ以外のエラーは
// 即座に呼び出し元へ返すのです。
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/genai"
)

const (
	// DefaultMaxRetries は初回試行を除く再試行回数の上限です。
	DefaultMaxRetries = 3
	// DefaultInitialInterval は初回待機時間です。以後は倍々で伸びます。
	DefaultInitialInterval = 2 * time.Second
)

// Policy は再試行の設定です。ゼロ値では Default 系の値が使われます。
type Policy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
}

// NewPolicy は既定値の再試行方針を返します。
func NewPolicy() Policy {
	return Policy{
		MaxRetries:      DefaultMaxRetries,
		InitialInterval: DefaultInitialInterval,
	}
}

// Do は op を再試行方針に従って実行します。再試行のたびに待機時間は
// 倍増します。再試行対象外のエラーは即座に返します。ctx の取り消しは
// 待機中にも尊重されます。
func (p Policy) Do(ctx context.Context, label string, op func() error) error {
	maxRetries := p.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}
	interval := p.InitialInterval
	if interval <= 0 {
		interval = DefaultInitialInterval
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = interval
	eb.Multiplier = 2.0
	eb.RandomizationFactor = 0
	eb.MaxInterval = interval * 8
	eb.MaxElapsedTime = 0

	attempt := 0
	wrapped := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		slog.Warn("一時的な障害のため再試行します",
			"operation", label, "attempt", attempt, "error", err)
		return err
	}

	return backoff.Retry(wrapped,
		backoff.WithContext(backoff.WithMaxRetries(eb, maxRetries), ctx))
}

// IsRetryable は一時的な障害（レート制限、サービス過負荷）かどうかを
// 判定します。入力不正や認証エラーなどは再試行しても結果が変わらない
// ため対象外です。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 503:
			return true
		}
		switch apiErr.Status {
		case "RESOURCE_EXHAUSTED", "UNAVAILABLE":
			return true
		}
		return false
	}

	// SDKがエラー型を保持しないまま文字列化して返す経路への備えです。
	msg := err.Error()
	for _, marker := range []string{
		"RESOURCE_EXHAUSTED",
		"UNAVAILABLE",
		"rate limit",
		"429",
		"503",
		"overloaded",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

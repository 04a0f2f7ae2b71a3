package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/genai"
)

func fastPolicy() Policy {
	return Policy{MaxRetries: 3, InitialInterval: time.Millisecond}
}

func TestPolicy_Do(t *testing.T) {
	t.Run("成功すれば1回で終わること", func(t *testing.T) {
		calls := 0
		err := fastPolicy().Do(context.Background(), "test", func() error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Errorf("期待呼び出し回数 1, 実際 %d", calls)
		}
	})

	t.Run("一時的な障害は再試行され、回復すれば成功すること", func(t *testing.T) {
		calls := 0
		err := fastPolicy().Do(context.Background(), "test", func() error {
			calls++
			if calls < 3 {
				return genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("回復したのにエラーが返りました: %v", err)
		}
		if calls != 3 {
			t.Errorf("期待呼び出し回数 3, 実際 %d", calls)
		}
	})

	t.Run("上限まで失敗し続けたらエラーが返ること", func(t *testing.T) {
		calls := 0
		err := fastPolicy().Do(context.Background(), "test", func() error {
			calls++
			return genai.APIError{Code: 503, Status: "UNAVAILABLE"}
		})
		if err == nil {
			t.Fatal("失敗し続けたのにエラーが返りませんでした")
		}
		// 初回 + 再試行3回
		if calls != 4 {
			t.Errorf("期待呼び出し回数 4, 実際 %d", calls)
		}
	})

	t.Run("待機時間が再試行のたびに倍増すること", func(t *testing.T) {
		const initial = 20 * time.Millisecond
		var stamps []time.Time
		err := Policy{MaxRetries: 3, InitialInterval: initial}.Do(context.Background(), "test", func() error {
			stamps = append(stamps, time.Now())
			return genai.APIError{Code: 503, Status: "UNAVAILABLE"}
		})
		if err == nil {
			t.Fatal("失敗し続けたのにエラーが返りませんでした")
		}
		if len(stamps) != 4 {
			t.Fatalf("期待呼び出し回数 4, 実際 %d", len(stamps))
		}

		// ランダム化なしの設定なので待機列は initial, 2x, 4x になります。
		// スケジューラ遅延で伸びる方向は許容し、下限だけを検証します。
		for i, want := range []time.Duration{initial, 2 * initial, 4 * initial} {
			gap := stamps[i+1].Sub(stamps[i])
			if gap < want {
				t.Errorf("再試行 %d の待機 %v が下限 %v を下回りました", i+1, gap, want)
			}
		}
	})

	t.Run("再試行対象外のエラーは即座に返ること", func(t *testing.T) {
		calls := 0
		permanent := errors.New("invalid request payload")
		err := fastPolicy().Do(context.Background(), "test", func() error {
			calls++
			return permanent
		})
		if !errors.Is(err, permanent) {
			t.Fatalf("期待エラー %v, 実際 %v", permanent, err)
		}
		if calls != 1 {
			t.Errorf("再試行対象外なのに %d 回呼ばれました", calls)
		}
	})

	t.Run("コンテキスト取り消しで中断されること", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Policy{MaxRetries: 3, InitialInterval: time.Second}.Do(ctx, "test", func() error {
			return genai.APIError{Code: 429}
		})
		if err == nil {
			t.Fatal("取り消し済みコンテキストでエラーが返りませんでした")
		}
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nilは対象外", nil, false},
		{"429は対象", genai.APIError{Code: 429}, true},
		{"503は対象", genai.APIError{Code: 503}, true},
		{"RESOURCE_EXHAUSTEDは対象", genai.APIError{Status: "RESOURCE_EXHAUSTED"}, true},
		{"UNAVAILABLEは対象", genai.APIError{Status: "UNAVAILABLE"}, true},
		{"400は対象外", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, false},
		{"文字列化されたレート制限は対象", errors.New("googleapi: Error 429: rate limit exceeded"), true},
		{"過負荷メッセージは対象", errors.New("the model is overloaded, try again later"), true},
		{"一般エラーは対象外", errors.New("failed to parse script"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, 期待 %v", tt.err, got, tt.want)
			}
		})
	}
}

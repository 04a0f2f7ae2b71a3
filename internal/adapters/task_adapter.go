package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"relive-web/internal/domain"
)

// TaskAdapter はタスク投入のためのインターフェースを定義します。
type TaskAdapter interface {
	EnqueueStoryTask(ctx context.Context, task domain.StoryTask) error
	Close() error
}

// TaskExecutor は投入されたタスクを実際に実行する関数です。
type TaskExecutor func(ctx context.Context, task domain.StoryTask) error

// LocalTaskAdapter はプロセス内のゴルーチンでタスクを実行する
// TaskAdapter の実装です。セッション状態が全てプロセス内に存在する
// ため、外部キューを介さず直接ディスパッチします。
type LocalTaskAdapter struct {
	executor TaskExecutor
	sem      chan struct{}

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// NewLocalTaskAdapter はタスク実行関数と同時実行数の上限を指定して
// 初期化します。
func NewLocalTaskAdapter(executor TaskExecutor, maxConcurrent int) (*LocalTaskAdapter, error) {
	if executor == nil {
		return nil, fmt.Errorf("executor は必須です")
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &LocalTaskAdapter{
		executor: executor,
		sem:      make(chan struct{}, maxConcurrent),
	}, nil
}

// EnqueueStoryTask はタスクをバックグラウンドで起動します。実行は
// リクエストのライフサイクルから切り離されるため、呼び出し元の
// コンテキストは引き継ぎません。
func (a *LocalTaskAdapter) EnqueueStoryTask(ctx context.Context, task domain.StoryTask) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return fmt.Errorf("タスクアダプターは既に閉じられています")
	}
	a.wg.Add(1)
	a.mu.Unlock()

	slog.Info("タスクを投入しました", "kind", task.Kind, "session_id", task.SessionID)

	go func() {
		defer a.wg.Done()
		a.sem <- struct{}{}
		defer func() { <-a.sem }()

		defer func() {
			if r := recover(); r != nil {
				slog.Error("タスク実行中にpanicが発生しました",
					"kind", task.Kind, "session_id", task.SessionID, "panic", r)
			}
		}()

		if err := a.executor(context.Background(), task); err != nil {
			slog.Error("タスクの実行に失敗しました",
				"kind", task.Kind, "session_id", task.SessionID, "error", err)
		}
	}()
	return nil
}

// Close は新規タスクの受付を止め、実行中のタスクの完了を待ちます。
func (a *LocalTaskAdapter) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	a.wg.Wait()
	return nil
}

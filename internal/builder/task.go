package builder

import (
	"context"
	"fmt"

	"relive-web/internal/adapters"
	"relive-web/internal/domain"
	"relive-web/internal/orchestrator"
)

// buildTaskAdapter は、タスク種別をオーケストレーターの操作へ振り分ける
// プロセス内タスクアダプターを構築します。
func buildTaskAdapter(orch *orchestrator.Orchestrator, registry *orchestrator.Registry, maxConcurrent int) (adapters.TaskAdapter, error) {
	executor := func(ctx context.Context, task domain.StoryTask) error {
		h, err := registry.Get(task.SessionID)
		if err != nil {
			return fmt.Errorf("セッションの取得に失敗しました (id: %s): %w", task.SessionID, err)
		}

		switch task.Kind {
		case domain.TaskGenerateStory:
			return orch.Run(ctx, h)
		case domain.TaskRegeneratePanel:
			return orch.RegeneratePanel(ctx, h, task.PanelID)
		default:
			return fmt.Errorf("未知のタスク種別です: %s", task.Kind)
		}
	}

	return adapters.NewLocalTaskAdapter(executor, maxConcurrent)
}

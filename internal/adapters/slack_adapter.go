package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"relive-web/internal/domain"

	"github.com/shouni/go-http-kit/httpkit"
	"github.com/shouni/go-notifier/pkg/factory"
	"github.com/shouni/go-notifier/pkg/slack"
)

// --- インターフェース定義 ---

type SlackNotifier interface {
	NotifyStoryCompleted(ctx context.Context, n domain.StoryNotification)
	NotifyError(ctx context.Context, errDetail error, sessionID string)
}

// --- 具象アダプター ---

// SlackAdapter は物語生成の完了と失敗をSlackに通知します。
// Webhook URL が未設定の場合は何もしない実装として動作します。
type SlackAdapter struct {
	httpClient  httpkit.ClientInterface
	webhookURL  string
	slackClient *slack.Client
}

func NewSlackAdapter(httpClient httpkit.ClientInterface, webhookURL string) (*SlackAdapter, error) {
	if webhookURL == "" {
		return &SlackAdapter{webhookURL: webhookURL}, nil
	}
	client, err := factory.GetSlackClient(httpClient)
	if err != nil {
		return nil, fmt.Errorf("Slackクライアントの初期化に失敗したのだ: %w", err)
	}

	return &SlackAdapter{
		httpClient:  httpClient,
		webhookURL:  webhookURL,
		slackClient: client,
	}, nil
}

// NotifyStoryCompleted は物語の完成をSlackへ通知します。通知の失敗は
// ログに残すだけで呼び出し元には伝播させません。
func (a *SlackAdapter) NotifyStoryCompleted(ctx context.Context, n domain.StoryNotification) {
	if a.slackClient == nil {
		slog.Info("Slackクライアントが初期化されていないため、通知をスキップします。", "story_id", n.StoryID)
		return
	}

	// 失敗パネルの有無で絵文字を出し分けるのだ！
	icon := "📖"
	if n.FailedPanels > 0 {
		icon = "⚠️"
	}

	title := fmt.Sprintf("%s 思い出の物語が完成しました！", icon)
	content := a.buildSlackContent(n)

	if err := a.slackClient.SendTextWithHeader(ctx, title, content); err != nil {
		slog.Error("Slackへの投稿に失敗しました", "story_id", n.StoryID, "error", err)
		return
	}

	slog.Info("Slack に完了通知を送信しました。", "story_id", n.StoryID)
}

// NotifyError はエラー詳細を含むSlackエラー通知を送信します。
func (a *SlackAdapter) NotifyError(ctx context.Context, errDetail error, sessionID string) {
	if a.slackClient == nil {
		slog.Info("Slackクライアントが初期化されていないため、エラー通知をスキップします。", "error", errDetail)
		return
	}

	title := "❌ 物語の生成中にエラーが発生しました"

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*セッションID:* `%s`\n\n", sessionID))

	// エラー詳細をコードブロックで囲むことで可読性を向上させます。
	sb.WriteString("*エラー内容:*\n")
	sb.WriteString(fmt.Sprintf("```\n%v\n```\n", errDetail))

	if err := a.slackClient.SendTextWithHeader(ctx, title, sb.String()); err != nil {
		slog.Error("Slackへのエラー通知に失敗しました", "error", err)
		return
	}

	slog.Info("Slack にエラー通知を送信しました。", "error", errDetail)
}

// buildSlackContent は通知リクエストに基づき Slack メッセージの内容を生成します。
func (a *SlackAdapter) buildSlackContent(n domain.StoryNotification) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**作品タイトル:** `%s`\n", n.Title))
	sb.WriteString(fmt.Sprintf("**画風:** `%s`\n", n.ArtStyle))
	sb.WriteString(fmt.Sprintf("**パネル数:** %d\n", n.TotalPanels))

	if n.FailedPanels > 0 {
		sb.WriteString(fmt.Sprintf("\n⚠️ *%d 枚のパネルが生成に失敗しています。再生成をお試しください。*\n", n.FailedPanels))
	} else {
		sb.WriteString("\n✨ _全パネルが無事に生成されたのだ！_\n")
	}

	return sb.String()
}

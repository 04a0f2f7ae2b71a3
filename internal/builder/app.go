package builder

import (
	"context"
	"fmt"

	"relive-web/internal/adapters"
	"relive-web/internal/app"
	"relive-web/internal/config"
	"relive-web/internal/director"
	"relive-web/internal/export"
	"relive-web/internal/illustrator"
	"relive-web/internal/orchestrator"
	"relive-web/internal/resilience"
	"relive-web/internal/store"

	"github.com/shouni/go-gemini-client/gemini"
	"github.com/shouni/go-http-kit/httpkit"
	"google.golang.org/genai"
)

// BuildAppContext は外部サービスとの接続を確立し、依存関係を組み立てます。
// 各フィールドをインターフェースで定義することで、将来的なモック利用を容易にします。
func BuildAppContext(ctx context.Context, cfg *config.Config) (*app.Container, error) {
	// 1. 基盤クライアントの初期化
	httpClient := httpkit.New(config.DefaultHTTPTimeout)

	// 2. I/O インフラ (GCS等) の初期化
	rio, err := buildRemoteIO(ctx)
	if err != nil {
		return nil, err
	}

	// 3. AI クライアントと生成ステージの初期化
	aiClient, err := initializeAIClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	retry := resilience.NewPolicy()
	scriptDirector, err := director.NewScriptDirector(aiClient, cfg.GeminiModel, retry)
	if err != nil {
		return nil, fmt.Errorf("ScriptDirector の構築に失敗しました: %w", err)
	}
	panelIllustrator, err := illustrator.NewPanelIllustrator(aiClient, cfg.ImageModel, retry)
	if err != nil {
		return nil, fmt.Errorf("PanelIllustrator の構築に失敗しました: %w", err)
	}

	// 4. 永続化と書き出し
	memoriesStore, err := store.NewMemoriesStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("思い出ストアの初期化に失敗しました: %w", err)
	}
	exporter, err := export.NewEpisodeExporter(rio.Writer, cfg.ExportBaseURI)
	if err != nil {
		return nil, fmt.Errorf("エクスポーターの初期化に失敗しました: %w", err)
	}

	// 5. アダプターの初期化
	slack, err := adapters.NewSlackAdapter(httpClient, cfg.SlackWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Slack adapter: %w", err)
	}

	// 6. オーケストレーターとタスクディスパッチの組み立て
	orch, err := orchestrator.New(scriptDirector, panelIllustrator, memoriesStore, slack,
		orchestrator.WithPanelInterval(cfg.PanelInterval))
	if err != nil {
		return nil, fmt.Errorf("オーケストレーターの構築に失敗しました: %w", err)
	}

	registry := orchestrator.NewRegistry()
	tasks, err := buildTaskAdapter(orch, registry, cfg.MaxConcurrent)
	if err != nil {
		return nil, fmt.Errorf("タスクアダプターの構築に失敗しました: %w", err)
	}

	return &app.Container{
		Config:        cfg,
		RemoteIO:      rio,
		Store:         memoriesStore,
		Tasks:         tasks,
		Registry:      registry,
		Orchestrator:  orch,
		Exporter:      exporter,
		HTTPClient:    httpClient,
		SlackNotifier: slack,
	}, nil
}

// initializeAIClient は gemini クライアントを初期化します。
// 台本生成と画像生成はモデル名の指定のみが異なるため、クライアントは共有します。
func initializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	const defaultGeminiTemperature = float32(0.2)
	clientConfig := gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(defaultGeminiTemperature),
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

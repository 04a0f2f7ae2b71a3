package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"
)

const (
	DefaultModel      = "gemini-3-flash-preview"
	DefaultImageModel = "gemini-2.5-flash-image"
	// DefaultHTTPTimeout 画像生成や Gemini API の応答を考慮したタイムアウト
	DefaultHTTPTimeout = 60 * time.Second
	// DefaultPanelInterval 画像生成APIの分あたりクォータに合わせた間隔
	DefaultPanelInterval = 5 * time.Second
	// SignedURLExpiration 書き出し済みエピソードをダウンロードする時間を考慮した有効期限
	SignedURLExpiration  = 5 * time.Minute
	DefaultDataDir       = "data/memories"
	DefaultExportBaseURI = "output/episodes"
	DefaultMaxConcurrent = 2
	DefaultShutdownGrace = 15 * time.Second
)

// Config は環境変数から読み込まれたアプリケーションの全設定を保持します。
type Config struct {
	ServiceURL      string
	Port            string
	GeminiAPIKey    string
	GeminiModel     string // 台本生成用モデル
	ImageModel      string // パネル画像生成用モデル
	DataDir         string // 保存済み物語の格納ディレクトリ
	ExportBaseURI   string // エピソード画像の書き出し先 (ローカルパスまたは gs://)
	SlackWebhookURL string
	PanelInterval   time.Duration
	MaxConcurrent   int // 同時に進行できる物語セッション数
	TemplateDir     string
	ShutdownTimeout time.Duration
}

// LoadConfig は環境変数から設定を読み込み、Config 構造体を生成します。
func LoadConfig() *Config {
	return &Config{
		ServiceURL:      envutil.GetEnv("SERVICE_URL", "http://localhost:8080"),
		Port:            envutil.GetEnv("PORT", "8080"),
		GeminiAPIKey:    envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:     envutil.GetEnv("GEMINI_MODEL", DefaultModel),
		ImageModel:      envutil.GetEnv("IMAGE_MODEL", DefaultImageModel),
		DataDir:         envutil.GetEnv("DATA_DIR", DefaultDataDir),
		ExportBaseURI:   envutil.GetEnv("EXPORT_BASE_URI", DefaultExportBaseURI),
		SlackWebhookURL: envutil.GetEnv("SLACK_WEBHOOK_URL", ""),
		PanelInterval:   getEnvDuration("PANEL_INTERVAL", DefaultPanelInterval),
		MaxConcurrent:   getEnvInt("MAX_CONCURRENT_SESSIONS", DefaultMaxConcurrent),
		TemplateDir:     envutil.GetEnv("TEMPLATE_DIR", "templates"),
		ShutdownTimeout: DefaultShutdownGrace,
	}
}

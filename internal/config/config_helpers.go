package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shouni/go-utils/envutil"
	"github.com/shouni/netarmor/securenet"
)

// getEnvDuration は time.ParseDuration 形式の環境変数を読み込みます。
// 解析できない値は警告を出して既定値に落とします。
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("環境変数の時間指定が不正なため既定値を使用します",
			"key", key, "value", raw, "fallback", fallback)
		return fallback
	}
	return d
}

// getEnvInt は整数の環境変数を読み込みます。
func getEnvInt(key string, fallback int) int {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("環境変数の整数指定が不正なため既定値を使用します",
			"key", key, "value", raw, "fallback", fallback)
		return fallback
	}
	return n
}

// --- バリデーション ---

// ValidateEssentialConfig はアプリケーション実行に不可欠な設定を検証します。
func ValidateEssentialConfig(cfg *Config) error {
	if !IsSecureURL(cfg.ServiceURL) {
		return fmt.Errorf("security error: SERVICE_URL ('%s') must be HTTPS in production", cfg.ServiceURL)
	}

	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("configuration error: GEMINI_API_KEY is not set")
	}

	if cfg.DataDir == "" {
		return fmt.Errorf("configuration error: DATA_DIR must not be empty")
	}

	if cfg.PanelInterval <= 0 {
		return fmt.Errorf("configuration error: PANEL_INTERVAL must be positive")
	}

	return nil
}

// IsSecureURL は指定された URL が HTTPS または localhost であるか判定します。
func IsSecureURL(rawURL string) bool {
	return securenet.IsSecureServiceURL(rawURL)
}

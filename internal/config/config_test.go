package config

import (
	"os"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		ServiceURL:    "https://relive.example.com",
		Port:          "8080",
		GeminiAPIKey:  "test-key",
		GeminiModel:   DefaultModel,
		ImageModel:    DefaultImageModel,
		DataDir:       "data/memories",
		PanelInterval: 5 * time.Second,
	}
}

func TestValidateEssentialConfig(t *testing.T) {
	t.Run("必須項目が揃っていれば成功すること", func(t *testing.T) {
		if err := ValidateEssentialConfig(validConfig()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("APIキーが無ければ失敗すること", func(t *testing.T) {
		cfg := validConfig()
		cfg.GeminiAPIKey = ""
		if err := ValidateEssentialConfig(cfg); err == nil {
			t.Error("APIキー未設定が受理されました")
		}
	})

	t.Run("非HTTPSのサービスURLは失敗すること", func(t *testing.T) {
		cfg := validConfig()
		cfg.ServiceURL = "http://insecure.example.com"
		if err := ValidateEssentialConfig(cfg); err == nil {
			t.Error("非HTTPSのURLが受理されました")
		}
	})

	t.Run("保存先ディレクトリが無ければ失敗すること", func(t *testing.T) {
		cfg := validConfig()
		cfg.DataDir = ""
		if err := ValidateEssentialConfig(cfg); err == nil {
			t.Error("空のDATA_DIRが受理されました")
		}
	})

	t.Run("非正のパネル間隔は失敗すること", func(t *testing.T) {
		cfg := validConfig()
		cfg.PanelInterval = 0
		if err := ValidateEssentialConfig(cfg); err == nil {
			t.Error("間隔0が受理されました")
		}
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	// t.Setenv で復元を登録してから外すことで、既定値の経路を確実に通します。
	for _, key := range []string{"PORT", "GEMINI_MODEL", "PANEL_INTERVAL"} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatal(err)
		}
	}

	cfg := LoadConfig()
	if cfg.Port != "8080" {
		t.Errorf("既定ポートが不正です: %s", cfg.Port)
	}
	if cfg.GeminiModel != DefaultModel {
		t.Errorf("既定モデルが不正です: %s", cfg.GeminiModel)
	}
	if cfg.PanelInterval != DefaultPanelInterval {
		t.Errorf("既定間隔が不正です: %s", cfg.PanelInterval)
	}
}

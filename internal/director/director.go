// Package director は物語から台本を生成するステージです。
// 1回のモデル呼び出しでタイトル、全パネルの指示、そして各キャラクターの
// 同一性記述（CIB）をまとめて確定させます。
package director

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shouni/go-gemini-client/gemini"

	"relive-web/internal/domain"
	"relive-web/internal/resilience"
)

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// ScriptDirector は台本生成の実行体です。
type ScriptDirector struct {
	aiClient gemini.GenerativeModel
	model    string
	retry    resilience.Policy
}

// NewScriptDirector は依存関係を注入して初期化します。
func NewScriptDirector(aiClient gemini.GenerativeModel, model string, retry resilience.Policy) (*ScriptDirector, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient は必須です")
	}
	if model == "" {
		return nil, fmt.Errorf("台本生成モデル名は必須です")
	}
	return &ScriptDirector{aiClient: aiClient, model: model, retry: retry}, nil
}

// GenerateScript は物語全体を1回の呼び出しで台本化します。
// 応答の構造検証までがこのステージの責務です。
func (d *ScriptDirector) GenerateScript(ctx context.Context, story string, style domain.ArtStyle, characters []*domain.CharacterProfile) (domain.ScriptResponse, error) {
	prompt := BuildScriptPrompt(story, style, characters)

	slog.Info("台本を生成します", "model", d.model, "characters", len(characters))

	var resp *gemini.Response
	err := d.retry.Do(ctx, "script_generation", func() error {
		var callErr error
		resp, callErr = d.aiClient.GenerateContent(ctx, prompt, d.model)
		return callErr
	})
	if err != nil {
		return domain.ScriptResponse{}, fmt.Errorf("台本の生成に失敗しました: %w", err)
	}

	script, err := parseScriptResponse(resp.Text)
	if err != nil {
		return domain.ScriptResponse{}, err
	}

	if err := validateScript(script); err != nil {
		return domain.ScriptResponse{}, fmt.Errorf("台本の検証に失敗しました: %w", err)
	}

	slog.Info("台本を受理しました", "title", script.Title, "panels", len(script.Panels))
	return script, nil
}

// parseScriptResponse はモデル応答からJSONを取り出します。コードブロック、
// 最外括弧、生テキストの順に解釈を試みる防御的なパースです。
func parseScriptResponse(raw string) (domain.ScriptResponse, error) {
	raw = strings.TrimSpace(raw)
	var rawJSON string

	matches := jsonBlockRegex.FindStringSubmatch(raw)
	if len(matches) > 1 {
		rawJSON = matches[1]
	} else {
		firstBracket := strings.Index(raw, "{")
		lastBracket := strings.LastIndex(raw, "}")
		if firstBracket != -1 && lastBracket != -1 && lastBracket > firstBracket {
			rawJSON = raw[firstBracket : lastBracket+1]
		} else {
			rawJSON = raw
		}
	}

	var script domain.ScriptResponse
	if err := json.Unmarshal([]byte(rawJSON), &script); err != nil {
		return domain.ScriptResponse{}, fmt.Errorf("応答に含まれるJSONの解析に失敗しました (応答抜粋: %q): %w", truncateString(raw, 200), err)
	}
	return script, nil
}

// validateScript は台本の構造的な整合性を確認します。
func validateScript(script domain.ScriptResponse) error {
	if strings.TrimSpace(script.Title) == "" {
		return fmt.Errorf("タイトルが空です")
	}
	n := len(script.Panels)
	if n < domain.MinPanelCount || n > domain.MaxPanelCount {
		return fmt.Errorf("パネル数 %d が許容範囲 [%d, %d] を外れています",
			n, domain.MinPanelCount, domain.MaxPanelCount)
	}
	for i, p := range script.Panels {
		if p.PanelID != i+1 {
			return fmt.Errorf("パネルIDが連番ではありません: 位置 %d に ID %d", i+1, p.PanelID)
		}
		if strings.TrimSpace(p.VisualDescription) == "" {
			return fmt.Errorf("パネル %d の visualDescription が空です", p.PanelID)
		}
		if strings.TrimSpace(p.PanelOutfit) == "" {
			return fmt.Errorf("パネル %d の panelOutfit が空です", p.PanelID)
		}
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Package illustrator はパネル1枚分の画像生成を担当します。
// プロンプトは厳密な優先順位で積層されます。衣装指定が最優先で、
// CIB、参照写真、場面と画風、照明、構図の順に続きます。後の層が
// 前の層と矛盾する内容を持つことは許されません。
package illustrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"

	"relive-web/internal/domain"
	"relive-web/internal/resilience"
)

const (
	// PanelAspectRatio は縦スクロール形式のパネル比率です。
	PanelAspectRatio = "9:16"

	// NegativePanelPrompt は描画してはならない要素の一覧です。
	// 台詞の焼き込みは表示層の責務であり、画像には含めません。
	NegativePanelPrompt = "speech bubble, dialogue balloon, text, alphabet, letters, words, signatures, watermark, username, low quality, distorted, bad anatomy"

	illustratorSystemInstruction = "You are a professional webtoon illustrator. Create a single high-quality vertical comic panel."
)

// ErrNoImagePayload は応答に画像データが含まれていなかったことを示します。
var ErrNoImagePayload = fmt.Errorf("応答に画像データが含まれていませんでした")

// PanelRequest はパネル1枚分の生成指示です。
type PanelRequest struct {
	VisualDescription string
	PanelOutfit       string
	Narration         string
	Style             domain.ArtStyle
	IdentityBlock     string
	ReferenceImage    domain.ReferenceImage
	CharacterName     string
	Seed              *int32
}

// PanelImage は生成結果の画像です。
type PanelImage struct {
	Data     []byte
	MimeType string
}

// PanelIllustrator はパネル画像生成の実行体です。
type PanelIllustrator struct {
	aiClient gemini.GenerativeModel
	model    string
	retry    resilience.Policy
}

// NewPanelIllustrator は依存関係を注入して初期化します。
func NewPanelIllustrator(aiClient gemini.GenerativeModel, model string, retry resilience.Policy) (*PanelIllustrator, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient は必須です")
	}
	if model == "" {
		return nil, fmt.Errorf("画像生成モデル名は必須です")
	}
	return &PanelIllustrator{aiClient: aiClient, model: model, retry: retry}, nil
}

// GeneratePanel は1パネル分の画像を生成します。参照写真がある場合は
// InlineData として同じリクエストに添付します。
func (il *PanelIllustrator) GeneratePanel(ctx context.Context, req PanelRequest) (*PanelImage, error) {
	prompt := BuildPanelPrompt(req)

	parts := []*genai.Part{
		{Text: prompt},
	}
	if !req.ReferenceImage.IsZero() {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: req.ReferenceImage.MimeType,
				Data:     req.ReferenceImage.Data,
			},
		})
	}

	opts := gemini.GenerateOptions{
		AspectRatio:  PanelAspectRatio,
		SystemPrompt: illustratorSystemInstruction,
		Seed:         req.Seed,
	}

	var resp *gemini.Response
	err := il.retry.Do(ctx, "panel_generation", func() error {
		var callErr error
		resp, callErr = il.aiClient.GenerateWithParts(ctx, il.model, parts, opts)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("パネル画像の生成に失敗しました: %w", err)
	}

	img, err := extractImage(resp)
	if err != nil {
		return nil, err
	}

	slog.Debug("パネル画像を受理しました", "bytes", len(img.Data), "mime", img.MimeType)
	return img, nil
}

// BuildPanelPrompt は積層順にプロンプトを組み立てます。
// 衣装は参照写真やCIBに由来する服装の示唆を必ず上書きします。
func BuildPanelPrompt(req PanelRequest) string {
	var b strings.Builder

	if req.PanelOutfit != "" {
		fmt.Fprintf(&b, "MANDATORY OUTFIT: %s\n", req.PanelOutfit)
		b.WriteString("The outfit above overrides any clothing visible in the reference image or implied by the character description.\n\n")
	}

	if req.IdentityBlock != "" {
		name := req.CharacterName
		if name == "" {
			name = "the main character"
		}
		fmt.Fprintf(&b, "CHARACTER IDENTITY (%s): %s\n\n", name, req.IdentityBlock)
	}

	if !req.ReferenceImage.IsZero() {
		b.WriteString("REFERENCE IMAGE: Use the attached photo as a hard constraint for facial structure, skin tone, hair texture, and ethnicity ONLY. Do NOT copy the clothing from the photo. Do NOT change the character's facial structure.\n\n")
	}

	fmt.Fprintf(&b, "SCENE: %s\n\n", req.VisualDescription)
	fmt.Fprintf(&b, "ART STYLE: %s\n\n", StyleRecipe(req.Style))

	// ナレーションは場面描写が語らない感情の文脈を補うことが多いため、
	// 照明の判定には両方を使います。
	b.WriteString(lightingDirective(ClassifyLighting(req.VisualDescription + " " + req.Narration)))
	b.WriteString("\n\n")

	b.WriteString("COMPOSITION: Vertical comic panel. The subject occupies the lower two-thirds of the frame, leaving the upper third visually clear for text overlay.\n\n")

	fmt.Fprintf(&b, "AVOID: %s\n", NegativePanelPrompt)

	return b.String()
}

// extractImage は応答の先頭候補から画像パーツを取り出します。
func extractImage(resp *gemini.Response) (*PanelImage, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, ErrNoImagePayload
	}

	candidate := resp.RawResponse.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &PanelImage{
					Data:     part.InlineData.Data,
					MimeType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}

	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, fmt.Errorf("画像生成が異常終了しました (FinishReason: %s)", candidate.FinishReason)
	}
	return nil, ErrNoImagePayload
}

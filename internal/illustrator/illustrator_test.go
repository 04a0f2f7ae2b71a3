package illustrator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"

	"relive-web/internal/domain"
	"relive-web/internal/resilience"
)

// mockAIClient は gemini.GenerativeModel のテスト用モックです。
type mockAIClient struct {
	generateFunc func(model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
	lastParts    []*genai.Part
	lastOpts     gemini.GenerateOptions
}

func (m *mockAIClient) GenerateContent(ctx context.Context, model string, prompt string) (*gemini.Response, error) {
	return nil, nil
}

func (m *mockAIClient) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	m.lastParts = parts
	m.lastOpts = opts
	if m.generateFunc != nil {
		return m.generateFunc(model, parts, opts)
	}
	return nil, nil
}

func (m *mockAIClient) UploadFile(ctx context.Context, data []byte, mimeType, displayName string) (string, string, error) {
	return "", "", nil
}

func (m *mockAIClient) DeleteFile(ctx context.Context, name string) error { return nil }

func (m *mockAIClient) GetFile(ctx context.Context, name string) (*genai.File, error) {
	return nil, nil
}

func imageResponse(data []byte) *gemini.Response {
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: "image/png", Data: data}}},
				},
			}},
		},
	}
}

func fastRetry() resilience.Policy {
	return resilience.Policy{MaxRetries: 3, InitialInterval: time.Millisecond}
}

func TestPanelIllustrator_GeneratePanel(t *testing.T) {
	ctx := context.Background()
	seed := int32(777)

	baseReq := PanelRequest{
		VisualDescription: "A young woman walks through Hiroshima Peace Memorial Park at dusk.",
		PanelOutfit:       "plain beige cardigan over a white blouse",
		Style:             domain.StyleWebtoon,
		IdentityBlock:     "A woman in her 20s with long black hair and brown eyes.",
		CharacterName:     "Hanako",
		ReferenceImage:    domain.ReferenceImage{Data: []byte{0xFF, 0xD8}, MimeType: "image/jpeg"},
		Seed:              &seed,
	}

	t.Run("画像が生成され、参照写真とシードが渡ること", func(t *testing.T) {
		mock := &mockAIClient{
			generateFunc: func(model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
				return imageResponse([]byte("fake-image")), nil
			},
		}
		il, err := NewPanelIllustrator(mock, "gemini-image-test", fastRetry())
		if err != nil {
			t.Fatal(err)
		}

		img, err := il.GeneratePanel(ctx, baseReq)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(img.Data) != "fake-image" || img.MimeType != "image/png" {
			t.Errorf("生成結果が不正です: %+v", img)
		}

		if len(mock.lastParts) != 2 {
			t.Fatalf("期待パーツ数 2 (テキスト+参照写真), 実際 %d", len(mock.lastParts))
		}
		if mock.lastParts[1].InlineData == nil || mock.lastParts[1].InlineData.MIMEType != "image/jpeg" {
			t.Error("参照写真がInlineDataとして添付されていません")
		}
		if mock.lastOpts.Seed == nil || *mock.lastOpts.Seed != 777 {
			t.Errorf("シードが渡っていません: %v", mock.lastOpts.Seed)
		}
		if mock.lastOpts.AspectRatio != PanelAspectRatio {
			t.Errorf("アスペクト比が不正です: %s", mock.lastOpts.AspectRatio)
		}
	})

	t.Run("参照写真が無ければテキストのみで生成すること", func(t *testing.T) {
		mock := &mockAIClient{
			generateFunc: func(model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
				return imageResponse([]byte("x")), nil
			},
		}
		il, _ := NewPanelIllustrator(mock, "gemini-image-test", fastRetry())

		req := baseReq
		req.ReferenceImage = domain.ReferenceImage{}
		if _, err := il.GeneratePanel(ctx, req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(mock.lastParts) != 1 {
			t.Errorf("期待パーツ数 1, 実際 %d", len(mock.lastParts))
		}
	})

	t.Run("画像パーツの無い応答はErrNoImagePayloadになること", func(t *testing.T) {
		mock := &mockAIClient{
			generateFunc: func(model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
				return &gemini.Response{RawResponse: &genai.GenerateContentResponse{
					Candidates: []*genai.Candidate{{Content: &genai.Content{}}},
				}}, nil
			},
		}
		il, _ := NewPanelIllustrator(mock, "gemini-image-test", fastRetry())

		_, err := il.GeneratePanel(ctx, baseReq)
		if err == nil {
			t.Fatal("画像無し応答でエラーが返りませんでした")
		}
	})

	t.Run("安全フィルターによる異常終了はエラーになること", func(t *testing.T) {
		mock := &mockAIClient{
			generateFunc: func(model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
				return &gemini.Response{RawResponse: &genai.GenerateContentResponse{
					Candidates: []*genai.Candidate{{
						Content:      &genai.Content{},
						FinishReason: genai.FinishReasonSafety,
					}},
				}}, nil
			},
		}
		il, _ := NewPanelIllustrator(mock, "gemini-image-test", fastRetry())

		_, err := il.GeneratePanel(ctx, baseReq)
		if err == nil {
			t.Fatal("安全フィルター応答でエラーが返りませんでした")
		}
		if !strings.Contains(err.Error(), "FinishReason") {
			t.Errorf("エラー内容が不正です: %v", err)
		}
	})
}

func TestBuildPanelPrompt_LayerOrder(t *testing.T) {
	req := PanelRequest{
		VisualDescription: "She signs the employment contract at the office.",
		PanelOutfit:       "navy business suit",
		Style:             domain.StyleAnime,
		IdentityBlock:     "A woman in her 30s.",
		CharacterName:     "Hanako",
		ReferenceImage:    domain.ReferenceImage{Data: []byte{1}, MimeType: "image/jpeg"},
	}
	prompt := BuildPanelPrompt(req)

	// 衣装指定が最上段に来ることが優先順位の要です。
	outfitIdx := strings.Index(prompt, "MANDATORY OUTFIT")
	cibIdx := strings.Index(prompt, "CHARACTER IDENTITY")
	refIdx := strings.Index(prompt, "REFERENCE IMAGE")
	sceneIdx := strings.Index(prompt, "SCENE:")
	styleIdx := strings.Index(prompt, "ART STYLE:")
	lightIdx := strings.Index(prompt, "LIGHTING:")
	compIdx := strings.Index(prompt, "COMPOSITION:")

	indices := []int{outfitIdx, cibIdx, refIdx, sceneIdx, styleIdx, lightIdx, compIdx}
	for i, idx := range indices {
		if idx == -1 {
			t.Fatalf("層 %d がプロンプトに存在しません:\n%s", i, prompt)
		}
		if i > 0 && idx < indices[i-1] {
			t.Errorf("層の順序が崩れています (位置 %d): %v", i, indices)
		}
	}

	if !strings.Contains(prompt, "lower two-thirds") {
		t.Error("構図の制約が含まれていません")
	}
	if !strings.Contains(prompt, NegativePanelPrompt) {
		t.Error("ネガティブプロンプトが含まれていません")
	}
}

func TestClassifyLighting(t *testing.T) {
	tests := []struct {
		desc string
		want LightingTone
	}{
		{"She cries alone in the hospital room after the diagnosis.", ToneCold},
		{"The whole family laughs together at her graduation ceremony.", ToneWarm},
		{"She walks to the train station on an ordinary morning.", ToneNeutral},
		{"Tears of joy at the wedding after years of struggle.", ToneCold},
	}
	for _, tt := range tests {
		if got := ClassifyLighting(tt.desc); got != tt.want {
			t.Errorf("ClassifyLighting(%q) = %s, 期待 %s", tt.desc, got, tt.want)
		}
	}
}

func TestBuildPanelPrompt_NarrationAffectsLighting(t *testing.T) {
	req := PanelRequest{
		VisualDescription: "She stands at the window watching the street.",
		PanelOutfit:       "plain grey sweater",
		Narration:         "It was the year the illness took everything from her.",
		Style:             domain.StyleWebtoon,
	}

	prompt := BuildPanelPrompt(req)
	if !strings.Contains(prompt, "Cold, desaturated tones") {
		t.Error("ナレーションの感情が照明判定に反映されていません")
	}
}

func TestStyleRecipe(t *testing.T) {
	for _, style := range domain.ArtStyles() {
		if StyleRecipe(style) == "" {
			t.Errorf("画風 %s のレシピが空です", style)
		}
	}
	// 未知の画風にも安全な既定値が返ること
	if StyleRecipe(domain.ArtStyle("Unknown")) != styleRecipes[domain.StyleAnime] {
		t.Error("未知の画風の既定値がAnimeではありません")
	}
}

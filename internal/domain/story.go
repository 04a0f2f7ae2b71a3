package domain

import (
	"fmt"
	"strings"
	"time"
)

// ArtStyle は作品全体に適用する画風の選択肢です。
type ArtStyle string

const (
	StyleAnime     ArtStyle = "Anime"
	StyleManga     ArtStyle = "Manga"
	StyleChibi     ArtStyle = "Chibi"
	StylePainterly ArtStyle = "Painterly"
	StyleWebtoon   ArtStyle = "Webtoon"
	StyleGhibli    ArtStyle = "Ghibli"
	StyleCinematic ArtStyle = "Cinematic"
)

// ArtStyles は選択可能な画風の一覧を表示順で返します。
func ArtStyles() []ArtStyle {
	return []ArtStyle{
		StyleWebtoon,
		StyleAnime,
		StyleManga,
		StyleChibi,
		StylePainterly,
		StyleGhibli,
		StyleCinematic,
	}
}

// ParseArtStyle は入力文字列を画風に変換します。未知の値はエラーです。
func ParseArtStyle(s string) (ArtStyle, error) {
	for _, style := range ArtStyles() {
		if strings.EqualFold(s, string(style)) {
			return style, nil
		}
	}
	return "", fmt.Errorf("未対応のアートスタイルです: %q", s)
}

// PanelStatus はパネル画像のライフサイクル状態です。
type PanelStatus string

const (
	PanelPending    PanelStatus = "pending"
	PanelGenerating PanelStatus = "generating"
	PanelComplete   PanelStatus = "complete"
	PanelError      PanelStatus = "error"
)

// IsTerminal は生成処理が終了した状態（成功または失敗）かどうかを返します。
func (s PanelStatus) IsTerminal() bool {
	return s == PanelComplete || s == PanelError
}

// PanelScript は台本上の1コマ分の指示です。
// PanelID は生成順と表示順の両方を規定します。
type PanelScript struct {
	PanelID           int    `json:"panelId"`
	VisualDescription string `json:"visualDescription"`
	PanelOutfit       string `json:"panelOutfit"`
	Dialogue          string `json:"dialogue,omitempty"`
	Speaker           string `json:"speaker,omitempty"`
	Narration         string `json:"narration,omitempty"`
}

// GeneratedPanel は台本のコマに生成結果を重ねた状態です。
// 画像は生成完了まで空のままです。
type GeneratedPanel struct {
	PanelScript
	ImageData []byte      `json:"imageData,omitempty"`
	MimeType  string      `json:"mimeType,omitempty"`
	Status    PanelStatus `json:"status"`
}

// NewPendingPanels は台本から pending 状態のパネル列を作成します。
func NewPendingPanels(scripts []PanelScript) []GeneratedPanel {
	panels := make([]GeneratedPanel, len(scripts))
	for i, s := range scripts {
		panels[i] = GeneratedPanel{PanelScript: s, Status: PanelPending}
	}
	return panels
}

// SavedStory は完成したセッションの永続化表現です。
// パネル画像を内包するため、これ単体で再表示できます。
type SavedStory struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Date     time.Time        `json:"date"`
	ArtStyle ArtStyle         `json:"artStyle"`
	Panels   []GeneratedPanel `json:"panels"`
}

// StorySummary は保存済みストーリーの一覧表示用メタデータです。
type StorySummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Date       time.Time `json:"date"`
	ArtStyle   ArtStyle  `json:"artStyle"`
	PanelCount int       `json:"panelCount"`
}

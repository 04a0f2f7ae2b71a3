// Package export は完成した物語の書き出しを担当します。
// 全パネルを縦1列に連結したエピソード画像の生成と、連結に失敗した
// 場合の素のパネル画像のダウンロードの両方を提供します。
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"relive-web/internal/domain"
)

const (
	// StripWidth は連結画像の横幅です。各パネルはこの幅に合わせて
	// 拡縮されます。
	StripWidth = 800
	// panelGap はパネル間の余白ピクセル数です。
	panelGap = 24
	// footerHeight は最下部の余白です。アプリ名等の後載せ用に空けます。
	footerHeight = 80

	stripJPEGQuality = 90
)

// ErrNoRenderedPanels は連結対象となる完成パネルが無いことを示します。
var ErrNoRenderedPanels = fmt.Errorf("連結できる完成パネルがありません")

// StitchEpisode は完成状態のパネルを縦に連結した1枚のJPEGを返します。
// error 状態のパネルは欠番として飛ばします。
func StitchEpisode(story domain.SavedStory) ([]byte, error) {
	decoded := make([]image.Image, 0, len(story.Panels))
	for _, p := range story.Panels {
		if p.Status != domain.PanelComplete || len(p.ImageData) == 0 {
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(p.ImageData))
		if err != nil {
			return nil, fmt.Errorf("パネル %d のデコードに失敗しました: %w", p.PanelID, err)
		}
		decoded = append(decoded, img)
	}
	if len(decoded) == 0 {
		return nil, ErrNoRenderedPanels
	}

	heights := make([]int, len(decoded))
	totalHeight := footerHeight
	for i, img := range decoded {
		heights[i] = scaledHeight(img.Bounds().Dx(), img.Bounds().Dy(), StripWidth)
		totalHeight += heights[i]
		if i > 0 {
			totalHeight += panelGap
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, StripWidth, totalHeight))
	stddraw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, stddraw.Src)

	y := 0
	for i, img := range decoded {
		if i > 0 {
			y += panelGap
		}
		dst := image.Rect(0, y, StripWidth, y+heights[i])
		xdraw.CatmullRom.Scale(canvas, dst, img, img.Bounds(), xdraw.Over, nil)
		y += heights[i]
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, canvas, &jpeg.Options{Quality: stripJPEGQuality}); err != nil {
		return nil, fmt.Errorf("エピソード画像のエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

// RawPanel は指定パネルの生成画像をそのまま返します。連結書き出しが
// 使えない環境向けのフォールバック経路です。
func RawPanel(story domain.SavedStory, panelID int) ([]byte, string, error) {
	for _, p := range story.Panels {
		if p.PanelID != panelID {
			continue
		}
		if p.Status != domain.PanelComplete || len(p.ImageData) == 0 {
			return nil, "", fmt.Errorf("パネル %d には画像がありません (status=%s)", panelID, p.Status)
		}
		mime := p.MimeType
		if mime == "" {
			mime = "image/png"
		}
		return p.ImageData, mime, nil
	}
	return nil, "", fmt.Errorf("パネル %d が見つかりません", panelID)
}

// scaledHeight は幅 width に合わせたときの高さを返します。
func scaledHeight(w, h, width int) int {
	if w <= 0 {
		return 1
	}
	nh := h * width / w
	if nh < 1 {
		nh = 1
	}
	return nh
}

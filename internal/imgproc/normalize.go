// Package imgproc は参照写真の正規化を担当します。
// アップロードされた写真をモデル入力に適したサイズと形式に揃えるのです。
package imgproc

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/shouni/gemini-image-kit/imgutil"
)

const (
	// MaxDimension は長辺の上限ピクセル数です。これを超える写真は縮小します。
	MaxDimension = 1024
	// JPEGQuality は再エンコード時の品質です。
	JPEGQuality = 85
)

// NormalizeReferencePhoto はアップロード写真をJPEGに正規化します。
// 長辺が MaxDimension を超える場合はアスペクト比を保ったまま縮小します。
// 入力は image.Decode が対応する形式（JPEG, PNG, GIF）を受け付けます。
func NormalizeReferencePhoto(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("参照写真のデコードに失敗しました: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("参照写真のサイズが不正です: %dx%d", w, h)
	}

	if w <= MaxDimension && h <= MaxDimension {
		// 縮小不要でも形式はJPEGに統一するのです。
		out, err := imgutil.CompressToJPEG(data, JPEGQuality)
		if err != nil {
			return nil, fmt.Errorf("参照写真の再エンコードに失敗しました: %w", err)
		}
		return out, nil
	}

	nw, nh := scaledSize(w, h, MaxDimension)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("縮小後のJPEGエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

// scaledSize は長辺を max に合わせた縮小後サイズを返します。
// 丸めで0になるのを防ぐため、最小1ピクセルを保証します。
func scaledSize(w, h, max int) (int, int) {
	if w >= h {
		nh := h * max / w
		if nh < 1 {
			nh = 1
		}
		return max, nh
	}
	nw := w * max / h
	if nw < 1 {
		nw = 1
	}
	return nw, max
}

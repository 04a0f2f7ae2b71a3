package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ErrIdentityBlockAlreadySet は、同一セッション内で確定済みの CIB を
// 上書きしようとした場合に返されます。
var ErrIdentityBlockAlreadySet = errors.New("identity block is already set for this session")

// ColorPalette はキャラクターの基調となる配色タグです。
type ColorPalette string

const (
	PaletteSoft    ColorPalette = "Soft"
	PaletteBright  ColorPalette = "Bright"
	PaletteNeutral ColorPalette = "Neutral"
	PaletteDark    ColorPalette = "Dark"
)

// ParseColorPalette は入力文字列をパレットタグに変換します。
// 未指定（空文字）は有効で、ゼロ値を返します。
func ParseColorPalette(s string) (ColorPalette, error) {
	switch ColorPalette(s) {
	case "", PaletteSoft, PaletteBright, PaletteNeutral, PaletteDark:
		return ColorPalette(s), nil
	}
	return "", fmt.Errorf("未対応のカラーパレットです: %q", s)
}

// ReferenceImage は参照写真のバイナリとエンコード情報を保持します。
// プロフィール作成時に一度だけ設定され、以後変更されません。
type ReferenceImage struct {
	Data     []byte `json:"data,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// IsZero は参照写真が未設定かどうかを返します。
func (r ReferenceImage) IsZero() bool {
	return len(r.Data) == 0
}

// CharacterProfile は登場人物1人分の参照情報を保持します。
// identityBlock（CIB）はスクリプト生成が成功するまで空で、
// 一度確定するとそのセッション中は不変の正とみなします。
type CharacterProfile struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	ReferenceImage ReferenceImage `json:"reference_image"`
	HairOverride   string         `json:"hair_override,omitempty"`
	OutfitOverride string         `json:"outfit_override,omitempty"`
	Accessories    []string       `json:"accessories,omitempty"`
	ColorPalette   ColorPalette   `json:"color_palette,omitempty"`
	Notes          string         `json:"notes,omitempty"`

	identityBlock string
}

// NewCharacterProfile は参照写真つきのプロフィールを生成します。
// ID は生成時に採番され、以後再利用されません。
func NewCharacterProfile(name string, ref ReferenceImage) *CharacterProfile {
	return &CharacterProfile{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(name),
		ReferenceImage: ref,
	}
}

// SetName は表示名を更新します。CIB との対応はこの名前をキーに解決されます。
func (c *CharacterProfile) SetName(name string) {
	c.Name = strings.TrimSpace(name)
}

// SetHairOverride は固定ヘアスタイルを設定します。空文字で動的推定に戻ります。
func (c *CharacterProfile) SetHairOverride(hair string) {
	c.HairOverride = strings.TrimSpace(hair)
}

// SetOutfitOverride は固定衣装を設定します。空文字で動的推定に戻ります。
func (c *CharacterProfile) SetOutfitOverride(outfit string) {
	c.OutfitOverride = strings.TrimSpace(outfit)
}

// SetAccessories はアクセサリー一覧を置き換えます。
// 意味上は集合ですが、表示順を安定させるためソートして保持します。
func (c *CharacterProfile) SetAccessories(items []string) {
	cleaned := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		s := strings.TrimSpace(it)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		cleaned = append(cleaned, s)
	}
	sort.Strings(cleaned)
	c.Accessories = cleaned
}

// SetColorPalette は配色タグを更新します。
func (c *CharacterProfile) SetColorPalette(p ColorPalette) {
	c.ColorPalette = p
}

// SetNotes は補足メモ（雰囲気や民族性などのヒント）を更新します。
// メモはあくまで助言であり、参照写真を上書きすることはありません。
func (c *CharacterProfile) SetNotes(notes string) {
	c.Notes = strings.TrimSpace(notes)
}

// IdentityBlock は確定済みの CIB テキストを返します。未確定なら空文字です。
func (c *CharacterProfile) IdentityBlock() string {
	return c.identityBlock
}

// HasIdentityBlock は CIB が確定済みかどうかを返します。
func (c *CharacterProfile) HasIdentityBlock() bool {
	return c.identityBlock != ""
}

// SetIdentityBlock は CIB を確定させます。確定済みの場合はエラーを返し、
// 既存の値を保持します。新しい CIB は新しいストーリーセッションでのみ
// 生成し直せます。
func (c *CharacterProfile) SetIdentityBlock(cib string) error {
	if c.identityBlock != "" {
		return ErrIdentityBlockAlreadySet
	}
	cib = strings.TrimSpace(cib)
	if cib == "" {
		return errors.New("identity block must not be empty")
	}
	c.identityBlock = cib
	return nil
}

// ResetIdentityBlock は新規セッション開始時に CIB を破棄します。
// セッション途中での呼び出しは想定していません。
func (c *CharacterProfile) ResetIdentityBlock() {
	c.identityBlock = ""
}

// String はキャラクターの情報を文字列で返します。
func (c *CharacterProfile) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.ID)
}

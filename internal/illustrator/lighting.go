package illustrator

import "strings"

// LightingTone は場面の感情に応じた照明方針です。
type LightingTone string

const (
	ToneCold    LightingTone = "cold"
	ToneWarm    LightingTone = "warm"
	ToneNeutral LightingTone = "neutral"
)

var coldKeywords = []string{
	"rejection", "rejected", "failure", "failed", "illness", "sick", "hospital",
	"funeral", "grief", "loss", "lonely", "alone", "crying", "tears", "sorrow",
	"struggle", "struggling", "poverty", "debt", "divorce", "goodbye", "farewell",
	"death", "died", "accident", "unemployed", "eviction",
}

var warmKeywords = []string{
	"wedding", "marriage", "graduation", "graduate", "celebration", "celebrate",
	"birthday", "success", "promoted", "promotion", "victory", "won", "winning",
	"reunion", "birth", "newborn", "laughing", "laughter", "smiling", "joy",
	"festival", "anniversary", "proposal", "first kiss",
}

// ClassifyLighting は場面描写とナレーションを連結したテキストの語彙から
// 照明方針を決めます。悲哀や苦境の場面は寒色の沈んだ光、成功や喜びの
// 場面は暖色の明るい光、どちらでもない場面は中立のシネマティックな光を
// 選びます。両方の語彙が混在する場面では寒色を優先します。転機の直前の
// 場面が多いためです。
func ClassifyLighting(sceneText string) LightingTone {
	lower := strings.ToLower(sceneText)
	for _, kw := range coldKeywords {
		if strings.Contains(lower, kw) {
			return ToneCold
		}
	}
	for _, kw := range warmKeywords {
		if strings.Contains(lower, kw) {
			return ToneWarm
		}
	}
	return ToneNeutral
}

// lightingDirective は照明方針をプロンプト片に変換します。
func lightingDirective(tone LightingTone) string {
	switch tone {
	case ToneCold:
		return "LIGHTING: Cold, desaturated tones. Muted blue-grey palette, low-key lighting, heavy shadows, somber atmosphere."
	case ToneWarm:
		return "LIGHTING: Warm, high-key tones. Golden-hour glow, soft highlights, vibrant saturation, uplifting atmosphere."
	default:
		return "LIGHTING: Neutral cinematic lighting, balanced exposure, natural color temperature."
	}
}

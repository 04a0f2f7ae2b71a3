package illustrator

import "relive-web/internal/domain"

// styleRecipes は画風ごとの描画スタイル指示です。ここの文言は
// パネル間の画風のブレを防ぐため、セッションを通して固定されます。
var styleRecipes = map[domain.ArtStyle]string{
	domain.StyleAnime:     "High-quality Anime art style, Kyoto Animation aesthetic, detailed eyes, cinematic lighting, beautiful scenery.",
	domain.StyleManga:     "Modern Manga style, black and white ink with screentones, highly detailed background, dramatic composition.",
	domain.StyleChibi:     "Chibi style, super deformed, cute, large head ratio, simple shading.",
	domain.StylePainterly: "Digital Painterly style, soft brushstrokes, atmospheric lighting, detailed background art.",
	domain.StyleWebtoon:   "Premium Webtoon style, crisp lineart, vibrant cel-shading, manhwa aesthetic, vertical format composition, highly detailed backgrounds.",
	domain.StyleGhibli:    "Studio Ghibli style, Hayao Miyazaki aesthetic, hand-painted watercolor backgrounds, lush greenery, soft natural lighting, nostalgic atmosphere, clean character lines.",
	domain.StyleCinematic: "Cinematic live-action film still, shallow depth of field, anamorphic lens flare, film grain, dramatic color grading, photorealistic detail.",
}

// StyleRecipe は画風に対応する描画指示を返します。未知の画風には
// Anime の指示を既定として返します。
func StyleRecipe(style domain.ArtStyle) string {
	if recipe, ok := styleRecipes[style]; ok {
		return recipe
	}
	return styleRecipes[domain.StyleAnime]
}

package director

import (
	"fmt"
	"strings"

	"relive-web/internal/domain"
)

const scriptSystemInstruction = "You are a professional webtoon script director. " +
	"You turn a person's life story into an emotionally resonant vertical-scroll comic script. " +
	"Respond with a single JSON object and nothing else."

// BuildScriptPrompt は台本生成用のユーザープロンプトを組み立てます。
// 衣装の決定とキャラクター同一性記述（CIB）の作成は台本段階の責務であり、
// 画像生成段階では一切変更されません。その前提をここで全て指示するのです。
func BuildScriptPrompt(story string, style domain.ArtStyle, characters []*domain.CharacterProfile) string {
	var b strings.Builder

	b.WriteString("### TASK ###\n")
	b.WriteString("Adapt the life story below into a webtoon script. ")
	fmt.Fprintf(&b, "Choose a panel count between %d and %d that fits the emotional arc of the story. ",
		domain.MinPanelCount, domain.MaxPanelCount)
	b.WriteString("Give the story a short evocative title.\n\n")

	b.WriteString("### STORY ###\n")
	b.WriteString(strings.TrimSpace(story))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "### ART STYLE ###\n%s\n\n", style)

	b.WriteString("### CHARACTERS ###\n")
	if len(characters) == 0 {
		b.WriteString("- No character profiles were provided. Infer the protagonist from the story itself and keep their appearance consistent across all panels.\n")
	}
	for i, c := range characters {
		role := "supporting character"
		if i == 0 {
			role = "protagonist"
		}
		fmt.Fprintf(&b, "- %s (%s)\n", c.Name, role)
		if c.HairOverride != "" {
			fmt.Fprintf(&b, "  Hair: %s\n", c.HairOverride)
		}
		if c.OutfitOverride != "" {
			fmt.Fprintf(&b, "  FIXED OUTFIT: %s\n", c.OutfitOverride)
		}
		if len(c.Accessories) > 0 {
			fmt.Fprintf(&b, "  Signature accessories: %s\n", strings.Join(c.Accessories, ", "))
		}
		if c.ColorPalette != "" {
			fmt.Fprintf(&b, "  Color palette: %s\n", c.ColorPalette)
		}
		if c.Notes != "" {
			fmt.Fprintf(&b, "  Notes: %s\n", c.Notes)
		}
	}
	b.WriteString("\n")

	b.WriteString("### PANEL RULES ###\n")
	b.WriteString("- panelId starts at 1 and increases by 1 per panel.\n")
	b.WriteString("- visualDescription describes one concrete scene: location, time of day, camera framing, and what each visible character is doing.\n")
	b.WriteString("- If a panel takes place at a real-world landmark mentioned in the story, name the landmark explicitly in visualDescription.\n")
	b.WriteString("- Track the characters' ages across panels. A childhood scene must look like a child, an elderly scene like an elderly person.\n")
	b.WriteString("- dialogue, speaker, and narration are optional. Keep dialogue short and natural.\n\n")

	b.WriteString("### OUTFIT RULES ###\n")
	b.WriteString("- panelOutfit is MANDATORY for every panel and describes the full outfit of the protagonist in that scene.\n")
	b.WriteString("- Match the outfit to the scene category: hardship or illness scenes use plain home clothes in subdued colors; job interviews and contract signings use business attire; graduations use academic regalia; weddings use formal ceremony wear.\n")
	b.WriteString("- Do not repeat the same outfit wording across unrelated scenes. Outfits may only repeat when the panels belong to the same continuous scene.\n")
	b.WriteString("- If a character lists a FIXED OUTFIT above, every panelOutfit for scenes featuring that character must use that exact outfit instead of the scene-category rules.\n\n")

	b.WriteString("### CHARACTER IDENTITY BLOCKS ###\n")
	b.WriteString("- For each character, write one characterIdentityBlocks entry keyed by the character's name.\n")
	b.WriteString("- The block describes permanent physical identity only: apparent age range, face shape, eyes, nose, mouth, skin tone, hair color and texture, build, and distinguishing marks.\n")
	b.WriteString("- NEVER mention clothing, outfits, or accessories that change between scenes. Clothing belongs to panelOutfit only.\n")
	b.WriteString("- Write the block so that any illustrator reading it alone would draw the same recognizable person.\n\n")

	b.WriteString("### OUTPUT FORMAT ###\n")
	b.WriteString(`{"title": "...", "panels": [{"panelId": 1, "visualDescription": "...", "panelOutfit": "...", "dialogue": "...", "speaker": "...", "narration": "..."}], "characterIdentityBlocks": {"<name>": "..."}}`)
	b.WriteString("\n")

	return b.String()
}

package domain

// パネル数の許容範囲です。物語の密度に応じてこの範囲内で変動します。
const (
	MinPanelCount = 6
	MaxPanelCount = 25
)

// ScriptResponse はテキスト生成モデルから返される台本全体の構造です。
// identityBlocks はキャラクター名をキーとした CIB テキストの対応表です。
type ScriptResponse struct {
	Title          string            `json:"title"`
	Panels         []PanelScript     `json:"panels"`
	IdentityBlocks map[string]string `json:"characterIdentityBlocks"`
}

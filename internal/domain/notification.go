package domain

// StoryNotification は通知コンポーネントで共有されるデータ構造です。
// 完成した物語のメタデータを通知先に伝えるために使用します。
type StoryNotification struct {
	// StoryID は対象セッションのIDです。
	StoryID string `json:"story_id"`

	// Title は生成された物語のタイトルです。
	Title string `json:"title"`

	// ArtStyle は選択された画風です。
	ArtStyle ArtStyle `json:"art_style"`

	// TotalPanels は物語の総パネル数です。
	TotalPanels int `json:"total_panels"`

	// FailedPanels は生成に失敗したパネル数です。0なら完全成功です。
	FailedPanels int `json:"failed_panels"`
}

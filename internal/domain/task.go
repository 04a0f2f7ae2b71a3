package domain

// TaskKind は非同期タスクの種別です。
type TaskKind string

const (
	// TaskGenerateStory は物語全体の生成タスクです。
	TaskGenerateStory TaskKind = "generate_story"
	// TaskRegeneratePanel は単一パネルの再生成タスクです。
	TaskRegeneratePanel TaskKind = "regenerate_panel"
)

// StoryTask は非同期に実行される生成指示を表します。
type StoryTask struct {
	// Kind は実行するタスクの種別です。
	Kind TaskKind `json:"kind"`
	// SessionID は対象の物語セッションIDです。
	SessionID string `json:"session_id"`
	// PanelID は再生成対象のパネルIDです。物語全体の生成では未使用です。
	PanelID int `json:"panel_id,omitempty"`
}

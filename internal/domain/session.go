package domain

import (
	"errors"
	"fmt"
	"time"
)

// Step はストーリーセッションの進行状態です。
type Step string

const (
	StepInput            Step = "input"
	StepGeneratingScript Step = "generating_script"
	StepGeneratingPanels Step = "generating_panels"
	StepFinalizing       Step = "finalizing"
	StepComplete         Step = "complete"
)

// ErrEmptyStory は本文が空のまま生成を開始しようとした場合に返されます。
// 検証はいかなるネットワーク呼び出しよりも前に行われます。
var ErrEmptyStory = errors.New("story text must not be empty")

// Session は1本のストーリー生成の全状態を保持します。
// オーケストレーターが唯一の書き込み主体であり、完成後のコピーだけが
// 永続化コラボレーターに渡ります。
type Session struct {
	ID              string
	Story           string
	ArtStyle        ArtStyle
	Title           string
	Characters      []*CharacterProfile
	Panels          []GeneratedPanel
	ConsistencySeed int32
	Step            Step
	ErrorMessage    string
	CreatedAt       time.Time
}

// NewSession は入力確定前のセッションを作成します。
func NewSession(id, story string, style ArtStyle, characters []*CharacterProfile) *Session {
	return &Session{
		ID:         id,
		Story:      story,
		ArtStyle:   style,
		Characters: characters,
		Step:       StepInput,
		CreatedAt:  time.Now(),
	}
}

// RestoreSession は保存済みストーリーを完了状態のライブセッションとして
// 復元します。本文とキャラクター情報は永続化対象外のため空のままであり、
// 復元後にできる操作はパネル単位の再生成と閲覧に限られます。
func RestoreSession(saved SavedStory) *Session {
	panels := make([]GeneratedPanel, len(saved.Panels))
	copy(panels, saved.Panels)
	for i := range panels {
		if len(saved.Panels[i].ImageData) > 0 {
			panels[i].ImageData = append([]byte(nil), saved.Panels[i].ImageData...)
		}
	}
	return &Session{
		ID:        saved.ID,
		Title:     saved.Title,
		ArtStyle:  saved.ArtStyle,
		Panels:    panels,
		Step:      StepComplete,
		CreatedAt: saved.Date,
	}
}

// BeginScript は Input → GeneratingScript の遷移です。
// 本文が空の場合は状態を変えずに拒否し、シードはここで一度だけ確定します。
func (s *Session) BeginScript(seed int32) error {
	if s.Step != StepInput {
		return fmt.Errorf("script generation cannot start from step %q", s.Step)
	}
	if s.Story == "" {
		return ErrEmptyStory
	}
	s.ConsistencySeed = seed
	s.ErrorMessage = ""
	s.Step = StepGeneratingScript
	return nil
}

// ApplyScript は台本の受理に伴う遷移です。タイトルを確定し、
// 全パネルを pending で実体化して GeneratingPanels に進みます。
func (s *Session) ApplyScript(title string, scripts []PanelScript) error {
	if s.Step != StepGeneratingScript {
		return fmt.Errorf("script cannot be applied in step %q", s.Step)
	}
	s.Title = title
	s.Panels = NewPendingPanels(scripts)
	s.Step = StepGeneratingPanels
	return nil
}

// Fail は生成中の致命エラーの遷移です。ユーザー向けメッセージを保持して
// Input に戻します。パネルは破棄されます。
func (s *Session) Fail(message string) {
	s.Panels = nil
	s.Title = ""
	s.ErrorMessage = message
	s.Step = StepInput
}

// BeginFinalize は全パネルが終端状態に達した後の遷移です。
func (s *Session) BeginFinalize() error {
	if s.Step != StepGeneratingPanels {
		return fmt.Errorf("finalize cannot start from step %q", s.Step)
	}
	for i := range s.Panels {
		if !s.Panels[i].Status.IsTerminal() {
			return fmt.Errorf("panel %d is still %q", s.Panels[i].PanelID, s.Panels[i].Status)
		}
	}
	s.Step = StepFinalizing
	return nil
}

// Complete は永続化試行後の最終遷移です。保存失敗は致命ではないため、
// この遷移自体は保存結果に依存しません。
func (s *Session) Complete() error {
	if s.Step != StepFinalizing {
		return fmt.Errorf("session cannot complete from step %q", s.Step)
	}
	s.Step = StepComplete
	return nil
}

// PanelByID は指定 ID のパネルへのポインタを返します。
func (s *Session) PanelByID(panelID int) (*GeneratedPanel, error) {
	for i := range s.Panels {
		if s.Panels[i].PanelID == panelID {
			return &s.Panels[i], nil
		}
	}
	return nil, fmt.Errorf("panel %d not found", panelID)
}

// Protagonist は参照写真の注入対象となる主人公を返します。
// 現行仕様では先頭のキャラクターを主人公として扱います。
func (s *Session) Protagonist() *CharacterProfile {
	if len(s.Characters) == 0 {
		return nil
	}
	return s.Characters[0]
}

// ToSavedStory は永続化用のコピーを作成します。以後ライブセッションを
// 変更しても、このコピーには影響しません。
func (s *Session) ToSavedStory(now time.Time) SavedStory {
	panels := make([]GeneratedPanel, len(s.Panels))
	copy(panels, s.Panels)
	for i := range panels {
		if len(s.Panels[i].ImageData) > 0 {
			panels[i].ImageData = append([]byte(nil), s.Panels[i].ImageData...)
		}
	}
	return SavedStory{
		ID:       s.ID,
		Title:    s.Title,
		Date:     now,
		ArtStyle: s.ArtStyle,
		Panels:   panels,
	}
}

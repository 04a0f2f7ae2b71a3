package domain

import (
	"errors"
	"testing"
	"time"
)

func newTestSession(story string) *Session {
	hero := NewCharacterProfile("主人公", ReferenceImage{Data: []byte{0x01}, MimeType: "image/jpeg"})
	return NewSession("session-1", story, StyleWebtoon, []*CharacterProfile{hero})
}

func TestSession_BeginScript(t *testing.T) {
	t.Run("空の物語では開始できないこと", func(t *testing.T) {
		s := newTestSession("")
		err := s.BeginScript(42)
		if !errors.Is(err, ErrEmptyStory) {
			t.Fatalf("期待エラー ErrEmptyStory, 実際 %v", err)
		}
		// 状態が一切変化していないことが重要なのです。
		if s.Step != StepInput {
			t.Errorf("失敗時にステップが %q に変化しました", s.Step)
		}
		if s.ConsistencySeed != 0 {
			t.Errorf("失敗時にシードが固定されました: %d", s.ConsistencySeed)
		}
	})

	t.Run("正常に開始するとシードが固定されること", func(t *testing.T) {
		s := newTestSession("おばあちゃんの物語")
		if err := s.BeginScript(12345); err != nil {
			t.Fatalf("開始に失敗しました: %v", err)
		}
		if s.Step != StepGeneratingScript {
			t.Errorf("期待ステップ %q, 実際 %q", StepGeneratingScript, s.Step)
		}
		if s.ConsistencySeed != 12345 {
			t.Errorf("期待シード 12345, 実際 %d", s.ConsistencySeed)
		}
	})

	t.Run("Input以外からは開始できないこと", func(t *testing.T) {
		s := newTestSession("物語")
		_ = s.BeginScript(1)
		if err := s.BeginScript(2); err == nil {
			t.Error("GeneratingScript中の再開始でエラーが返りませんでした")
		}
	})
}

func TestSession_ApplyScriptAndFinalize(t *testing.T) {
	s := newTestSession("物語本文")
	if err := s.BeginScript(7); err != nil {
		t.Fatal(err)
	}

	scripts := []PanelScript{
		{PanelID: 1, VisualDescription: "幼少期の庭", PanelOutfit: "white summer dress"},
		{PanelID: 2, VisualDescription: "卒業式", PanelOutfit: "graduation gown"},
	}
	if err := s.ApplyScript("思い出のアルバム", scripts); err != nil {
		t.Fatalf("台本の適用に失敗しました: %v", err)
	}
	if s.Step != StepGeneratingPanels {
		t.Fatalf("期待ステップ %q, 実際 %q", StepGeneratingPanels, s.Step)
	}
	for _, p := range s.Panels {
		if p.Status != PanelPending {
			t.Errorf("パネル%dの初期状態が %q です", p.PanelID, p.Status)
		}
	}

	// 未完了パネルが残っている間は確定フェーズへ進めないのです。
	if err := s.BeginFinalize(); err == nil {
		t.Fatal("未完了パネルがあるのにBeginFinalizeが成功しました")
	}

	s.Panels[0].Status = PanelComplete
	s.Panels[1].Status = PanelError
	if err := s.BeginFinalize(); err != nil {
		t.Fatalf("全パネル終端後のBeginFinalizeに失敗しました: %v", err)
	}
	if err := s.Complete(); err != nil {
		t.Fatalf("Completeに失敗しました: %v", err)
	}
	if s.Step != StepComplete {
		t.Errorf("期待ステップ %q, 実際 %q", StepComplete, s.Step)
	}
}

func TestSession_Fail(t *testing.T) {
	s := newTestSession("物語")
	_ = s.BeginScript(1)
	_ = s.ApplyScript("タイトル", []PanelScript{{PanelID: 1, VisualDescription: "x", PanelOutfit: "y"}})

	s.Fail("台本の生成に失敗しました")

	if s.Step != StepInput {
		t.Errorf("期待ステップ %q, 実際 %q", StepInput, s.Step)
	}
	if s.Panels != nil {
		t.Error("失敗後もパネルが残っています")
	}
	if s.ErrorMessage == "" {
		t.Error("エラーメッセージが保持されていません")
	}
	// 入力内容は保持され、再試行できることを確認するのです。
	if s.Story == "" {
		t.Error("失敗後に物語本文が失われました")
	}
}

func TestSession_PanelByID(t *testing.T) {
	s := newTestSession("物語")
	_ = s.BeginScript(1)
	_ = s.ApplyScript("t", []PanelScript{
		{PanelID: 1, VisualDescription: "a", PanelOutfit: "o"},
		{PanelID: 2, VisualDescription: "b", PanelOutfit: "o"},
	})

	p, err := s.PanelByID(2)
	if err != nil {
		t.Fatalf("存在するパネルの取得に失敗しました: %v", err)
	}
	// 返るのはコピーではなくポインタであることを確認します。
	p.Status = PanelComplete
	if s.Panels[1].Status != PanelComplete {
		t.Error("PanelByIDの変更がセッションに反映されていません")
	}

	if _, err := s.PanelByID(99); err == nil {
		t.Error("存在しないパネルIDでエラーが返りませんでした")
	}
}

func TestSession_ToSavedStory(t *testing.T) {
	s := newTestSession("物語")
	_ = s.BeginScript(1)
	_ = s.ApplyScript("保存テスト", []PanelScript{{PanelID: 1, VisualDescription: "a", PanelOutfit: "o"}})
	s.Panels[0].ImageData = []byte{0x10, 0x20}
	s.Panels[0].Status = PanelComplete

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	saved := s.ToSavedStory(now)

	if saved.Title != "保存テスト" || !saved.Date.Equal(now) {
		t.Errorf("保存内容が不正です: %+v", saved)
	}

	// ライブセッション側を書き換えてもコピーには波及しないのです。
	s.Panels[0].ImageData[0] = 0xFF
	if saved.Panels[0].ImageData[0] != 0x10 {
		t.Error("ImageDataが共有されています。ディープコピーされていません")
	}
}

func TestRestoreSession(t *testing.T) {
	saved := SavedStory{
		ID:       "saved-1",
		Title:    "復元テスト",
		Date:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		ArtStyle: StyleAnime,
		Panels: []GeneratedPanel{{
			PanelScript: PanelScript{PanelID: 1, VisualDescription: "a", PanelOutfit: "o"},
			Status:      PanelComplete,
			ImageData:   []byte{0x10, 0x20},
			MimeType:    "image/png",
		}},
	}

	s := RestoreSession(saved)
	if s.ID != "saved-1" || s.Title != "復元テスト" || s.Step != StepComplete {
		t.Errorf("復元内容が不正です: %+v", s)
	}
	if len(s.Panels) != 1 || s.Panels[0].Status != PanelComplete {
		t.Errorf("復元パネルが不正です: %+v", s.Panels)
	}
	if len(s.Characters) != 0 || s.Protagonist() != nil {
		t.Error("永続化対象外のキャラクター情報が復元されています")
	}

	// 保存データとは独立した画像コピーを持つのです。
	s.Panels[0].ImageData[0] = 0xFF
	if saved.Panels[0].ImageData[0] != 0x10 {
		t.Error("ImageDataが共有されています。ディープコピーされていません")
	}
}

func TestParseArtStyle(t *testing.T) {
	got, err := ParseArtStyle("ghibli")
	if err != nil {
		t.Fatalf("既知スタイルの解析に失敗しました: %v", err)
	}
	if got != StyleGhibli {
		t.Errorf("期待値 %s, 実際の値 %s", StyleGhibli, got)
	}
	if _, err := ParseArtStyle("ukiyoe"); err == nil {
		t.Error("未知スタイルでエラーが返りませんでした")
	}
}

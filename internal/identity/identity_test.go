package identity

import (
	"testing"

	"relive-web/internal/domain"
)

func TestAttach(t *testing.T) {
	t.Run("台本のCIBがそのまま割り当てられること", func(t *testing.T) {
		hero := domain.NewCharacterProfile("Hanako", domain.ReferenceImage{})
		blocks := map[string]string{
			"Hanako": "A woman in her 20s with long black hair and brown eyes.",
		}

		if err := Attach([]*domain.CharacterProfile{hero}, blocks); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hero.IdentityBlock() != blocks["Hanako"] {
			t.Errorf("CIBが一致しません: %s", hero.IdentityBlock())
		}
	})

	t.Run("CIBが無いキャラクターには代替記述が入ること", func(t *testing.T) {
		hero := domain.NewCharacterProfile("Taro", domain.ReferenceImage{})

		if err := Attach([]*domain.CharacterProfile{hero}, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hero.IdentityBlock() != "A person named Taro" {
			t.Errorf("代替記述が不正です: %s", hero.IdentityBlock())
		}
	})

	t.Run("設定済みのCIBは上書きされないこと", func(t *testing.T) {
		hero := domain.NewCharacterProfile("Jiro", domain.ReferenceImage{})
		if err := hero.SetIdentityBlock("original block"); err != nil {
			t.Fatal(err)
		}

		blocks := map[string]string{"Jiro": "a different block"}
		if err := Attach([]*domain.CharacterProfile{hero}, blocks); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hero.IdentityBlock() != "original block" {
			t.Errorf("既存CIBが上書きされました: %s", hero.IdentityBlock())
		}
	})
}

func TestResetAll(t *testing.T) {
	a := domain.NewCharacterProfile("A", domain.ReferenceImage{})
	b := domain.NewCharacterProfile("B", domain.ReferenceImage{})
	_ = a.SetIdentityBlock("block a")
	_ = b.SetIdentityBlock("block b")

	ResetAll([]*domain.CharacterProfile{a, b})

	if a.HasIdentityBlock() || b.HasIdentityBlock() {
		t.Error("リセット後もCIBが残っています")
	}
}

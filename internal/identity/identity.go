// Package identity はキャラクター・アイデンティティブロック（CIB）の
// 割り当てを担当します。CIBは台本生成時に一度だけ確定し、以後の
// 全パネル（再生成を含む）で一字一句そのまま再利用されるのです。
package identity

import (
	"fmt"
	"log/slog"

	"relive-web/internal/domain"
)

// FallbackBlock は台本側がCIBを返さなかった場合の最低限の記述です。
// 空のまま進めると画風だけで人物が揺れるため、名前だけでも固定します。
func FallbackBlock(name string) string {
	return fmt.Sprintf("A person named %s", name)
}

// Attach は台本生成結果のCIBマップを各キャラクターに割り当てます。
// キーはキャラクター名です。マップに存在しない名前には FallbackBlock を
// 使用します。既にCIBを持つキャラクターはそのまま保持し、上書きしません。
func Attach(characters []*domain.CharacterProfile, blocks map[string]string) error {
	for _, c := range characters {
		if c.HasIdentityBlock() {
			continue
		}

		block, ok := blocks[c.Name]
		if !ok || block == "" {
			slog.Warn("台本にCIBが含まれていないため代替記述を使用します",
				"character", c.Name)
			block = FallbackBlock(c.Name)
		}

		if err := c.SetIdentityBlock(block); err != nil {
			return fmt.Errorf("CIBの割り当てに失敗しました (%s): %w", c.Name, err)
		}
	}
	return nil
}

// ResetAll は全キャラクターのCIBを破棄します。新しいセッションを
// 開始する際に呼び出します。
func ResetAll(characters []*domain.CharacterProfile) {
	for _, c := range characters {
		c.ResetIdentityBlock()
	}
}

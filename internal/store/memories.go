// Package store は完成した物語の永続化を担当します。
// 1物語 = 1 JSONファイルの素朴な構成です。画像はJSONに焼き込まれる
// ため1件あたりのサイズが大きく、読み出し結果は短時間キャッシュします。
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"relive-web/internal/domain"
)

const (
	storyFileName = "story.json"

	cacheExpiry  = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// ErrStoryNotFound は指定IDの物語が存在しないことを示します。
var ErrStoryNotFound = errors.New("story not found")

// MemoriesStore はファイルベースの物語ストアです。
type MemoriesStore struct {
	baseDir string
	mu      sync.RWMutex
	cache   *cache.Cache
}

// NewMemoriesStore は保存先ディレクトリを準備して初期化します。
func NewMemoriesStore(baseDir string) (*MemoriesStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("保存先ディレクトリは必須です")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("保存先ディレクトリの作成に失敗しました: %w", err)
	}
	return &MemoriesStore{
		baseDir: baseDir,
		cache:   cache.New(cacheExpiry, cacheCleanup),
	}, nil
}

// Save は物語を保存します。同一IDへの保存は上書き（再保存）です。
// 一時ファイルへの書き込みとリネームで原子性を確保します。
func (s *MemoriesStore) Save(ctx context.Context, story domain.SavedStory) error {
	if story.ID == "" {
		return fmt.Errorf("物語IDは必須です")
	}

	data, err := json.Marshal(story)
	if err != nil {
		return fmt.Errorf("物語のシリアライズに失敗しました: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.storyDir(story.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("物語ディレクトリの作成に失敗しました: %w", err)
	}

	finalPath := filepath.Join(dir, storyFileName)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("一時ファイルの書き込みに失敗しました: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("物語の保存に失敗しました: %w", err)
	}

	s.cache.Set(story.ID, story, cache.DefaultExpiration)
	return nil
}

// Load は物語を1件読み出します。
func (s *MemoriesStore) Load(ctx context.Context, id string) (domain.SavedStory, error) {
	if cached, ok := s.cache.Get(id); ok {
		if story, ok := cached.(domain.SavedStory); ok {
			return story, nil
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.storyDir(id), storyFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.SavedStory{}, ErrStoryNotFound
		}
		return domain.SavedStory{}, fmt.Errorf("物語の読み出しに失敗しました: %w", err)
	}

	var story domain.SavedStory
	if err := json.Unmarshal(data, &story); err != nil {
		return domain.SavedStory{}, fmt.Errorf("物語の解析に失敗しました (%s): %w", id, err)
	}

	s.cache.Set(id, story, cache.DefaultExpiration)
	return story, nil
}

// ListAll は保存済み物語の要約を新しい順で返します。
// 解析できないエントリは飛ばして残りを返します。一覧表示が1件の
// 破損ファイルで全滅しないようにするためです。
func (s *MemoriesStore) ListAll(ctx context.Context) ([]domain.StorySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("保存先ディレクトリの走査に失敗しました: %w", err)
	}

	summaries := make([]domain.StorySummary, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), storyFileName))
		if err != nil {
			continue
		}
		var story domain.SavedStory
		if err := json.Unmarshal(data, &story); err != nil {
			continue
		}
		summaries = append(summaries, domain.StorySummary{
			ID:         story.ID,
			Title:      story.Title,
			Date:       story.Date,
			ArtStyle:   story.ArtStyle,
			PanelCount: len(story.Panels),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date.After(summaries[j].Date)
	})
	return summaries, nil
}

// Delete は物語を削除します。存在しないIDの削除は成功として扱います。
func (s *MemoriesStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("物語IDは必須です")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Delete(id)
	if err := os.RemoveAll(s.storyDir(id)); err != nil {
		return fmt.Errorf("物語の削除に失敗しました: %w", err)
	}
	return nil
}

func (s *MemoriesStore) storyDir(id string) string {
	// IDはUUIDですが、パス区切りの混入には備えておきます。
	return filepath.Join(s.baseDir, filepath.Base(id))
}

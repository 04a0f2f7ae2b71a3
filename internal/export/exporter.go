package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-remote-io/remoteio"

	"relive-web/internal/domain"
)

// EpisodeExporter は連結済みエピソード画像を外部ストレージへ書き出します。
// 出力先はローカルパスとGCSの両方に対応します。
type EpisodeExporter struct {
	writer  remoteio.OutputWriter
	baseURI string
}

// NewEpisodeExporter は書き出し先を注入して初期化します。
func NewEpisodeExporter(writer remoteio.OutputWriter, baseURI string) (*EpisodeExporter, error) {
	if writer == nil {
		return nil, fmt.Errorf("writer は必須です")
	}
	if baseURI == "" {
		return nil, fmt.Errorf("書き出し先URIは必須です")
	}
	return &EpisodeExporter{writer: writer, baseURI: baseURI}, nil
}

// Export は物語を縦連結画像にして書き出し、書き出し先パスを返します。
func (e *EpisodeExporter) Export(ctx context.Context, story domain.SavedStory) (string, error) {
	data, err := StitchEpisode(story)
	if err != nil {
		return "", err
	}

	// gs:// スキームの二重スラッシュを保つため path.Join は使いません。
	dest := strings.TrimSuffix(e.baseURI, "/") + "/" + story.ID + "/episode.jpg"
	if err := e.writer.Write(ctx, dest, bytes.NewReader(data), "image/jpeg"); err != nil {
		return "", fmt.Errorf("エピソード画像の書き出しに失敗しました: %w", err)
	}

	slog.Info("エピソード画像を書き出しました", "story_id", story.ID, "dest", dest, "bytes", len(data))
	return dest, nil
}

package handlers

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"relive-web/internal/adapters"
	"relive-web/internal/app"
	"relive-web/internal/export"
	"relive-web/internal/orchestrator"
	"relive-web/internal/store"

	"github.com/shouni/go-remote-io/remoteio"
)

const titleSuffix = " - ReLive Web"

type Handler struct {
	templateCache map[string]*template.Template
	registry      *orchestrator.Registry
	tasks         adapters.TaskAdapter
	store         *store.MemoriesStore
	exporter      *export.EpisodeExporter
	signer        remoteio.URLSigner
}

// NewHandler は指定された構成に基づいて新しいハンドラーを初期化します。
// テンプレートをコンパイルし、レイアウトファイルが存在することを確認します。
func NewHandler(c *app.Container) (*Handler, error) {
	cache := make(map[string]*template.Template)
	layoutPath := filepath.Join(c.Config.TemplateDir, "layout.html")
	if _, err := os.Stat(layoutPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("レイアウトテンプレートが見つかりません: %s", layoutPath)
	}

	pagePaths, err := filepath.Glob(filepath.Join(c.Config.TemplateDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("ページテンプレートの検索に失敗しました: %w", err)
	}

	for _, pagePath := range pagePaths {
		pageName := filepath.Base(pagePath)
		if pageName == "layout.html" {
			continue
		}

		tmpl, err := template.New(pageName).ParseFiles(layoutPath, pagePath)
		if err != nil {
			return nil, fmt.Errorf("テンプレート %s の解析に失敗しました: %w", pageName, err)
		}
		cache[pageName] = tmpl
	}

	return &Handler{
		templateCache: cache,
		registry:      c.Registry,
		tasks:         c.Tasks,
		store:         c.Store,
		exporter:      c.Exporter,
		signer:        c.RemoteIO.Signer,
	}, nil
}

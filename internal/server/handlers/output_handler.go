package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"relive-web/internal/config"
	"relive-web/internal/export"
	"relive-web/internal/store"

	"github.com/go-chi/chi/v5"
)

// ExportEpisode は保存済み物語を1枚の縦長画像に連結して書き出し、
// 書き出し先のパスを返します。
func (h *Handler) ExportEpisode(w http.ResponseWriter, r *http.Request) {
	story, err := h.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrStoryNotFound) {
			writeError(w, http.StatusNotFound, "保存済みの物語が見つかりません")
			return
		}
		slog.Error("保存済み物語の読み込みに失敗しました", "error", err)
		writeError(w, http.StatusInternalServerError, "物語の読み込みに失敗しました")
		return
	}

	dest, err := h.exporter.Export(r.Context(), story)
	if err != nil {
		if errors.Is(err, export.ErrNoRenderedPanels) {
			writeError(w, http.StatusConflict, "連結できる完成パネルがありません。パネル単位のダウンロードをご利用ください")
			return
		}
		slog.Error("エピソードの書き出しに失敗しました", "error", err, "story_id", story.ID)
		writeError(w, http.StatusInternalServerError, "エピソードの書き出しに失敗しました")
		return
	}

	resp := map[string]string{"id": story.ID, "dest": dest}

	// GCS への書き出しでは認証なしで開けるダウンロードURLを添えます。
	// 署名の失敗は書き出し自体の成功を覆さないため、ログに留めます。
	if h.signer != nil && strings.HasPrefix(dest, "gs://") {
		url, err := h.signer.GenerateSignedURL(r.Context(), dest, http.MethodGet, config.SignedURLExpiration)
		if err != nil {
			slog.Warn("署名付きURLの生成に失敗しました", "error", err, "dest", dest)
		} else {
			resp["url"] = url
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// DownloadPanel は保存済み物語の単一パネル画像をそのまま返します。
// 連結書き出しが使えない場合のフォールバック経路です。
func (h *Handler) DownloadPanel(w http.ResponseWriter, r *http.Request) {
	story, err := h.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrStoryNotFound) {
			writeError(w, http.StatusNotFound, "保存済みの物語が見つかりません")
			return
		}
		slog.Error("保存済み物語の読み込みに失敗しました", "error", err)
		writeError(w, http.StatusInternalServerError, "物語の読み込みに失敗しました")
		return
	}

	panelID, err := panelIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "パネルIDが不正です")
		return
	}

	data, mime, err := export.RawPanel(story, panelID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	ext := "png"
	if mime == "image/jpeg" {
		ext = "jpg"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s-panel-%d.%s", story.ID, panelID, ext)))
	if _, err := w.Write(data); err != nil {
		slog.Error("パネル画像の書き込みに失敗しました", "error", err)
	}
}

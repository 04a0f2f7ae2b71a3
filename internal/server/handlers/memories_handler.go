package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"relive-web/internal/domain"
	"relive-web/internal/store"

	"github.com/go-chi/chi/v5"
)

// ListMemories は保存済み物語の一覧を新しい順で返します。
func (h *Handler) ListMemories(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.ListAll(r.Context())
	if err != nil {
		slog.Error("保存済み物語の一覧取得に失敗しました", "error", err)
		writeError(w, http.StatusInternalServerError, "一覧の取得に失敗しました")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// GetMemory は保存済み物語をパネル画像込みで返します。
func (h *Handler) GetMemory(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, story)
}

// LoadMemory は保存済み物語を完了状態のライブセッションとして読み込みます。
// 読み込み後はパネル単位の再生成が可能になります。プロセス再起動で
// レジストリが空になっても、この経路で保存済み物語を呼び戻せます。
func (h *Handler) LoadMemory(w http.ResponseWriter, r *http.Request) {
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

	session := domain.RestoreSession(story)
	handle := h.registry.Put(session)

	var view sessionView
	handle.Read(func(s *domain.Session) {
		view = newSessionView(s)
	})
	writeJSON(w, http.StatusOK, view)
}

// DeleteMemory は保存済み物語を削除します。存在しないIDでも成功扱いです。
func (h *Handler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		slog.Error("保存済み物語の削除に失敗しました", "error", err)
		writeError(w, http.StatusInternalServerError, "物語の削除に失敗しました")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

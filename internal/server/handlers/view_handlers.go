package handlers

import (
	"log/slog"
	"net/http"

	"relive-web/internal/domain"

	"github.com/go-chi/chi/v5"
)

// panelView は進捗表示用のパネル情報です。画像本体は含めず、
// 画像取得エンドポイントへの参照だけを返します。
type panelView struct {
	PanelID   int                `json:"panelId"`
	Status    domain.PanelStatus `json:"status"`
	Dialogue  string             `json:"dialogue,omitempty"`
	Speaker   string             `json:"speaker,omitempty"`
	Narration string             `json:"narration,omitempty"`
	HasImage  bool               `json:"hasImage"`
}

type sessionView struct {
	ID           string          `json:"id"`
	Step         domain.Step     `json:"step"`
	Title        string          `json:"title,omitempty"`
	ArtStyle     domain.ArtStyle `json:"artStyle"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	Panels       []panelView     `json:"panels"`
}

// Index はトップページ（物語の入力フォームと保存済み一覧）を表示します。
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.ListAll(r.Context())
	if err != nil {
		slog.Error("保存済み物語の一覧取得に失敗しました", "error", err)
		summaries = nil
	}

	h.render(w, http.StatusOK, "index.html", "思い出を物語に", struct {
		ArtStyles []domain.ArtStyle
		Memories  []domain.StorySummary
	}{
		ArtStyles: domain.ArtStyles(),
		Memories:  summaries,
	})
}

// StoryStatus は生成中セッションの進行状態を返します。
// 生成ループと同じロックを共有するため、読み取りは即座に返ります。
func (h *Handler) StoryStatus(w http.ResponseWriter, r *http.Request) {
	handle, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "対象のセッションが見つかりません")
		return
	}

	var view sessionView
	handle.Read(func(s *domain.Session) {
		view = newSessionView(s)
	})

	writeJSON(w, http.StatusOK, view)
}

func newSessionView(s *domain.Session) sessionView {
	view := sessionView{
		ID:           s.ID,
		Step:         s.Step,
		Title:        s.Title,
		ArtStyle:     s.ArtStyle,
		ErrorMessage: s.ErrorMessage,
		Panels:       make([]panelView, 0, len(s.Panels)),
	}
	for _, p := range s.Panels {
		view.Panels = append(view.Panels, panelView{
			PanelID:   p.PanelID,
			Status:    p.Status,
			Dialogue:  p.Dialogue,
			Speaker:   p.Speaker,
			Narration: p.Narration,
			HasImage:  len(p.ImageData) > 0,
		})
	}
	return view
}

// PanelImage は生成済みパネル画像のバイト列をそのまま返します。
func (h *Handler) PanelImage(w http.ResponseWriter, r *http.Request) {
	handle, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "対象のセッションが見つかりません")
		return
	}

	panelID, err := panelIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "パネルIDが不正です")
		return
	}

	var (
		data []byte
		mime string
	)
	handle.Read(func(s *domain.Session) {
		p, findErr := s.PanelByID(panelID)
		if findErr != nil || p.Status != domain.PanelComplete {
			return
		}
		data = p.ImageData
		mime = p.MimeType
	})
	if len(data) == 0 {
		writeError(w, http.StatusNotFound, "このパネルの画像はまだありません")
		return
	}
	if mime == "" {
		mime = "image/png"
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(data); err != nil {
		slog.Error("パネル画像の書き込みに失敗しました", "error", err)
	}
}

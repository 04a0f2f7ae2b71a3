package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"relive-web/internal/domain"
	"relive-web/internal/imgproc"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	// maxUploadBytes はリクエスト全体の許容サイズです。参照写真3枚分を見込みます。
	maxUploadBytes = 32 << 20
	// maxCharacters は1物語あたりの登場人物プロフィール数の上限です。
	// 先頭のプロフィールが主人公として扱われます。
	maxCharacters = 3
)

// CreateStory は物語生成リクエストのフォーム送信を処理します。
// 参照写真を正規化し、セッションを登録して非同期タスクに引き渡します。
func (h *Handler) CreateStory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		slog.Warn("フォームの解析に失敗しました", "error", err)
		writeError(w, http.StatusBadRequest, "リクエストの解析に失敗しました")
		return
	}

	story := strings.TrimSpace(r.FormValue("story"))
	if story == "" {
		writeError(w, http.StatusBadRequest, "物語の本文（story）は必須項目です")
		return
	}

	style := domain.StyleWebtoon
	if v := r.FormValue("art_style"); v != "" {
		parsed, err := domain.ParseArtStyle(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		style = parsed
	}

	characters, err := h.parseCharacters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session := domain.NewSession(uuid.NewString(), story, style, characters)
	handle := h.registry.Put(session)

	task := domain.StoryTask{Kind: domain.TaskGenerateStory, SessionID: session.ID}
	if err := h.tasks.EnqueueStoryTask(r.Context(), task); err != nil {
		slog.Error("タスクのエンキューに失敗しました", "error", err)
		h.registry.Remove(session.ID)
		writeError(w, http.StatusInternalServerError, "生成タスクのスケジュールに失敗しました")
		return
	}

	var step domain.Step
	handle.Read(func(s *domain.Session) { step = s.Step })
	writeJSON(w, http.StatusAccepted, map[string]any{
		"id":   session.ID,
		"step": step,
	})
}

// RegeneratePanel は完成済み物語の単一パネル再生成を受け付けます。
func (h *Handler) RegeneratePanel(w http.ResponseWriter, r *http.Request) {
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
		step  domain.Step
		known bool
		sid   string
	)
	handle.Read(func(s *domain.Session) {
		step = s.Step
		sid = s.ID
		_, findErr := s.PanelByID(panelID)
		known = findErr == nil
	})
	if step != domain.StepComplete {
		writeError(w, http.StatusConflict, "物語が完成するまで再生成はできません")
		return
	}
	if !known {
		writeError(w, http.StatusNotFound, fmt.Sprintf("パネル %d が見つかりません", panelID))
		return
	}

	task := domain.StoryTask{Kind: domain.TaskRegeneratePanel, SessionID: sid, PanelID: panelID}
	if err := h.tasks.EnqueueStoryTask(r.Context(), task); err != nil {
		slog.Error("再生成タスクのエンキューに失敗しました", "error", err, "panel_id", panelID)
		writeError(w, http.StatusInternalServerError, "再生成タスクのスケジュールに失敗しました")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"id": sid, "panelId": panelID})
}

// parseCharacters はフォームから登場人物プロフィールを組み立てます。
// 写真は character_photo_0 のように添字つきフィールドで対応づけます。
func (h *Handler) parseCharacters(r *http.Request) ([]*domain.CharacterProfile, error) {
	// 登場人物なしの投稿も許容します。その場合は本文から主人公を推定します。
	names := r.MultipartForm.Value["character_name"]
	if len(names) > maxCharacters {
		return nil, fmt.Errorf("登場人物は最大 %d 人までです", maxCharacters)
	}

	field := func(key string, i int) string {
		values := r.MultipartForm.Value[key]
		if i < len(values) {
			return strings.TrimSpace(values[i])
		}
		return ""
	}

	characters := make([]*domain.CharacterProfile, 0, len(names))
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%d 番目の登場人物の名前が空です", i+1)
		}

		ref, err := h.readReferencePhoto(r, fmt.Sprintf("character_photo_%d", i))
		if err != nil {
			return nil, err
		}

		c := domain.NewCharacterProfile(name, ref)
		c.SetHairOverride(field("character_hair", i))
		c.SetOutfitOverride(field("character_outfit", i))
		c.SetNotes(field("character_notes", i))
		if accessories := field("character_accessories", i); accessories != "" {
			c.SetAccessories(strings.Split(accessories, ","))
		}
		if palette := field("character_palette", i); palette != "" {
			p, err := domain.ParseColorPalette(palette)
			if err != nil {
				return nil, err
			}
			c.SetColorPalette(p)
		}
		characters = append(characters, c)
	}
	return characters, nil
}

// readReferencePhoto は添付写真を読み込み、モデル入力用に正規化します。
// 写真なしの登場人物はゼロ値の ReferenceImage として扱います。
func (h *Handler) readReferencePhoto(r *http.Request, fieldName string) (domain.ReferenceImage, error) {
	file, _, err := r.FormFile(fieldName)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return domain.ReferenceImage{}, nil
		}
		return domain.ReferenceImage{}, fmt.Errorf("参照写真 %s の読み込みに失敗しました: %w", fieldName, err)
	}
	defer func(f multipart.File) {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("参照写真のクローズに失敗しました", "field", fieldName, "error", cerr)
		}
	}(file)

	raw, err := io.ReadAll(file)
	if err != nil {
		return domain.ReferenceImage{}, fmt.Errorf("参照写真 %s の読み込みに失敗しました: %w", fieldName, err)
	}

	normalized, err := imgproc.NormalizeReferencePhoto(raw)
	if err != nil {
		return domain.ReferenceImage{}, fmt.Errorf("参照写真 %s を処理できませんでした: %w", fieldName, err)
	}
	return domain.ReferenceImage{Data: normalized, MimeType: "image/jpeg"}, nil
}

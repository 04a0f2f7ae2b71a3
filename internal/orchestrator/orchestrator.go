// Package orchestrator は物語セッションの生成パイプライン全体を駆動します。
// 台本生成を1回、パネル画像生成をID昇順に1枚ずつ実行し、パネル単位の
// 失敗を隔離しながらセッションを完了まで進めます。
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"relive-web/internal/domain"
	"relive-web/internal/identity"
	"relive-web/internal/illustrator"
)

// DefaultPanelInterval はパネル生成リクエストの最小間隔です。
// 画像生成APIの分あたりクォータに収めるための値です。
const DefaultPanelInterval = 5 * time.Second

const (
	// consistencySeedRange はセッションシードの抽選範囲です。
	consistencySeedRange = 1_000_000
	// regenDeltaRange は再生成時のシード摂動幅です。δは [1, 1000) から
	// 選び、基準シード自体は決して変更しません。
	regenDeltaRange = 999
)

// ScriptGenerator は台本生成ステージの窓口です。
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, story string, style domain.ArtStyle, characters []*domain.CharacterProfile) (domain.ScriptResponse, error)
}

// PanelGenerator はパネル画像生成ステージの窓口です。
type PanelGenerator interface {
	GeneratePanel(ctx context.Context, req illustrator.PanelRequest) (*illustrator.PanelImage, error)
}

// StoryStore は完成した物語の永続化の窓口です。
type StoryStore interface {
	Save(ctx context.Context, story domain.SavedStory) error
}

// Notifier は物語完成と致命的失敗の通知の窓口です。
type Notifier interface {
	NotifyStoryCompleted(ctx context.Context, n domain.StoryNotification)
	NotifyError(ctx context.Context, errDetail error, sessionID string)
}

// Orchestrator はパイプラインの実行体です。
type Orchestrator struct {
	director ScriptGenerator
	painter  PanelGenerator
	store    StoryStore
	notifier Notifier
	limiter  *rate.Limiter

	// テストから差し替えるための抽選関数です。
	seedFn  func() int32
	deltaFn func() int32
}

// Option は Orchestrator の構成オプションです。
type Option func(*Orchestrator)

// WithPanelInterval はパネル生成の間隔を変更します。
func WithPanelInterval(interval time.Duration) Option {
	return func(o *Orchestrator) {
		o.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithSeedFuncs は乱数の抽選関数を差し替えます。
func WithSeedFuncs(seedFn, deltaFn func() int32) Option {
	return func(o *Orchestrator) {
		o.seedFn = seedFn
		o.deltaFn = deltaFn
	}
}

// New は依存関係を注入して初期化します。notifier は nil を許容します。
func New(director ScriptGenerator, painter PanelGenerator, store StoryStore, notifier Notifier, opts ...Option) (*Orchestrator, error) {
	if director == nil || painter == nil || store == nil {
		return nil, fmt.Errorf("director, painter, store は必須です")
	}
	o := &Orchestrator{
		director: director,
		painter:  painter,
		store:    store,
		notifier: notifier,
		limiter:  rate.NewLimiter(rate.Every(DefaultPanelInterval), 1),
		seedFn:   func() int32 { return rand.Int32N(consistencySeedRange) },
		deltaFn:  func() int32 { return 1 + rand.Int32N(regenDeltaRange) },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run はセッションを入力状態から完了まで進めます。台本生成の失敗は
// セッション全体の失敗として入力状態へ戻し、パネル単位の失敗はその
// パネルだけを error にして続行します。
func (o *Orchestrator) Run(ctx context.Context, h *Handle) error {
	seed := o.seedFn()
	if err := h.Update(func(s *domain.Session) error {
		identity.ResetAll(s.Characters)
		return s.BeginScript(seed)
	}); err != nil {
		return err
	}

	var (
		sessionID  string
		story      string
		style      domain.ArtStyle
		characters []*domain.CharacterProfile
	)
	h.Read(func(s *domain.Session) {
		sessionID = s.ID
		story = s.Story
		style = s.ArtStyle
		characters = s.Characters
	})

	slog.Info("物語セッションを開始します", "session_id", sessionID, "seed", seed)

	script, err := o.director.GenerateScript(ctx, story, style, characters)
	if err != nil {
		_ = h.Update(func(s *domain.Session) error {
			s.Fail("台本の生成に失敗しました。時間をおいて再試行してください。")
			return nil
		})
		if o.notifier != nil {
			o.notifier.NotifyError(ctx, err, sessionID)
		}
		return fmt.Errorf("台本生成ステージで失敗しました: %w", err)
	}

	if err := h.Update(func(s *domain.Session) error {
		if err := identity.Attach(s.Characters, script.IdentityBlocks); err != nil {
			return err
		}
		return s.ApplyScript(script.Title, script.Panels)
	}); err != nil {
		_ = h.Update(func(s *domain.Session) error {
			s.Fail("台本の受理に失敗しました。")
			return nil
		})
		return err
	}

	failed := o.generatePanels(ctx, h)

	if err := o.finalize(ctx, h); err != nil {
		return err
	}

	var notification domain.StoryNotification
	h.Read(func(s *domain.Session) {
		notification = domain.StoryNotification{
			StoryID:      s.ID,
			Title:        s.Title,
			ArtStyle:     s.ArtStyle,
			TotalPanels:  len(s.Panels),
			FailedPanels: failed,
		}
	})
	slog.Info("物語セッションが完了しました",
		"session_id", sessionID, "panels", notification.TotalPanels, "failed", failed)

	if o.notifier != nil {
		o.notifier.NotifyStoryCompleted(ctx, notification)
	}
	return nil
}

// generatePanels は全パネルをID昇順に1枚ずつ生成し、失敗数を返します。
func (o *Orchestrator) generatePanels(ctx context.Context, h *Handle) int {
	var panelIDs []int
	h.Read(func(s *domain.Session) {
		for _, p := range s.Panels {
			panelIDs = append(panelIDs, p.PanelID)
		}
	})

	failed := 0
	for _, panelID := range panelIDs {
		if err := o.generateOnePanel(ctx, h, panelID, 0); err != nil {
			slog.Warn("パネルの生成に失敗しました。次のパネルへ進みます",
				"panel_id", panelID, "error", err)
			failed++
		}
	}
	return failed
}

// generateOnePanel は1パネル分の生成を実行します。seedDelta が正の
// 場合は再生成としてシードを摂動させます。
func (o *Orchestrator) generateOnePanel(ctx context.Context, h *Handle, panelID int, seedDelta int32) error {
	var req illustrator.PanelRequest
	if err := h.Update(func(s *domain.Session) error {
		panel, err := s.PanelByID(panelID)
		if err != nil {
			return err
		}
		panel.Status = domain.PanelGenerating

		seed := s.ConsistencySeed + seedDelta
		req = illustrator.PanelRequest{
			VisualDescription: panel.VisualDescription,
			PanelOutfit:       panel.PanelOutfit,
			Narration:         panel.Narration,
			Style:             s.ArtStyle,
			Seed:              &seed,
		}
		if hero := s.Protagonist(); hero != nil {
			req.IdentityBlock = hero.IdentityBlock()
			req.ReferenceImage = hero.ReferenceImage
			req.CharacterName = hero.Name
		}
		return nil
	}); err != nil {
		return err
	}

	// ネットワーク呼び出しはロックの外で行います。状態確認のハンドラを
	// 生成中もブロックさせないためです。
	if err := o.limiter.Wait(ctx); err != nil {
		o.markPanelError(h, panelID)
		return err
	}

	img, err := o.painter.GeneratePanel(ctx, req)
	if err != nil {
		o.markPanelError(h, panelID)
		return err
	}

	o.markPanelComplete(h, panelID, img.Data, img.MimeType)
	return nil
}

func (o *Orchestrator) markPanelComplete(h *Handle, panelID int, data []byte, mime string) {
	_ = h.Update(func(s *domain.Session) error {
		panel, err := s.PanelByID(panelID)
		if err != nil {
			return err
		}
		panel.Status = domain.PanelComplete
		panel.ImageData = data
		panel.MimeType = mime
		return nil
	})
}

// markPanelError は状態だけを error に倒します。再生成の失敗時に
// 以前の完成画像を失わないよう、画像本体には触れません。
func (o *Orchestrator) markPanelError(h *Handle, panelID int) {
	_ = h.Update(func(s *domain.Session) error {
		panel, err := s.PanelByID(panelID)
		if err != nil {
			return err
		}
		panel.Status = domain.PanelError
		return nil
	})
}

// finalize は完成した物語を保存してセッションを完了させます。
// 保存の失敗はログに残すだけで、完了遷移は妨げません。
func (o *Orchestrator) finalize(ctx context.Context, h *Handle) error {
	if err := h.Update(func(s *domain.Session) error {
		return s.BeginFinalize()
	}); err != nil {
		return err
	}

	o.persistBestEffort(ctx, h)

	return h.Update(func(s *domain.Session) error {
		return s.Complete()
	})
}

func (o *Orchestrator) persistBestEffort(ctx context.Context, h *Handle) {
	var saved domain.SavedStory
	h.Read(func(s *domain.Session) {
		saved = s.ToSavedStory(time.Now().UTC())
	})
	if err := o.store.Save(ctx, saved); err != nil {
		slog.Error("物語の保存に失敗しました。セッションは完了扱いにします",
			"story_id", saved.ID, "error", err)
	}
}

// RegeneratePanel は完了済みセッションの1パネルだけを作り直します。
// CIBはそのまま再利用し、シードは基準値に小さな摂動を加えた値を
// 使います。成功・失敗に関わらず、更新後の状態を再保存します。
func (o *Orchestrator) RegeneratePanel(ctx context.Context, h *Handle, panelID int) error {
	var stepOK bool
	h.Read(func(s *domain.Session) {
		stepOK = s.Step == domain.StepComplete
	})
	if !stepOK {
		return fmt.Errorf("パネルの再生成は完了済みセッションでのみ可能です")
	}

	err := o.generateOnePanel(ctx, h, panelID, o.deltaFn())
	o.persistBestEffort(ctx, h)
	if err != nil {
		return fmt.Errorf("パネル %d の再生成に失敗しました: %w", panelID, err)
	}
	return nil
}

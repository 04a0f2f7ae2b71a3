package server

import (
	"net/http"

	"relive-web/internal/server/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter は、ミドルウェアとルーティングを統合した http.Handler を構築します。
func NewRouter(h *handlers.Handler) http.Handler {
	r := chi.NewRouter()

	setupCommonMiddleware(r)
	setupRoutes(r, h)

	return r
}

func setupCommonMiddleware(r *chi.Mux) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
}

func setupRoutes(r chi.Router, h *handlers.Handler) {
	// --- Web UI ---
	r.Get("/", h.Index)

	// --- 生成セッション API ---
	r.Route("/api/stories", func(r chi.Router) {
		r.Post("/", h.CreateStory)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.StoryStatus)
			r.Get("/panels/{panelID}/image", h.PanelImage)
			r.Post("/panels/{panelID}/regenerate", h.RegeneratePanel)
		})
	})

	// --- 保存済みの思い出 API ---
	r.Route("/api/memories", func(r chi.Router) {
		r.Get("/", h.ListMemories)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetMemory)
			r.Delete("/", h.DeleteMemory)
			r.Post("/load", h.LoadMemory)
			r.Post("/export", h.ExportEpisode)
			r.Get("/panels/{panelID}/download", h.DownloadPanel)
		})
	})
}

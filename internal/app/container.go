package app

import (
	"log/slog"

	"relive-web/internal/adapters"
	"relive-web/internal/config"
	"relive-web/internal/export"
	"relive-web/internal/orchestrator"
	"relive-web/internal/store"

	"github.com/shouni/go-http-kit/httpkit"
	"github.com/shouni/go-remote-io/remoteio"
)

// Container はアプリケーションの依存関係（DIコンテナ）を保持します。
type Container struct {
	Config *config.Config

	// I/O and Storage
	RemoteIO *RemoteIO
	Store    *store.MemoriesStore

	// Asynchronous Task
	Tasks adapters.TaskAdapter

	// Business Logic
	Registry     *orchestrator.Registry
	Orchestrator *orchestrator.Orchestrator
	Exporter     *export.EpisodeExporter

	// External Adapters
	HTTPClient    httpkit.ClientInterface
	SlackNotifier adapters.SlackNotifier
}

type RemoteIO struct {
	Factory remoteio.IOFactory
	Writer  remoteio.OutputWriter
	Signer  remoteio.URLSigner
}

// Close は、Container が保持するすべての外部接続リソースを安全に解放します。
func (c *Container) Close() {
	if c.Tasks != nil {
		if err := c.Tasks.Close(); err != nil {
			slog.Error("failed to close task adapter", "error", err)
		}
	}
	if c.RemoteIO != nil && c.RemoteIO.Factory != nil {
		if err := c.RemoteIO.Factory.Close(); err != nil {
			slog.Error("failed to close IOFactory", "error", err)
		}
	}
}

package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/modelshare/modelshare-server/internal/config"
	"github.com/modelshare/modelshare-server/internal/inbox"
	"github.com/modelshare/modelshare-server/internal/logger"
	"github.com/modelshare/modelshare-server/internal/service"
)

// InboxImporterHandle wraps the inbox importer with shutdown capability.
// Importer is nil when no inbox directory is configured.
type InboxImporterHandle struct {
	*inbox.Importer
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *InboxImporterHandle) Shutdown() error {
	if h.Importer == nil {
		return nil
	}
	h.cancel()
	return h.Importer.Shutdown()
}

// ProvideInboxImporter watches INBOX_PATH and imports dropped files as File documents.
func ProvideInboxImporter(i do.Injector) (*InboxImporterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	fileService := do.MustInvoke[*service.FileService](i)

	if cfg.Files.InboxPath == "" {
		return &InboxImporterHandle{}, nil
	}

	importer, err := inbox.NewImporter(cfg.Files.InboxPath, fileService, log.WithComponent("inbox"), inbox.Options{})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go importer.Run(ctx)

	log.Info("Inbox importer started", "path", cfg.Files.InboxPath)

	return &InboxImporterHandle{Importer: importer, cancel: cancel}, nil
}

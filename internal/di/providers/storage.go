package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/modelshare/modelshare-server/internal/blob"
	"github.com/modelshare/modelshare-server/internal/config"
	"github.com/modelshare/modelshare-server/internal/logger"
)

// ContentStoreHandle carries the external file content backend.
// ContentStore is nil when file content lives in the document store.
type ContentStoreHandle struct {
	blob.ContentStore
}

// ProvideContentStore provides the file content backend selected by FILES_BACKEND.
func ProvideContentStore(i do.Injector) (*ContentStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Files.Backend != config.FilesBackendS3 {
		log.Info("File content kept in the document store")
		return &ContentStoreHandle{}, nil
	}

	opts := blob.S3Options{
		Bucket:          cfg.Files.S3Bucket,
		Region:          cfg.Files.S3Region,
		Endpoint:        cfg.Files.S3Endpoint,
		AccessKeyID:     cfg.Files.S3AccessKeyID,
		SecretAccessKey: cfg.Files.S3SecretAccessKey,
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	client, err := blob.NewS3Client(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("s3 content store: %w", err)
	}
	contentStore := blob.NewS3Store(client, opts, log.WithComponent("blob"))

	if err := contentStore.Ping(ctx); err != nil {
		log.Warn("S3 bucket not reachable at startup", "bucket", opts.Bucket, "error", err)
	}

	log.Info("File content stored in S3", "bucket", opts.Bucket, "endpoint", opts.Endpoint)

	return &ContentStoreHandle{ContentStore: contentStore}, nil
}

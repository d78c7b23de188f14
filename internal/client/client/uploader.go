package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophmarket/internal/client/config"
	"github.com/dmitrijs2005/gophmarket/internal/client/imaging"
	"github.com/dmitrijs2005/gophmarket/internal/client/transport"
)

// NewUploader returns the transport selected by cfg.Backend.
func NewUploader(ctx context.Context, cfg *config.Config) (transport.Uploader, error) {
	switch cfg.Backend {
	case config.BackendCloudinary, "":
		return transport.NewCloudinaryUploader(transport.CloudinaryConfig{
			CloudName:    cfg.CloudName,
			UploadPreset: cfg.UploadPreset,
			Folder:       cfg.UploadFolder,
			BaseURL:      cfg.CloudinaryBaseURL,
			Timeout:      cfg.UploadTimeout,
		}, nil), nil
	case config.BackendS3:
		u, err := transport.NewS3Uploader(ctx, transport.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
			Folder:     cfg.UploadFolder,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 uploader: %w", err)
		}
		return u, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}

// NewCompressor returns the compressor configured by cfg, or nil when
// compression is disabled.
func NewCompressor(cfg *config.Config) (*imaging.Compressor, error) {
	if !cfg.Compress {
		return nil, nil
	}
	return imaging.NewCompressor(imaging.StdCodec{}, imaging.Options{
		MaxWidth: cfg.MaxWidth,
		Quality:  cfg.Quality,
	}, imaging.DefaultCacheSize)
}

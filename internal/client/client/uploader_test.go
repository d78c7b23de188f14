package client

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophmarket/internal/client/config"
	"github.com/dmitrijs2005/gophmarket/internal/client/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUploader(t *testing.T) {
	var cfg config.Config
	cfg.LoadDefaults()
	cfg.CloudName = "demo"
	cfg.UploadPreset = "p"

	u, err := NewUploader(context.Background(), &cfg)
	require.NoError(t, err)
	cu, ok := u.(*transport.CloudinaryUploader)
	require.True(t, ok)
	assert.True(t, cu.Configured())

	cfg.Backend = config.BackendS3
	u, err = NewUploader(context.Background(), &cfg)
	require.NoError(t, err)
	assert.IsType(t, &transport.S3Uploader{}, u)

	cfg.Backend = "ftp"
	_, err = NewUploader(context.Background(), &cfg)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestNewCompressor(t *testing.T) {
	var cfg config.Config
	cfg.LoadDefaults()

	c, err := NewCompressor(&cfg)
	require.NoError(t, err)
	assert.NotNil(t, c)

	cfg.Compress = false
	c, err = NewCompressor(&cfg)
	require.NoError(t, err)
	assert.Nil(t, c)
}

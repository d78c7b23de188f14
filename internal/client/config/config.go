package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/logging"
	"github.com/spf13/pflag"
)

// Upload backends.
const (
	BackendCloudinary = "cloudinary"
	BackendS3         = "s3"
)

// Config holds runtime settings for the gophmarket CLI.
type Config struct {
	LogMode string

	// DataDir holds the local database unless DatabasePath is absolute.
	DataDir      string
	DatabasePath string

	Backend string

	CloudName         string
	UploadPreset      string
	UploadFolder      string
	CloudinaryBaseURL string

	S3Region     string
	S3Bucket     string
	S3AccessKey  string
	S3SecretKey  string
	S3Endpoint   string
	S3PublicBase string

	MaxImages         int
	KeepFailed        bool
	Compress          bool
	CompressThreshold int64
	MaxWidth          int
	Quality           float64
	UploadTimeout     time.Duration

	// ListingsDSN enables publishing to the remote listings table.
	ListingsDSN    string
	PublishTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.LogMode = logging.ModeDevelopment
	c.DataDir = "data"
	c.DatabasePath = "gophmarket.db"
	c.Backend = BackendCloudinary
	c.UploadFolder = common.DefaultUploadFolder
	c.MaxImages = 5
	c.KeepFailed = true
	c.Compress = true
	c.CompressThreshold = 1 * common.MiB
	c.MaxWidth = 1200
	c.Quality = 0.85
	c.UploadTimeout = 60 * time.Second
	c.PublishTimeout = 10 * time.Second
}

// DatabaseFile resolves DatabasePath against DataDir.
func (c *Config) DatabaseFile() string {
	if filepath.IsAbs(c.DatabasePath) || c.DataDir == "" {
		return c.DatabasePath
	}
	return filepath.Join(c.DataDir, c.DatabasePath)
}

// Validate rejects values no component can work with. A missing upload
// destination is not an error here: uploads report it per file.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendCloudinary, BackendS3:
	default:
		return fmt.Errorf("backend %q: %w", c.Backend, common.ErrNotConfigured)
	}
	if c.MaxImages <= 0 {
		return fmt.Errorf("max images must be positive, got %d", c.MaxImages)
	}
	if c.Quality <= 0 || c.Quality > 1 {
		return fmt.Errorf("quality must be in (0, 1], got %v", c.Quality)
	}
	return nil
}

// Load builds a Config from defaults, the environment, an optional file and
// the flags in fs (which may be nil). fs must have been set up with
// RegisterFlags and already parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	return load(fs, lookupEnv, ".env")
}

func load(fs *pflag.FlagSet, env lookupFunc, dotenv string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadDotEnv(dotenv); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, env); err != nil {
		return nil, err
	}

	path, _ := env(envPrefix + "CONFIG")
	if fs != nil && fs.Changed(flagConfig) {
		path, _ = fs.GetString(flagConfig)
	}
	if path != "" {
		if err := parseFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if fs != nil {
		if err := applyFlags(fs, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

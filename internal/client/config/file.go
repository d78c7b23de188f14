package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophmarket/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the DTO for JSON and YAML config files. Pointer fields stay
// nil when a key is absent so the file only overrides what it names.
type fileConfig struct {
	LogMode      *string `json:"log_mode" yaml:"log_mode"`
	DataDir      *string `json:"data_dir" yaml:"data_dir"`
	DatabasePath *string `json:"database_path" yaml:"database_path"`
	Backend      *string `json:"backend" yaml:"backend"`

	Cloudinary struct {
		CloudName    *string `json:"cloud_name" yaml:"cloud_name"`
		UploadPreset *string `json:"upload_preset" yaml:"upload_preset"`
		Folder       *string `json:"folder" yaml:"folder"`
		BaseURL      *string `json:"base_url" yaml:"base_url"`
	} `json:"cloudinary" yaml:"cloudinary"`

	S3 struct {
		Region     *string `json:"region" yaml:"region"`
		Bucket     *string `json:"bucket" yaml:"bucket"`
		AccessKey  *string `json:"access_key" yaml:"access_key"`
		SecretKey  *string `json:"secret_key" yaml:"secret_key"`
		Endpoint   *string `json:"endpoint" yaml:"endpoint"`
		PublicBase *string `json:"public_base" yaml:"public_base"`
	} `json:"s3" yaml:"s3"`

	Upload struct {
		MaxImages         *int            `json:"max_images" yaml:"max_images"`
		KeepFailed        *bool           `json:"keep_failed" yaml:"keep_failed"`
		Compress          *bool           `json:"compress" yaml:"compress"`
		CompressThreshold *int64          `json:"compress_threshold" yaml:"compress_threshold"`
		MaxWidth          *int            `json:"max_width" yaml:"max_width"`
		Quality           *float64        `json:"quality" yaml:"quality"`
		Timeout           *timex.Duration `json:"timeout" yaml:"timeout"`
	} `json:"upload" yaml:"upload"`

	ListingsDSN    *string         `json:"listings_dsn" yaml:"listings_dsn"`
	PublishTimeout *timex.Duration `json:"publish_timeout" yaml:"publish_timeout"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// parseFile overlays cfg with the values present in the file at path.
func parseFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set(&cfg.LogMode, fc.LogMode)
	set(&cfg.DataDir, fc.DataDir)
	set(&cfg.DatabasePath, fc.DatabasePath)
	set(&cfg.Backend, fc.Backend)

	set(&cfg.CloudName, fc.Cloudinary.CloudName)
	set(&cfg.UploadPreset, fc.Cloudinary.UploadPreset)
	set(&cfg.UploadFolder, fc.Cloudinary.Folder)
	set(&cfg.CloudinaryBaseURL, fc.Cloudinary.BaseURL)

	set(&cfg.S3Region, fc.S3.Region)
	set(&cfg.S3Bucket, fc.S3.Bucket)
	set(&cfg.S3AccessKey, fc.S3.AccessKey)
	set(&cfg.S3SecretKey, fc.S3.SecretKey)
	set(&cfg.S3Endpoint, fc.S3.Endpoint)
	set(&cfg.S3PublicBase, fc.S3.PublicBase)

	set(&cfg.MaxImages, fc.Upload.MaxImages)
	set(&cfg.KeepFailed, fc.Upload.KeepFailed)
	set(&cfg.Compress, fc.Upload.Compress)
	set(&cfg.CompressThreshold, fc.Upload.CompressThreshold)
	set(&cfg.MaxWidth, fc.Upload.MaxWidth)
	set(&cfg.Quality, fc.Upload.Quality)
	if fc.Upload.Timeout != nil {
		cfg.UploadTimeout = fc.Upload.Timeout.Duration
	}

	set(&cfg.ListingsDSN, fc.ListingsDSN)
	if fc.PublishTimeout != nil {
		cfg.PublishTimeout = fc.PublishTimeout.Duration
	}
	return nil
}

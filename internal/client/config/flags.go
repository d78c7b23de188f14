package config

import (
	"github.com/spf13/pflag"
)

const flagConfig = "config"

// RegisterFlags declares the configuration flags on fs. Defaults shown in
// help are the built-in ones; values only apply when a flag is set.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(flagConfig, "c", "", "path to a JSON or YAML config file")
	fs.String("log-mode", d.LogMode, "log mode: development or production")
	fs.String("data-dir", d.DataDir, "directory for local data")
	fs.String("db", d.DatabasePath, "local database file")
	fs.String("backend", d.Backend, "upload backend: cloudinary or s3")
	fs.String("cloud-name", "", "Cloudinary cloud name")
	fs.String("upload-preset", "", "Cloudinary unsigned upload preset")
	fs.String("folder", d.UploadFolder, "remote folder for uploaded images")
	fs.String("s3-bucket", "", "S3 bucket")
	fs.String("s3-region", "", "S3 region")
	fs.String("s3-endpoint", "", "S3 compatible endpoint URL")
	fs.String("s3-public-base", "", "public base URL of the bucket")
	fs.Int("max-images", d.MaxImages, "maximum images per draft")
	fs.Bool("keep-failed", d.KeepFailed, "keep failed uploads for retry")
	fs.Bool("compress", d.Compress, "compress large images before upload")
	fs.Int("max-width", d.MaxWidth, "maximum image width after compression")
	fs.Float64("quality", d.Quality, "re-encode quality in (0, 1]")
	fs.Duration("upload-timeout", d.UploadTimeout, "per upload timeout")
	fs.String("listings-dsn", "", "Postgres DSN of the listings table")
}

// applyFlags copies explicitly set flags into cfg.
func applyFlags(fs *pflag.FlagSet, cfg *Config) error {
	var err error
	str := func(name string, dst *string) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetString(name)
		}
	}

	str("log-mode", &cfg.LogMode)
	str("data-dir", &cfg.DataDir)
	str("db", &cfg.DatabasePath)
	str("backend", &cfg.Backend)
	str("cloud-name", &cfg.CloudName)
	str("upload-preset", &cfg.UploadPreset)
	str("folder", &cfg.UploadFolder)
	str("s3-bucket", &cfg.S3Bucket)
	str("s3-region", &cfg.S3Region)
	str("s3-endpoint", &cfg.S3Endpoint)
	str("s3-public-base", &cfg.S3PublicBase)
	str("listings-dsn", &cfg.ListingsDSN)
	if err != nil {
		return err
	}

	if fs.Changed("max-images") {
		if cfg.MaxImages, err = fs.GetInt("max-images"); err != nil {
			return err
		}
	}
	if fs.Changed("keep-failed") {
		if cfg.KeepFailed, err = fs.GetBool("keep-failed"); err != nil {
			return err
		}
	}
	if fs.Changed("compress") {
		if cfg.Compress, err = fs.GetBool("compress"); err != nil {
			return err
		}
	}
	if fs.Changed("max-width") {
		if cfg.MaxWidth, err = fs.GetInt("max-width"); err != nil {
			return err
		}
	}
	if fs.Changed("quality") {
		if cfg.Quality, err = fs.GetFloat64("quality"); err != nil {
			return err
		}
	}
	if fs.Changed("upload-timeout") {
		if cfg.UploadTimeout, err = fs.GetDuration("upload-timeout"); err != nil {
			return err
		}
	}
	return nil
}

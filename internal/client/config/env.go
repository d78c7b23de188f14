package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "GOPHMARKET_"

type lookupFunc func(key string) (string, bool)

var lookupEnv lookupFunc = os.LookupEnv

// loadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, env lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := env(envPrefix + name); ok {
			*dst = v
		}
	}
	var errs []error
	parse := func(name string, set func(string) error) {
		if v, ok := env(envPrefix + name); ok && v != "" {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
			}
		}
	}

	str("LOG_MODE", &cfg.LogMode)
	str("DATA_DIR", &cfg.DataDir)
	str("DATABASE_PATH", &cfg.DatabasePath)
	str("BACKEND", &cfg.Backend)
	str("CLOUD_NAME", &cfg.CloudName)
	str("UPLOAD_PRESET", &cfg.UploadPreset)
	str("UPLOAD_FOLDER", &cfg.UploadFolder)
	str("CLOUDINARY_BASE_URL", &cfg.CloudinaryBaseURL)
	str("S3_REGION", &cfg.S3Region)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_ACCESS_KEY", &cfg.S3AccessKey)
	str("S3_SECRET_KEY", &cfg.S3SecretKey)
	str("S3_ENDPOINT", &cfg.S3Endpoint)
	str("S3_PUBLIC_BASE", &cfg.S3PublicBase)
	str("LISTINGS_DSN", &cfg.ListingsDSN)

	parse("MAX_IMAGES", func(v string) (err error) { cfg.MaxImages, err = strconv.Atoi(v); return })
	parse("KEEP_FAILED", func(v string) (err error) { cfg.KeepFailed, err = strconv.ParseBool(v); return })
	parse("COMPRESS", func(v string) (err error) { cfg.Compress, err = strconv.ParseBool(v); return })
	parse("COMPRESS_THRESHOLD", func(v string) (err error) {
		cfg.CompressThreshold, err = strconv.ParseInt(v, 10, 64)
		return
	})
	parse("MAX_WIDTH", func(v string) (err error) { cfg.MaxWidth, err = strconv.Atoi(v); return })
	parse("QUALITY", func(v string) (err error) { cfg.Quality, err = strconv.ParseFloat(v, 64); return })
	parse("UPLOAD_TIMEOUT", func(v string) (err error) { cfg.UploadTimeout, err = time.ParseDuration(v); return })
	parse("PUBLISH_TIMEOUT", func(v string) (err error) { cfg.PublishTimeout, err = time.ParseDuration(v); return })

	return errors.Join(errs...)
}

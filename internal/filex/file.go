// Package filex holds filesystem helpers: data directory setup and loading
// local images as upload candidates.
package filex

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophmarket/internal/client/models"
)

// EnsureDir creates dir (relative paths resolve against the working
// directory) and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// MediaType guesses a media type from the file extension. Unknown
// extensions yield application/octet-stream.
func MediaType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".jpg" || ext == ".jpeg" {
		return "image/jpeg"
	}
	t := mime.TypeByExtension(ext)
	if t == "" {
		return "application/octet-stream"
	}
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

// LoadCandidate reads path into a candidate. Files larger than maxSize are
// not read: the candidate carries only name, type and size so validation
// can reject it without holding the content in memory.
func LoadCandidate(path string, maxSize int64) (models.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return models.Candidate{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		return models.Candidate{}, fmt.Errorf("%s is a directory", path)
	}

	c := models.Candidate{Name: filepath.Base(path), MediaType: MediaType(path), Size: st.Size()}
	if maxSize > 0 && st.Size() > maxSize {
		return c, nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("read %s: %w", path, err)
	}
	c.Data = data
	c.Size = int64(len(data))
	return c, nil
}

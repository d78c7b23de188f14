// Package metadata stores small client settings as key/value pairs, such as
// the draft the shell last worked on.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyCurrentDraft = "current_draft"
)

// Repository is a string key/value store. Get returns common.ErrorNotFound
// for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
}

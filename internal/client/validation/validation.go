// Package validation gates upload candidates on size and declared media type
// before any compute or network work happens. Content is never decoded or
// sniffed: a file whose declared type is allowed is accepted as is.
package validation

import (
	"fmt"

	"github.com/dmitrijs2005/gophmarket/internal/client/models"
	"github.com/dmitrijs2005/gophmarket/internal/common"
)

// MaxFileSize is the largest accepted candidate, in bytes.
const MaxFileSize = 5 * common.MiB

// AllowedTypes lists accepted media types. image/jpg is a common non-standard
// alias that browsers and pickers still emit.
var AllowedTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif"}

// Rule names the check a candidate failed.
type Rule string

const (
	RuleMissing Rule = "missing"
	RuleSize    Rule = "size"
	RuleType    Rule = "type"
)

// Error describes a rejected candidate. Message is user-facing.
type Error struct {
	Rule    Rule
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap lets callers match any rejection with errors.Is(err, common.ErrValidation).
func (e *Error) Unwrap() error {
	return common.ErrValidation
}

// Validate checks c against the policy; rules are evaluated in order and the
// first failure wins. A nil error means the candidate is valid.
func Validate(c *models.Candidate) error {
	if c == nil || c.Size <= 0 {
		return &Error{Rule: RuleMissing, Message: "No file selected"}
	}

	if c.Size > MaxFileSize {
		sizeMB := float64(c.Size) / float64(common.MiB)
		return &Error{
			Rule:    RuleSize,
			Message: fmt.Sprintf("File size (%.2fMB) exceeds %dMB limit", sizeMB, MaxFileSize/common.MiB),
		}
	}

	if !IsAllowedType(c.MediaType) {
		return &Error{
			Rule:    RuleType,
			Message: fmt.Sprintf("File type %s not allowed. Use JPG, PNG, WebP, or GIF", c.MediaType),
		}
	}

	return nil
}

// IsAllowedType reports whether mediaType is on the allow-list.
func IsAllowedType(mediaType string) bool {
	for _, t := range AllowedTypes {
		if t == mediaType {
			return true
		}
	}
	return false
}

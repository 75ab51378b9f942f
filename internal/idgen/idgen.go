// Package idgen generates identifiers for jobs and scratch files.
package idgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewJobID returns an opaque, monotonically-ordered job identifier.
func NewJobID() string {
	return fmt.Sprintf("job_%d", time.Now().UnixNano())
}

// NewScratchName returns a collision-resistant scratch filename for label,
// preserving ext (which should include the leading dot, or be empty).
func NewScratchName(label, ext string) string {
	return fmt.Sprintf("%s_%s%s", slug(label), uuid.NewString(), ext)
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "asset"
	}
	return out
}

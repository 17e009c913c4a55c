// Package assets validates uploaded images, stages them on local disk and
// places them durably in a permanent store (a local directory or S3).
package assets

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Store is the permanent home of uploaded files.
type Store interface {
	// Put copies the file at srcPath into the store under a name derived from
	// key and returns the reference to persist. Existing objects are never
	// overwritten.
	Put(ctx context.Context, key, srcPath string) (string, error)
	// Delete removes ref. Deleting a missing reference is not an error.
	Delete(ctx context.Context, ref string) error
}

// Presigner is implemented by stores that hand out temporary download URLs.
type Presigner interface {
	PresignGet(ctx context.Context, ref string) (string, error)
}

// Locator is implemented by stores that keep files on the local filesystem.
type Locator interface {
	Locate(ref string) (string, error)
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeName reduces a client supplied file name to a safe base name.
func sanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.TrimLeft(base, ".")
	if base == "" {
		return "file"
	}
	return base
}

// NewKey returns a collision-resistant object name for an upload called name.
func NewKey(name string) string {
	return uuid.NewString() + "_" + sanitizeName(name)
}

package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/postkeeper/internal/common"
	"github.com/dmitrijs2005/postkeeper/internal/logging"
)

var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

// StagedUpload is an accepted upload waiting in the staging directory.
// It belongs to the request that created it and must be discarded by it.
type StagedUpload struct {
	TempPath string
	Name     string
	Ext      string
	Size     int64
}

// Sink accepts uploads into a private staging directory and finalizes them
// into a Store.
type Sink struct {
	stagingDir string
	maxBytes   int64
	store      Store
	logger     logging.Logger
}

// NewSink builds a Sink. An empty stagingDir means os.TempDir().
func NewSink(stagingDir string, maxBytes int64, store Store, l logging.Logger) *Sink {
	if stagingDir == "" {
		stagingDir = os.TempDir()
	}
	return &Sink{
		stagingDir: stagingDir,
		maxBytes:   maxBytes,
		store:      store,
		logger:     l.With("module", "assets"),
	}
}

// Store returns the permanent store behind the sink.
func (s *Sink) Store() Store {
	return s.store
}

// UnknownSize is passed as the declared size of a streamed upload. Only the
// name is validated up front; emptiness and the limit are checked on the
// bytes actually read.
const UnknownSize int64 = -1

// Validate checks name and declared size. The first violation wins:
// extension, then emptiness, then the size limit.
func (s *Sink) Validate(name string, size int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: only .png, .jpg and .jpeg are accepted", common.ErrUnsupportedMediaType)
	}
	if size == UnknownSize {
		return ext, nil
	}
	if size <= 0 {
		return "", fmt.Errorf("%w: file is empty", common.ErrEmptyPayload)
	}
	if size > s.maxBytes {
		return "", fmt.Errorf("%w: file exceeds %d bytes", common.ErrPayloadTooLarge, s.maxBytes)
	}
	return ext, nil
}

// Accept validates the upload and copies r into a new staging file.
// The byte count actually read is re-checked against the limits, so a
// lying declared size cannot sneak an oversize or empty file through.
func (s *Sink) Accept(ctx context.Context, r io.Reader, name string, size int64) (*StagedUpload, error) {
	ext, err := s.Validate(name, size)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	f, err := os.CreateTemp(s.stagingDir, "upload-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("%w: create staging file: %w", common.ErrStorage, err)
	}

	staged := &StagedUpload{TempPath: f.Name(), Name: sanitizeName(name), Ext: ext}

	n, err := io.Copy(f, io.LimitReader(&ctxReader{ctx: ctx, r: r}, s.maxBytes+1))
	closeErr := f.Close()

	switch {
	case err != nil:
		err = fmt.Errorf("%w: write staging file: %w", common.ErrStorage, err)
	case closeErr != nil:
		err = fmt.Errorf("%w: close staging file: %w", common.ErrStorage, closeErr)
	case n == 0:
		err = fmt.Errorf("%w: file is empty", common.ErrEmptyPayload)
	case n > s.maxBytes:
		err = fmt.Errorf("%w: file exceeds %d bytes", common.ErrPayloadTooLarge, s.maxBytes)
	}
	if err != nil {
		s.Discard(ctx, staged)
		return nil, err
	}

	staged.Size = n
	return staged, nil
}

// Finalize places the staged file in the permanent store under a fresh,
// collision-resistant name and returns the asset reference.
func (s *Sink) Finalize(ctx context.Context, u *StagedUpload) (string, error) {
	ref, err := s.store.Put(ctx, NewKey(u.Name), u.TempPath)
	if err != nil {
		return "", fmt.Errorf("place asset: %w", err)
	}
	return ref, nil
}

// Remove deletes a finalized asset.
func (s *Sink) Remove(ctx context.Context, ref string) error {
	return s.store.Delete(ctx, ref)
}

// Discard deletes the staging file. Failures are logged and swallowed.
func (s *Sink) Discard(ctx context.Context, u *StagedUpload) {
	if u == nil || u.TempPath == "" {
		return
	}
	if err := os.Remove(u.TempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn(ctx, "failed to discard staged upload", "path", u.TempPath, "error", err)
	}
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

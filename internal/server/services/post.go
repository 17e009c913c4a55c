package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/postkeeper/internal/common"
	"github.com/dmitrijs2005/postkeeper/internal/dbx"
	"github.com/dmitrijs2005/postkeeper/internal/logging"
	"github.com/dmitrijs2005/postkeeper/internal/server/assets"
	"github.com/dmitrijs2005/postkeeper/internal/server/auth"
	"github.com/dmitrijs2005/postkeeper/internal/server/models"
	"github.com/dmitrijs2005/postkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// CreatePostInput is the payload of a post creation request. The image is
// either already staged (Staged) or read from File.
type CreatePostInput struct {
	Title    string
	Text     string
	File     io.Reader
	FileName string
	FileSize int64
	Staged   *assets.StagedUpload
}

// ImageLocation says where the image of a post can be fetched: either a path
// on local disk or a (temporary) URL.
type ImageLocation struct {
	Path string
	URL  string
}

// PostService creates posts together with their image and reads them back.
type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sink        *assets.Sink
	logger      logging.Logger
	now         func() time.Time
}

// NewPostService constructs a PostService.
func NewPostService(db *sql.DB, m repomanager.RepositoryManager, sink *assets.Sink, l logging.Logger) *PostService {
	return &PostService{
		db:          db,
		repomanager: m,
		sink:        sink,
		logger:      l.With("module", "posts"),
		now:         time.Now,
	}
}

// Create stores a post and its image as one unit.
//
// The upload is staged and validated first, so invalid input never opens a
// transaction. Then, inside one transaction, the row is inserted, the file is
// placed in the asset store and the row is updated with the asset reference.
// Any failure rolls the transaction back; a failure after placement also
// removes the placed file (best-effort). The staging file is always removed.
// Cleanup ignores cancellation of ctx.
func (s *PostService) Create(ctx context.Context, id auth.Identity, in CreatePostInput) (*models.Post, error) {
	staged := in.Staged
	if staged == nil {
		var err error
		if staged, err = s.sink.Accept(ctx, in.File, in.FileName, in.FileSize); err != nil {
			return nil, err
		}
	}

	cleanupCtx := context.WithoutCancel(ctx)
	defer s.sink.Discard(cleanupCtx, staged)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %w", common.ErrStorage, err)
	}

	done := false
	defer func() {
		if done {
			return
		}
		if err := dbx.Rollback(tx); err != nil {
			s.logger.Error(cleanupCtx, "rollback failed", "error", err)
		}
	}()

	repo := s.repomanager.Posts(tx)

	post := &models.Post{
		Title:     in.Title,
		Text:      in.Text,
		UUID:      uuid.New(),
		UserID:    id.UserID,
		CreatedAt: s.now().UTC(),
	}
	if err := repo.Create(ctx, post); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: insert post: %w", common.ErrStorage, err)
	}

	ref, err := s.sink.Finalize(ctx, staged)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	if err := repo.SetImage(ctx, post.ID, ref); err != nil {
		s.removeAsset(cleanupCtx, ref)
		return nil, fmt.Errorf("%w: set image: %w", common.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		if rbErr := dbx.Rollback(tx); rbErr != nil {
			s.logger.Error(cleanupCtx, "rollback after failed commit", "error", rbErr)
		}
		done = true
		s.removeAsset(cleanupCtx, ref)
		return nil, fmt.Errorf("%w: commit: %w", common.ErrStorage, err)
	}
	done = true

	post.Image = ref
	s.logger.Info(ctx, "post created", "uuid", post.UUID, "user_id", id.UserID, "image", ref)

	return post, nil
}

// Stage validates and stages an image ahead of Create, for callers that
// receive the file before the rest of the post. Use assets.UnknownSize when
// the length is not known up front. The result is passed to Create in
// CreatePostInput.Staged; on any other path it must be released with Discard.
func (s *PostService) Stage(ctx context.Context, r io.Reader, name string, size int64) (*assets.StagedUpload, error) {
	return s.sink.Accept(ctx, r, name, size)
}

// Discard releases a staged image. It is safe to call after Create.
func (s *PostService) Discard(ctx context.Context, staged *assets.StagedUpload) {
	s.sink.Discard(ctx, staged)
}

func (s *PostService) removeAsset(ctx context.Context, ref string) {
	if err := s.sink.Remove(ctx, ref); err != nil {
		s.logger.Warn(ctx, "failed to remove orphaned asset", "ref", ref, "error", err)
	}
}

// ListByOwner returns the posts of one user, oldest first.
func (s *PostService) ListByOwner(ctx context.Context, userID int64) ([]*models.Post, error) {
	return s.repomanager.Posts(s.db).ListByUser(ctx, userID)
}

// ListAll returns every post, oldest first.
func (s *PostService) ListAll(ctx context.Context) ([]*models.Post, error) {
	return s.repomanager.Posts(s.db).ListAll(ctx)
}

// GetByUUID returns the post with its owner (nil when the owner is gone).
func (s *PostService) GetByUUID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.repomanager.Posts(s.db).GetByUUID(ctx, id)
}

// ImageLocation resolves where the image of the post can be fetched from.
// Posts without an image yield ErrorNotFound.
func (s *PostService) ImageLocation(ctx context.Context, id uuid.UUID) (*ImageLocation, error) {
	post, err := s.GetByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Image == "" {
		return nil, fmt.Errorf("%w: post has no image", common.ErrorNotFound)
	}

	switch st := s.sink.Store().(type) {
	case assets.Locator:
		p, err := st.Locate(post.Image)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		return &ImageLocation{Path: p}, nil
	case assets.Presigner:
		u, err := st.PresignGet(ctx, post.Image)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		return &ImageLocation{URL: u}, nil
	default:
		return nil, fmt.Errorf("%w: asset store cannot serve files", common.ErrorInternal)
	}
}

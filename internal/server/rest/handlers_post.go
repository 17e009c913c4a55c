package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dmitrijs2005/postkeeper/internal/common"
	"github.com/dmitrijs2005/postkeeper/internal/server/assets"
	"github.com/dmitrijs2005/postkeeper/internal/server/auth"
	"github.com/dmitrijs2005/postkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxFieldBytes bounds a single non-file form field.
const maxFieldBytes = 64 << 10

type createPostResponse struct {
	Status string `json:"status"`
	UUID   string `json:"uuid"`
}

// createPost streams the multipart body part by part. The image name is
// validated as soon as its part header arrives, before any of its bytes are
// read, so a wrong extension is reported even for an oversized body.
func (s *HTTPServer) createPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := auth.IdentityFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+multipartSlack)
	mr, err := r.MultipartReader()
	if err != nil {
		s.writeError(ctx, w, fmt.Errorf("%w: expected a multipart body: %w", common.ErrorValidation, err))
		return
	}

	in := services.CreatePostInput{}
	defer func() { s.posts.Discard(context.WithoutCancel(ctx), in.Staged) }()

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.writeError(ctx, w, s.bodyError(err))
			return
		}

		switch part.FormName() {
		case "title":
			in.Title, err = readField(part)
		case "text":
			in.Text, err = readField(part)
		case "file":
			if in.Staged == nil {
				in.Staged, err = s.posts.Stage(ctx, part, part.FileName(), assets.UnknownSize)
			}
		}
		_ = part.Close()

		if err != nil {
			s.writeError(ctx, w, s.bodyError(err))
			return
		}
	}

	if in.Staged == nil {
		s.writeError(ctx, w, fmt.Errorf("%w: file is required", common.ErrorValidation))
		return
	}

	post, err := s.posts.Create(ctx, id, in)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, createPostResponse{Status: "created", UUID: post.UUID.String()})
}

// bodyError classifies a failure while reading the upload. Sink errors pass
// through; a body over the hard cap is PayloadTooLarge; anything else is a
// malformed request.
func (s *HTTPServer) bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, common.ErrUnsupportedMediaType),
		errors.Is(err, common.ErrEmptyPayload),
		errors.Is(err, common.ErrPayloadTooLarge),
		errors.Is(err, common.ErrorValidation):
		return err
	case errors.As(err, &tooLarge):
		return fmt.Errorf("%w: request exceeds %d bytes", common.ErrPayloadTooLarge, s.maxUploadBytes)
	case errors.Is(err, common.ErrStorage):
		return err
	default:
		return fmt.Errorf("%w: malformed multipart body: %w", common.ErrorValidation, err)
	}
}

func readField(part *multipart.Part) (string, error) {
	b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
	if err != nil {
		return "", err
	}
	if len(b) > maxFieldBytes {
		return "", fmt.Errorf("%w: field %q exceeds %d bytes", common.ErrorValidation, part.FormName(), maxFieldBytes)
	}
	return string(b), nil
}

func (s *HTTPServer) myPosts(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	posts, err := s.posts.ListByOwner(r.Context(), id.UserID)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostList(posts))
}

func (s *HTTPServer) allPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.posts.ListAll(r.Context())
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostList(posts))
}

// postUUID reads the {uuid} path parameter. Malformed values cannot match
// any post and are reported as not found.
func postUUID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed uuid", common.ErrorNotFound)
	}
	return id, nil
}

func (s *HTTPServer) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := postUUID(r)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	post, err := s.posts.GetByUUID(r.Context(), id)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostResponse(post))
}

func (s *HTTPServer) getPostImage(w http.ResponseWriter, r *http.Request) {
	id, err := postUUID(r)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	loc, err := s.posts.ImageLocation(r.Context(), id)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	if loc.URL != "" {
		http.Redirect(w, r, loc.URL, http.StatusTemporaryRedirect)
		return
	}
	http.ServeFile(w, r, loc.Path)
}

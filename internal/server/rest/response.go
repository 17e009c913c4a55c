package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/postkeeper/internal/common"
	"github.com/dmitrijs2005/postkeeper/internal/server/models"
)

type errorResponse struct {
	Error string `json:"error"`
}

type ownerResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type postResponse struct {
	ID        int64          `json:"id"`
	Title     string         `json:"title"`
	Text      string         `json:"text"`
	UUID      string         `json:"uuid"`
	Image     string         `json:"image,omitempty"`
	UserID    int64          `json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	Owner     *ownerResponse `json:"owner,omitempty"`
}

func toPostResponse(p *models.Post) postResponse {
	resp := postResponse{
		ID:        p.ID,
		Title:     p.Title,
		Text:      p.Text,
		UUID:      p.UUID.String(),
		Image:     p.Image,
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt,
	}
	if p.Owner != nil {
		resp.Owner = &ownerResponse{ID: p.Owner.ID, Name: p.Owner.Name, Email: p.Owner.Email}
	}
	return resp
}

func toPostList(posts []*models.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps service errors to HTTP status codes and client messages.
// Internal causes are never echoed back.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, common.ErrorUnauthorized.Error()
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, common.ErrInvalidCredentials.Error()
	case errors.Is(err, common.ErrUnsupportedMediaType),
		errors.Is(err, common.ErrEmptyPayload),
		errors.Is(err, common.ErrPayloadTooLarge),
		errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, common.ErrorNotFound.Error()
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, common.ErrorAlreadyExists.Error()
	case errors.Is(err, common.ErrStorage):
		return http.StatusInternalServerError, common.ErrStorage.Error()
	default:
		return http.StatusInternalServerError, common.ErrorInternal.Error()
	}
}

func (s *HTTPServer) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(ctx, "request error", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

package posts

import (
	"context"

	"github.com/dmitrijs2005/postkeeper/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) error
	SetImage(ctx context.Context, id int64, image string) error
	ListByUser(ctx context.Context, userID int64) ([]*models.Post, error)
	ListAll(ctx context.Context) ([]*models.Post, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (*models.Post, error)
}

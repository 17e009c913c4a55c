// Package posts stores posts in PostgreSQL.
package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/postkeeper/internal/common"
	"github.com/dmitrijs2005/postkeeper/internal/dbx"
	"github.com/dmitrijs2005/postkeeper/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts post without an image and stores the generated id in post.ID.
// An owner that no longer exists yields common.ErrorUnauthorized.
func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) error {
	query :=
		`INSERT INTO posts (title, text, uuid, user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		post.Title, post.Text, post.UUID, post.UserID, post.CreatedAt).Scan(&post.ID)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: owner %d does not exist", common.ErrorUnauthorized, post.UserID)
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// SetImage stores the asset reference of post id. Exactly one row must be affected.
func (r *PostgresRepository) SetImage(ctx context.Context, id int64, image string) error {
	query := `UPDATE posts SET image = $1 WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, image, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}

	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Post, error) {
	query := ` SELECT id, title, text, uuid, image, user_id, created_at FROM posts
		WHERE user_id=$1
		ORDER BY id
		`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	query := ` SELECT id, title, text, uuid, image, user_id, created_at FROM posts
		ORDER BY id
		`
	return r.list(ctx, query)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select posts: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Post, 0)
	for rows.Next() {
		var (
			item  models.Post
			image sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Title, &item.Text, &item.UUID, &image, &item.UserID, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Image = image.String
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByUUID returns the post with its owner. The owner is left nil when the
// join finds no user. A missing post yields common.ErrorNotFound.
func (r *PostgresRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	query := ` SELECT p.id, p.title, p.text, p.uuid, p.image, p.user_id, p.created_at,
			u.id, u.name, u.email
		FROM posts p
		LEFT JOIN users u ON u.id = p.user_id
		WHERE p.uuid=$1
		`

	var (
		post       models.Post
		image      sql.NullString
		ownerID    sql.NullInt64
		ownerName  sql.NullString
		ownerEmail sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID, &post.Title, &post.Text, &post.UUID, &image, &post.UserID, &post.CreatedAt,
		&ownerID, &ownerName, &ownerEmail,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select post: %w", err)
	}

	post.Image = image.String
	if ownerID.Valid {
		post.Owner = &models.PostOwner{ID: ownerID.Int64, Name: ownerName.String, Email: ownerEmail.String}
	}

	return &post, nil
}

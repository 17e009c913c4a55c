package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a titled text with an optional image.
type Post struct {
	// ID is assigned by the database.
	ID    int64
	Title string
	Text  string
	// UUID is the public identifier, generated at creation.
	UUID uuid.UUID
	// Image is the asset reference of the stored file. Empty until the file
	// has been placed durably.
	Image     string
	UserID    int64
	CreatedAt time.Time

	// Owner is populated only by lookups that join users.
	Owner *PostOwner
}

// PostOwner is the public part of the user owning a post.
type PostOwner struct {
	ID    int64
	Name  string
	Email string
}

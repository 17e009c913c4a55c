// Package models holds the client-side views of server resources.
package models

import "time"

// Post is a post as returned by the API.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	UUID      string    `json:"uuid"`
	Image     string    `json:"image,omitempty"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	Owner     *Owner    `json:"owner,omitempty"`
}

// Owner is the public profile of a post's author.
type Owner struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Profile is the caller's own account.
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

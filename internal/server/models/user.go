// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account able to log in and own posts.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

package models

import "time"

// User is an account known to the credential authority.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}

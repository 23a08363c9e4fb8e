package admin

import "time"

// Admin is the reviewing principal. Admin accounts are provisioned by the
// create-admin command, never through the public API.
type Admin struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

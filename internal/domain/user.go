package domain

import "time"

// User is the authenticated identity recorded on audit entries and uploads.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

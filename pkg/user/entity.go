package user

import "time"

// User is the profile snapshot the backend returns for the authenticated
// account. The client never sees or stores passwords.
type User struct {
	ID        string    `json:"id,omitempty"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Actor is the identity performing a request. It is passed explicitly to
// every service call instead of being read from ambient state.
type Actor struct {
	ID       int64
	Username string
	IsStaff  bool
}

func (u User) Actor() Actor {
	return Actor{ID: u.ID, Username: u.Username, IsStaff: u.IsStaff}
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. An authenticated User is the request principal.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	PhotoURL     string
	CreatedAt    time.Time
}

// UserResponse is the wire representation of a user. The password hash is
// never part of it.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PhotoURL  string    `json:"photoUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func (u User) Response() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		PhotoURL:  u.PhotoURL,
		CreatedAt: u.CreatedAt,
	}
}

// UserResponses maps users to their wire representation, keeping order.
func UserResponses(users []User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.Response())
	}
	return out
}

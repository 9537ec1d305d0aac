package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is a board owned by exactly one user. The owner is never part of
// Members.
type Project struct {
	ID        uuid.UUID
	Title     string
	CreatedAt time.Time
	Owner     User
	Members   []User

	// Read-only aggregates filled by the store.
	TaskCount      int
	CompletedCount int
}

// Progress is the share of completed tasks, 0 for a project without tasks.
func (p Project) Progress() float64 {
	if p.TaskCount == 0 {
		return 0
	}
	return float64(p.CompletedCount) / float64(p.TaskCount)
}

type ProjectResponse struct {
	ID        uuid.UUID      `json:"id"`
	Title     string         `json:"title"`
	CreatedAt time.Time      `json:"createdAt"`
	Owner     UserResponse   `json:"owner"`
	Members   []UserResponse `json:"members"`
	Progress  float64        `json:"progress"`
}

func (p Project) Response() ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Title:     p.Title,
		CreatedAt: p.CreatedAt,
		Owner:     p.Owner.Response(),
		Members:   UserResponses(p.Members),
		Progress:  p.Progress(),
	}
}

func ProjectResponses(projects []Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Response())
	}
	return out
}

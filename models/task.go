package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the column a task sits in.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusDoing     TaskStatus = "doing"
	StatusCompleted TaskStatus = "completed"
)

// ParseTaskStatus accepts the canonical lower-case names.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case StatusPending, StatusDoing, StatusCompleted:
		return TaskStatus(s), nil
	}
	return "", fmt.Errorf("invalid task status %q", s)
}

// Task belongs to exactly one project. Responsible users were owner or
// members of that project when they were assigned.
type Task struct {
	ID          uuid.UUID
	Title       string
	Description string
	Status      TaskStatus
	Color       string
	Tags        []string
	ProjectID   uuid.UUID
	CreatedBy   User
	Responsible []User
	CreatedAt   time.Time
}

// HasResponsible reports whether userID is assigned to the task.
func (t Task) HasResponsible(userID uuid.UUID) bool {
	for _, u := range t.Responsible {
		if u.ID == userID {
			return true
		}
	}
	return false
}

type TaskResponse struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"createdAt"`
	Status      TaskStatus     `json:"status"`
	Color       string         `json:"color"`
	Tags        []string       `json:"tags"`
	ProjectID   uuid.UUID      `json:"projectId"`
	CreatedBy   UserResponse   `json:"createdBy"`
	Members     []UserResponse `json:"members"`
}

func (t Task) Response() TaskResponse {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		Status:      t.Status,
		Color:       t.Color,
		Tags:        tags,
		ProjectID:   t.ProjectID,
		CreatedBy:   t.CreatedBy.Response(),
		Members:     UserResponses(t.Responsible),
	}
}

// TaskListResponse groups a project's tasks by status.
type TaskListResponse struct {
	Pending        []TaskResponse `json:"pending"`
	Doing          []TaskResponse `json:"doing"`
	Completed      []TaskResponse `json:"completed"`
	Total          int            `json:"total"`
	TotalPending   int            `json:"totalPending"`
	TotalDoing     int            `json:"totalDoing"`
	TotalCompleted int            `json:"totalCompleted"`
}

// GroupTasks splits tasks by status, keeping their relative order.
func GroupTasks(tasks []Task) TaskListResponse {
	list := TaskListResponse{
		Pending:   []TaskResponse{},
		Doing:     []TaskResponse{},
		Completed: []TaskResponse{},
		Total:     len(tasks),
	}
	for _, t := range tasks {
		switch t.Status {
		case StatusPending:
			list.Pending = append(list.Pending, t.Response())
		case StatusDoing:
			list.Doing = append(list.Doing, t.Response())
		case StatusCompleted:
			list.Completed = append(list.Completed, t.Response())
		}
	}
	list.TotalPending = len(list.Pending)
	list.TotalDoing = len(list.Doing)
	list.TotalCompleted = len(list.Completed)
	return list
}

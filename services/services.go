// Package services holds the resource services. Every method that reads or
// changes a project or task receives the acting principal explicitly and
// consults the policy package before touching the store.
package services

import (
	"context"
	"errors"

	"kboard/apperr"
	"kboard/database"
	"kboard/models"

	"github.com/google/uuid"
)

// UserStore is the credential store.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

type ProjectStore interface {
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListOwnedProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	ListMemberProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	UpdateProjectTitle(ctx context.Context, id uuid.UUID, title string) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
	AddMember(ctx context.Context, projectID, userID uuid.UUID) error
	RemoveMembers(ctx context.Context, projectID uuid.UUID, userIDs []uuid.UUID) error
}

type TaskStore interface {
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListTasks(ctx context.Context, projectID uuid.UUID, responsibleID *uuid.UUID) ([]models.Task, error)
	UpdateTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

// AvatarStore keeps user photos and returns their public URL.
type AvatarStore interface {
	Upload(ctx context.Context, file models.Upload) (string, error)
	Remove(ctx context.Context, url string) error
}

// NoAvatars is the AvatarStore used when uploads are not configured.
type NoAvatars struct{}

func (NoAvatars) Upload(context.Context, models.Upload) (string, error) {
	return "", apperr.New(apperr.KindBadRequest, "Photo uploads are disabled.")
}

func (NoAvatars) Remove(context.Context, string) error { return nil }

// storeErr converts a store failure into an application error, reporting
// database.ErrNotFound as a missing resource.
func storeErr(err error, resource string, id any) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperr.NotFound(resource, id)
	}
	return apperr.Internal("store "+resource, err)
}

// missingUsers returns the ids in want that are absent from found.
func missingUsers(want []uuid.UUID, found []models.User) []uuid.UUID {
	present := make(map[uuid.UUID]struct{}, len(found))
	for _, u := range found {
		present[u.ID] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range want {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
			present[id] = struct{}{}
		}
	}
	return missing
}

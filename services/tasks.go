package services

import (
	"context"
	"strings"
	"time"

	"kboard/apperr"
	"kboard/models"
	"kboard/policy"

	"github.com/google/uuid"
)

// TaskService guards tasks with the access rules of their parent project.
type TaskService struct {
	tasks    TaskStore
	projects *ProjectService
	now      func() time.Time
}

func NewTaskService(tasks TaskStore, projects *ProjectService) *TaskService {
	return &TaskService{tasks: tasks, projects: projects, now: time.Now}
}

type CreateTaskInput struct {
	ProjectID     uuid.UUID
	Title         string
	Description   string
	Status        string
	Color         string
	Tags          []string
	ResponsibleID []uuid.UUID
}

// UpdateTaskInput holds a partial edit; nil fields keep their value.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *string
	Color         *string
	Tags          *[]string
	ResponsibleID *[]uuid.UUID
}

// accessibleProject loads a project and requires principal to be owner or
// member of it.
func (s *TaskService) accessibleProject(ctx context.Context, principal models.User, id uuid.UUID) (*models.Project, error) {
	return s.projects.Get(ctx, principal, id)
}

// resolveResponsible maps ids onto the project's eligible users. Listing a
// user twice is rejected; ids outside owner and members are reported missing.
func resolveResponsible(ids []uuid.UUID, project models.Project) ([]models.User, error) {
	if dups := policy.DuplicateIDs(ids); len(dups) > 0 {
		return nil, apperr.Newf(apperr.KindInvalidOperation, "User %s listed more than once as responsible.", dups[0])
	}
	if missing := policy.ValidateResponsibleSet(ids, project); len(missing) > 0 {
		return nil, apperr.NotFoundIDs("Users", missing)
	}
	eligible := policy.Eligible(project)
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, eligible[id])
	}
	return out, nil
}

func parseStatus(raw string) (models.TaskStatus, error) {
	if raw == "" {
		return models.StatusPending, nil
	}
	st, err := models.ParseTaskStatus(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return "", apperr.Newf(apperr.KindBadRequest, "Invalid status: %s", raw)
	}
	return st, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func (s *TaskService) Create(ctx context.Context, principal models.User, in CreateTaskInput) (*models.Task, error) {
	project, err := s.accessibleProject(ctx, principal, in.ProjectID)
	if err != nil {
		return nil, err
	}
	title, err := validTitle(in.Title)
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	responsible, err := resolveResponsible(in.ResponsibleID, *project)
	if err != nil {
		return nil, err
	}

	t := &models.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: in.Description,
		Status:      status,
		Color:       in.Color,
		Tags:        normalizeTags(in.Tags),
		ProjectID:   project.ID,
		CreatedBy:   principal,
		Responsible: responsible,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.tasks.CreateTask(ctx, t); err != nil {
		return nil, apperr.Internal("create task", err)
	}
	return t, nil
}

// List groups a project's tasks by status. A non-nil memberID keeps only the
// tasks assigned to that user.
func (s *TaskService) List(ctx context.Context, principal models.User, projectID uuid.UUID, memberID *uuid.UUID) (models.TaskListResponse, error) {
	if _, err := s.accessibleProject(ctx, principal, projectID); err != nil {
		return models.TaskListResponse{}, err
	}
	tasks, err := s.tasks.ListTasks(ctx, projectID, memberID)
	if err != nil {
		return models.TaskListResponse{}, apperr.Internal("list tasks", err)
	}
	return models.GroupTasks(tasks), nil
}

// loadTask fetches a task and checks access on its parent project.
func (s *TaskService) loadTask(ctx context.Context, principal models.User, id uuid.UUID) (*models.Task, *models.Project, error) {
	t, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return nil, nil, storeErr(err, "Task", id)
	}
	project, err := s.accessibleProject(ctx, principal, t.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return t, project, nil
}

func (s *TaskService) Get(ctx context.Context, principal models.User, id uuid.UUID) (*models.Task, error) {
	t, _, err := s.loadTask(ctx, principal, id)
	return t, err
}

func (s *TaskService) Update(ctx context.Context, principal models.User, id uuid.UUID, in UpdateTaskInput) (*models.Task, error) {
	t, project, err := s.loadTask(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		if t.Title, err = validTitle(*in.Title); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		if t.Status, err = parseStatus(*in.Status); err != nil {
			return nil, err
		}
	}
	if in.Color != nil {
		t.Color = *in.Color
	}
	if in.Tags != nil {
		t.Tags = normalizeTags(*in.Tags)
	}
	if in.ResponsibleID != nil {
		if t.Responsible, err = resolveResponsible(*in.ResponsibleID, *project); err != nil {
			return nil, err
		}
	}
	if err := s.tasks.UpdateTask(ctx, t); err != nil {
		return nil, storeErr(err, "Task", id)
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, principal models.User, id uuid.UUID) error {
	if _, _, err := s.loadTask(ctx, principal, id); err != nil {
		return err
	}
	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		return storeErr(err, "Task", id)
	}
	return nil
}

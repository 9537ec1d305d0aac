package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"kboard/apperr"
	"kboard/database"
	"kboard/models"
	"kboard/policy"
	"kboard/utilities"

	"github.com/google/uuid"
)

type ProjectService struct {
	projects ProjectStore
	users    UserStore
	now      func() time.Time
}

func NewProjectService(projects ProjectStore, users UserStore) *ProjectService {
	return &ProjectService{projects: projects, users: users, now: time.Now}
}

func validTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.New(apperr.KindBadRequest, "Title cannot be empty")
	}
	return title, nil
}

// loadProject fetches a project before any permission check so a missing
// project is reported as 404 rather than 403.
func (s *ProjectService) loadProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Project", id)
	}
	return p, nil
}

// Create makes principal the owner of a new project with no members.
func (s *ProjectService) Create(ctx context.Context, principal models.User, title string) (*models.Project, error) {
	title, err := validTitle(title)
	if err != nil {
		return nil, err
	}
	p := &models.Project{
		ID:        uuid.New(),
		Title:     title,
		CreatedAt: s.now().UTC(),
		Owner:     principal,
		Members:   []models.User{},
	}
	if err := s.projects.CreateProject(ctx, p); err != nil {
		return nil, apperr.Internal("create project", err)
	}
	utilities.LogInfo("Project %s created by %s", p.ID, principal.ID)
	return p, nil
}

// Owned lists the projects principal owns.
func (s *ProjectService) Owned(ctx context.Context, principal models.User) ([]models.Project, error) {
	projects, err := s.projects.ListOwnedProjects(ctx, principal.ID)
	if err != nil {
		return nil, apperr.Internal("list owned projects", err)
	}
	return projects, nil
}

// Participating lists the projects principal is a member of.
func (s *ProjectService) Participating(ctx context.Context, principal models.User) ([]models.Project, error) {
	projects, err := s.projects.ListMemberProjects(ctx, principal.ID)
	if err != nil {
		return nil, apperr.Internal("list member projects", err)
	}
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, principal models.User, id uuid.UUID) (*models.Project, error) {
	p, err := s.loadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireAccess(principal, *p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) Rename(ctx context.Context, principal models.User, id uuid.UUID, title string) (*models.Project, error) {
	p, err := s.loadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireManage(principal, *p); err != nil {
		return nil, err
	}
	if p.Title, err = validTitle(title); err != nil {
		return nil, err
	}
	if err := s.projects.UpdateProjectTitle(ctx, id, p.Title); err != nil {
		return nil, storeErr(err, "Project", id)
	}
	return p, nil
}

// Delete removes the project together with its tasks and memberships.
func (s *ProjectService) Delete(ctx context.Context, principal models.User, id uuid.UUID) error {
	p, err := s.loadProject(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.RequireManage(principal, *p); err != nil {
		return err
	}
	if err := s.projects.DeleteProject(ctx, id); err != nil {
		return storeErr(err, "Project", id)
	}
	utilities.LogInfo("Project %s deleted by %s", id, principal.ID)
	return nil
}

// Join adds principal to the project's members. Joining twice is a no-op.
func (s *ProjectService) Join(ctx context.Context, principal models.User, id uuid.UUID) (*models.Project, error) {
	p, err := s.loadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanJoinAsMember(principal, *p); err != nil {
		return nil, err
	}
	return s.addMember(ctx, p, principal)
}

// AddMember lets the owner add another user as member.
func (s *ProjectService) AddMember(ctx context.Context, principal models.User, id, memberID uuid.UUID) (*models.Project, error) {
	p, err := s.loadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireManage(principal, *p); err != nil {
		return nil, err
	}
	member, err := s.users.GetUserByID(ctx, memberID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperr.NotFound("User", memberID)
	}
	if err != nil {
		return nil, apperr.Internal("lookup member", err)
	}
	if err := policy.CanJoinAsMember(*member, *p); err != nil {
		return nil, err
	}
	return s.addMember(ctx, p, *member)
}

func (s *ProjectService) addMember(ctx context.Context, p *models.Project, member models.User) (*models.Project, error) {
	if policy.IsMember(member, *p) {
		return p, nil
	}
	if err := s.projects.AddMember(ctx, p.ID, member.ID); err != nil {
		return nil, storeErr(err, "Project", p.ID)
	}
	p.Members = append(p.Members, member)
	utilities.LogInfo("User %s joined project %s", member.ID, p.ID)
	return p, nil
}

// RemoveMembers drops the given users from the project. Every id must name
// an existing user; ids that are not members are ignored.
func (s *ProjectService) RemoveMembers(ctx context.Context, principal models.User, id uuid.UUID, memberIDs []uuid.UUID) (*models.Project, error) {
	p, err := s.loadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireManage(principal, *p); err != nil {
		return nil, err
	}
	if len(memberIDs) == 0 {
		return nil, apperr.New(apperr.KindBadRequest, "membersId cannot be empty")
	}

	found, err := s.users.GetUsersByIDs(ctx, memberIDs)
	if err != nil {
		return nil, apperr.Internal("lookup members", err)
	}
	if missing := missingUsers(memberIDs, found); len(missing) > 0 {
		return nil, apperr.NotFoundIDs("Users", missing)
	}

	if err := s.projects.RemoveMembers(ctx, id, memberIDs); err != nil {
		return nil, storeErr(err, "Project", id)
	}
	drop := make(map[uuid.UUID]struct{}, len(memberIDs))
	for _, m := range memberIDs {
		drop[m] = struct{}{}
	}
	kept := make([]models.User, 0, len(p.Members))
	for _, m := range p.Members {
		if _, ok := drop[m.ID]; !ok {
			kept = append(kept, m)
		}
	}
	p.Members = kept
	return p, nil
}

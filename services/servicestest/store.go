// Package servicestest provides in-memory stores for exercising the services
// and the HTTP layer without PostgreSQL.
package servicestest

import (
	"context"
	"errors"
	"slices"
	"sync"

	"kboard/database"
	"kboard/models"

	"github.com/google/uuid"
)

// Store implements the user, project and task stores in memory. It is safe
// for concurrent use.
type Store struct {
	mu       sync.Mutex
	users    map[uuid.UUID]models.User
	projects map[uuid.UUID]models.Project
	members  map[uuid.UUID][]uuid.UUID
	tasks    map[uuid.UUID]models.Task
	order    []uuid.UUID
	FailWith error
}

func NewStore() *Store {
	return &Store{
		users:    map[uuid.UUID]models.User{},
		projects: map[uuid.UUID]models.Project{},
		members:  map[uuid.UUID][]uuid.UUID{},
		tasks:    map[uuid.UUID]models.Task{},
	}
}

func (m *Store) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return database.ErrDuplicate
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *Store) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &u, nil
}

func (m *Store) GetUsersByIDs(_ context.Context, ids []uuid.UUID) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *Store) UpdateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[u.ID]
	if !ok {
		return database.ErrNotFound
	}
	cur.Name, cur.PhotoURL = u.Name, u.PhotoURL
	m.users[u.ID] = cur
	return nil
}

func (m *Store) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[id]
	if !ok {
		return database.ErrNotFound
	}
	cur.PasswordHash = hash
	m.users[id] = cur
	return nil
}

func (m *Store) CreateProject(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = *p
	return nil
}

// project assembles a project with members and counts; m.mu must be held.
func (m *Store) project(id uuid.UUID) (models.Project, bool) {
	p, ok := m.projects[id]
	if !ok {
		return p, false
	}
	p.Owner = m.users[p.Owner.ID]
	p.Members = []models.User{}
	for _, uid := range m.members[id] {
		p.Members = append(p.Members, m.users[uid])
	}
	p.TaskCount, p.CompletedCount = 0, 0
	for _, t := range m.tasks {
		if t.ProjectID == id {
			p.TaskCount++
			if t.Status == models.StatusCompleted {
				p.CompletedCount++
			}
		}
	}
	return p, true
}

func (m *Store) GetProject(_ context.Context, id uuid.UUID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.project(id)
	if !ok {
		return nil, database.ErrNotFound
	}
	return &p, nil
}

func (m *Store) ListOwnedProjects(_ context.Context, userID uuid.UUID) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Project
	for id, p := range m.projects {
		if p.Owner.ID == userID {
			full, _ := m.project(id)
			out = append(out, full)
		}
	}
	return out, nil
}

func (m *Store) ListMemberProjects(_ context.Context, userID uuid.UUID) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Project
	for id, ids := range m.members {
		if slices.Contains(ids, userID) {
			full, _ := m.project(id)
			out = append(out, full)
		}
	}
	return out, nil
}

func (m *Store) UpdateProjectTitle(_ context.Context, id uuid.UUID, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return database.ErrNotFound
	}
	p.Title = title
	m.projects[id] = p
	return nil
}

func (m *Store) DeleteProject(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.projects, id)
	delete(m.members, id)
	for tid, t := range m.tasks {
		if t.ProjectID == id {
			delete(m.tasks, tid)
		}
	}
	return nil
}

func (m *Store) AddMember(_ context.Context, projectID, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[projectID]; !ok {
		return database.ErrNotFound
	}
	if !slices.Contains(m.members[projectID], userID) {
		m.members[projectID] = append(m.members[projectID], userID)
	}
	return nil
}

func (m *Store) RemoveMembers(_ context.Context, projectID uuid.UUID, userIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[projectID] = slices.DeleteFunc(m.members[projectID], func(id uuid.UUID) bool {
		return slices.Contains(userIDs, id)
	})
	return nil
}

func (m *Store) CreateTask(_ context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = *t
	m.order = append(m.order, t.ID)
	return nil
}

func (m *Store) GetTask(_ context.Context, id uuid.UUID) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	t.Responsible = slices.Clone(t.Responsible)
	return &t, nil
}

func (m *Store) ListTasks(_ context.Context, projectID uuid.UUID, responsibleID *uuid.UUID) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Task{}
	for _, id := range m.order {
		t, ok := m.tasks[id]
		if !ok || t.ProjectID != projectID {
			continue
		}
		if responsibleID != nil && !t.HasResponsible(*responsibleID) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *Store) UpdateTask(_ context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.ID]; !ok {
		return database.ErrNotFound
	}
	m.tasks[t.ID] = *t
	return nil
}

func (m *Store) DeleteTask(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

// Avatars records uploads and removals. Uploaded files get a URL under
// https://cdn.example.com/.
type Avatars struct {
	mu       sync.Mutex
	Uploaded []string
	Removed  []string
}

func (a *Avatars) Upload(_ context.Context, file models.Upload) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if file.Filename == "" {
		return "", errors.New("empty filename")
	}
	url := "https://cdn.example.com/" + file.Filename
	a.Uploaded = append(a.Uploaded, url)
	return url, nil
}

func (a *Avatars) Remove(_ context.Context, url string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Removed = append(a.Removed, url)
	return nil
}

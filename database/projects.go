package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kboard/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const projectSelect = `
	SELECT p.id, p.title, p.created_at,
	       o.id, o.name, o.email, o.password_hash, o.photo_url, o.created_at,
	       (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id),
	       (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id AND t.status = 'completed')
	FROM projects p
	JOIN users o ON o.id = p.owner_id`

func scanProject(row interface{ Scan(...any) error }) (models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID, &p.Title, &p.CreatedAt,
		&p.Owner.ID, &p.Owner.Name, &p.Owner.Email, &p.Owner.PasswordHash, &p.Owner.PhotoURL, &p.Owner.CreatedAt,
		&p.TaskCount, &p.CompletedCount,
	)
	return p, err
}

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, title, owner_id, created_at) VALUES ($1, $2, $3, $4)`,
		p.ID, p.Title, p.Owner.ID, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetProject loads a project with its owner and members.
func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, projectSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	projects := []models.Project{p}
	if err := s.loadMembers(ctx, projects); err != nil {
		return nil, err
	}
	return &projects[0], nil
}

func (s *Store) ListOwnedProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	return s.listProjects(ctx, projectSelect+` WHERE p.owner_id = $1 ORDER BY p.created_at, p.id`, userID)
}

func (s *Store) ListMemberProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	return s.listProjects(ctx, projectSelect+`
		JOIN project_members pm ON pm.project_id = p.id
		WHERE pm.user_id = $1
		ORDER BY p.created_at, p.id`, userID)
}

func (s *Store) listProjects(ctx context.Context, query string, args ...any) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	// Members are loaded after the project rows are closed.
	rows.Close()

	if err := s.loadMembers(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// loadMembers fills Members for every project in one query.
func (s *Store) loadMembers(ctx context.Context, projects []models.Project) error {
	if len(projects) == 0 {
		return nil
	}
	index := make(map[uuid.UUID]int, len(projects))
	ids := make([]uuid.UUID, 0, len(projects))
	for i, p := range projects {
		index[p.ID] = i
		ids = append(ids, p.ID)
		projects[i].Members = []models.User{}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pm.project_id, u.id, u.name, u.email, u.password_hash, u.photo_url, u.created_at
		FROM project_members pm
		JOIN users u ON u.id = pm.user_id
		WHERE pm.project_id = ANY($1::uuid[])
		ORDER BY pm.joined_at, u.id
	`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return fmt.Errorf("load members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID uuid.UUID
		var u models.User
		if err := rows.Scan(&projectID, &u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.PhotoURL, &u.CreatedAt); err != nil {
			return fmt.Errorf("scan member: %w", err)
		}
		i := index[projectID]
		projects[i].Members = append(projects[i].Members, u)
	}
	return rows.Err()
}

func (s *Store) UpdateProjectTitle(ctx context.Context, id uuid.UUID, title string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE projects SET title = $2 WHERE id = $1`, id, title)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return expectOneRow(res)
}

// DeleteProject removes the project; tasks and memberships cascade.
func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return expectOneRow(res)
}

// AddMember is idempotent: adding an existing member is a no-op.
func (s *Store) AddMember(ctx context.Context, projectID, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_members (project_id, user_id, joined_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (project_id, user_id) DO NOTHING
	`, projectID, userID)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *Store) RemoveMembers(ctx context.Context, projectID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = ANY($2::uuid[])`,
		projectID, pq.Array(uuidStrings(userIDs)))
	if err != nil {
		return fmt.Errorf("remove members: %w", err)
	}
	return nil
}

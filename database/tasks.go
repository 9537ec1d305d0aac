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

const taskSelect = `
	SELECT t.id, t.project_id, t.title, t.description, t.status, t.color, t.tags, t.created_at,
	       c.id, c.name, c.email, c.password_hash, c.photo_url, c.created_at
	FROM tasks t
	JOIN users c ON c.id = t.created_by`

func scanTask(row interface{ Scan(...any) error }) (models.Task, error) {
	var t models.Task
	var tags pq.StringArray
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Color, &tags, &t.CreatedAt,
		&t.CreatedBy.ID, &t.CreatedBy.Name, &t.CreatedBy.Email, &t.CreatedBy.PasswordHash, &t.CreatedBy.PhotoURL, &t.CreatedBy.CreatedAt,
	)
	t.Tags = []string(tags)
	return t, err
}

// CreateTask inserts t and its responsible users in one transaction.
func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (id, project_id, title, description, status, color, tags, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Color, pq.Array(t.Tags), t.CreatedBy.ID, t.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		return insertResponsible(ctx, tx, t.ID, t.Responsible)
	})
}

func (s *Store) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, taskSelect+` WHERE t.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	tasks := []models.Task{t}
	if err := s.loadResponsible(ctx, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

// ListTasks returns a project's tasks oldest first. A non-nil responsibleID
// keeps only tasks assigned to that user.
func (s *Store) ListTasks(ctx context.Context, projectID uuid.UUID, responsibleID *uuid.UUID) ([]models.Task, error) {
	query := taskSelect + ` WHERE t.project_id = $1`
	args := []any{projectID}
	if responsibleID != nil {
		query += ` AND EXISTS (SELECT 1 FROM task_responsible tr WHERE tr.task_id = t.id AND tr.user_id = $2)`
		args = append(args, *responsibleID)
	}
	query += ` ORDER BY t.created_at, t.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	rows.Close()

	if err := s.loadResponsible(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) loadResponsible(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	index := make(map[uuid.UUID]int, len(tasks))
	ids := make([]uuid.UUID, 0, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
		ids = append(ids, t.ID)
		tasks[i].Responsible = []models.User{}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT tr.task_id, u.id, u.name, u.email, u.password_hash, u.photo_url, u.created_at
		FROM task_responsible tr
		JOIN users u ON u.id = tr.user_id
		WHERE tr.task_id = ANY($1::uuid[])
		ORDER BY u.created_at, u.id
	`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return fmt.Errorf("load responsible: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID uuid.UUID
		var u models.User
		if err := rows.Scan(&taskID, &u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.PhotoURL, &u.CreatedAt); err != nil {
			return fmt.Errorf("scan responsible: %w", err)
		}
		i := index[taskID]
		tasks[i].Responsible = append(tasks[i].Responsible, u)
	}
	return rows.Err()
}

// UpdateTask writes the editable fields of t and replaces its responsible set.
func (s *Store) UpdateTask(ctx context.Context, t *models.Task) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE tasks SET title = $2, description = $3, status = $4, color = $5, tags = $6
			WHERE id = $1
		`, t.ID, t.Title, t.Description, t.Status, t.Color, pq.Array(t.Tags))
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if err := expectOneRow(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM task_responsible WHERE task_id = $1`, t.ID); err != nil {
			return fmt.Errorf("clear responsible: %w", err)
		}
		return insertResponsible(ctx, tx, t.ID, t.Responsible)
	})
}

func (s *Store) DeleteTask(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return expectOneRow(res)
}

func insertResponsible(ctx context.Context, tx *sql.Tx, taskID uuid.UUID, users []models.User) error {
	for _, u := range users {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO task_responsible (task_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			taskID, u.ID)
		if err != nil {
			return fmt.Errorf("insert responsible: %w", err)
		}
	}
	return nil
}

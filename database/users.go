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

const userColumns = `id, name, email, password_hash, photo_url, created_at`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.PhotoURL, &u.CreatedAt)
	return u, err
}

// CreateUser inserts u. A taken email yields ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, photo_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.PhotoURL, u.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

// GetUsersByIDs returns the users that exist among ids. Missing ids are
// silently skipped; callers compare lengths to detect them.
func (s *Store) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[]) ORDER BY created_at, id`,
		pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser writes the mutable profile fields of u.
func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = $2, photo_url = $3 WHERE id = $1`,
		u.ID, u.Name, u.PhotoURL)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectOneRow(res)
}

func (s *Store) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

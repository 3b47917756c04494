package repo

import (
	"context"
	"database/sql"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/user/entity"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/pkg/database"
)

var users = database.Entity{
	Table: "users",
	Key:   "id",
	Columns: []string{
		"id", "auth_subject", "role", "first_name", "last_name", "email",
		"status", "last_login_at", "created_at", "updated_at",
	},
	WriteOnly: []string{"password_hash"},
}

// UserRepo provides data access for the users table.
type UserRepo struct {
	gw *database.Gateway
}

func NewUserRepo(gw *database.Gateway) *UserRepo { return &UserRepo{gw: gw} }

// EnsureTable creates the users table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE EXTENSION IF NOT EXISTS citext;
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  auth_subject TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL,
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  email CITEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'active',
  password_hash TEXT,
  last_login_at TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
`
	_, err := r.gw.DB().ExecContext(ctx, ddl)
	return err
}

// Create inserts a user row and returns its profile.
func (r *UserRepo) Create(ctx context.Context, fields database.Fields) (*entity.Profile, error) {
	return database.Create[entity.Profile](ctx, r.gw, users, fields)
}

// GetBySubject returns the profile linked to a session subject or sql.ErrNoRows.
func (r *UserRepo) GetBySubject(ctx context.Context, subject string) (*entity.Profile, error) {
	return database.FindOne[entity.Profile](ctx, r.gw, users, database.Fields{"auth_subject": subject})
}

// GetRoleBySubject reads only the role column.
func (r *UserRepo) GetRoleBySubject(ctx context.Context, subject string) (entity.Role, error) {
	var role entity.Role
	if err := r.gw.DB().GetContext(ctx, &role, `SELECT role FROM users WHERE auth_subject=$1`, subject); err != nil {
		return "", err
	}
	return role, nil
}

// List returns every profile, optionally restricted to one role.
func (r *UserRepo) List(ctx context.Context, role entity.Role) ([]entity.Profile, error) {
	var filter database.Fields
	if role != "" {
		filter = database.Fields{"role": role}
	}
	return database.FindMany[entity.Profile](ctx, r.gw, users, filter)
}

// GetCredentials fetches the password projection by email (case-insensitive due to citext).
func (r *UserRepo) GetCredentials(ctx context.Context, email string) (*entity.Credentials, error) {
	const q = `SELECT id, auth_subject, status, password_hash FROM users WHERE email=$1`
	var c entity.Credentials
	if err := r.gw.DB().GetContext(ctx, &c, q, email); err != nil {
		return nil, err
	}
	return &c, nil
}

// ResetLoginSuccess stamps the last successful login.
func (r *UserRepo) ResetLoginSuccess(ctx context.Context, id string) error {
	const q = `UPDATE users SET last_login_at=NOW(), updated_at=NOW() WHERE id=$1`
	_, err := r.gw.DB().ExecContext(ctx, q, id)
	return err
}

// Deactivate marks a user as disabled.
func (r *UserRepo) Deactivate(ctx context.Context, id string) error {
	const q = `UPDATE users SET status='disabled', updated_at=NOW() WHERE id=$1`
	res, err := r.gw.DB().ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

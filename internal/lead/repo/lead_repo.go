package repo

import (
	"context"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/lead/entity"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/pkg/database"
)

var leads = database.Entity{
	Table:   "lead",
	Key:     "id",
	Columns: []string{"id", "first_name", "email", "status", "created_at"},
}

type LeadRepo struct {
	gw *database.Gateway
}

func NewLeadRepo(gw *database.Gateway) *LeadRepo {
	return &LeadRepo{gw: gw}
}

// EnsureTable creates the lead table if it does not already exist.
// Emails are not unique: the same prospect may submit the form twice.
func (r *LeadRepo) EnsureTable(ctx context.Context) error {
	const tbl = `
	CREATE TABLE IF NOT EXISTS lead (
		id varchar(32) PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		status varchar(16) NOT NULL DEFAULT 'new',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	if _, err := r.gw.DB().ExecContext(ctx, tbl); err != nil {
		return err
	}

	const idx = `
	CREATE INDEX IF NOT EXISTS idx_lead_status ON lead (status);
	`
	if _, err := r.gw.DB().ExecContext(ctx, idx); err != nil {
		return err
	}
	return nil
}

func (r *LeadRepo) Create(ctx context.Context, fields database.Fields) (*entity.Lead, error) {
	return database.Create[entity.Lead](ctx, r.gw, leads, fields)
}

func (r *LeadRepo) List(ctx context.Context) ([]entity.Lead, error) {
	return database.FindMany[entity.Lead](ctx, r.gw, leads, nil)
}

func (r *LeadRepo) UpdateStatus(ctx context.Context, id string, status entity.Status) (*entity.Lead, error) {
	return database.Update[entity.Lead](ctx, r.gw, leads, id, database.Fields{"status": string(status)})
}

package repo

import (
	"context"
	"database/sql"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/company/entity"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/pkg/database"
)

var companies = database.Entity{
	Table:   "company_creation_data",
	Key:     "user_id",
	Columns: []string{"user_id", "company_type", "company_name", "step", "review_note", "created_at", "updated_at"},
}

// Repo is the repository for company creation data backed by PostgreSQL.
type Repo struct {
	gw *database.Gateway
}

func NewRepo(gw *database.Gateway) *Repo {
	return &Repo{gw: gw}
}

// EnsureTable ensures the company_creation_data table and its index exist.
func (r *Repo) EnsureTable(ctx context.Context) error {
	db := r.gw.DB()
	var tblName sql.NullString
	if err := db.QueryRowContext(ctx, "SELECT to_regclass('public.company_creation_data')").Scan(&tblName); err != nil {
		return err
	}
	if !tblName.Valid {
		createTable := `CREATE TABLE company_creation_data (
			user_id TEXT PRIMARY KEY REFERENCES users(id),
			company_type varchar(8) NOT NULL DEFAULT '',
			company_name TEXT NOT NULL DEFAULT '',
			step varchar(16) NOT NULL DEFAULT 'informations',
			review_note TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
		if _, err := db.ExecContext(ctx, createTable); err != nil {
			return err
		}
	}

	var idxName sql.NullString
	if err := db.QueryRowContext(ctx, "SELECT to_regclass('public.idx_company_creation_data_step')").Scan(&idxName); err != nil {
		return err
	}
	if !idxName.Valid {
		if _, err := db.ExecContext(ctx, `CREATE INDEX idx_company_creation_data_step ON company_creation_data (step)`); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, userID string) (*entity.CompanyCreationData, error) {
	return database.FindOne[entity.CompanyCreationData](ctx, r.gw, companies, database.Fields{"user_id": userID})
}

func (r *Repo) List(ctx context.Context, step entity.Step) ([]entity.CompanyCreationData, error) {
	var filter database.Fields
	if step != "" {
		filter = database.Fields{"step": string(step)}
	}
	return database.FindMany[entity.CompanyCreationData](ctx, r.gw, companies, filter)
}

// Save upserts the row of fields["user_id"]. When from is given, an existing
// row is only overwritten while its step is one of from; otherwise the error
// wraps sql.ErrNoRows.
func (r *Repo) Save(ctx context.Context, fields database.Fields, from ...entity.Step) (*entity.CompanyCreationData, error) {
	if len(from) == 0 {
		return database.Upsert[entity.CompanyCreationData](ctx, r.gw, companies, fields)
	}
	steps := make([]any, len(from))
	for i, s := range from {
		steps[i] = string(s)
	}
	return database.UpsertIf[entity.CompanyCreationData](ctx, r.gw, companies, fields, "step", steps...)
}

func (r *Repo) Update(ctx context.Context, userID string, fields database.Fields) (*entity.CompanyCreationData, error) {
	return database.Update[entity.CompanyCreationData](ctx, r.gw, companies, userID, fields)
}

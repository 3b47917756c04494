package repo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/lead/entity"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/pkg/database"
)

func TestLeadRepoCreateAndUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := NewLeadRepo(database.NewGateway(sqlx.NewDb(db, "postgres")))
	now := time.Now().UTC()
	cols := []string{"id", "first_name", "email", "status", "created_at"}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO lead (email, first_name, id) VALUES ($1, $2, $3) RETURNING id, first_name, email, status, created_at`)).
		WithArgs("alice@example.com", "Alice", "42").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("42", "Alice", "alice@example.com", "new", now))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE lead SET status = $1 WHERE id = $2 RETURNING id, first_name, email, status, created_at`)).
		WithArgs("contacted", "42").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("42", "Alice", "alice@example.com", "contacted", now))

	l, err := r.Create(context.Background(), database.Fields{"id": "42", "first_name": "Alice", "email": "alice@example.com"})
	require.NoError(t, err)
	require.Equal(t, entity.StatusNew, l.Status)

	l, err = r.UpdateStatus(context.Background(), "42", entity.StatusContacted)
	require.NoError(t, err)
	require.Equal(t, entity.StatusContacted, l.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

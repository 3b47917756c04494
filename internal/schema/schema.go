package schema

import (
	"context"
	"fmt"

	companyrepo "github.com/declic87/declic-entrepreneurs-saas-sub003/internal/company/repo"
	leadrepo "github.com/declic87/declic-entrepreneurs-saas-sub003/internal/lead/repo"
	userrepo "github.com/declic87/declic-entrepreneurs-saas-sub003/internal/user/repo"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/pkg/database"
)

type ensurer interface {
	EnsureTable(ctx context.Context) error
}

// Ensure creates every missing table and index. Users come first since
// company_creation_data references them.
func Ensure(ctx context.Context, gw *database.Gateway) error {
	steps := []struct {
		name string
		repo ensurer
	}{
		{"users", userrepo.NewUserRepo(gw)},
		{"lead", leadrepo.NewLeadRepo(gw)},
		{"company_creation_data", companyrepo.NewRepo(gw)},
	}
	for _, s := range steps {
		if err := s.repo.EnsureTable(ctx); err != nil {
			return fmt.Errorf("ensure %s: %w", s.name, err)
		}
	}
	return nil
}

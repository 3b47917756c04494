package lead

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/lead/entity"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/pkg/database"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/pkg/utilities"
)

var (
	ErrNotFound      = errors.New("lead not found")
	ErrInvalidStatus = errors.New("invalid lead status")
)

// Repository is the storage contract of the lead service.
type Repository interface {
	Create(ctx context.Context, fields database.Fields) (*entity.Lead, error)
	List(ctx context.Context) ([]entity.Lead, error)
	UpdateStatus(ctx context.Context, id string, status entity.Status) (*entity.Lead, error)
}

// Service is the application façade over lead storage.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Create stores a new lead; the status is left to the store default.
func (s *Service) Create(ctx context.Context, firstName, email string) (*entity.Lead, error) {
	return s.repo.Create(ctx, database.Fields{
		"id":         utilities.NewSnowflakeID(),
		"first_name": firstName,
		"email":      email,
	})
}

// GetAllLeads returns every lead, unordered.
func (s *Service) GetAllLeads(ctx context.Context) ([]entity.Lead, error) {
	return s.repo.List(ctx)
}

// UpdateStatus sets the status of lead id.
func (s *Service) UpdateStatus(ctx context.Context, id string, status entity.Status) (*entity.Lead, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	l, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, id, err)
		}
		return nil, err
	}
	return l, nil
}

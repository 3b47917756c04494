package company

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/company/entity"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/pkg/database"
)

var (
	ErrNotFound           = errors.New("company data not found")
	ErrInvalidTransition  = errors.New("invalid workflow transition")
	ErrInvalidDecision    = errors.New("invalid review decision")
	ErrInvalidCompanyType = errors.New("invalid company type")
	ErrInvalidStep        = errors.New("invalid workflow step")
)

// Decision is an expert's verdict on a file under review.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*entity.CompanyCreationData, error)
	List(ctx context.Context, step entity.Step) ([]entity.CompanyCreationData, error)
	Save(ctx context.Context, fields database.Fields, from ...entity.Step) (*entity.CompanyCreationData, error)
	Update(ctx context.Context, userID string, fields database.Fields) (*entity.CompanyCreationData, error)
}

// Service drives the incorporation workflow. There is one row per user.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: time.Now}
}

func (s *Service) Get(ctx context.Context, userID string) (*entity.CompanyCreationData, error) {
	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns the files at step, or every file when step is empty.
func (s *Service) List(ctx context.Context, step entity.Step) ([]entity.CompanyCreationData, error) {
	if step != "" && !step.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStep, step)
	}
	return s.repo.List(ctx, step)
}

// SaveInformation records the company attributes chosen by the client and
// moves the file to the documents step. Files already sent to review are locked.
func (s *Service) SaveInformation(ctx context.Context, userID, companyType, companyName string) (*entity.CompanyCreationData, error) {
	companyType = strings.ToUpper(strings.TrimSpace(companyType))
	if !slices.Contains(entity.CompanyTypes, companyType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCompanyType, companyType)
	}
	existing, err := s.Get(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Step != entity.StepInformations && existing.Step != entity.StepDocuments {
		return nil, fmt.Errorf("%w: file is at %s", ErrInvalidTransition, existing.Step)
	}
	// the step guard is repeated in the write so a concurrent Submit wins
	c, err := s.repo.Save(ctx, database.Fields{
		"user_id":      userID,
		"company_type": companyType,
		"company_name": strings.TrimSpace(companyName),
		"step":         string(entity.StepDocuments),
		"updated_at":   s.now().UTC(),
	}, entity.StepInformations, entity.StepDocuments)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: file left the editable steps", ErrInvalidTransition)
		}
		return nil, err
	}
	return c, nil
}

// Submit sends the file to expert review.
func (s *Service) Submit(ctx context.Context, userID string) (*entity.CompanyCreationData, error) {
	return s.advance(ctx, userID, entity.StepDocuments, entity.StepReview, "")
}

// Review applies an expert decision to a file under review: approval opens
// the signature step, rejection sends the file back to documents with note.
func (s *Service) Review(ctx context.Context, userID string, d Decision, note string) (*entity.CompanyCreationData, error) {
	switch d {
	case DecisionApprove:
		return s.advance(ctx, userID, entity.StepReview, entity.StepSignature, strings.TrimSpace(note))
	case DecisionReject:
		if strings.TrimSpace(note) == "" {
			return nil, fmt.Errorf("%w: rejection needs a note", ErrInvalidDecision)
		}
		return s.advance(ctx, userID, entity.StepReview, entity.StepDocuments, strings.TrimSpace(note))
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecision, d)
	}
}

// Complete marks a signed file as registered.
func (s *Service) Complete(ctx context.Context, userID string) (*entity.CompanyCreationData, error) {
	return s.advance(ctx, userID, entity.StepSignature, entity.StepRegistered, "")
}

func (s *Service) advance(ctx context.Context, userID string, from, to entity.Step, note string) (*entity.CompanyCreationData, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.Step != from {
		return nil, fmt.Errorf("%w: %s -> %s from %s", ErrInvalidTransition, from, to, c.Step)
	}
	updated, err := s.repo.Update(ctx, userID, database.Fields{
		"step":        string(to),
		"review_note": note,
		"updated_at":  s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

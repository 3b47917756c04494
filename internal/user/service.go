package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/internal/user/entity"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/pkg/database"
	"github.com/declic87/declic-entrepreneurs-saas-sub003/pkg/utilities"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Repository is the storage contract of the user service.
type Repository interface {
	Create(ctx context.Context, fields database.Fields) (*entity.Profile, error)
	GetBySubject(ctx context.Context, subject string) (*entity.Profile, error)
	GetRoleBySubject(ctx context.Context, subject string) (entity.Role, error)
	List(ctx context.Context, role entity.Role) ([]entity.Profile, error)
	GetCredentials(ctx context.Context, email string) (*entity.Credentials, error)
	ResetLoginSuccess(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
}

// UserService resolves profiles for session subjects and authenticates users.
type UserService struct {
	repo   Repository
	hasher PasswordHasher
}

func NewUserService(r Repository, hasher PasswordHasher) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	return &UserService{repo: r, hasher: hasher}
}

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrDisabled        = errors.New("user disabled")
	ErrBadCredentials  = errors.New("invalid credentials")
	ErrInvalidRole     = errors.New("invalid role")
	ErrEmailTaken      = errors.New("email already registered")
	ErrPasswordTooLong = errors.New("password longer than 72 bytes")
)

// bcrypt reads at most 72 bytes; longer passwords are refused, not truncated.
const maxPasswordBytes = 72

// GetProfile returns the profile linked to subject.
func (s *UserService) GetProfile(ctx context.Context, subject string) (*entity.Profile, error) {
	p, err := s.repo.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetRole returns the raw role stored for subject. The value is not checked
// against the closed set; callers decide what an unknown role means.
func (s *UserService) GetRole(ctx context.Context, subject string) (entity.Role, error) {
	role, err := s.repo.GetRoleBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return role, nil
}

// AuthenticatePassword checks email + password and returns the session
// subject of the user. Unknown emails and wrong passwords are indistinguishable.
func (s *UserService) AuthenticatePassword(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", ErrBadCredentials
	}
	c, err := s.repo.GetCredentials(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrBadCredentials
		}
		return "", err
	}
	if c.PasswordHash == nil || *c.PasswordHash == "" || !s.hasher.Verify(*c.PasswordHash, password) {
		return "", ErrBadCredentials
	}
	if c.Status == entity.StatusDisabled {
		return "", ErrDisabled
	}
	if err := s.repo.ResetLoginSuccess(ctx, c.ID); err != nil {
		return "", err
	}
	return c.AuthSubject, nil
}

// NewUser is the input of CreateUser.
type NewUser struct {
	Email     string
	FirstName string
	LastName  string
	Role      string
	Password  string
}

// CreateUser provisions a user with a fresh session subject.
func (s *UserService) CreateUser(ctx context.Context, in NewUser) (*entity.Profile, error) {
	role, ok := entity.ParseRole(in.Role)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, in.Role)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, errors.New("email required")
	}
	fields := database.Fields{
		"id":           utilities.NewSnowflakeID(),
		"auth_subject": utilities.NewKSUID(),
		"role":         string(role),
		"first_name":   strings.TrimSpace(in.FirstName),
		"last_name":    strings.TrimSpace(in.LastName),
		"email":        email,
		"status":       entity.StatusActive,
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hash
	}
	p, err := s.repo.Create(ctx, fields)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrEmailTaken, email)
		}
		return nil, err
	}
	return p, nil
}

// List returns profiles, optionally restricted to role.
func (s *UserService) List(ctx context.Context, role entity.Role) ([]entity.Profile, error) {
	return s.repo.List(ctx, role)
}

// Deactivate disables a user so later logins fail.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

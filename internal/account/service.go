package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"golang.org/x/crypto/bcrypt"

	"github.com/signcore/service-auth-go/internal/account/entity"
	accountrepo "github.com/signcore/service-auth-go/internal/account/repo"
)

// PasswordHasher defines the minimal hashing interface (abstract so we can
// swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation. Cost defaults to 10 when unset.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = 10
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

// Store is the slice of the account repository the service depends on.
type Store interface {
	Create(ctx context.Context, a *entity.Account) (int64, error)
	GetByID(ctx context.Context, id int64) (*entity.Account, error)
	UpdateProfile(ctx context.Context, id int64, name, email string) error
	List(ctx context.Context) ([]*entity.Account, error)
}

var (
	ErrValidation = errors.New("validation failed")
	ErrEmailTaken = errors.New("email already exists")
	ErrNotFound   = errors.New("account not found")
)

// Service orchestrates registration and profile flows.
type Service struct {
	store  Store
	hasher PasswordHasher
}

func NewService(store Store, hasher PasswordHasher) *Service {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 10}
	}
	return &Service{store: store, hasher: hasher}
}

// SignupInput is the registration payload.
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

// Validate runs validation rules on the signup payload.
func (in SignupInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required),
		validation.Field(&in.UserType, validation.Required,
			validation.In(string(entity.UserTypeUser), string(entity.UserTypeAdmin))),
	)
}

// Signup hashes the password and creates the account. The store's unique
// constraint decides conflicts; concurrent signups with the same email
// resolve to exactly one winner there.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*entity.Account, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	a := &entity.Account{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		UserType:     entity.UserType(in.UserType),
	}
	if _, err := s.store.Create(ctx, a); err != nil {
		if errors.Is(err, accountrepo.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return a, nil
}

// UpdateProfileInput carries the mutable profile fields.
type UpdateProfileInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (in UpdateProfileInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Email, validation.Required, is.Email),
	)
}

// UpdateProfile mutates name and email of an existing account.
func (s *Service) UpdateProfile(ctx context.Context, id int64, in UpdateProfileInput) error {
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	err := s.store.UpdateProfile(ctx, id, strings.TrimSpace(in.Name), strings.ToLower(strings.TrimSpace(in.Email)))
	switch {
	case errors.Is(err, accountrepo.ErrDuplicateEmail):
		return ErrEmailTaken
	case errors.Is(err, accountrepo.ErrNotFound):
		return ErrNotFound
	}
	return err
}

// Profile returns the account for id.
func (s *Service) Profile(ctx context.Context, id int64) (*entity.Account, error) {
	a, err := s.store.GetByID(ctx, id)
	if errors.Is(err, accountrepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return a, err
}

// ListAccounts returns every account. Callers are expected to gate this
// behind the admin role.
func (s *Service) ListAccounts(ctx context.Context) ([]*entity.Account, error) {
	return s.store.List(ctx)
}

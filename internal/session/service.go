package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"golang.org/x/crypto/bcrypt"

	"github.com/signcore/service-auth-go/internal/account/entity"
	accountrepo "github.com/signcore/service-auth-go/internal/account/repo"
)

var (
	// ErrBadCredentials is returned for both unknown emails and wrong
	// passwords so a caller cannot tell which one happened.
	ErrBadCredentials = errors.New("invalid email or password")
	ErrValidation     = errors.New("validation failed")
	ErrAccountGone    = errors.New("account not found")
)

// AccountStore is the slice of the account repository sign-in needs.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	GetByID(ctx context.Context, id int64) (*entity.Account, error)
}

// RevocationStore tracks signed-out jtis.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Auditor records security-relevant actions. Implementations must swallow
// their own failures. The action string may embed untrusted user input
// (e.g. the attempted email on a failed sign-in); listing endpoints render
// it back to admins, so anything displaying entries must escape it.
type Auditor interface {
	Record(ctx context.Context, userID *int64, action string)
}

// PasswordVerifier compares a candidate password against a stored hash.
type PasswordVerifier interface {
	Verify(hash, pw string) bool
}

type bcryptVerifier struct{}

func (bcryptVerifier) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Service validates credentials, mints and verifies tokens, and audits
// every security-relevant action.
type Service struct {
	accounts AccountStore
	revoked  RevocationStore
	audit    Auditor
	issuer   *Issuer
	hasher   PasswordVerifier
}

func NewService(accounts AccountStore, revoked RevocationStore, auditor Auditor, issuer *Issuer, hasher PasswordVerifier) *Service {
	if hasher == nil {
		hasher = bcryptVerifier{}
	}
	return &Service{accounts: accounts, revoked: revoked, audit: auditor, issuer: issuer, hasher: hasher}
}

// SignInInput is the credential payload.
type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in SignInInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required),
		validation.Field(&in.Password, validation.Required),
	)
}

// SignIn checks the credentials and mints a token. Every attempt, success
// or failure, leaves exactly one audit entry.
func (s *Service) SignIn(ctx context.Context, in SignInInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	// Accounts store emails lowercased and trimmed; look up in the same form
	// so the credentials that registered an account also sign it in.
	email := strings.ToLower(strings.TrimSpace(in.Email))
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, accountrepo.ErrNotFound) {
			s.audit.Record(ctx, nil, "failed sign-in attempt for "+email)
			return "", ErrBadCredentials
		}
		return "", err
	}
	if !s.hasher.Verify(a.PasswordHash, in.Password) {
		s.audit.Record(ctx, &a.ID, "failed sign-in attempt: wrong password")
		return "", ErrBadCredentials
	}
	token, err := s.issuer.Issue(a.ID, a.Name)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	s.audit.Record(ctx, &a.ID, "signed in")
	return token, nil
}

// Authenticate verifies a presented token and rejects revoked ones. A
// storage failure during the revocation check denies access rather than
// letting a possibly revoked token through.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.issuer.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// SignOut revokes the presented token and audits the event. The token would
// stay cryptographically valid until expiry, so the revocation insert is the
// part that actually ends the session.
func (s *Service) SignOut(ctx context.Context, claims *Claims) error {
	if err := s.revoked.Revoke(ctx, claims.ID, claims.AccountID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	s.audit.Record(ctx, &claims.AccountID, "signed out")
	return nil
}

// SelfData returns the authenticated account's own record and audits the view.
func (s *Service) SelfData(ctx context.Context, accountID int64) (*entity.Account, error) {
	a, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, accountrepo.ErrNotFound) {
			return nil, ErrAccountGone
		}
		return nil, err
	}
	s.audit.Record(ctx, &a.ID, "viewed own data")
	return a, nil
}

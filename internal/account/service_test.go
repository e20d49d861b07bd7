package account

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/signcore/service-auth-go/internal/account/entity"
	accountrepo "github.com/signcore/service-auth-go/internal/account/repo"
)

type fakeStore struct {
	created   []*entity.Account
	createErr error
	updateErr error
	getOut    *entity.Account
	getErr    error
	listOut   []*entity.Account
	listErr   error
}

func (f *fakeStore) Create(_ context.Context, a *entity.Account) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	a.ID = int64(len(f.created) + 1)
	f.created = append(f.created, a)
	return a.ID, nil
}

func (f *fakeStore) GetByID(_ context.Context, _ int64) (*entity.Account, error) {
	return f.getOut, f.getErr
}

func (f *fakeStore) UpdateProfile(_ context.Context, _ int64, _, _ string) error {
	return f.updateErr
}

func (f *fakeStore) List(_ context.Context) ([]*entity.Account, error) {
	return f.listOut, f.listErr
}

func fastHasher() PasswordHasher { return BcryptHasher{Cost: bcrypt.MinCost} }

func TestSignup_Success(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, fastHasher())

	a, err := svc.Signup(context.Background(), SignupInput{
		Name: "Ann", Email: " Ann@X.com ", Password: "Secret1", UserType: "user",
	})
	require.NoError(t, err)
	require.Len(t, store.created, 1)

	assert.Equal(t, "ann@x.com", a.Email, "email is normalized before storage")
	assert.Equal(t, entity.UserTypeUser, a.UserType)
	assert.NotEqual(t, "Secret1", a.PasswordHash, "plaintext must never be stored")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("Secret1")))
}

func TestSignup_Validation(t *testing.T) {
	svc := NewService(&fakeStore{}, fastHasher())

	cases := map[string]SignupInput{
		"missing name":     {Email: "a@x.com", Password: "p", UserType: "user"},
		"missing email":    {Name: "A", Password: "p", UserType: "user"},
		"missing password": {Name: "A", Email: "a@x.com", UserType: "user"},
		"missing userType": {Name: "A", Email: "a@x.com", Password: "p"},
		"bad email":        {Name: "A", Email: "not-an-email", Password: "p", UserType: "user"},
		"unknown userType": {Name: "A", Email: "a@x.com", Password: "p", UserType: "superadmin"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc := NewService(&fakeStore{createErr: accountrepo.ErrDuplicateEmail}, fastHasher())

	_, err := svc.Signup(context.Background(), SignupInput{
		Name: "Ann", Email: "ann@x.com", Password: "Secret1", UserType: "user",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignup_StorageError(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewService(&fakeStore{createErr: boom}, fastHasher())

	_, err := svc.Signup(context.Background(), SignupInput{
		Name: "Ann", Email: "ann@x.com", Password: "Secret1", UserType: "user",
	})
	assert.ErrorIs(t, err, boom)
}

func TestUpdateProfile(t *testing.T) {
	t.Run("maps duplicate email", func(t *testing.T) {
		svc := NewService(&fakeStore{updateErr: accountrepo.ErrDuplicateEmail}, fastHasher())
		err := svc.UpdateProfile(context.Background(), 1, UpdateProfileInput{Name: "A", Email: "a@x.com"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("maps not found", func(t *testing.T) {
		svc := NewService(&fakeStore{updateErr: accountrepo.ErrNotFound}, fastHasher())
		err := svc.UpdateProfile(context.Background(), 1, UpdateProfileInput{Name: "A", Email: "a@x.com"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		svc := NewService(&fakeStore{}, fastHasher())
		err := svc.UpdateProfile(context.Background(), 1, UpdateProfileInput{Name: "", Email: "a@x.com"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestProfile_NotFound(t *testing.T) {
	svc := NewService(&fakeStore{getErr: accountrepo.ErrNotFound}, fastHasher())
	_, err := svc.Profile(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

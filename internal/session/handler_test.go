package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/signcore/service-auth-go/internal/account/entity"
)

func TestHandler_SignIn(t *testing.T) {
	ann := &entity.Account{ID: 7, Name: "Ann", Email: "ann@x.com",
		PasswordHash: hashOf(t, "Secret1"), UserType: entity.UserTypeUser}
	accounts := &fakeAccounts{byEmail: map[string]*entity.Account{"ann@x.com": ann}}
	svc := newTestService(t, accounts, nil, &recordingAuditor{})
	h := NewHandler(svc, zap.NewNop().Sugar())

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.SignIn(rec, req)
		return rec
	}

	t.Run("success returns token", func(t *testing.T) {
		rec := post(`{"email":"ann@x.com","password":"Secret1"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NotEmpty(t, body["token"])

		claims, err := svc.issuer.Verify(body["token"])
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.AccountID)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := post(`{"email":"ann@x.com","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email matches wrong password response", func(t *testing.T) {
		wrongPw := post(`{"email":"ann@x.com","password":"wrong"}`)
		unknown := post(`{"email":"ghost@x.com","password":"Secret1"}`)
		assert.Equal(t, wrongPw.Code, unknown.Code)
		assert.JSONEq(t, wrongPw.Body.String(), unknown.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := post(`{"email":"ann@x.com"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := post(`{`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_SignOutAndSelf(t *testing.T) {
	ann := &entity.Account{ID: 7, Name: "Ann", Email: "ann@x.com",
		PasswordHash: hashOf(t, "Secret1"), UserType: entity.UserTypeUser}
	accounts := &fakeAccounts{
		byEmail: map[string]*entity.Account{"ann@x.com": ann},
		byID:    map[int64]*entity.Account{7: ann},
	}
	auditor := &recordingAuditor{}
	svc := newTestService(t, accounts, &fakeRevocations{}, auditor)
	h := NewHandler(svc, zap.NewNop().Sugar())

	token, err := svc.issuer.Issue(7, "Ann")
	require.NoError(t, err)

	do := func(method, path string, handler http.HandlerFunc) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		svc.RequireAuth(handler).ServeHTTP(rec, req)
		return rec
	}

	t.Run("self returns own account without hash", func(t *testing.T) {
		rec := do(http.MethodGet, "/users", h.Self)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ann@x.com", body["email"])
		assert.NotContains(t, rec.Body.String(), ann.PasswordHash)
	})

	t.Run("logout revokes and later requests fail", func(t *testing.T) {
		rec := do(http.MethodPost, "/logout", h.SignOut)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = do(http.MethodGet, "/users", h.Self)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/model"
)

type fakeUsers map[int64]*model.User

func (f fakeUsers) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, apperror.NotFound("user", id)
}

// brokenUsers fails every lookup the way a dead database would.
type brokenUsers struct{}

func (brokenUsers) GetUserByID(context.Context, int64) (*model.User, error) {
	return nil, errors.New("sqlite: database is locked")
}

// echoUser writes the caller's id, or 0 when anonymous.
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	var id int64
	if u, ok := UserFromContext(r.Context()); ok {
		id = u.ID
	}
	json.NewEncoder(w).Encode(map[string]int64{"id": id})
})

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	users := fakeUsers{1: {ID: 1, Account: "alice", Role: model.RoleUser}}
	h := RequireAuth(ts, users)(echoUser)

	token, err := ts.Generate(1)
	require.NoError(t, err)
	ghostToken, err := ts.Generate(404)
	require.NoError(t, err)

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), decodeBody(t, rec)["id"])
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, float64(apperror.CodeNotLogin), decodeBody(t, rec)["code"])
	})

	t.Run("deleted user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: ghostToken})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	ts := newTestTokenService(t)
	users := fakeUsers{1: {ID: 1, Role: model.RoleUser}}
	h := OptionalAuth(ts, users)(echoUser)

	t.Run("anonymous passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(0), decodeBody(t, rec)["id"])
	})

	t.Run("bad token is anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(0), decodeBody(t, rec)["id"])
	})

	t.Run("valid token resolves user", func(t *testing.T) {
		token, err := ts.Generate(1)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, float64(1), decodeBody(t, rec)["id"])
	})
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(model.RoleAdmin)(echoUser)

	tests := []struct {
		name     string
		user     *model.User
		wantCode int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"plain user", &model.User{ID: 1, Role: model.RoleUser}, http.StatusForbidden},
		{"admin", &model.User{ID: 2, Role: model.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				req = req.WithContext(ContextWithUser(req.Context(), tt.user))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(req))

	req.Header.Set("Authorization", "bearer abc")
	assert.Equal(t, "abc", TokenFromRequest(req))

	req.AddCookie(&http.Cookie{Name: CookieName, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", TokenFromRequest(req), "cookie wins over header")
}

func TestAuth_StoreFailureIsSystemError(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Generate(1)
	require.NoError(t, err)

	for name, mw := range map[string]func(http.Handler) http.Handler{
		"required": RequireAuth(ts, brokenUsers{}),
		"optional": OptionalAuth(ts, brokenUsers{}),
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
			rec := httptest.NewRecorder()
			mw(echoUser).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, float64(apperror.CodeSystem), decodeBody(t, rec)["code"])
		})
	}
}

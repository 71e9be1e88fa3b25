package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/auth"
	"github.com/sakif/wisdom-share/internal/model"
)

func newTestAuthService(t *testing.T, store *fakeStore, admins ...string) *AuthService {
	t.Helper()
	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	require.NoError(t, err)
	return NewAuthService(store, ts, auth.NewPasswordServiceForTest(bcrypt.MinCost), admins, discardLogger())
}

func register(account, password string) model.UserRegisterRequest {
	return model.UserRegisterRequest{Account: account, Password: password, CheckPassword: password}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestAuthService(t, store, "root")

	id, err := svc.Register(ctx, register("alice", "password1"))
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	saved := store.users[id]
	assert.Equal(t, model.RoleUser, saved.Role)
	assert.NotEqual(t, "password1", saved.PasswordHash)

	rootID, err := svc.Register(ctx, register("root", "password1"))
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, store.users[rootID].Role)
}

func TestRegister_Validation(t *testing.T) {
	store := newFakeStore()
	svc := newTestAuthService(t, store)
	_, err := svc.Register(context.Background(), register("taken", "password1"))
	require.NoError(t, err)

	tests := []struct {
		name string
		req  model.UserRegisterRequest
		want error
	}{
		{"empty", model.UserRegisterRequest{}, apperror.ErrValidation},
		{"short account", register("abc", "password1"), apperror.ErrValidation},
		{"github prefix", register("gh_octo", "password1"), apperror.ErrValidation},
		{"short password", register("alice", "short"), apperror.ErrValidation},
		{"too long password", register("alice", strings.Repeat("p", 73)), apperror.ErrValidation},
		{"mismatch", model.UserRegisterRequest{Account: "alice", Password: "password1", CheckPassword: "password2"}, apperror.ErrValidation},
		{"duplicate", register("taken", "password1"), apperror.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestAuthService(t, store)
	id, err := svc.Register(ctx, register("alice", "password1"))
	require.NoError(t, err)

	res, err := svc.Login(ctx, model.UserLoginRequest{Account: "alice", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, id, res.User.ID)

	subject, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, id, subject)

	_, err = svc.Login(ctx, model.UserLoginRequest{Account: "alice", Password: "wrong-pass"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Login(ctx, model.UserLoginRequest{Account: "nobody", Password: "password1"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Login(ctx, model.UserLoginRequest{})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestLogin_GitHubAccountHasNoPassword(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestAuthService(t, store)

	_, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 9, Login: "octo"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, model.UserLoginRequest{Account: "gh_octo", Password: "anything"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestLoginOrRegisterGitHub(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestAuthService(t, store, "gh_boss")

	first, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 42, Login: "octocat", Email: "old@github.com"})
	require.NoError(t, err)
	assert.Equal(t, "gh_octocat", first.User.Account)
	assert.Equal(t, "octocat", first.User.Name, "login is the fallback name")
	assert.Equal(t, model.RoleUser, first.User.Role)
	assert.NotEmpty(t, first.Token)

	second, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 42, Login: "octocat", Name: "Octo Cat", Email: "new@github.com"})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "new@github.com", second.User.Email)
	assert.Equal(t, "Octo Cat", second.User.Name)

	boss, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 7, Login: "boss"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, boss.User.Role)

	_, err = svc.LoginOrRegisterGitHub(ctx, nil)
	assert.Error(t, err)
}

func TestGetUserByID(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestAuthService(t, store)
	alice := store.seedUser("alice", model.RoleUser)

	got, err := svc.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Account)

	_, err = svc.GetUserByID(ctx, 0)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestAuthService(t, newFakeStore())
	_, err := svc.ValidateToken("this.is.garbage")
	assert.Error(t, err)
}

package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/haierkeys/jot-sync-service/internal/dao"
	"github.com/haierkeys/jot-sync-service/internal/dto"
	"github.com/haierkeys/jot-sync-service/pkg/app"
	"github.com/haierkeys/jot-sync-service/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService(t *testing.T, registerEnabled bool) (UserService, app.TokenManager) {
	t.Helper()
	cfg := dao.DatabaseConfig{Type: "sqlite", Path: filepath.Join(t.TempDir(), "auth.db"), AutoMigrate: true}
	db, err := dao.NewDBEngineWithConfig(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	tm := app.NewTokenManager(app.TokenConfig{SecretKey: "test"})
	repo := dao.NewUserRepository(dao.New(db, cfg, nil))
	return NewUserService(repo, tm, nil, &ServiceConfig{User: UserServiceConfig{RegisterIsEnable: registerEnabled}}), tm
}

func TestUserService_RegisterDisabled(t *testing.T) {
	svc, _ := newTestUserService(t, false)
	_, err := svc.Register(context.Background(), &dto.UserCreateRequest{
		Email: "a@example.com", Username: "alice", Password: "pw", ConfirmPassword: "pw",
	})
	assert.Equal(t, code.ErrorUserRegisterIsDisable, err)
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	svc, tm := newTestUserService(t, true)
	ctx := context.Background()

	u, err := svc.Register(ctx, &dto.UserCreateRequest{
		Email: "a@example.com", Username: "alice", Password: "secret", ConfirmPassword: "secret",
	})
	require.NoError(t, err)
	assert.NotZero(t, u.UID)
	assert.NotEmpty(t, u.Token)

	_, err = svc.Register(ctx, &dto.UserCreateRequest{
		Email: "A@example.com", Username: "alice2", Password: "x", ConfirmPassword: "x",
	})
	assert.Equal(t, code.ErrorUserEmailAlreadyExists, err)

	_, err = svc.Register(ctx, &dto.UserCreateRequest{
		Email: "b@example.com", Username: "alice", Password: "x", ConfirmPassword: "x",
	})
	assert.Equal(t, code.ErrorUserAlreadyExists, err)

	_, err = svc.Register(ctx, &dto.UserCreateRequest{
		Email: "c@example.com", Username: "no", Password: "x", ConfirmPassword: "x",
	})
	assert.Equal(t, code.ErrorUserUsernameNotValid, err)

	logged, err := svc.Login(ctx, &dto.UserLoginRequest{Credentials: "a@example.com", Password: "secret"}, "127.0.0.1")
	require.NoError(t, err)
	claims, err := tm.Parse(logged.Token)
	require.NoError(t, err)
	assert.Equal(t, u.UID, claims.UID)

	_, err = svc.Login(ctx, &dto.UserLoginRequest{Credentials: " A@Example.com ", Password: "secret"}, "")
	assert.NoError(t, err)

	_, err = svc.Login(ctx, &dto.UserLoginRequest{Credentials: "alice", Password: "wrong"}, "")
	assert.Equal(t, code.ErrorUserLoginPasswordFailed, err)

	_, err = svc.Login(ctx, &dto.UserLoginRequest{Credentials: "nobody", Password: "secret"}, "")
	assert.Equal(t, code.ErrorUserLoginPasswordFailed, err)

	info, err := svc.GetInfo(ctx, u.UID)
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Username)

	_, err = svc.GetInfo(ctx, 999)
	assert.Equal(t, code.ErrorUserNotFound, err)

	uids, err := svc.GetAllUIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{u.UID}, uids)
}

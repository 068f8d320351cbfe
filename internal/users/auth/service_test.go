// Copyright (c) 2026 Tribuna. All rights reserved.

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribuna-io/tribuna/internal/platform/apperr"
	"github.com/tribuna-io/tribuna/internal/platform/sec"
	"github.com/tribuna-io/tribuna/internal/users/auth"
)

// fakeUserRepository is an in-memory stand-in for the PostgreSQL repository.
type fakeUserRepository struct {
	users map[string]*auth.User // keyed by ID
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]*auth.User{}}
}

func (f *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepository) List(_ context.Context, filter auth.Filter, limit, offset int) ([]*auth.User, int, error) {
	matches := []*auth.User{}
	for _, user := range f.users {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		clone := *user
		matches = append(matches, &clone)
	}
	return matches, len(matches), nil
}

func (f *fakeUserRepository) Update(_ context.Context, user *auth.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	user, ok := f.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.PasswordHash = newHash
	return nil
}

func (f *fakeUserRepository) SoftDelete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(f.users, id)
	return nil
}

// fakeSessionRepository is an in-memory stand-in for the Redis repository.
type fakeSessionRepository struct {
	sessions map[string]*auth.Session // keyed by token hash
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{sessions: map[string]*auth.Session{}}
}

func (f *fakeSessionRepository) Create(_ context.Context, session *auth.Session) error {
	clone := *session
	f.sessions[session.TokenHash] = &clone
	return nil
}

func (f *fakeSessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	session, ok := f.sessions[tokenHash]
	if !ok {
		return nil, apperr.NotFound("Session")
	}
	clone := *session
	return &clone, nil
}

func (f *fakeSessionRepository) Revoke(_ context.Context, tokenHash string) error {
	delete(f.sessions, tokenHash)
	return nil
}

func (f *fakeSessionRepository) RevokeAll(_ context.Context, userID string) error {
	for hash, session := range f.sessions {
		if session.UserID == userID {
			delete(f.sessions, hash)
		}
	}
	return nil
}

func (f *fakeSessionRepository) countForUser(userID string) int {
	count := 0
	for _, session := range f.sessions {
		if session.UserID == userID {
			count++
		}
	}
	return count
}

// fakeTokenProvider returns a predictable access token.
type fakeTokenProvider struct{}

func (fakeTokenProvider) GenerateAccessToken(userID, username, role string, _ time.Duration) (string, error) {
	return "jwt-for-" + userID, nil
}

func newService(t *testing.T) (*auth.Service, *fakeUserRepository, *fakeSessionRepository) {
	t.Helper()
	userRepo := newFakeUserRepository()
	sessionRepo := newFakeSessionRepository()
	return auth.NewService(userRepo, sessionRepo, fakeTokenProvider{}), userRepo, sessionRepo
}

func register(t *testing.T, service *auth.Service, username, email string) *auth.User {
	t.Helper()
	user, err := service.Register(context.Background(), auth.RegisterInput{
		Username: username,
		Email:    email,
		Password: "secret123",
	})
	require.NoError(t, err)
	return user
}

/*
TestService_Register tests enrollment: validation, uniqueness, role defaults.
*/
func TestService_Register(t *testing.T) {
	t.Run("creates_regular_user", func(t *testing.T) {
		service, _, _ := newService(t)

		user := register(t, service, "ana", "ana@tribuna.app")

		assert.Equal(t, sec.RoleUser, user.Role)
		assert.NotEmpty(t, user.ID)
		// The hash must never equal the plain-text password.
		assert.NotEqual(t, "secret123", user.PasswordHash)
	})

	t.Run("duplicate_email_conflict", func(t *testing.T) {
		service, _, _ := newService(t)
		register(t, service, "ana", "ana@tribuna.app")

		_, err := service.Register(context.Background(), auth.RegisterInput{
			Username: "other",
			Email:    "ana@tribuna.app",
			Password: "secret123",
		})

		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("duplicate_username_conflict", func(t *testing.T) {
		service, _, _ := newService(t)
		register(t, service, "ana", "ana@tribuna.app")

		_, err := service.Register(context.Background(), auth.RegisterInput{
			Username: "ana",
			Email:    "other@tribuna.app",
			Password: "secret123",
		})

		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("short_password_rejected", func(t *testing.T) {
		service, _, _ := newService(t)

		_, err := service.Register(context.Background(), auth.RegisterInput{
			Username: "ana",
			Email:    "ana@tribuna.app",
			Password: "12345",
		})

		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("invalid_email_rejected", func(t *testing.T) {
		service, _, _ := newService(t)

		_, err := service.Register(context.Background(), auth.RegisterInput{
			Username: "ana",
			Email:    "not-an-email",
			Password: "secret123",
		})

		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}

/*
TestService_Login tests credential verification and the generic failure message.
*/
func TestService_Login(t *testing.T) {
	t.Run("login_by_email", func(t *testing.T) {
		service, _, _ := newService(t)
		register(t, service, "ana", "ana@tribuna.app")

		session, err := service.Login(context.Background(), auth.LoginInput{
			Login:    "ana@tribuna.app",
			Password: "secret123",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, session.AccessToken)
		assert.NotEmpty(t, session.RefreshToken)
		assert.Equal(t, "ana", session.User.Username)
	})

	t.Run("login_by_username", func(t *testing.T) {
		service, _, _ := newService(t)
		register(t, service, "ana", "ana@tribuna.app")

		_, err := service.Login(context.Background(), auth.LoginInput{
			Login:    "ana",
			Password: "secret123",
		})

		assert.NoError(t, err)
	})

	t.Run("wrong_password", func(t *testing.T) {
		service, _, _ := newService(t)
		register(t, service, "ana", "ana@tribuna.app")

		_, err := service.Login(context.Background(), auth.LoginInput{
			Login:    "ana",
			Password: "wrong-password",
		})

		require.Error(t, err)
		ae := apperr.As(err)
		assert.Equal(t, "UNAUTHORIZED", ae.Code)
		// Unknown-account and bad-password failures must be indistinguishable.
		assert.Equal(t, "Invalid login credentials", ae.Message)
	})

	t.Run("unknown_account", func(t *testing.T) {
		service, _, _ := newService(t)

		_, err := service.Login(context.Background(), auth.LoginInput{
			Login:    "ghost",
			Password: "secret123",
		})

		require.Error(t, err)
		ae := apperr.As(err)
		assert.Equal(t, "UNAUTHORIZED", ae.Code)
		assert.Equal(t, "Invalid login credentials", ae.Message)
	})
}

/*
TestService_RefreshSession tests the rotation mechanism: replayed tokens die.
*/
func TestService_RefreshSession(t *testing.T) {
	service, _, sessionRepo := newService(t)
	register(t, service, "ana", "ana@tribuna.app")

	session, err := service.Login(context.Background(), auth.LoginInput{
		Login:    "ana",
		Password: "secret123",
	})
	require.NoError(t, err)

	rotated, err := service.RefreshSession(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	// The old refresh token was revoked during rotation.
	_, err = service.RefreshSession(context.Background(), session.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// Exactly one live session remains.
	assert.Equal(t, 1, sessionRepo.countForUser(session.User.ID))
}

/*
TestService_Logout verifies single-session revocation and idempotency.
*/
func TestService_Logout(t *testing.T) {
	service, _, sessionRepo := newService(t)
	register(t, service, "ana", "ana@tribuna.app")

	session, err := service.Login(context.Background(), auth.LoginInput{
		Login:    "ana",
		Password: "secret123",
	})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), session.RefreshToken))
	assert.Equal(t, 0, sessionRepo.countForUser(session.User.ID))

	// A second logout with the same token still succeeds.
	assert.NoError(t, service.Logout(context.Background(), session.RefreshToken))
}

/*
TestService_ChangePassword verifies verification and the session purge.
*/
func TestService_ChangePassword(t *testing.T) {
	setup := func(t *testing.T) (*auth.Service, *fakeSessionRepository, *auth.User, *sec.AuthClaims) {
		t.Helper()
		service, _, sessionRepo := newService(t)
		user := register(t, service, "ana", "ana@tribuna.app")
		_, err := service.Login(context.Background(), auth.LoginInput{Login: "ana", Password: "secret123"})
		require.NoError(t, err)
		actor := &sec.AuthClaims{UserID: user.ID, Username: user.Username, Role: "user"}
		return service, sessionRepo, user, actor
	}

	t.Run("revokes_all_sessions", func(t *testing.T) {
		service, sessionRepo, user, actor := setup(t)

		err := service.ChangePassword(context.Background(), actor, "secret123", "newsecret456")

		require.NoError(t, err)
		assert.Equal(t, 0, sessionRepo.countForUser(user.ID))

		// The old password no longer works, the new one does.
		_, err = service.Login(context.Background(), auth.LoginInput{Login: "ana", Password: "secret123"})
		assert.Error(t, err)
		_, err = service.Login(context.Background(), auth.LoginInput{Login: "ana", Password: "newsecret456"})
		assert.NoError(t, err)
	})

	t.Run("wrong_current_password", func(t *testing.T) {
		service, sessionRepo, user, actor := setup(t)

		err := service.ChangePassword(context.Background(), actor, "wrong", "newsecret456")

		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
		// Existing sessions survive a failed attempt.
		assert.Equal(t, 1, sessionRepo.countForUser(user.ID))
	})
}

/*
TestService_UpdateProfile verifies self-service edits keep the role unchanged.
*/
func TestService_UpdateProfile(t *testing.T) {
	service, userRepo, _ := newService(t)
	user := register(t, service, "ana", "ana@tribuna.app")
	register(t, service, "bob", "bob@tribuna.app")
	actor := &sec.AuthClaims{UserID: user.ID, Username: user.Username, Role: "user"}

	t.Run("updates_username_and_email", func(t *testing.T) {
		updated, err := service.UpdateProfile(context.Background(), actor, auth.UpdateProfileInput{
			Username: "ana_v2",
			Email:    "ana.v2@tribuna.app",
		})

		require.NoError(t, err)
		assert.Equal(t, "ana_v2", updated.Username)
		assert.Equal(t, sec.RoleUser, updated.Role)
		assert.Equal(t, "ana_v2", userRepo.users[user.ID].Username)
	})

	t.Run("taken_username_conflict", func(t *testing.T) {
		_, err := service.UpdateProfile(context.Background(), actor, auth.UpdateProfileInput{
			Username: "bob",
			Email:    "ana.v2@tribuna.app",
		})

		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})
}

/*
TestService_AdminUpdateUser verifies the protected-admin rule on updates.
*/
func TestService_AdminUpdateUser(t *testing.T) {
	setup := func(t *testing.T) (*auth.Service, *fakeUserRepository, *fakeSessionRepository, *auth.User, *auth.User) {
		t.Helper()
		service, userRepo, sessionRepo := newService(t)
		member := register(t, service, "member", "member@tribuna.app")
		other := register(t, service, "chief", "chief@tribuna.app")
		userRepo.users[other.ID].Role = sec.RoleAdmin
		return service, userRepo, sessionRepo, member, other
	}
	adminActor := &sec.AuthClaims{UserID: "admin-1", Username: "admin", Role: "admin"}

	t.Run("non_admin_forbidden", func(t *testing.T) {
		service, _, _, member, _ := setup(t)
		actor := &sec.AuthClaims{UserID: "u1", Role: "user"}

		_, err := service.AdminUpdateUser(context.Background(), actor, member.ID, auth.AdminUpdateInput{})

		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("updates_regular_user", func(t *testing.T) {
		service, userRepo, _, member, _ := setup(t)

		updated, err := service.AdminUpdateUser(context.Background(), adminActor, member.ID, auth.AdminUpdateInput{
			Username: "renamed",
			Email:    "renamed@tribuna.app",
			Role:     sec.RoleUser,
		})

		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Username)
		assert.Equal(t, "renamed", userRepo.users[member.ID].Username)
	})

	t.Run("role_change_kills_sessions", func(t *testing.T) {
		service, _, sessionRepo, member, _ := setup(t)
		_, err := service.Login(context.Background(), auth.LoginInput{Login: "member", Password: "secret123"})
		require.NoError(t, err)

		_, err = service.AdminUpdateUser(context.Background(), adminActor, member.ID, auth.AdminUpdateInput{
			Username: "member",
			Email:    "member@tribuna.app",
			Role:     sec.RoleAdmin,
		})

		require.NoError(t, err)
		assert.Equal(t, 0, sessionRepo.countForUser(member.ID))
	})

	t.Run("admin_target_protected", func(t *testing.T) {
		service, userRepo, _, _, chief := setup(t)

		_, err := service.AdminUpdateUser(context.Background(), adminActor, chief.ID, auth.AdminUpdateInput{
			Username: "demoted",
			Email:    "chief@tribuna.app",
			Role:     sec.RoleUser,
		})

		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
		assert.Equal(t, sec.RoleAdmin, userRepo.users[chief.ID].Role)
	})
}

/*
TestService_AdminDeleteUser verifies the protected-admin rule on deletion.
*/
func TestService_AdminDeleteUser(t *testing.T) {
	adminActor := &sec.AuthClaims{UserID: "admin-1", Username: "admin", Role: "admin"}

	t.Run("deletes_regular_user", func(t *testing.T) {
		service, userRepo, _ := newService(t)
		member := register(t, service, "member", "member@tribuna.app")

		err := service.AdminDeleteUser(context.Background(), adminActor, member.ID)

		require.NoError(t, err)
		_, ok := userRepo.users[member.ID]
		assert.False(t, ok)
	})

	t.Run("admin_target_protected", func(t *testing.T) {
		service, userRepo, _ := newService(t)
		chief := register(t, service, "chief", "chief@tribuna.app")
		userRepo.users[chief.ID].Role = sec.RoleAdmin

		err := service.AdminDeleteUser(context.Background(), adminActor, chief.ID)

		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
		_, ok := userRepo.users[chief.ID]
		assert.True(t, ok)
	})
}

/*
TestService_DeleteAccount verifies self-deletion revokes every session.
*/
func TestService_DeleteAccount(t *testing.T) {
	service, userRepo, sessionRepo := newService(t)
	user := register(t, service, "ana", "ana@tribuna.app")
	_, err := service.Login(context.Background(), auth.LoginInput{Login: "ana", Password: "secret123"})
	require.NoError(t, err)
	actor := &sec.AuthClaims{UserID: user.ID, Username: user.Username, Role: "user"}

	err = service.DeleteAccount(context.Background(), actor)

	require.NoError(t, err)
	_, ok := userRepo.users[user.ID]
	assert.False(t, ok)
	assert.Equal(t, 0, sessionRepo.countForUser(user.ID))
}

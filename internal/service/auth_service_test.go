package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahirvonen/chatserver/internal/domain"
	"github.com/ahirvonen/chatserver/internal/errs"
)

var (
	adminCaller = domain.Principal{Username: "root", Role: domain.RoleAdmin}
	userCaller  = domain.Principal{Username: "alice", Role: domain.RoleUser}
)

func newAuth() (*AuthService, *fakeUsers) {
	users := newFakeUsers()
	return NewAuthService(users, "test-secret"), users
}

func register(t *testing.T, s *AuthService, username, password string) *domain.User {
	t.Helper()
	u, err := s.Register(context.Background(), adminCaller, RegisterInput{
		Role:     domain.RoleUser,
		Username: username,
		Password: password,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
	return u
}

func TestRegister_AdminGate(t *testing.T) {
	s, _ := newAuth()

	_, err := s.Register(context.Background(), userCaller, RegisterInput{Username: "bob", Password: "hunter22"})
	require.ErrorIs(t, err, errs.ErrForbidden)

	u, err := s.Register(context.Background(), adminCaller, RegisterInput{Username: "bob", Password: "hunter22"})
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, u.Role) // empty role defaults to user
	require.Equal(t, "bob", u.Nickname)       // nickname defaults to username
}

func TestRegister_UsernameTaken(t *testing.T) {
	s, _ := newAuth()
	register(t, s, "alice", "pw1pw1pw1")

	_, err := s.Register(context.Background(), adminCaller, RegisterInput{
		Username: "alice", Password: "other-pw",
	})
	require.ErrorIs(t, err, errs.ErrUsernameTaken)
}

func TestAuthenticate(t *testing.T) {
	s, _ := newAuth()
	register(t, s, "alice", "pw1pw1pw1")

	u, err := s.Authenticate(context.Background(), "alice", "pw1pw1pw1")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)

	// One character off fails.
	_, err = s.Authenticate(context.Background(), "alice", "pw1pw1pw2")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)

	// An unknown user yields the same error as a wrong password.
	_, err = s.Authenticate(context.Background(), "nobody", "pw1pw1pw1")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestLogin_TokenRoundTrip(t *testing.T) {
	s, _ := newAuth()
	register(t, s, "alice", "pw1pw1pw1")

	resp, err := s.Login(context.Background(), "alice", "pw1pw1pw1")
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)

	p, err := s.VerifyToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice", p.Username)
	require.Equal(t, domain.RoleUser, p.Role)

	_, err = s.VerifyToken(context.Background(), "not-a-token")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestVerifyToken_DeletedUserFailsClosed(t *testing.T) {
	s, _ := newAuth()
	register(t, s, "alice", "pw1pw1pw1")

	resp, err := s.Login(context.Background(), "alice", "pw1pw1pw1")
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), adminCaller, "alice"))

	_, err = s.VerifyToken(context.Background(), resp.AccessToken)
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	s, _ := newAuth()
	register(t, s, "alice", "pw1pw1pw1")

	// Another plain user may not change alice's password.
	bob := domain.Principal{Username: "bob", Role: domain.RoleUser}
	err := s.ChangePassword(context.Background(), bob, "alice", "newpw-newpw")
	require.ErrorIs(t, err, errs.ErrForbidden)

	require.NoError(t, s.ChangePassword(context.Background(), userCaller, "alice", "newpw-newpw"))

	_, err = s.Authenticate(context.Background(), "alice", "pw1pw1pw1")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
	_, err = s.Authenticate(context.Background(), "alice", "newpw-newpw")
	require.NoError(t, err)
}

func TestChangePassword_RegeneratesSalt(t *testing.T) {
	s, users := newAuth()
	register(t, s, "alice", "pw1pw1pw1")
	before := users.byName["alice"].Salt

	require.NoError(t, s.ChangePassword(context.Background(), adminCaller, "alice", "pw1pw1pw1"))
	require.NotEqual(t, before, users.byName["alice"].Salt)
}

func TestUpdateProfile_Rules(t *testing.T) {
	s, _ := newAuth()
	register(t, s, "alice", "pw1pw1pw1")
	register(t, s, "bob", "pw2pw2pw2")

	// Self-edit of nickname and email is allowed; empty fields keep values.
	u, err := s.UpdateProfile(context.Background(), userCaller, "alice", ProfileInput{Nickname: "Alice A."})
	require.NoError(t, err)
	require.Equal(t, "Alice A.", u.Nickname)
	require.Equal(t, "alice@example.com", u.Email)

	// Role escalation by a plain user is refused.
	_, err = s.UpdateProfile(context.Background(), userCaller, "alice", ProfileInput{Role: domain.RoleAdmin})
	require.ErrorIs(t, err, errs.ErrForbidden)

	// Editing someone else requires admin.
	_, err = s.UpdateProfile(context.Background(), userCaller, "bob", ProfileInput{Nickname: "x"})
	require.ErrorIs(t, err, errs.ErrForbidden)

	// Admin may change roles.
	u, err = s.UpdateProfile(context.Background(), adminCaller, "bob", ProfileInput{Role: domain.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, u.Role)

	// Renaming onto a taken username is refused by the uniqueness guard.
	_, err = s.UpdateProfile(context.Background(), adminCaller, "bob", ProfileInput{Username: "alice"})
	require.ErrorIs(t, err, errs.ErrUsernameTaken)

	_, err = s.UpdateProfile(context.Background(), adminCaller, "ghost", ProfileInput{Nickname: "x"})
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestFetchProfile(t *testing.T) {
	s, _ := newAuth()
	register(t, s, "alice", "pw1pw1pw1")

	p, err := s.FetchProfile(context.Background(), userCaller, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", p.Email)
	require.Equal(t, "alice", p.Nickname)

	bob := domain.Principal{Username: "bob", Role: domain.RoleUser}
	_, err = s.FetchProfile(context.Background(), bob, "alice")
	require.ErrorIs(t, err, errs.ErrForbidden)

	_, err = s.FetchProfile(context.Background(), adminCaller, "ghost")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDelete_AdminOnly(t *testing.T) {
	s, _ := newAuth()
	register(t, s, "alice", "pw1pw1pw1")

	require.ErrorIs(t, s.Delete(context.Background(), userCaller, "alice"), errs.ErrForbidden)
	require.NoError(t, s.Delete(context.Background(), adminCaller, "alice"))
	require.ErrorIs(t, s.Delete(context.Background(), adminCaller, "alice"), errs.ErrNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	s, users := newAuth()

	require.NoError(t, s.EnsureAdmin(context.Background(), "root", "bootstrap-pw", ""))
	require.Equal(t, domain.RoleAdmin, users.byName["root"].Role)

	// Idempotent: a second startup leaves the existing account alone.
	before := users.byName["root"].PasswordHash
	require.NoError(t, s.EnsureAdmin(context.Background(), "root", "different-pw", ""))
	require.Equal(t, before, users.byName["root"].PasswordHash)

	// Unconfigured credentials are a no-op rather than an error.
	require.NoError(t, s.EnsureAdmin(context.Background(), "", "", ""))
}

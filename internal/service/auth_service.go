package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ahirvonen/chatserver/internal/crypto"
	"github.com/ahirvonen/chatserver/internal/domain"
	"github.com/ahirvonen/chatserver/internal/errs"
	"github.com/ahirvonen/chatserver/internal/repository"
)

const tokenTTL = 24 * time.Hour

// AuthService owns user credentials: registration, verification, profile and
// password maintenance. It is also the gatekeeper every request passes
// through before reaching the message or sync services.
type AuthService struct {
	users     repository.UserRepository
	jwtSecret []byte
}

func NewAuthService(users repository.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
	}
}

type RegisterInput struct {
	Role     domain.Role `json:"role"`
	Username string      `json:"username"`
	Password string      `json:"password"`
	Email    string      `json:"email"`
}

type ProfileInput struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	Nickname string      `json:"nickname"`
}

type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

// Register creates a new user with a fresh salt. Only admins may register
// users; the storage-level unique index is the authoritative uniqueness guard.
func (s *AuthService) Register(ctx context.Context, caller domain.Principal, input RegisterInput) (*domain.User, error) {
	if !caller.IsAdmin() {
		return nil, errs.ErrForbidden
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", errs.ErrMalformedInput, input.Role)
	}

	salt, err := crypto.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	user := &domain.User{
		Role:         role,
		Username:     input.Username,
		Nickname:     input.Username,
		PasswordHash: crypto.Encode(input.Password, salt),
		Email:        input.Email,
		Salt:         crypto.EncodeSalt(salt),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies a username/password pair. A lookup miss and a hash
// mismatch are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Username != username {
		return nil, errs.ErrInvalidCredentials
	}
	if !crypto.Verify(password, user.PasswordHash) {
		return nil, errs.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a short-lived bearer token so clients need
// not resend basic credentials on every poll.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(user.Username)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}
	return &AuthResponse{User: user, AccessToken: token}, nil
}

// VerifyBasic resolves basic credentials to a principal.
func (s *AuthService) VerifyBasic(ctx context.Context, username, password string) (domain.Principal, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return domain.Principal{}, err
	}
	return domain.Principal{Username: user.Username, Role: user.Role}, nil
}

// VerifyToken resolves a bearer token to a principal. The subject is looked
// up again so deleted users fail closed and the role is always current rather
// than trusted from the claim.
func (s *AuthService) VerifyToken(ctx context.Context, tokenStr string) (domain.Principal, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return domain.Principal{}, errs.ErrInvalidCredentials
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Principal{}, errs.ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, sub)
	if err != nil {
		return domain.Principal{}, err
	}
	if user == nil {
		return domain.Principal{}, errs.ErrInvalidCredentials
	}
	return domain.Principal{Username: user.Username, Role: user.Role}, nil
}

// UpdateProfile edits the row keyed by the current username. Empty fields
// keep their current value. Role changes require an admin caller; users may
// otherwise edit only themselves.
func (s *AuthService) UpdateProfile(ctx context.Context, caller domain.Principal, current string, input ProfileInput) (*domain.User, error) {
	if !caller.IsAdmin() && caller.Username != current {
		return nil, errs.ErrForbidden
	}

	user, err := s.users.GetByUsername(ctx, current)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.ErrNotFound
	}

	if input.Role != "" && input.Role != user.Role {
		if !caller.IsAdmin() {
			return nil, errs.ErrForbidden
		}
		if !input.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", errs.ErrMalformedInput, input.Role)
		}
		user.Role = input.Role
	}
	if input.Username != "" {
		user.Username = input.Username
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.Nickname != "" {
		user.Nickname = input.Nickname
	}

	if err := s.users.Update(ctx, current, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword regenerates salt and hash. Users may change their own
// password; admins may change anyone's.
func (s *AuthService) ChangePassword(ctx context.Context, caller domain.Principal, username, newPassword string) error {
	if !caller.IsAdmin() && caller.Username != username {
		return errs.ErrForbidden
	}

	salt, err := crypto.NewSalt()
	if err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}
	return s.users.UpdatePassword(ctx, username, crypto.Encode(newPassword, salt), crypto.EncodeSalt(salt))
}

// Delete removes a user row entirely. Users have no edit history, so they are
// exempt from the soft-delete policy messages follow.
func (s *AuthService) Delete(ctx context.Context, caller domain.Principal, username string) error {
	if !caller.IsAdmin() {
		return errs.ErrForbidden
	}
	return s.users.Delete(ctx, username)
}

type Profile struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// FetchProfile returns a user's email and nickname, visible to the user
// themselves and to admins.
func (s *AuthService) FetchProfile(ctx context.Context, caller domain.Principal, username string) (*Profile, error) {
	if !caller.IsAdmin() && caller.Username != username {
		return nil, errs.ErrForbidden
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.ErrNotFound
	}
	return &Profile{Email: user.Email, Nickname: user.Nickname}, nil
}

// EnsureAdmin seeds the bootstrap admin account if it does not exist yet.
// Registration is admin-gated, so a fresh deployment needs one seeded user.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password, email string) error {
	if username == "" || password == "" {
		return nil
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	salt, err := crypto.NewSalt()
	if err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}
	user := &domain.User{
		Role:         domain.RoleAdmin,
		Username:     username,
		Nickname:     username,
		PasswordHash: crypto.Encode(password, salt),
		Email:        email,
		Salt:         crypto.EncodeSalt(salt),
	}
	return s.users.Create(ctx, user)
}

func (s *AuthService) issueToken(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// Copyright (c) 2026 Tribuna. All rights reserved.

// Business logic (Use Cases) for identity and account management.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// login, or the protected-admin rule must be reviewed by the security team.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/tribuna-io/tribuna/internal/platform/apperr"
	"github.com/tribuna-io/tribuna/internal/platform/sec"
	"github.com/tribuna-io/tribuna/internal/platform/validate"
	"github.com/tribuna-io/tribuna/pkg/pagination"
	"github.com/tribuna-io/tribuna/pkg/uuidv7"
)

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}

// Service implements identity use cases.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	tokenProvider     TokenProvider
}

// NewService constructs a new auth [Service] with its dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	tokenProv TokenProvider,
) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		tokenProvider:     tokenProv,
	}
}

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register validates, hashes, and persists a brand new user account.
//
// # Business Rules
//   - Usernames are unique, 3 to 50 characters.
//   - Emails are unique and must parse as addresses.
//   - Passwords are at least 6 characters and stored only as Bcrypt hashes.
//   - The role is always user; administrators are provisioned out of band.
//
// # Returns
//   - The newly created [*User].
//   - [apperr.Conflict] if the email or username already exists.
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	validator := &validate.Validator{}
	validator.
		Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, UsernameMinLen).
		MaxLen(FieldUsername, input.Username, UsernameMaxLen).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLen)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 1. Uniqueness Checks ──────────────────────────────────────────────

	// Verify email uniqueness. Return a client-safe Conflict error.
	if _, err := service.userRepository.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness. Return a client-safe Conflict error.
	if _, err := service.userRepository.FindByUsername(ctx, input.Username); err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// ── 2. Security ───────────────────────────────────────────────────────

	// Prevent storing plain-text passwords. Default cost balances security
	// and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 3. Entity Construction ────────────────────────────────────────────

	user := &User{
		ID:           uuidv7.New(), // Time-sortable ID to prevent PG index fragmentation.
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser, // Rule: self-registration never grants admin.
	}

	// ── 4. Persistence ────────────────────────────────────────────────────

	// The unique indexes on email/username backstop the pre-checks above
	// against concurrent duplicate registrations.
	if err := service.userRepository.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login    string // Can be Username or Email
	Password string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

// Login validates user credentials and issues security tokens.
//
// # Flow
//  1. Lookup the account by login (email or username).
//  2. Verify the password hash using Bcrypt.
//  3. Issue a short-lived JWT and a rotating refresh token.
//
// # Returns
//   - [apperr.Unauthorized] if credentials do not match. The message never
//     distinguishes a bad password from an unknown account, preventing
//     username enumeration.
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {
	// ── 1. Fetch User Profile ─────────────────────────────────────────────

	// Flexible login: the user may present either email or username.
	user, err := service.userRepository.FindByEmail(ctx, input.Login)
	if err != nil {
		user, err = service.userRepository.FindByUsername(ctx, input.Login)
	}

	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// ── 2. Security Verification ──────────────────────────────────────────

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// ── 3. Token Issuance ─────────────────────────────────────────────────

	return service.issueSession(ctx, user)
}

// issueSession mints a fresh access/refresh token pair for the user.
func (service *Service) issueSession(ctx context.Context, user *User) (*LoginSession, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	expiresAt := time.Now().Add(RefreshTokenTTL)
	session := &Session{
		ID:        uuidv7.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		ExpiresAt: expiresAt,
	}

	if err := service.sessionRepository.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

// Logout permanently revokes the presented refresh token's session.
func (service *Service) Logout(ctx context.Context, refreshToken string) error {
	// If the session is already gone, logout is still successful (idempotent).
	if err := service.sessionRepository.Revoke(ctx, sec.HashToken(refreshToken)); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// RefreshSession implements the refresh token rotation mechanism.
//
// The presented token is revoked before a new pair is issued, so a replayed
// refresh token is always dead on arrival.
func (service *Service) RefreshSession(ctx context.Context, refreshToken string) (*LoginSession, error) {
	// ── 1. Find Existing Session ──────────────────────────────────────────

	tokenHash := sec.HashToken(refreshToken)
	session, err := service.sessionRepository.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// ── 2. Rotation (Revoke Old Session) ──────────────────────────────────

	if err := service.sessionRepository.Revoke(ctx, tokenHash); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	// ── 3. Find User ──────────────────────────────────────────────────────

	user, err := service.userRepository.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found or suspended")
	}

	// ── 4. Issue New Tokens ───────────────────────────────────────────────

	return service.issueSession(ctx, user)
}

// GetProfile returns the account of the authenticated actor.
func (service *Service) GetProfile(ctx context.Context, actor *sec.AuthClaims) (*User, error) {
	if actor == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return service.userRepository.FindByID(ctx, actor.UserID)
}

// UpdateProfileInput holds the self-service mutable account fields.
type UpdateProfileInput struct {
	Username string
	Email    string
}

// UpdateProfile lets an authenticated user change their own username/email.
//
// The role is deliberately absent from the input: users never change their
// own role, and administrators use [AdminUpdateUser] for other accounts.
func (service *Service) UpdateProfile(ctx context.Context, actor *sec.AuthClaims, input UpdateProfileInput) (*User, error) {
	if actor == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	user, err := service.userRepository.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	return service.applyAccountUpdate(ctx, user, input.Username, input.Email, user.Role)
}

// applyAccountUpdate validates and persists new account field values, shared
// between the self-service and admin paths.
func (service *Service) applyAccountUpdate(ctx context.Context, user *User, username, email string, role sec.UserRole) (*User, error) {
	validator := &validate.Validator{}
	validator.
		Required(FieldUsername, username).
		MinLen(FieldUsername, username, UsernameMinLen).
		MaxLen(FieldUsername, username, UsernameMaxLen).
		Required(FieldEmail, email).
		Email(FieldEmail, email).
		Custom(FieldRole, !role.IsValid(), "Unknown role")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if username != user.Username {
		if _, err := service.userRepository.FindByUsername(ctx, username); err == nil {
			return nil, apperr.Conflict("Username is already taken")
		}
	}
	if email != user.Email {
		if _, err := service.userRepository.FindByEmail(ctx, email); err == nil {
			return nil, apperr.Conflict("Email is already registered")
		}
	}

	user.Username = username
	user.Email = email
	user.Role = role

	if err := service.userRepository.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword verifies the current password and stores a new hash.
//
// All existing sessions are revoked afterwards, so a stolen refresh token
// dies with the old password.
func (service *Service) ChangePassword(ctx context.Context, actor *sec.AuthClaims, currentPassword, newPassword string) error {
	if actor == nil {
		return apperr.Unauthorized("Authentication required")
	}

	validator := &validate.Validator{}
	validator.
		Required(FieldPassword, newPassword).
		MinLen(FieldPassword, newPassword, PasswordMinLen)
	if err := validator.Err(); err != nil {
		return err
	}

	user, err := service.userRepository.FindByID(ctx, actor.UserID)
	if err != nil {
		return err
	}

	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	newHash, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(ctx, user.ID, newHash); err != nil {
		return err
	}

	if err := service.sessionRepository.RevokeAll(ctx, user.ID); err != nil {
		return fmt.Errorf("auth_service_revoke_all_failed: %w", err)
	}

	return nil
}

// DeleteAccount soft-deletes the actor's own account and kills its sessions.
func (service *Service) DeleteAccount(ctx context.Context, actor *sec.AuthClaims) error {
	if actor == nil {
		return apperr.Unauthorized("Authentication required")
	}

	if err := service.userRepository.SoftDelete(ctx, actor.UserID); err != nil {
		return err
	}

	if err := service.sessionRepository.RevokeAll(ctx, actor.UserID); err != nil {
		return fmt.Errorf("auth_service_revoke_all_failed: %w", err)
	}

	return nil
}

// # Admin Account Management

// ListUsers returns a page of accounts. Administrator only.
func (service *Service) ListUsers(ctx context.Context, actor *sec.AuthClaims, filter Filter, params pagination.Params) ([]*User, pagination.Meta, error) {
	if err := sec.RequireAdmin(actor); err != nil {
		return nil, pagination.Meta{}, err
	}

	if filter.Role != "" && !filter.Role.IsValid() {
		return nil, pagination.Meta{}, apperr.ValidationError("Validation failed",
			apperr.FieldError{Field: FieldRole, Message: "Unknown role"})
	}

	users, total, err := service.userRepository.List(ctx, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("auth_service_list_users_failed: %w", err)
	}

	return users, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// GetUser returns a single account by ID. Administrator only.
func (service *Service) GetUser(ctx context.Context, actor *sec.AuthClaims, id string) (*User, error) {
	if err := sec.RequireAdmin(actor); err != nil {
		return nil, err
	}

	return service.userRepository.FindByID(ctx, id)
}

// AdminUpdateInput holds the admin-editable account fields.
type AdminUpdateInput struct {
	Username string
	Email    string
	Role     sec.UserRole
}

// AdminUpdateUser updates another user's account, including their role.
//
// # Protected-Admin Rule
//
// Administrator accounts cannot be modified through this path, not even by
// other administrators. Promotions and demotions of admins happen out of
// band, so a compromised admin credential cannot silently take over or lock
// out the rest of the admin team.
func (service *Service) AdminUpdateUser(ctx context.Context, actor *sec.AuthClaims, id string, input AdminUpdateInput) (*User, error) {
	if err := sec.RequireAdmin(actor); err != nil {
		return nil, err
	}

	user, err := service.userRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.IsAdmin() {
		return nil, apperr.Forbidden("Administrator accounts cannot be modified")
	}

	updated, err := service.applyAccountUpdate(ctx, user, input.Username, input.Email, input.Role)
	if err != nil {
		return nil, err
	}

	// A role change invalidates the role embedded in outstanding JWTs only
	// at refresh time; killing the sessions forces the refresh.
	if err := service.sessionRepository.RevokeAll(ctx, updated.ID); err != nil {
		return nil, fmt.Errorf("auth_service_revoke_all_failed: %w", err)
	}

	return updated, nil
}

// AdminDeleteUser soft-deletes another user's account.
//
// The protected-admin rule applies: administrator accounts cannot be deleted
// through this path.
func (service *Service) AdminDeleteUser(ctx context.Context, actor *sec.AuthClaims, id string) error {
	if err := sec.RequireAdmin(actor); err != nil {
		return err
	}

	user, err := service.userRepository.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if user.IsAdmin() {
		return apperr.Forbidden("Administrator accounts cannot be deleted")
	}

	if err := service.userRepository.SoftDelete(ctx, id); err != nil {
		return err
	}

	if err := service.sessionRepository.RevokeAll(ctx, id); err != nil {
		return fmt.Errorf("auth_service_revoke_all_failed: %w", err)
	}

	return nil
}

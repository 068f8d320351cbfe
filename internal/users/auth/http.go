// Copyright (c) 2026 Tribuna. All rights reserved.

// HTTP delivery layer for identity use cases.
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/tribuna-io/tribuna/internal/platform/request"
	"github.com/tribuna-io/tribuna/internal/platform/respond"
	"github.com/tribuna-io/tribuna/internal/platform/sec"
	"github.com/tribuna-io/tribuna/pkg/pagination"
)

// Handler implements authentication and account-management HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// AuthRoutes returns a [chi.Router] with the unauthenticated entry points.
//
// # Endpoints
//   - POST /register : Create a new account.
//   - POST /login    : Authenticate and receive a token pair.
//   - POST /refresh  : Rotate a refresh token.
//   - POST /logout   : Revoke a refresh token.
func (handler *Handler) AuthRoutes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)

	return router
}

// UserRoutes returns a [chi.Router] with the account-management endpoints.
//
// # Endpoints
//   - GET    /me          : Own profile.
//   - PUT    /me          : Update own profile.
//   - PUT    /me/password : Change own password.
//   - DELETE /me          : Delete own account.
//   - GET    /            : List accounts (admin).
//   - GET    /{id}        : Fetch an account (admin).
//   - PUT    /{id}        : Update an account (admin, protected-admin rule).
//   - DELETE /{id}        : Delete an account (admin, protected-admin rule).
func (handler *Handler) UserRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/me", handler.profile)
	router.Put("/me", handler.updateProfile)
	router.Put("/me/password", handler.changePassword)
	router.Delete("/me", handler.deleteAccount)

	router.Get("/", handler.listUsers)
	router.Get("/{id}", handler.getUser)
	router.Put("/{id}", handler.adminUpdateUser)
	router.Delete("/{id}", handler.adminDeleteUser)

	return router
}

// registerRequest represents the JSON payload expected for account creation.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// register handles POST /api/v1/auth/register requests.
//
// # Returns
//   - Writes HTTP 201 Created on success with the User profile.
//   - Writes HTTP 400 Bad Request if validation rules fail.
//   - Writes HTTP 409 Conflict if email/username is taken.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

// loginRequest represents the JSON payload expected for authentication.
type loginRequest struct {
	Login    string `json:"login"` // Can be Username or Email
	Password string `json:"password"`
}

// sessionResponse is the JSON shape of a successful login or refresh.
type sessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"refresh_expires_at"`
	User         *User  `json:"user"`
}

// login handles POST /api/v1/auth/login requests.
//
// # Returns
//   - Writes HTTP 200 OK on success with the token pair and User profile.
//   - Writes HTTP 401 Unauthorized for bad credentials.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Login:    input.Login,
		Password: input.Password,
	})
	if err != nil {
		// 401 without leaking whether the account exists.
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessionResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    session.RefreshTokenExpiresAt.Unix(),
		User:         session.User,
	})
}

// refreshRequest represents the JSON payload for token rotation and logout.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// refresh handles POST /api/v1/auth/refresh requests.
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.RefreshSession(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessionResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    session.RefreshTokenExpiresAt.Unix(),
		User:         session.User,
	})
}

// logout handles POST /api/v1/auth/logout requests.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), input.RefreshToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// profile handles GET /api/v1/users/me requests.
func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.GetProfile(request.Context(), claims)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// updateProfileRequest represents the JSON payload for profile updates.
type updateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// updateProfile handles PUT /api/v1/users/me requests.
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.UpdateProfile(request.Context(), claims, UpdateProfileInput{
		Username: input.Username,
		Email:    input.Email,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// changePasswordRequest represents the JSON payload for password changes.
type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// changePassword handles PUT /api/v1/users/me/password requests.
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ChangePassword(request.Context(), claims, input.CurrentPassword, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// deleteAccount handles DELETE /api/v1/users/me requests.
func (handler *Handler) deleteAccount(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.DeleteAccount(request.Context(), claims); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// listUsers handles GET /api/v1/users requests.
//
// # Query Parameters
//   - role: optional role filter (user|admin).
//   - page / limit: standard pagination.
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := Filter{Role: sec.UserRole(request.URL.Query().Get("role"))}
	params := pagination.FromRequest(request)

	users, meta, err := handler.authService.ListUsers(request.Context(), claims, filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, meta)
}

// getUser handles GET /api/v1/users/{id} requests.
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.GetUser(request.Context(), claims, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// adminUpdateRequest represents the JSON payload for admin account updates.
type adminUpdateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// adminUpdateUser handles PUT /api/v1/users/{id} requests.
//
// # Returns
//   - Writes HTTP 200 OK with the updated account.
//   - Writes HTTP 403 Forbidden when the target is an administrator.
func (handler *Handler) adminUpdateUser(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input adminUpdateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.AdminUpdateUser(request.Context(), claims, requestutil.ID(request, "id"), AdminUpdateInput{
		Username: input.Username,
		Email:    input.Email,
		Role:     sec.UserRole(input.Role),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// adminDeleteUser handles DELETE /api/v1/users/{id} requests.
func (handler *Handler) adminDeleteUser(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.AdminDeleteUser(request.Context(), claims, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

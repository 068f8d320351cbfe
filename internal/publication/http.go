// Copyright (c) 2026 Tribuna. All rights reserved.

// HTTP delivery layer for publication use cases.
//
// # Architecture
//
// Handlers act as the "gatekeepers" to the system. They are responsible for:
//   - JSON request parsing and fast-fail input checks.
//   - Mapping HTTP contexts to service layer method calls.
//   - Standardizing JSON response formats via the [respond] package.
//
// They contain NO business logic or database queries.
package publication

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/tribuna-io/tribuna/internal/platform/request"
	"github.com/tribuna-io/tribuna/internal/platform/respond"
	"github.com/tribuna-io/tribuna/pkg/pagination"
)

// Handler implements publication-related HTTP endpoints.
type Handler struct {
	publicationService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{publicationService: service}
}

// Routes returns a [chi.Router] configured with publication routes.
//
// # Endpoints
//   - POST   /              : Submit a new publication (starts pending).
//   - GET    /              : List publications visible to the caller.
//   - GET    /{id}          : Fetch a single publication.
//   - PUT    /{id}          : Edit title/description (owner or admin).
//   - DELETE /{id}          : Delete with full cascade (owner or admin).
//   - POST   /{id}/approve  : Approve a pending publication (admin).
//   - GET    /{id}/history  : Audit trail (owner or admin).
//
// Nested route groups (the comment endpoints under /{id}/comments) are
// injected by the composition root, keeping the two domains decoupled.
func (handler *Handler) Routes(nested ...func(chi.Router)) chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.submit)
	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)
	router.Put("/{id}", handler.edit)
	router.Delete("/{id}", handler.remove)
	router.Post("/{id}/approve", handler.approve)
	router.Get("/{id}/history", handler.history)

	for _, register := range nested {
		register(router)
	}

	return router
}

// submitRequest represents the JSON payload for creating a publication.
type submitRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// submit handles POST /api/v1/publications requests.
//
// # Returns
//   - Writes HTTP 201 Created with the pending publication.
//   - Writes HTTP 400 Bad Request if validation rules fail.
func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input submitRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pub, err := handler.publicationService.Submit(request.Context(), claims, SubmitInput{
		Title:       input.Title,
		Description: input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, pub)
}

// list handles GET /api/v1/publications requests.
//
// # Query Parameters
//   - status: optional lifecycle filter (pending|accepted|banned).
//   - owner:  optional user ID filter.
//   - page / limit: standard pagination.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := Filter{
		Status:  Status(request.URL.Query().Get("status")),
		OwnerID: request.URL.Query().Get("owner"),
	}
	params := pagination.FromRequest(request)

	publications, meta, err := handler.publicationService.List(request.Context(), claims, filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, publications, meta)
}

// get handles GET /api/v1/publications/{id} requests.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	pub, err := handler.publicationService.Get(request.Context(), claims, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pub)
}

// editRequest represents the JSON payload for editing a publication.
type editRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// edit handles PUT /api/v1/publications/{id} requests.
//
// # Returns
//   - Writes HTTP 200 OK with the updated publication.
//   - Writes HTTP 403 Forbidden if the caller is neither owner nor admin.
func (handler *Handler) edit(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input editRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pub, err := handler.publicationService.Edit(request.Context(), claims, requestutil.ID(request, "id"), EditInput{
		Title:       input.Title,
		Description: input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pub)
}

// remove handles DELETE /api/v1/publications/{id} requests.
//
// # Returns
//   - Writes HTTP 204 No Content after the cascading delete completes.
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.publicationService.Remove(request.Context(), claims, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// approve handles POST /api/v1/publications/{id}/approve requests.
//
// # Returns
//   - Writes HTTP 200 OK with the accepted publication.
//   - Writes HTTP 403 Forbidden for non-admin callers.
//   - Writes HTTP 409 Conflict if the publication is banned.
func (handler *Handler) approve(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	pub, err := handler.publicationService.Approve(request.Context(), claims, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pub)
}

// history handles GET /api/v1/publications/{id}/history requests.
func (handler *Handler) history(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, err := handler.publicationService.GetHistory(request.Context(), claims, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

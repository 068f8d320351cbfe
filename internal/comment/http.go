// Copyright (c) 2026 Tribuna. All rights reserved.

// HTTP delivery layer for comment use cases.
package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/tribuna-io/tribuna/internal/platform/request"
	"github.com/tribuna-io/tribuna/internal/platform/respond"
	"github.com/tribuna-io/tribuna/pkg/pagination"
)

// Handler implements comment-related HTTP endpoints.
type Handler struct {
	commentService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{commentService: service}
}

// RegisterPublicationRoutes attaches the nested comment endpoints to the
// publication router:
//
//   - POST /{publicationID}/comments : Create a comment on the publication.
//   - GET  /{publicationID}/comments : List the publication's comments.
//
// The composition root passes this to the publication handler so both domains
// share one router without either importing the other.
func (handler *Handler) RegisterPublicationRoutes(router chi.Router) {
	router.Post("/{publicationID}/comments", handler.create)
	router.Get("/{publicationID}/comments", handler.list)
}

// Routes returns the standalone comment routes:
//
//   - PUT    /{id} : Edit a comment (author or admin).
//   - DELETE /{id} : Delete a comment and its reports (author or admin).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Put("/{id}", handler.edit)
	router.Delete("/{id}", handler.remove)

	return router
}

// commentRequest represents the JSON payload for creating or editing a comment.
type commentRequest struct {
	Content string `json:"content"`
}

// create handles POST /api/v1/publications/{publicationID}/comments requests.
//
// # Returns
//   - Writes HTTP 201 Created with the new comment.
//   - Writes HTTP 404 Not Found if the publication does not exist.
//   - Writes HTTP 409 Conflict if the publication is not accepted.
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input commentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	cmt, err := handler.commentService.Create(request.Context(), claims, requestutil.ID(request, "publicationID"), input.Content)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, cmt)
}

// list handles GET /api/v1/publications/{publicationID}/comments requests.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	comments, meta, err := handler.commentService.ListForPublication(request.Context(), claims, requestutil.ID(request, "publicationID"), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comments, meta)
}

// edit handles PUT /api/v1/comments/{id} requests.
func (handler *Handler) edit(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input commentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	cmt, err := handler.commentService.Edit(request.Context(), claims, requestutil.ID(request, "id"), input.Content)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, cmt)
}

// remove handles DELETE /api/v1/comments/{id} requests.
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.commentService.Remove(request.Context(), claims, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

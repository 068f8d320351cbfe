// Copyright (c) 2026 Tribuna. All rights reserved.

// HTTP delivery layer for moderation use cases.
package moderation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/tribuna-io/tribuna/internal/platform/request"
	"github.com/tribuna-io/tribuna/internal/platform/respond"
	"github.com/tribuna-io/tribuna/pkg/pagination"
)

// Handler implements moderation-related HTTP endpoints.
type Handler struct {
	moderationService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{moderationService: service}
}

// Routes returns a [chi.Router] configured with report routes.
//
// # Endpoints
//   - POST   /publications/{id} : File a report against a publication.
//   - POST   /comments/{id}     : File a report against a comment.
//   - GET    /                  : List the moderation queue (admin).
//   - GET    /{id}              : Fetch a single report (admin).
//   - PUT    /{id}              : Review a report (admin).
//   - DELETE /{id}              : Remove a report (admin).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/publications/{id}", handler.filePublication)
	router.Post("/comments/{id}", handler.fileComment)
	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)
	router.Put("/{id}", handler.review)
	router.Delete("/{id}", handler.remove)

	return router
}

// fileRequest represents the JSON payload for filing a report.
type fileRequest struct {
	Reason string `json:"reason"`
}

// filePublication handles POST /api/v1/reports/publications/{id} requests.
//
// # Returns
//   - Writes HTTP 201 Created with the pending report.
//   - Writes HTTP 404 Not Found if the publication does not exist.
//   - Writes HTTP 409 Conflict for duplicates or already-banned targets.
func (handler *Handler) filePublication(writer http.ResponseWriter, request *http.Request) {
	handler.file(writer, request, TargetPublication)
}

// fileComment handles POST /api/v1/reports/comments/{id} requests.
func (handler *Handler) fileComment(writer http.ResponseWriter, request *http.Request) {
	handler.file(writer, request, TargetComment)
}

// file is the shared implementation behind both filing endpoints.
func (handler *Handler) file(writer http.ResponseWriter, request *http.Request, kind TargetKind) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input fileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.moderationService.File(request.Context(), claims, FileInput{
		Target: TargetRef{Kind: kind, ID: requestutil.ID(request, "id")},
		Reason: input.Reason,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, report)
}

// list handles GET /api/v1/reports requests.
//
// # Query Parameters
//   - kind:   optional target-kind filter (publication|comment).
//   - status: optional review-state filter (pending|accepted).
//   - page / limit: standard pagination.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := Filter{
		TargetKind: TargetKind(request.URL.Query().Get("kind")),
		Status:     Status(request.URL.Query().Get("status")),
	}
	params := pagination.FromRequest(request)

	reports, meta, err := handler.moderationService.List(request.Context(), claims, filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, reports, meta)
}

// get handles GET /api/v1/reports/{id} requests.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.moderationService.Get(request.Context(), claims, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, report)
}

// reviewRequest represents the JSON payload for reviewing a report.
type reviewRequest struct {
	Status string `json:"status"`
}

// review handles PUT /api/v1/reports/{id} requests.
//
// # Returns
//   - Writes HTTP 200 OK with the review outcome, including whether the
//     target crossed the ban threshold.
//   - Writes HTTP 403 Forbidden for non-admin callers.
//   - Writes HTTP 400 Bad Request for any decision other than "accepted".
func (handler *Handler) review(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input reviewRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	outcome, err := handler.moderationService.Review(request.Context(), claims, requestutil.ID(request, "id"), Status(input.Status))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, outcome)
}

// remove handles DELETE /api/v1/reports/{id} requests.
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.moderationService.Remove(request.Context(), claims, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// Copyright (c) 2026 Tribuna. All rights reserved.

// HTTP delivery layer for settings use cases.
package settings

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/tribuna-io/tribuna/internal/platform/request"
	"github.com/tribuna-io/tribuna/internal/platform/respond"
	"github.com/tribuna-io/tribuna/pkg/pagination"
)

// Handler implements settings-related HTTP endpoints.
type Handler struct {
	settingsService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{settingsService: service}
}

// Routes returns a [chi.Router] configured with settings routes.
//
// # Endpoints
//   - GET    /        : List all settings.
//   - GET    /{code}  : Fetch one setting (cached).
//   - POST   /        : Create a setting (admin).
//   - PUT    /{code}  : Update a setting (admin).
//   - DELETE /{code}  : Delete a setting (admin).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/{code}", handler.get)
	router.Post("/", handler.create)
	router.Put("/{code}", handler.update)
	router.Delete("/{code}", handler.remove)

	return router
}

// settingRequest represents the JSON payload for creating/updating a setting.
type settingRequest struct {
	Code        string          `json:"code"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data"`
}

// list handles GET /api/v1/settings requests.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	result, meta, err := handler.settingsService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, result, meta)
}

// get handles GET /api/v1/settings/{code} requests.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	setting, err := handler.settingsService.GetByCode(request.Context(), requestutil.ID(request, "code"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, setting)
}

// create handles POST /api/v1/settings requests.
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input settingRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	setting, err := handler.settingsService.Create(request.Context(), claims, Input{
		Code:        input.Code,
		Label:       input.Label,
		Description: input.Description,
		Data:        input.Data,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, setting)
}

// update handles PUT /api/v1/settings/{code} requests.
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input settingRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	setting, err := handler.settingsService.Update(request.Context(), claims, requestutil.ID(request, "code"), Input{
		Label:       input.Label,
		Description: input.Description,
		Data:        input.Data,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, setting)
}

// remove handles DELETE /api/v1/settings/{code} requests.
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.settingsService.Delete(request.Context(), claims, requestutil.ID(request, "code")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

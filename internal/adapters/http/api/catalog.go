// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/dormscore/internal/domain/scoring"
	"github.com/okian/dormscore/internal/domain/types"
)

// CatalogDependencies defines the interface for catalog and table reads.
type CatalogDependencies interface {
	Criteria(ctx context.Context) types.CriteriaView
	Regions() scoring.RegionPolicy
	Dormitories(ctx context.Context) ([]types.DormitoryView, error)
	Dormitory(ctx context.Context, id string) (types.DormitoryView, error)
}

// CatalogHandler handles dormitory catalog and scoring table requests.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleGetCriteria handles GET /v1/criteria requests.
func (h *CatalogHandler) HandleGetCriteria(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Criteria(r.Context()))
}

// HandleGetRegions handles GET /v1/regions requests.
func (h *CatalogHandler) HandleGetRegions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Regions())
}

// HandleListDormitories handles GET /v1/dormitories requests.
func (h *CatalogHandler) HandleListDormitories(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_dormitories"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	list, err := h.deps.Dormitories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGetDormitory handles GET /v1/dormitories/{id} requests.
func (h *CatalogHandler) HandleGetDormitory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_dormitory"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/dormitories/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	d, err := h.deps.Dormitory(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/dormscore/internal/domain/eligibility"
	"github.com/okian/dormscore/internal/domain/types"
)

// EligibilityDependencies defines the interface for eligibility lookups.
type EligibilityDependencies interface {
	Eligibility(ctx context.Context, g eligibility.Gender, t eligibility.StudentType) (types.EligibilityView, error)
}

// EligibilityHandler handles eligibility requests.
type EligibilityHandler struct {
	deps EligibilityDependencies
}

// NewEligibilityHandler creates a new eligibility handler.
func NewEligibilityHandler(deps EligibilityDependencies) *EligibilityHandler {
	return &EligibilityHandler{deps: deps}
}

// HandleGetEligibility handles GET /v1/eligibility?gender=&type= requests.
func (h *EligibilityHandler) HandleGetEligibility(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_eligibility"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	g, err := eligibility.ParseGender(q.Get("gender"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("gender: %w", err)))
		return
	}
	t, err := eligibility.ParseStudentType(q.Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("type: %w", err)))
		return
	}

	view, err := h.deps.Eligibility(r.Context(), g, t)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

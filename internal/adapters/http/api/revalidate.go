// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/dormscore/internal/adapters/repository"
	"github.com/okian/dormscore/internal/domain/types"
)

// RevalidateDependencies defines the interface for cache revalidation.
type RevalidateDependencies interface {
	Revalidate(ctx context.Context, path, tag string) ([]string, error)
}

// RevalidateHandler handles the revalidation webhook.
type RevalidateHandler struct {
	deps   RevalidateDependencies
	secret string
	now    func() time.Time
}

// NewRevalidateHandler creates a new revalidation handler.
func NewRevalidateHandler(deps RevalidateDependencies, secret string) *RevalidateHandler {
	return &RevalidateHandler{deps: deps, secret: secret, now: time.Now}
}

type revalidateRequest struct {
	Path string `json:"path"`
	Tag  string `json:"tag"`
}

// HandlePostRevalidate handles POST /api/revalidate requests.
func (h *RevalidateHandler) HandlePostRevalidate(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_revalidate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if !h.authorized(r.Header.Get("Authorization")) {
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
		return
	}

	var req revalidateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("invalid JSON body")))
		return
	}
	if strings.TrimSpace(req.Path) == "" && strings.TrimSpace(req.Tag) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("provide path or tag in request body")))
		return
	}

	revalidated, err := h.deps.Revalidate(r.Context(), req.Path, req.Tag)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownTag) {
			writeError(w, http.StatusBadRequest, "unknown_tag", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.Revalidation{
		Revalidated: revalidated,
		Now:         h.now().UTC().Format(time.RFC3339),
	})
}

// authorized compares the bearer token in constant time. An unset secret
// authorizes nothing.
func (h *RevalidateHandler) authorized(header string) bool {
	if h.secret == "" {
		return false
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}

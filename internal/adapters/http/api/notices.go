// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/dormscore/internal/domain/model"
)

const defaultNoticeLimit = 10

// NoticeDependencies defines the interface for notice reads.
type NoticeDependencies interface {
	Notices(ctx context.Context, limit int, category model.NoticeCategory) ([]model.Notice, error)
}

// NoticesHandler handles notice requests.
type NoticesHandler struct {
	deps     NoticeDependencies
	maxLimit int
}

// NewNoticesHandler creates a new notices handler.
func NewNoticesHandler(deps NoticeDependencies, maxLimit int) *NoticesHandler {
	return &NoticesHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetNotices handles GET /v1/notices?limit=N&category=C requests.
func (h *NoticesHandler) HandleGetNotices(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_notices"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	n := min(defaultNoticeLimit, h.maxLimit)
	if s := q.Get("limit"); s != "" {
		var err error
		n, err = strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	category, err := model.ParseNoticeCategory(q.Get("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	notices, err := h.deps.Notices(r.Context(), n, category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, notices)
}

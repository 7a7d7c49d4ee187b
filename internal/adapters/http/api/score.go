// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/okian/dormscore/internal/domain/scoring"
	"github.com/okian/dormscore/internal/domain/types"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 16

// ScoreDependencies defines the interface for score computation.
type ScoreDependencies interface {
	Score(ctx context.Context, in scoring.Input) types.ScoreResult
	Level(total int) types.LevelInfo
}

// ScoreHandler handles score requests.
type ScoreHandler struct {
	deps      ScoreDependencies
	validator *validator.Validate
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps, validator: validator.New()}
}

// scoreRequest mirrors the OpenAPI schema for POST /v1/score.
type scoreRequest struct {
	Mode               string   `json:"mode" validate:"omitempty,oneof=general financial"`
	GPA                *float64 `json:"gpa" validate:"required,gte=0,lte=4.5"`
	IsPreviousResident bool     `json:"is_previous_resident"`
	Region             string   `json:"region" validate:"max=64"`
	FinancialRawScore  int      `json:"financial_raw_score"`
	VolunteerCompleted bool     `json:"volunteer_completed"`
	EducationCompleted bool     `json:"education_completed"`
}

func (req scoreRequest) input() scoring.Input {
	mode := scoring.ModeGeneral
	if m, err := scoring.ParseMode(req.Mode); err == nil {
		mode = m
	}
	return scoring.Input{
		Mode:               mode,
		GPA:                *req.GPA,
		IsPreviousResident: req.IsPreviousResident,
		Region:             req.Region,
		FinancialRawScore:  req.FinancialRawScore,
		VolunteerCompleted: req.VolunteerCompleted,
		EducationCompleted: req.EducationCompleted,
	}
}

// HandlePostScore handles POST /v1/score requests.
func (h *ScoreHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req scoreRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	req.Mode = strings.ToLower(strings.TrimSpace(req.Mode))
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", WrapKind(op, ErrBadRequest, validationError(err)))
		return
	}

	writeJSON(w, http.StatusOK, h.deps.Score(r.Context(), req.input()))
}

// HandleGetLevel handles GET /v1/score/level?total=N requests.
func (h *ScoreHandler) HandleGetLevel(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_level"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	total, err := strconv.Atoi(r.URL.Query().Get("total"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Level(total))
}

// validationError reports the first failing field.
func validationError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return fmt.Errorf("field %s failed %s", ve[0].Field(), ve[0].Tag())
	}
	return err
}

// Package types contains the read shapes shared by the service and the HTTP API.
package types

import (
	"github.com/okian/dormscore/internal/domain/eligibility"
	"github.com/okian/dormscore/internal/domain/model"
	"github.com/okian/dormscore/internal/domain/scoring"
)

// LevelInfo is a level with its display label.
type LevelInfo struct {
	Level scoring.Level `json:"level"`
	Label string        `json:"label"`
}

// NewLevelInfo classifies a total score.
func NewLevelInfo(total int) LevelInfo {
	l := scoring.ClassifyLevel(total)
	return LevelInfo{Level: l, Label: l.Label()}
}

// ScoreResult is a computed breakdown with its level.
type ScoreResult struct {
	Mode scoring.Mode `json:"mode"`
	scoring.Breakdown
	LevelInfo
}

// DormitoryView is a catalog entry with derived room figures.
type DormitoryView struct {
	model.Dormitory
	Beds    int           `json:"beds"`
	RoomMix model.RoomMix `json:"room_mix"`
}

// NewDormitoryView attaches bed count and room mix to d.
func NewDormitoryView(d model.Dormitory) DormitoryView {
	return DormitoryView{Dormitory: d, Beds: d.Rooms.Beds(), RoomMix: d.Rooms.Percentages()}
}

// EligibleDormitory is a catalog entry annotated for one applicant.
type EligibleDormitory struct {
	DormitoryView
	Eligible bool `json:"eligible"`
}

// EligibilityView answers which dormitories an applicant may apply to.
type EligibilityView struct {
	Gender           eligibility.Gender        `json:"gender"`
	StudentType      eligibility.StudentType   `json:"student_type"`
	StudentTypeLabel string                    `json:"student_type_label"`
	Eligible         []eligibility.DormitoryID `json:"eligible"`
	Dormitories      []EligibleDormitory       `json:"dormitories"`
}

// CriteriaView describes the scoring tables for one semester.
type CriteriaView struct {
	model.ScoreCriteria
	GeneralMaxTotal     int                    `json:"general_max_total"`
	GeneralGrades       []scoring.GradeTier    `json:"general_grades"`
	FinancialGrades     []scoring.GradeTier    `json:"financial_grades"`
	RegionBuckets       []scoring.RegionBucket `json:"region_buckets"`
	CompletionDate      string                 `json:"completion_date,omitempty"`
	DaysUntilCompletion *int                   `json:"days_until_completion,omitempty"`
}

// Revalidation is the acknowledgement of a cache revalidation.
type Revalidation struct {
	Revalidated []string `json:"revalidated"`
	Now         string   `json:"now"`
}

// Package scoring computes dormitory assignment scores from applicant inputs.
//
// Every operation is a total function: out-of-range or empty inputs degrade
// to documented defaults instead of returning errors.
package scoring

import (
	"strings"
)

// Score bounds shared by both formulas.
const (
	maxDistanceScore  = 30
	maxFinancialScore = 60
	bonusPoints       = 5
)

// Level thresholds (inclusive lower bounds).
const (
	excellentThreshold = 85
	goodThreshold      = 70
	averageThreshold   = 55
)

// Mode selects which scoring formula applies.
type Mode string

// Supported scoring modes.
const (
	ModeGeneral           Mode = "general"
	ModeFinancialHardship Mode = "financial"
)

// ParseMode converts a transport value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeGeneral:
		return ModeGeneral, nil
	case ModeFinancialHardship:
		return ModeFinancialHardship, nil
	default:
		return "", ErrUnknownMode
	}
}

// Input holds the applicant answers for one computation.
type Input struct {
	Mode               Mode
	GPA                float64
	IsPreviousResident bool   // general mode only
	Region             string // general mode only, ignored for previous residents
	FinancialRawScore  int    // financial mode only
	VolunteerCompleted bool
	EducationCompleted bool
}

// Breakdown is the per-component result of a computation.
type Breakdown struct {
	GradeScore     int `json:"grade_score"`
	DistanceScore  int `json:"distance_score"`
	FinancialScore int `json:"financial_score"`
	VolunteerScore int `json:"volunteer_score"`
	EducationScore int `json:"education_score"`
	TotalScore     int `json:"total_score"`
}

// Level is a qualitative classification of a total score.
type Level string

// Score levels from weakest to strongest.
const (
	LevelCompetitive Level = "competitive"
	LevelAverage     Level = "average"
	LevelGood        Level = "good"
	LevelExcellent   Level = "excellent"
)

// Label returns the display label for the level.
func (l Level) Label() string {
	switch l {
	case LevelExcellent:
		return "매우 유리"
	case LevelGood:
		return "유리"
	case LevelAverage:
		return "보통"
	default:
		return "경쟁 필요"
	}
}

// ClassifyLevel maps a total score to a Level. Any integer is accepted.
func ClassifyLevel(total int) Level {
	switch {
	case total >= excellentThreshold:
		return LevelExcellent
	case total >= goodThreshold:
		return LevelGood
	case total >= averageThreshold:
		return LevelAverage
	default:
		return LevelCompetitive
	}
}

// FinancialScore clamps a hardship raw score into [0, 60].
func FinancialScore(raw int) int {
	return min(max(raw, 0), maxFinancialScore)
}

// BonusScore maps a completed requirement to its bonus points.
func BonusScore(completed bool) int {
	if completed {
		return bonusPoints
	}
	return 0
}

// Option applies a configuration option to an Engine.
type Option func(*Engine)

// WithRegionPolicy replaces the bundled region buckets and aliases.
// The policy is copied; later changes by the caller are not observed.
func WithRegionPolicy(p RegionPolicy) Option {
	return func(e *Engine) {
		e.policy = p.clone()
	}
}

// Engine evaluates the scoring formulas against a fixed set of tables.
// It is immutable after construction and safe for concurrent use.
type Engine struct {
	general   []GradeTier
	financial []GradeTier
	policy    RegionPolicy

	// exact maps a canonical region name to its bucket points.
	exact map[string]int
}

// NewEngine creates an Engine backed by the bundled tables unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		general:   GeneralGradeTiers(),
		financial: FinancialGradeTiers(),
		policy:    DefaultRegionPolicy(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.exact = make(map[string]int)
	for _, b := range e.policy.Buckets {
		for _, r := range b.Regions {
			if _, dup := e.exact[r]; !dup {
				e.exact[r] = b.Points
			}
		}
	}
	return e
}

// GradeScore returns the grade points for gpa under mode. GPAs below every
// tier (including negative or NaN values) receive the lowest tier's score.
func (e *Engine) GradeScore(gpa float64, mode Mode) int {
	tiers := e.tiers(mode)
	for _, t := range tiers {
		if gpa >= t.MinGPA {
			return t.Score
		}
	}
	return tiers[len(tiers)-1].Score
}

// DistanceScore returns the distance/residency points for general mode.
func (e *Engine) DistanceScore(isPreviousResident bool, region string) int {
	if isPreviousResident {
		return maxDistanceScore
	}
	return e.RegionScore(region)
}

// Compute evaluates the full breakdown for in. Unknown modes are scored with
// the general formula.
func (e *Engine) Compute(in Input) Breakdown {
	b := Breakdown{
		VolunteerScore: BonusScore(in.VolunteerCompleted),
		EducationScore: BonusScore(in.EducationCompleted),
	}

	switch in.Mode {
	case ModeFinancialHardship:
		b.FinancialScore = FinancialScore(in.FinancialRawScore)
		b.GradeScore = e.GradeScore(in.GPA, ModeFinancialHardship)
	default:
		b.GradeScore = e.GradeScore(in.GPA, ModeGeneral)
		b.DistanceScore = e.DistanceScore(in.IsPreviousResident, in.Region)
	}

	b.TotalScore = b.GradeScore + b.DistanceScore + b.FinancialScore + b.VolunteerScore + b.EducationScore
	return b
}

// GradeTiers returns a copy of the grade table used for mode.
func (e *Engine) GradeTiers(mode Mode) []GradeTier {
	return append([]GradeTier(nil), e.tiers(mode)...)
}

// Policy returns a copy of the region policy in use.
func (e *Engine) Policy() RegionPolicy {
	return e.policy.clone()
}

func (e *Engine) tiers(mode Mode) []GradeTier {
	if mode == ModeFinancialHardship {
		return e.financial
	}
	return e.general
}

var defaultEngine = NewEngine()

// Default returns the engine built from the bundled tables.
func Default() *Engine { return defaultEngine }

// GradeScore evaluates gpa with the bundled tables.
func GradeScore(gpa float64, mode Mode) int { return defaultEngine.GradeScore(gpa, mode) }

// DistanceScore evaluates residency/region with the bundled tables.
func DistanceScore(isPreviousResident bool, region string) int {
	return defaultEngine.DistanceScore(isPreviousResident, region)
}

// RegionScore resolves region with the bundled tables.
func RegionScore(region string) int { return defaultEngine.RegionScore(region) }

// Compute evaluates in with the bundled tables.
func Compute(in Input) Breakdown { return defaultEngine.Compute(in) }

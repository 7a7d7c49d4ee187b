package verify

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"github.com/okian/dormscore/internal/domain/eligibility"
	"github.com/okian/dormscore/internal/domain/scoring"
	"github.com/okian/dormscore/internal/domain/types"
)

// Scenario is one request with a known answer.
type Scenario struct {
	Name  string
	check func(ctx context.Context, c *HTTPClient, baseURL string) error
}

// Check runs the scenario against baseURL. A wrong answer wraps ErrMismatch.
func (s Scenario) Check(ctx context.Context, c *HTTPClient, baseURL string) error {
	return s.check(ctx, c, baseURL)
}

// ScoreRequest is the POST /v1/score body.
type ScoreRequest struct {
	Mode               scoring.Mode `json:"mode"`
	GPA                float64      `json:"gpa"`
	IsPreviousResident bool         `json:"is_previous_resident"`
	Region             string       `json:"region,omitempty"`
	FinancialRawScore  int          `json:"financial_raw_score,omitempty"`
	VolunteerCompleted bool         `json:"volunteer_completed"`
	EducationCompleted bool         `json:"education_completed"`
}

func (r ScoreRequest) input() scoring.Input {
	return scoring.Input{
		Mode:               r.Mode,
		GPA:                r.GPA,
		IsPreviousResident: r.IsPreviousResident,
		Region:             r.Region,
		FinancialRawScore:  r.FinancialRawScore,
		VolunteerCompleted: r.VolunteerCompleted,
		EducationCompleted: r.EducationCompleted,
	}
}

// scoreCases cover both modes, tier edges, previous residents and bonuses.
var scoreCases = []struct {
	name string
	req  ScoreRequest
}{
	{"general/top-jeju", ScoreRequest{Mode: scoring.ModeGeneral, GPA: 4.5, Region: "제주", VolunteerCompleted: true, EducationCompleted: true}},
	{"general/previous-resident", ScoreRequest{Mode: scoring.ModeGeneral, GPA: 3.8, IsPreviousResident: true, Region: "제주"}},
	{"general/busan", ScoreRequest{Mode: scoring.ModeGeneral, GPA: 3.2, Region: "부산", VolunteerCompleted: true}},
	{"general/gyeonggi", ScoreRequest{Mode: scoring.ModeGeneral, GPA: 2.0, Region: "경기"}},
	{"general/unknown-region", ScoreRequest{Mode: scoring.ModeGeneral, GPA: 3.5, Region: "Atlantis"}},
	{"general/zero-gpa", ScoreRequest{Mode: scoring.ModeGeneral, GPA: 0}},
	{"financial/high", ScoreRequest{Mode: scoring.ModeFinancialHardship, GPA: 4.0, FinancialRawScore: 60, VolunteerCompleted: true}},
	{"financial/capped", ScoreRequest{Mode: scoring.ModeFinancialHardship, GPA: 3.0, FinancialRawScore: 500, EducationCompleted: true}},
	{"financial/zero", ScoreRequest{Mode: scoring.ModeFinancialHardship, GPA: 2.5}},
}

// Scenarios returns the built-in cases with answers from engine.
func Scenarios(engine *scoring.Engine) []Scenario {
	if engine == nil {
		engine = scoring.Default()
	}

	out := make([]Scenario, 0, len(scoreCases)+2*len(eligibility.StudentTypes()))
	for _, tc := range scoreCases {
		out = append(out, scoreScenario(tc.name, tc.req, engine.Compute(tc.req.input())))
	}
	for _, g := range []eligibility.Gender{eligibility.GenderMale, eligibility.GenderFemale} {
		for _, t := range eligibility.StudentTypes() {
			out = append(out, eligibilityScenario(g, t, eligibility.Resolve(g, t)))
		}
	}
	return out
}

func scoreScenario(name string, req ScoreRequest, want scoring.Breakdown) Scenario {
	wantLevel := scoring.ClassifyLevel(want.TotalScore)
	return Scenario{
		Name: "score/" + name,
		check: func(ctx context.Context, c *HTTPClient, baseURL string) error {
			var got types.ScoreResult
			if err := c.PostJSON(ctx, baseURL+"/v1/score", req, &got); err != nil {
				return err
			}
			if got.Breakdown != want {
				return fmt.Errorf("%w: breakdown %+v, want %+v", ErrMismatch, got.Breakdown, want)
			}
			if got.Level != wantLevel {
				return fmt.Errorf("%w: level %q, want %q", ErrMismatch, got.Level, wantLevel)
			}
			return nil
		},
	}
}

func eligibilityScenario(g eligibility.Gender, t eligibility.StudentType, want []eligibility.DormitoryID) Scenario {
	return Scenario{
		Name: fmt.Sprintf("eligibility/%s/%s", g, t),
		check: func(ctx context.Context, c *HTTPClient, baseURL string) error {
			q := url.Values{"gender": {string(g)}, "type": {string(t)}}
			var got struct {
				Eligible []eligibility.DormitoryID `json:"eligible"`
			}
			if err := c.GetJSON(ctx, baseURL+"/v1/eligibility?"+q.Encode(), &got); err != nil {
				return err
			}
			if !slices.Equal(got.Eligible, want) {
				return fmt.Errorf("%w: eligible %v, want %v", ErrMismatch, got.Eligible, want)
			}
			return nil
		},
	}
}

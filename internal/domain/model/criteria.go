package model

// ScoreCriteria holds the per-semester maxima of each score component.
type ScoreCriteria struct {
	Semester     string `json:"semester"`
	MaxGrade     int    `json:"max_grade"`
	MaxDistance  int    `json:"max_distance"`
	MaxVolunteer int    `json:"max_volunteer"`
	MaxEducation int    `json:"max_education"`
	MaxFinancial int    `json:"max_financial"`
}

// DefaultScoreCriteria returns the criteria the bundled tables implement.
func DefaultScoreCriteria(semester string) ScoreCriteria {
	return ScoreCriteria{
		Semester:     semester,
		MaxGrade:     60,
		MaxDistance:  30,
		MaxVolunteer: 5,
		MaxEducation: 5,
		MaxFinancial: 60,
	}
}

// GeneralMax is the highest total reachable in general mode.
func (c ScoreCriteria) GeneralMax() int {
	return c.MaxGrade + c.MaxDistance + c.MaxVolunteer + c.MaxEducation
}

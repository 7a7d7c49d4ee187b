package scoring

// GradeTier is one row of a grade table. Tables are ordered by MinGPA
// descending; the last row acts as the floor for any lower GPA.
type GradeTier struct {
	MinGPA float64 `json:"min_gpa"`
	Score  int     `json:"score"`
	Label  string  `json:"label"`
}

// GeneralGradeTiers returns the general-mode grade table (60 points max).
func GeneralGradeTiers() []GradeTier {
	return []GradeTier{
		{MinGPA: 4.21, Score: 60, Label: "4.21 이상"},
		{MinGPA: 4.01, Score: 55, Label: "4.01 ~ 4.20"},
		{MinGPA: 3.81, Score: 50, Label: "3.81 ~ 4.00"},
		{MinGPA: 3.61, Score: 45, Label: "3.61 ~ 3.80"},
		{MinGPA: 3.41, Score: 40, Label: "3.41 ~ 3.60"},
		{MinGPA: 3.21, Score: 35, Label: "3.21 ~ 3.40"},
		{MinGPA: 3.01, Score: 30, Label: "3.01 ~ 3.20"},
		{MinGPA: 2.81, Score: 25, Label: "2.81 ~ 3.00"},
		{MinGPA: 2.51, Score: 20, Label: "2.51 ~ 2.80"},
		{MinGPA: 0, Score: 10, Label: "2.50 이하"},
	}
}

// FinancialGradeTiers returns the hardship-mode grade table (30 points max).
func FinancialGradeTiers() []GradeTier {
	return []GradeTier{
		{MinGPA: 4.21, Score: 30, Label: "4.21 이상"},
		{MinGPA: 4.01, Score: 27, Label: "4.01 ~ 4.20"},
		{MinGPA: 3.81, Score: 24, Label: "3.81 ~ 4.00"},
		{MinGPA: 3.61, Score: 21, Label: "3.61 ~ 3.80"},
		{MinGPA: 3.41, Score: 18, Label: "3.41 ~ 3.60"},
		{MinGPA: 3.21, Score: 15, Label: "3.21 ~ 3.40"},
		{MinGPA: 3.01, Score: 12, Label: "3.01 ~ 3.20"},
		{MinGPA: 2.81, Score: 9, Label: "2.81 ~ 3.00"},
		{MinGPA: 2.51, Score: 6, Label: "2.51 ~ 2.80"},
		{MinGPA: 0, Score: 3, Label: "2.50 이하"},
	}
}

// DefaultRegionPolicy returns the bundled region buckets and aliases.
func DefaultRegionPolicy() RegionPolicy {
	return RegionPolicy{
		Buckets: []RegionBucket{
			{
				Name:   "3시간 이상",
				Points: 30,
				Regions: []string{
					"제주", "경상남도", "경상북도", "부산", "대구", "울산",
					"전라남도", "전라북도", "광주", "강원도(영동)",
					"충청남도", "충청북도", "대전", "세종",
				},
			},
			{
				Name:    "1~3시간",
				Points:  15,
				Regions: []string{"서울북부", "인천", "천안", "경기도 광주", "여주", "이천", "강원도(영서)"},
			},
			{
				Name:    "1시간 미만",
				Points:  0,
				Regions: []string{"수원", "용인", "성남", "안양", "과천", "서울", "오산", "평택", "안산"},
			},
		},
		Aliases: map[string]string{
			"광주광역시":   "광주",
			"광주시":     "경기도 광주",
			"부산광역시":   "부산",
			"대구광역시":   "대구",
			"울산광역시":   "울산",
			"대전광역시":   "대전",
			"인천광역시":   "인천",
			"세종특별자치시": "세종",
			"제주특별자치도": "제주",
			"경남":      "경상남도",
			"경북":      "경상북도",
			"전남":      "전라남도",
			"전북":      "전라북도",
			"강원":      "강원도(영동)",
			"충남":      "충청남도",
			"충북":      "충청북도",
			"광주(경기)":  "경기도 광주",
			"경기광주":    "경기도 광주",
		},
	}
}

// Package eligibility maps an applicant's gender and student type to the
// dormitories they may apply to.
package eligibility

import (
	"errors"
	"strings"
)

// ErrUnknownValue is returned by the Parse helpers for values outside the enum.
var ErrUnknownValue = errors.New("unknown eligibility value")

// Gender of the applicant.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	// GenderAny is only valid as a rule constraint.
	GenderAny Gender = "any"
)

// ParseGender converts a transport value into an applicant Gender.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderMale, GenderFemale:
		return g, nil
	}
	return "", ErrUnknownValue
}

// StudentType is the applicant's enrolment category.
type StudentType string

const (
	Freshman  StudentType = "freshman"
	Enrolled  StudentType = "enrolled"
	Graduate  StudentType = "graduate"
	Foreigner StudentType = "foreigner"
	Medical   StudentType = "medical"
	Nursing   StudentType = "nursing"
	Law       StudentType = "law"
)

var studentTypeLabels = map[StudentType]string{
	Freshman:  "학부 신입생",
	Enrolled:  "학부 재학생",
	Graduate:  "일반대학원",
	Foreigner: "외국인",
	Medical:   "의대",
	Nursing:   "간호대",
	Law:       "법학전문대학원",
}

// StudentTypes lists every student type in display order.
func StudentTypes() []StudentType {
	return []StudentType{Freshman, Enrolled, Graduate, Foreigner, Medical, Nursing, Law}
}

// Label returns the Korean display label, or the raw value when unknown.
func (t StudentType) Label() string {
	if l, ok := studentTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// ParseStudentType converts a transport value into a StudentType.
func ParseStudentType(s string) (StudentType, error) {
	t := StudentType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := studentTypeLabels[t]; ok {
		return t, nil
	}
	return "", ErrUnknownValue
}

// DormitoryID identifies a residence hall.
type DormitoryID string

const (
	Namje         DormitoryID = "namje"
	Yongji        DormitoryID = "yongji"
	Hwahong       DormitoryID = "hwahong"
	Gwanggyo      DormitoryID = "gwanggyo"
	International DormitoryID = "international"
	Ilsin         DormitoryID = "ilsin"
)

// Rule admits the listed student types of a gender to one dormitory.
type Rule struct {
	Dormitory DormitoryID
	Gender    Gender
	Types     []StudentType
}

func (r Rule) matches(g Gender, t StudentType) bool {
	if r.Gender != GenderAny && r.Gender != g {
		return false
	}
	for _, allowed := range r.Types {
		if allowed == t {
			return true
		}
	}
	return false
}

// Namje is for continuing students only and never admits freshmen.
// Ilsin admits professional programs (law, medical, nursing) but not the
// general graduate school.
var rules = []Rule{
	{Dormitory: Namje, Gender: GenderMale, Types: []StudentType{Enrolled, Foreigner}},
	{Dormitory: Yongji, Gender: GenderMale, Types: []StudentType{Freshman, Enrolled, Graduate}},
	{Dormitory: Hwahong, Gender: GenderAny, Types: []StudentType{Foreigner}},
	{Dormitory: Gwanggyo, Gender: GenderFemale, Types: []StudentType{Freshman, Enrolled, Nursing, Graduate}},
	{Dormitory: International, Gender: GenderAny, Types: []StudentType{Freshman, Enrolled, Foreigner, Graduate}},
	{Dormitory: Ilsin, Gender: GenderAny, Types: []StudentType{Freshman, Enrolled, Law, Medical, Nursing}},
}

// Rules returns a copy of the rule table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{Dormitory: r.Dormitory, Gender: r.Gender, Types: append([]StudentType(nil), r.Types...)}
	}
	return out
}

// Resolve returns the dormitories the applicant may apply to, in rule-table
// order without duplicates. Unknown inputs yield an empty, non-nil slice.
func Resolve(g Gender, t StudentType) []DormitoryID {
	out := []DormitoryID{}
	if g != GenderMale && g != GenderFemale {
		return out
	}
	seen := make(map[DormitoryID]struct{}, len(rules))
	for _, r := range rules {
		if !r.matches(g, t) {
			continue
		}
		if _, dup := seen[r.Dormitory]; dup {
			continue
		}
		seen[r.Dormitory] = struct{}{}
		out = append(out, r.Dormitory)
	}
	return out
}

// IsEligible reports whether id is in Resolve(g, t).
func IsEligible(g Gender, t StudentType, id DormitoryID) bool {
	for _, d := range Resolve(g, t) {
		if d == id {
			return true
		}
	}
	return false
}

// Sort returns all reordered so eligible dormitories come first. Relative
// order within each group is preserved.
func Sort(all, eligible []DormitoryID) []DormitoryID {
	in := make(map[DormitoryID]struct{}, len(eligible))
	for _, id := range eligible {
		in[id] = struct{}{}
	}

	out := make([]DormitoryID, 0, len(all))
	for _, id := range all {
		if _, ok := in[id]; ok {
			out = append(out, id)
		}
	}
	for _, id := range all {
		if _, ok := in[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

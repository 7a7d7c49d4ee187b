package eligibility_test

import (
	"testing"

	"github.com/okian/dormscore/internal/domain/eligibility"
	"github.com/smartystreets/goconvey/convey"
)

func TestResolve(t *testing.T) {
	convey.Convey("Given the dormitory rule table", t, func() {
		convey.Convey("When a male freshman applies", func() {
			got := eligibility.Resolve(eligibility.GenderMale, eligibility.Freshman)

			convey.Convey("Then Namje is excluded", func() {
				convey.So(got, convey.ShouldResemble, []eligibility.DormitoryID{
					eligibility.Yongji, eligibility.International, eligibility.Ilsin,
				})
				convey.So(got, convey.ShouldNotContain, eligibility.Namje)
			})
		})

		convey.Convey("When a male enrolled student applies", func() {
			got := eligibility.Resolve(eligibility.GenderMale, eligibility.Enrolled)
			convey.So(got, convey.ShouldResemble, []eligibility.DormitoryID{
				eligibility.Namje, eligibility.Yongji, eligibility.International, eligibility.Ilsin,
			})
		})

		convey.Convey("When a female enrolled student applies", func() {
			got := eligibility.Resolve(eligibility.GenderFemale, eligibility.Enrolled)
			convey.So(got, convey.ShouldResemble, []eligibility.DormitoryID{
				eligibility.Gwanggyo, eligibility.International, eligibility.Ilsin,
			})
		})

		convey.Convey("When a general graduate student applies", func() {
			got := eligibility.Resolve(eligibility.GenderFemale, eligibility.Graduate)

			convey.Convey("Then Ilsin is excluded", func() {
				convey.So(got, convey.ShouldResemble, []eligibility.DormitoryID{
					eligibility.Gwanggyo, eligibility.International,
				})
			})
		})

		convey.Convey("When a female freshman applies", func() {
			got := eligibility.Resolve(eligibility.GenderFemale, eligibility.Freshman)

			convey.Convey("Then the continuing and male-only halls are excluded", func() {
				convey.So(got, convey.ShouldNotContain, eligibility.Namje)
				convey.So(got, convey.ShouldNotContain, eligibility.Yongji)
				convey.So(got, convey.ShouldResemble, []eligibility.DormitoryID{
					eligibility.Gwanggyo, eligibility.International, eligibility.Ilsin,
				})
			})
		})

		convey.Convey("When a medical student applies", func() {
			got := eligibility.Resolve(eligibility.GenderMale, eligibility.Medical)
			convey.So(got, convey.ShouldResemble, []eligibility.DormitoryID{eligibility.Ilsin})
			convey.So(got, convey.ShouldNotContain, eligibility.Yongji)
		})

		convey.Convey("When a foreign student applies", func() {
			convey.So(eligibility.Resolve(eligibility.GenderFemale, eligibility.Foreigner), convey.ShouldResemble,
				[]eligibility.DormitoryID{eligibility.Hwahong, eligibility.International})
			convey.So(eligibility.Resolve(eligibility.GenderMale, eligibility.Foreigner), convey.ShouldResemble,
				[]eligibility.DormitoryID{eligibility.Namje, eligibility.Hwahong, eligibility.International})
		})

		convey.Convey("When the inputs are unknown", func() {
			convey.Convey("Then the result is empty but not nil", func() {
				got := eligibility.Resolve("other", eligibility.Enrolled)
				convey.So(got, convey.ShouldNotBeNil)
				convey.So(got, convey.ShouldBeEmpty)
				convey.So(eligibility.Resolve(eligibility.GenderMale, "alien"), convey.ShouldBeEmpty)
				convey.So(eligibility.Resolve(eligibility.GenderAny, eligibility.Foreigner), convey.ShouldBeEmpty)
				convey.So(eligibility.Resolve("other", eligibility.Foreigner), convey.ShouldBeEmpty)
				convey.So(eligibility.Resolve("", eligibility.Freshman), convey.ShouldBeEmpty)
				convey.So(eligibility.IsEligible("other", eligibility.Freshman, eligibility.International), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When resolving every combination twice", func() {
			convey.Convey("Then results are stable and duplicate free", func() {
				for _, g := range []eligibility.Gender{eligibility.GenderMale, eligibility.GenderFemale} {
					for _, st := range eligibility.StudentTypes() {
						first := eligibility.Resolve(g, st)
						convey.So(eligibility.Resolve(g, st), convey.ShouldResemble, first)

						seen := map[eligibility.DormitoryID]bool{}
						for _, id := range first {
							convey.So(seen[id], convey.ShouldBeFalse)
							seen[id] = true
							convey.So(eligibility.IsEligible(g, st, id), convey.ShouldBeTrue)
						}
					}
				}
			})
		})
	})
}

func TestRules(t *testing.T) {
	convey.Convey("Given the exported rule table", t, func() {
		rules := eligibility.Rules()
		convey.So(rules, convey.ShouldHaveLength, 6)

		convey.Convey("When a caller mutates the copy", func() {
			rules[0].Types = append(rules[0].Types, eligibility.Freshman)

			convey.Convey("Then resolution is unaffected", func() {
				convey.So(eligibility.IsEligible(eligibility.GenderMale, eligibility.Freshman, eligibility.Namje), convey.ShouldBeFalse)
			})
		})
	})
}

func TestSort(t *testing.T) {
	convey.Convey("Given a catalog and an eligible subset", t, func() {
		all := []eligibility.DormitoryID{
			eligibility.Namje, eligibility.Yongji, eligibility.Hwahong,
			eligibility.Gwanggyo, eligibility.International, eligibility.Ilsin,
		}
		eligible := []eligibility.DormitoryID{eligibility.Ilsin, eligibility.Yongji}

		got := eligibility.Sort(all, eligible)

		convey.So(got, convey.ShouldResemble, []eligibility.DormitoryID{
			eligibility.Yongji, eligibility.Ilsin,
			eligibility.Namje, eligibility.Hwahong, eligibility.Gwanggyo, eligibility.International,
		})
		convey.So(all[0], convey.ShouldEqual, eligibility.Namje)
	})
}

func TestParse(t *testing.T) {
	convey.Convey("Given transport values", t, func() {
		g, err := eligibility.ParseGender(" Female ")
		convey.So(err, convey.ShouldBeNil)
		convey.So(g, convey.ShouldEqual, eligibility.GenderFemale)

		_, err = eligibility.ParseGender("any")
		convey.So(err, convey.ShouldEqual, eligibility.ErrUnknownValue)

		st, err := eligibility.ParseStudentType("law")
		convey.So(err, convey.ShouldBeNil)
		convey.So(st.Label(), convey.ShouldEqual, "법학전문대학원")

		_, err = eligibility.ParseStudentType("postdoc")
		convey.So(err, convey.ShouldEqual, eligibility.ErrUnknownValue)
	})
}

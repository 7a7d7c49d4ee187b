package main

import (
	"fmt"

	"github.com/okian/dormscore/internal/domain/eligibility"
	"github.com/okian/dormscore/internal/domain/scoring"
	"github.com/okian/dormscore/internal/domain/types"
	"github.com/spf13/cobra"
)

type scoreOptions struct {
	mode              string
	gpa               float64
	region            string
	previousResident  bool
	financialRawScore int
	volunteer         bool
	education         bool
	policyFile        string
}

func newScoreCmd() *cobra.Command {
	var o scoreOptions

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute an admission score locally",
		Long:  "Computes the score breakdown and level for one applicant with the bundled tables or a region policy file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := scoring.ParseMode(o.mode)
			if err != nil {
				return fmt.Errorf("mode %q: %w", o.mode, err)
			}
			if o.gpa < 0 || o.gpa > 4.5 {
				return fmt.Errorf("gpa %.2f out of range [0, 4.5]", o.gpa)
			}
			if o.financialRawScore < 0 {
				return fmt.Errorf("financial raw score %d must not be negative", o.financialRawScore)
			}

			engine, err := scoring.LoadEngine(o.policyFile)
			if err != nil {
				return err
			}
			b := engine.Compute(scoring.Input{
				Mode:               mode,
				GPA:                o.gpa,
				IsPreviousResident: o.previousResident,
				Region:             o.region,
				FinancialRawScore:  o.financialRawScore,
				VolunteerCompleted: o.volunteer,
				EducationCompleted: o.education,
			})
			return printJSON(cmd.OutOrStdout(), types.ScoreResult{
				Mode:      mode,
				Breakdown: b,
				LevelInfo: types.NewLevelInfo(b.TotalScore),
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.mode, "mode", "m", string(scoring.ModeGeneral), "Scoring mode (general, financial)")
	f.Float64VarP(&o.gpa, "gpa", "g", 0, "Grade point average on the 4.5 scale (required)")
	f.StringVarP(&o.region, "region", "r", "", "Home region, general mode only")
	f.BoolVar(&o.previousResident, "previous-resident", false, "Applicant lived in the dormitory last semester")
	f.IntVar(&o.financialRawScore, "financial", 0, "Raw financial hardship score, financial mode only")
	f.BoolVar(&o.volunteer, "volunteer", false, "Volunteer hours completed")
	f.BoolVar(&o.education, "education", false, "Dormitory education completed")
	f.StringVar(&o.policyFile, "policy", "", "Path to a region policy YAML file")
	if err := cmd.MarkFlagRequired("gpa"); err != nil {
		panic(fmt.Sprintf("failed to mark gpa flag as required: %v", err))
	}
	return cmd
}

func newEligibleCmd() *cobra.Command {
	var gender, studentType string

	cmd := &cobra.Command{
		Use:   "eligible",
		Short: "List the dormitories an applicant may apply to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := eligibility.ParseGender(gender)
			if err != nil {
				return fmt.Errorf("gender %q: %w", gender, err)
			}
			t, err := eligibility.ParseStudentType(studentType)
			if err != nil {
				return fmt.Errorf("type %q: %w", studentType, err)
			}
			return printJSON(cmd.OutOrStdout(), struct {
				Gender           eligibility.Gender        `json:"gender"`
				StudentType      eligibility.StudentType   `json:"student_type"`
				StudentTypeLabel string                    `json:"student_type_label"`
				Eligible         []eligibility.DormitoryID `json:"eligible"`
			}{g, t, t.Label(), eligibility.Resolve(g, t)})
		},
	}

	cmd.Flags().StringVar(&gender, "gender", "", "Applicant gender (male, female)")
	cmd.Flags().StringVarP(&studentType, "type", "t", "", "Student type (freshman, enrolled, graduate, foreigner, medical, nursing, law)")
	for _, name := range []string{"gender", "type"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
	return cmd
}

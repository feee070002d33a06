package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/models"
)

const otherSubject = "__other__"

// QuickSubjects are offered before the free-text field.
var QuickSubjects = []string{
	"Math", "English", "Language Arts", "Science", "Social Studies",
	"Coding", "Reading", "Exam Prep", "Homework", "Review",
}

type SubjectFormModel struct {
	Choice string
	Custom string
}

// Subject returns the chosen or typed subject.
func (f *SubjectFormModel) Subject() string {
	if f.Choice == otherSubject {
		return f.Custom
	}
	return f.Choice
}

type GoalFormModel struct {
	Kind    constants.PeriodKind
	Minutes string
}

func NewSubjectForm(fm *SubjectFormModel, elapsed string) *huh.Form {
	options := make([]huh.Option[string], 0, len(QuickSubjects)+1)
	for _, s := range QuickSubjects {
		options = append(options, huh.NewOption(s, s))
	}
	options = append(options, huh.NewOption("Other…", otherSubject))

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What did you study?").
				Description(fmt.Sprintf("Recording %s", elapsed)).
				Options(options...).
				Value(&fm.Choice),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Subject").
				CharLimit(constants.MaxSubjectLength).
				Value(&fm.Custom).
				Validate(func(s string) error {
					_, err := models.ValidateSubject(s)
					return err
				}),
		).WithHideFunc(func() bool { return fm.Choice != otherSubject }),
	).WithTheme(huh.ThemeDracula())
}

func NewGoalForm(fm *GoalFormModel, premium bool) *huh.Form {
	kinds := []huh.Option[constants.PeriodKind]{huh.NewOption("Daily", constants.PeriodDaily)}
	if premium {
		kinds = append(kinds,
			huh.NewOption("Weekly", constants.PeriodWeekly),
			huh.NewOption("Monthly", constants.PeriodMonthly),
		)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[constants.PeriodKind]().
				Title("Goal period").
				Options(kinds...).
				Value(&fm.Kind),
			huh.NewInput().
				Title("Target (minutes)").
				Value(&fm.Minutes).
				Validate(validateMinutes),
		),
	).WithTheme(huh.ThemeDracula())
}

func validateMinutes(s string) error {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a whole number of minutes")
	}
	if i <= 0 {
		return fmt.Errorf("target must be a positive number of minutes")
	}
	return nil
}

package core

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// GoalOther is the goal choice that takes its name from the custom field.
const GoalOther = "Other"

// GoalNames lists the savings goal choices in display order.
var GoalNames = []string{
	"New Vehicle", "New Home", "Holiday Trip", "Health Care", "Education",
	"Emergency Fund", "Party", "Kid Spoiling", "Charity", GoalOther,
}

// Goal is a savings target.
type Goal struct {
	ID         int64
	Name       string
	Target     Money
	Saved      Money
	TargetDate Date
	Note       string
}

// Validate resolves the name from choice and custom and checks the amounts.
// A custom name replaces the choice only when the choice is GoalOther.
func (g *Goal) Validate(choice, custom string) error {
	errs := ValidationErrors{}

	choice = strings.TrimSpace(choice)
	custom = strings.TrimSpace(custom)
	switch {
	case choice == "":
		errs.Add("goal_name", "This field is required.")
	case !slices.Contains(GoalNames, choice):
		errs.Add("goal_name", "Select a valid choice. "+choice+" is not one of the available choices.")
	case choice == GoalOther && custom != "":
		g.Name = custom
	default:
		g.Name = choice
	}
	if len(g.Name) > 100 {
		errs.Add("custom_goal_name", "Ensure this value has at most 100 characters.")
	}

	if err := g.Target.Validate(); err != nil {
		errs.Add("target_amount", "Enter a positive amount.")
	}
	if g.Saved.Cents < 0 {
		errs.Add("saved_amount", "Ensure this value is greater than or equal to 0.")
	}
	if g.TargetDate.IsZero() {
		errs.Add("target_date", "Enter a valid date.")
	}
	g.Note = strings.TrimSpace(g.Note)

	return errs.Err()
}

// ProgressPercent is Saved over Target as a percentage, zero without a target.
// It is not capped at 100.
func (g Goal) ProgressPercent() decimal.Decimal {
	if g.Target.Cents == 0 {
		return decimal.Zero
	}
	return g.Saved.Decimal().Div(g.Target.Decimal()).Mul(hundred).Round(2)
}

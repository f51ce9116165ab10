package core

import (
	"fmt"
	"slices"
)

// Categories is the fixed category list shared by records and budgets.
var Categories = []string{
	"Salary", "Freelance", "Investments", "Rental Income", "Gifts", "Refunds",
	"Other Income", "Food & Drinks", "Groceries", "Dining Out", "Shopping",
	"Housing", "Utilities", "Transportation", "Vehicle", "Life & Entertainment",
	"Communication, PC", "Financial expenses", "Health & Medical", "Education",
	"Insurance", "Travel", "Gifts & Donations", "Personal Care", "Subscriptions",
	"Taxes", "Savings", "Pets", "Childcare", "Hobbies", "Debt & Loans",
	"Repairs & Maintenance", "Electronics", "Clothing & Apparel",
	"Beauty & Wellness", "Books & Media", "Office Supplies", "Gardening",
	"Sports & Fitness", "Weddings & Events", "Household Supplies", "Legal Fees",
	"Charity", "Business Expenses", "Others",
}

// IsCategory reports whether name is one of Categories.
func IsCategory(name string) bool {
	return slices.Contains(Categories, name)
}

const (
	BadgeActive = "bg-primary"
	BadgeIdle   = "bg-secondary"
)

// Badge is the selected-count badge next to a multi-select menu.
type Badge struct {
	Text  string
	Class string
}

// CountBadge builds the badge for n selected entries.
func CountBadge(n int) Badge {
	b := Badge{Text: fmt.Sprintf("%d selected", n), Class: BadgeIdle}
	if n > 0 {
		b.Class = BadgeActive
	}
	return b
}

package http

// HX-Trigger event names dispatched to the page.
const (
	EventBudgetCreated    = "budget:created"
	EventAccountCreated   = "account:created"
	EventRecordCreated    = "record:created"
	EventGoalCreated      = "goal:created"
	EventFormReset        = "form:reset"
	EventShowNotification = "show-notification"
)

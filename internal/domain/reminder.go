package domain

const (
	ReminderBirthday    = "birthday"
	ReminderAnniversary = "anniversary"
)

// Reminder is a derived view over users; it is never stored.
type Reminder struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Kind           string `json:"kind"`
	Date           string `json:"date"`
	NextOccurrence string `json:"next_occurrence"`
	DaysUntil      int    `json:"days_until"`
	Years          int    `json:"years"`
}

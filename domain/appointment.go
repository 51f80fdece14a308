package domain

const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
	AppointmentNoShow    = "no_show"
)

type Appointment struct {
	ID         int64   `db:"id" json:"id"`
	CustomerID int64   `db:"customer_id" json:"customer_id"`
	Date       string  `db:"date" json:"date"`
	Time       string  `db:"time" json:"time"`
	Type       string  `db:"type" json:"type"`
	Status     string  `db:"status" json:"status"`
	Notes      *string `db:"notes" json:"notes,omitempty"`
	CreatedAt  string  `db:"created_at" json:"created_at"`
}

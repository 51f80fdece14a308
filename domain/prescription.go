package domain

// Prescription stores the optical measurements for one customer visit.
// OD is the right eye, OS the left.
type Prescription struct {
	ID         int64    `db:"id" json:"id"`
	CustomerID int64    `db:"customer_id" json:"customer_id"`
	IssueDate  *string  `db:"issue_date" json:"issue_date,omitempty"`
	ODSphere   *float64 `db:"od_sphere" json:"od_sphere,omitempty"`
	ODCylinder *float64 `db:"od_cylinder" json:"od_cylinder,omitempty"`
	ODAxis     *float64 `db:"od_axis" json:"od_axis,omitempty"`
	OSSphere   *float64 `db:"os_sphere" json:"os_sphere,omitempty"`
	OSCylinder *float64 `db:"os_cylinder" json:"os_cylinder,omitempty"`
	OSAxis     *float64 `db:"os_axis" json:"os_axis,omitempty"`
	Addition   *float64 `db:"addition" json:"addition,omitempty"`
	PD         *float64 `db:"pd" json:"pd,omitempty"`
	Notes      *string  `db:"notes" json:"notes,omitempty"`
	CreatedAt  string   `db:"created_at" json:"created_at"`
}

package domain

type Sale struct {
	ID            int64   `db:"id" json:"id"`
	CustomerID    int64   `db:"customer_id" json:"customer_id"`
	ReceiptNumber string  `db:"receipt_number" json:"receipt_number"`
	PaymentStatus string  `db:"payment_status" json:"payment_status"`
	PaymentMethod *string `db:"payment_method" json:"payment_method,omitempty"`
	TotalAmount   float64 `db:"total_amount" json:"total_amount"`
	Notes         *string `db:"notes" json:"notes,omitempty"`
	CreatedAt     string  `db:"created_at" json:"created_at"`
}

// SaleItem captures quantity and unit price at the moment the sale was
// made; later product price changes never touch it.
type SaleItem struct {
	ID        int64   `db:"id" json:"id"`
	SaleID    int64   `db:"sale_id" json:"sale_id"`
	ProductID int64   `db:"product_id" json:"product_id"`
	Quantity  int64   `db:"quantity" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
	Subtotal  float64 `db:"subtotal" json:"subtotal"`
}

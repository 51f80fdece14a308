package domain

type Customer struct {
	ID        int64   `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Email     *string `db:"email" json:"email,omitempty"`
	CPF       *string `db:"cpf" json:"cpf,omitempty"`
	Phone     *string `db:"phone" json:"phone,omitempty"`
	BirthDate *string `db:"birth_date" json:"birth_date,omitempty"`
	Address   *string `db:"address" json:"address,omitempty"`
	Notes     *string `db:"notes" json:"notes,omitempty"`
	CreatedAt string  `db:"created_at" json:"created_at"`
	UpdatedAt string  `db:"updated_at" json:"updated_at"`
}

package domain

// Product categories carried in the category column. Lens and contact lens
// products carry extra attribute columns that stay NULL for everything else.
const (
	CategoryFrame       = "frame"
	CategoryLens        = "lens"
	CategoryContactLens = "contact_lens"
	CategorySunglasses  = "sunglasses"
	CategoryAccessory   = "accessory"
)

type Product struct {
	ID               int64    `db:"id" json:"id"`
	Name             string   `db:"name" json:"name"`
	SKU              *string  `db:"sku" json:"sku,omitempty"`
	Category         string   `db:"category" json:"category"`
	Description      *string  `db:"description" json:"description,omitempty"`
	StockQuantity    int64    `db:"stock_quantity" json:"stock_quantity"`
	CostPrice        *float64 `db:"cost_price" json:"cost_price,omitempty"`
	SalePrice        *float64 `db:"sale_price" json:"sale_price,omitempty"`
	LensType         *string  `db:"lens_type" json:"lens_type,omitempty"`
	LensMaterial     *string  `db:"lens_material" json:"lens_material,omitempty"`
	ContactBrand     *string  `db:"contact_brand" json:"contact_brand,omitempty"`
	ContactBaseCurve *float64 `db:"contact_base_curve" json:"contact_base_curve,omitempty"`
	ContactDiameter  *float64 `db:"contact_diameter" json:"contact_diameter,omitempty"`
	CreatedAt        string   `db:"created_at" json:"created_at"`
	UpdatedAt        string   `db:"updated_at" json:"updated_at"`
}

package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"oticapos/m/domain"
)

type productRequest struct {
	Name             string   `json:"name"`
	SKU              string   `json:"sku,omitempty"`
	Category         string   `json:"category"`
	Description      string   `json:"description,omitempty"`
	StockQuantity    int64    `json:"stock_quantity,omitempty"`
	CostPrice        *float64 `json:"cost_price,omitempty"`
	SalePrice        *float64 `json:"sale_price,omitempty"`
	LensType         string   `json:"lens_type,omitempty"`
	LensMaterial     string   `json:"lens_material,omitempty"`
	ContactBrand     string   `json:"contact_brand,omitempty"`
	ContactBaseCurve *float64 `json:"contact_base_curve,omitempty"`
	ContactDiameter  *float64 `json:"contact_diameter,omitempty"`
}

type productPatch struct {
	Name             *string  `json:"name,omitempty"`
	SKU              *string  `json:"sku,omitempty"`
	Category         *string  `json:"category,omitempty"`
	Description      *string  `json:"description,omitempty"`
	StockQuantity    *int64   `json:"stock_quantity,omitempty"`
	CostPrice        *float64 `json:"cost_price,omitempty"`
	SalePrice        *float64 `json:"sale_price,omitempty"`
	LensType         *string  `json:"lens_type,omitempty"`
	LensMaterial     *string  `json:"lens_material,omitempty"`
	ContactBrand     *string  `json:"contact_brand,omitempty"`
	ContactBaseCurve *float64 `json:"contact_base_curve,omitempty"`
	ContactDiameter  *float64 `json:"contact_diameter,omitempty"`
}

func normalizeSKU(sku string) *string {
	trimmed := strings.ToUpper(strings.TrimSpace(sku))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Category) == "" {
		respondError(w, http.StatusBadRequest, "name and category are required")
		return
	}
	if req.StockQuantity < 0 {
		respondError(w, http.StatusBadRequest, "stock_quantity cannot be negative")
		return
	}

	now := nowUTC()
	res, err := h.db.Exec(`INSERT INTO products
		(name, sku, category, description, stock_quantity, cost_price, sale_price,
		 lens_type, lens_material, contact_brand, contact_base_curve, contact_diameter,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(req.Name), normalizeSKU(req.SKU), strings.TrimSpace(req.Category),
		nullIfEmpty(req.Description), req.StockQuantity, req.CostPrice, req.SalePrice,
		nullIfEmpty(req.LensType), nullIfEmpty(req.LensMaterial),
		nullIfEmpty(req.ContactBrand), req.ContactBaseCurve, req.ContactDiameter, now, now)
	if err != nil {
		if field, ok := uniqueViolation(err); ok {
			respondError(w, http.StatusConflict, field+" already in use")
		} else {
			respondError(w, http.StatusInternalServerError, "unable to create product")
		}
		return
	}
	id, _ := res.LastInsertId()

	var product domain.Product
	if err := h.db.Get(&product, `SELECT * FROM products WHERE id = ?`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load product")
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	var (
		clauses []string
		args    []any
	)
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, category)
	}
	if query := strings.TrimSpace(r.URL.Query().Get("query")); query != "" {
		like := "%" + query + "%"
		clauses = append(clauses, "(name LIKE ? OR sku LIKE ?)")
		args = append(args, like, like)
	}

	sqlQuery := `SELECT * FROM products`
	if len(clauses) > 0 {
		sqlQuery += " WHERE " + strings.Join(clauses, " AND ")
	}
	sqlQuery += " ORDER BY name"

	products := []domain.Product{}
	if err := h.db.Select(&products, sqlQuery, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var product domain.Product
	if err := h.db.Get(&product, `SELECT * FROM products WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var product domain.Product
	if err := h.db.Get(&product, `SELECT * FROM products WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load product")
		return
	}

	var patch productPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			respondError(w, http.StatusBadRequest, "name cannot be blank")
			return
		}
		product.Name = name
	}
	if patch.SKU != nil {
		product.SKU = normalizeSKU(*patch.SKU)
	}
	if patch.Category != nil {
		category := strings.TrimSpace(*patch.Category)
		if category == "" {
			respondError(w, http.StatusBadRequest, "category cannot be blank")
			return
		}
		product.Category = category
	}
	if patch.Description != nil {
		product.Description = nullIfEmpty(*patch.Description)
	}
	if patch.StockQuantity != nil {
		if *patch.StockQuantity < 0 {
			respondError(w, http.StatusBadRequest, "stock_quantity cannot be negative")
			return
		}
		product.StockQuantity = *patch.StockQuantity
	}
	if patch.CostPrice != nil {
		product.CostPrice = patch.CostPrice
	}
	if patch.SalePrice != nil {
		product.SalePrice = patch.SalePrice
	}
	if patch.LensType != nil {
		product.LensType = nullIfEmpty(*patch.LensType)
	}
	if patch.LensMaterial != nil {
		product.LensMaterial = nullIfEmpty(*patch.LensMaterial)
	}
	if patch.ContactBrand != nil {
		product.ContactBrand = nullIfEmpty(*patch.ContactBrand)
	}
	if patch.ContactBaseCurve != nil {
		product.ContactBaseCurve = patch.ContactBaseCurve
	}
	if patch.ContactDiameter != nil {
		product.ContactDiameter = patch.ContactDiameter
	}
	product.UpdatedAt = nowUTC()

	_, err = h.db.Exec(`UPDATE products SET name = ?, sku = ?, category = ?, description = ?, stock_quantity = ?,
		cost_price = ?, sale_price = ?, lens_type = ?, lens_material = ?,
		contact_brand = ?, contact_base_curve = ?, contact_diameter = ?, updated_at = ? WHERE id = ?`,
		product.Name, product.SKU, product.Category, product.Description, product.StockQuantity,
		product.CostPrice, product.SalePrice, product.LensType, product.LensMaterial,
		product.ContactBrand, product.ContactBaseCurve, product.ContactDiameter, product.UpdatedAt, id)
	if err != nil {
		if field, ok := uniqueViolation(err); ok {
			respondError(w, http.StatusConflict, field+" already in use")
		} else {
			respondError(w, http.StatusInternalServerError, "unable to update product")
		}
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// deleteProduct refuses to remove a product that historical sales still
// reference; cascading would rewrite those sales.
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var exists bool
	if err := h.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, id); err != nil || !exists {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	var referenced bool
	if err := h.db.Get(&referenced, `SELECT EXISTS(SELECT 1 FROM sale_items WHERE product_id = ?)`, id); err == nil && referenced {
		respondError(w, http.StatusConflict, "product is referenced by sales")
		return
	}
	if _, err := h.db.Exec(`DELETE FROM products WHERE id = ?`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete product")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

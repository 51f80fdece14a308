package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"oticapos/m/domain"
)

type saleItemRequest struct {
	ProductID int64    `json:"product_id"`
	Quantity  int64    `json:"quantity"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
}

type saleRequest struct {
	CustomerID    int64             `json:"customer_id"`
	Items         []saleItemRequest `json:"items"`
	PaymentStatus string            `json:"payment_status,omitempty"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	Notes         string            `json:"notes,omitempty"`
}

type salePatch struct {
	PaymentStatus *string `json:"payment_status,omitempty"`
	PaymentMethod *string `json:"payment_method,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// saleItemDetail is a line item joined with its product for responses.
type saleItemDetail struct {
	ID          int64   `db:"id" json:"id"`
	SaleID      int64   `db:"sale_id" json:"sale_id"`
	ProductID   int64   `db:"product_id" json:"product_id"`
	ProductName string  `db:"product_name" json:"product_name"`
	SKU         *string `db:"sku" json:"sku,omitempty"`
	Category    string  `db:"category" json:"category"`
	Quantity    int64   `db:"quantity" json:"quantity"`
	UnitPrice   float64 `db:"unit_price" json:"unit_price"`
	Subtotal    float64 `db:"subtotal" json:"subtotal"`
}

type saleEntry struct {
	domain.Sale
	CustomerName string           `db:"customer_name" json:"customer_name"`
	Items        []saleItemDetail `json:"items"`
}

// saleLine is one merged requested item during sale creation.
type saleLine struct {
	ProductID int64
	Quantity  int64
	Override  *float64
}

// createSale runs the whole workflow in a single transaction: validate the
// customer and items, merge duplicate product lines, check and decrement
// stock, persist the header and its line items. Any failure leaves no
// partial state behind.
func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.CustomerID <= 0 {
		respondError(w, http.StatusBadRequest, "customer_id is required")
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "sale requires at least one item")
		return
	}
	for _, item := range req.Items {
		if item.ProductID <= 0 {
			respondError(w, http.StatusBadRequest, "product_id is required for every item")
			return
		}
		if item.Quantity <= 0 {
			respondError(w, http.StatusBadRequest, "quantity must be a positive integer")
			return
		}
	}

	// Merge duplicates so a combined quantity is checked against stock
	// once, not line by line against a stale count.
	lines := make([]*saleLine, 0, len(req.Items))
	byProduct := make(map[int64]*saleLine, len(req.Items))
	for _, item := range req.Items {
		if line, ok := byProduct[item.ProductID]; ok {
			line.Quantity += item.Quantity
			if item.UnitPrice != nil {
				line.Override = item.UnitPrice
			}
			continue
		}
		line := &saleLine{ProductID: item.ProductID, Quantity: item.Quantity, Override: item.UnitPrice}
		byProduct[item.ProductID] = line
		lines = append(lines, line)
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()

	var customerName string
	if err := tx.Get(&customerName, `SELECT name FROM customers WHERE id = ?`, req.CustomerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "customer not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load customer")
		return
	}

	type pricedLine struct {
		saleLine
		ProductName string
		SKU         *string
		Category    string
		UnitPrice   float64
		Subtotal    float64
	}
	priced := make([]pricedLine, 0, len(lines))
	var total float64
	for _, line := range lines {
		var product struct {
			ID            int64    `db:"id"`
			Name          string   `db:"name"`
			SKU           *string  `db:"sku"`
			Category      string   `db:"category"`
			StockQuantity int64    `db:"stock_quantity"`
			SalePrice     *float64 `db:"sale_price"`
		}
		err := tx.Get(&product, `SELECT id, name, sku, category, stock_quantity, sale_price FROM products WHERE id = ?`, line.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondError(w, http.StatusNotFound, fmt.Sprintf("product %d not found", line.ProductID))
				return
			}
			respondError(w, http.StatusInternalServerError, "unable to load product")
			return
		}
		if product.StockQuantity < line.Quantity {
			respondInsufficientStock(w, product.Name, product.StockQuantity, line.Quantity)
			return
		}

		unitPrice := 0.0
		switch {
		case line.Override != nil:
			unitPrice = *line.Override
		case product.SalePrice != nil:
			unitPrice = *product.SalePrice
		}
		subtotal := unitPrice * float64(line.Quantity)
		total += subtotal
		priced = append(priced, pricedLine{
			saleLine:    *line,
			ProductName: product.Name,
			SKU:         product.SKU,
			Category:    product.Category,
			UnitPrice:   unitPrice,
			Subtotal:    subtotal,
		})
	}

	paymentStatus := strings.TrimSpace(req.PaymentStatus)
	if paymentStatus == "" {
		paymentStatus = "pending"
	}
	receipt := uuid.NewString()
	createdAt := nowUTC()

	res, err := tx.Exec(`INSERT INTO sales (customer_id, receipt_number, payment_status, payment_method, total_amount, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.CustomerID, receipt, paymentStatus, nullIfEmpty(req.PaymentMethod), total, nullIfEmpty(req.Notes), createdAt)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create sale record")
		return
	}
	saleID, err := res.LastInsertId()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create sale record")
		return
	}

	items := make([]saleItemDetail, 0, len(priced))
	for _, line := range priced {
		itemRes, err := tx.Exec(`INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, subtotal)
			VALUES (?, ?, ?, ?, ?)`,
			saleID, line.ProductID, line.Quantity, line.UnitPrice, line.Subtotal)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to add sale items")
			return
		}
		itemID, _ := itemRes.LastInsertId()

		// The decrement re-checks availability so a concurrent sale can
		// never drive stock below zero.
		stockRes, err := tx.Exec(`UPDATE products SET stock_quantity = stock_quantity - ?, updated_at = ? WHERE id = ? AND stock_quantity >= ?`,
			line.Quantity, createdAt, line.ProductID, line.Quantity)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to update stock")
			return
		}
		if n, _ := stockRes.RowsAffected(); n == 0 {
			var available int64
			_ = tx.Get(&available, `SELECT stock_quantity FROM products WHERE id = ?`, line.ProductID)
			respondInsufficientStock(w, line.ProductName, available, line.Quantity)
			return
		}

		items = append(items, saleItemDetail{
			ID:          itemID,
			SaleID:      saleID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			SKU:         line.SKU,
			Category:    line.Category,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    line.Subtotal,
		})
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize sale")
		return
	}

	respondJSON(w, http.StatusCreated, saleEntry{
		Sale: domain.Sale{
			ID:            saleID,
			CustomerID:    req.CustomerID,
			ReceiptNumber: receipt,
			PaymentStatus: paymentStatus,
			PaymentMethod: nullIfEmpty(req.PaymentMethod),
			TotalAmount:   total,
			Notes:         nullIfEmpty(req.Notes),
			CreatedAt:     createdAt,
		},
		CustomerName: customerName,
		Items:        items,
	})
}

func respondInsufficientStock(w http.ResponseWriter, product string, available, requested int64) {
	respondJSON(w, http.StatusBadRequest, map[string]any{
		"error":     fmt.Sprintf("insufficient stock for %s: available %d, requested %d", product, available, requested),
		"product":   product,
		"available": available,
		"requested": requested,
	})
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	var (
		clauses []string
		args    []any
	)
	if raw := strings.TrimSpace(r.URL.Query().Get("customerId")); raw != "" {
		customerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid customerId filter")
			return
		}
		clauses = append(clauses, "s.customer_id = ?")
		args = append(args, customerID)
	}
	if status := strings.TrimSpace(r.URL.Query().Get("paymentStatus")); status != "" {
		clauses = append(clauses, "s.payment_status = ?")
		args = append(args, status)
	}

	query := `SELECT s.id, s.customer_id, s.receipt_number, s.payment_status, s.payment_method,
		s.total_amount, s.notes, s.created_at, c.name AS customer_name
		FROM sales s JOIN customers c ON c.id = s.customer_id`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY s.created_at DESC"

	sales := []saleEntry{}
	if err := h.db.Select(&sales, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list sales")
		return
	}
	if err := h.attachSaleItems(sales); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sale items")
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sale id")
		return
	}
	sales := []saleEntry{}
	err = h.db.Select(&sales, `SELECT s.id, s.customer_id, s.receipt_number, s.payment_status, s.payment_method,
		s.total_amount, s.notes, s.created_at, c.name AS customer_name
		FROM sales s JOIN customers c ON c.id = s.customer_id WHERE s.id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sale")
		return
	}
	if len(sales) == 0 {
		respondError(w, http.StatusNotFound, "sale not found")
		return
	}
	if err := h.attachSaleItems(sales); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sale items")
		return
	}
	respondJSON(w, http.StatusOK, sales[0])
}

// attachSaleItems loads line items for all entries in one IN query.
func (h *Handler) attachSaleItems(sales []saleEntry) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]int64, len(sales))
	for i := range sales {
		ids[i] = sales[i].ID
	}

	itemsQuery, itemsArgs, err := sqlx.In(`SELECT si.id, si.sale_id, si.product_id, si.quantity, si.unit_price, si.subtotal,
		p.name AS product_name, p.sku, p.category
		FROM sale_items si JOIN products p ON p.id = si.product_id
		WHERE si.sale_id IN (?) ORDER BY si.id`, ids)
	if err != nil {
		return err
	}

	var rows []saleItemDetail
	if err := h.db.Select(&rows, itemsQuery, itemsArgs...); err != nil {
		return err
	}
	itemsBySale := make(map[int64][]saleItemDetail, len(sales))
	for _, row := range rows {
		itemsBySale[row.SaleID] = append(itemsBySale[row.SaleID], row)
	}
	for i := range sales {
		items := itemsBySale[sales[i].ID]
		if items == nil {
			items = []saleItemDetail{}
		}
		sales[i].Items = items
	}
	return nil
}

// updateSale only touches the payment tag, payment method and notes. Line
// items and the total are immutable after creation.
func (h *Handler) updateSale(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sale id")
		return
	}
	var sale domain.Sale
	if err := h.db.Get(&sale, `SELECT * FROM sales WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "sale not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load sale")
		return
	}

	var patch salePatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.PaymentStatus != nil {
		status := strings.TrimSpace(*patch.PaymentStatus)
		if status == "" {
			respondError(w, http.StatusBadRequest, "payment_status cannot be blank")
			return
		}
		sale.PaymentStatus = status
	}
	if patch.PaymentMethod != nil {
		sale.PaymentMethod = nullIfEmpty(*patch.PaymentMethod)
	}
	if patch.Notes != nil {
		sale.Notes = nullIfEmpty(*patch.Notes)
	}

	_, err = h.db.Exec(`UPDATE sales SET payment_status = ?, payment_method = ?, notes = ? WHERE id = ?`,
		sale.PaymentStatus, sale.PaymentMethod, sale.Notes, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update sale")
		return
	}
	respondJSON(w, http.StatusOK, sale)
}

// deleteSale is the exact inverse of creation: restore every line item's
// stock, then drop the items and the header, all in one transaction.
func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM sales WHERE id = ?)`, id); err != nil || !exists {
		respondError(w, http.StatusNotFound, "sale not found")
		return
	}

	var items []domain.SaleItem
	if err := tx.Select(&items, `SELECT * FROM sale_items WHERE sale_id = ?`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sale items")
		return
	}

	now := nowUTC()
	for _, item := range items {
		if _, err := tx.Exec(`UPDATE products SET stock_quantity = stock_quantity + ?, updated_at = ? WHERE id = ?`,
			item.Quantity, now, item.ProductID); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to restore stock")
			return
		}
	}
	if _, err := tx.Exec(`DELETE FROM sale_items WHERE sale_id = ?`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete sale items")
		return
	}
	if _, err := tx.Exec(`DELETE FROM sales WHERE id = ?`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete sale")
		return
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize cancellation")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "sale cancelled", "restored_items": len(items)})
}

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"oticapos/m/domain"
)

func TestCreateCustomerRequiresName(t *testing.T) {
	env := newTestEnv(t)
	w := env.doAdmin(http.MethodPost, "/customers", map[string]any{"email": "x@y.test"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCustomerUniqueness(t *testing.T) {
	env := newTestEnv(t)

	w := env.doAdmin(http.MethodPost, "/customers", map[string]any{
		"name": "Maria", "email": "maria@shop.test", "cpf": "111.222.333-44",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.doAdmin(http.MethodPost, "/customers", map[string]any{
		"name": "Other Maria", "email": "maria@shop.test",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "email")

	w = env.doAdmin(http.MethodPost, "/customers", map[string]any{
		"name": "Third Maria", "cpf": "111.222.333-44",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "cpf")

	// Customers without email or CPF never collide with each other.
	w = env.doAdmin(http.MethodPost, "/customers", map[string]any{"name": "Anon A"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = env.doAdmin(http.MethodPost, "/customers", map[string]any{"name": "Anon B"})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestCustomerPartialUpdate(t *testing.T) {
	env := newTestEnv(t)
	w := env.doAdmin(http.MethodPost, "/customers", map[string]any{
		"name": "Pedro", "phone": "11 99999-0000", "address": "Rua A, 10",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.Customer
	env.decode(w, &created)

	w = env.doAdmin(http.MethodPatch, fmt.Sprintf("/customers/%d", created.ID), map[string]any{
		"phone": "11 98888-1111",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.doAdmin(http.MethodGet, fmt.Sprintf("/customers/%d", created.ID), nil)
	var loaded domain.Customer
	env.decode(w, &loaded)
	require.Equal(t, "Pedro", loaded.Name)
	require.NotNil(t, loaded.Phone)
	require.Equal(t, "11 98888-1111", *loaded.Phone)
	// Absent fields stay untouched, they are not nulled.
	require.NotNil(t, loaded.Address)
	require.Equal(t, "Rua A, 10", *loaded.Address)

	w = env.doAdmin(http.MethodPatch, fmt.Sprintf("/customers/%d", created.ID), map[string]any{"name": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.doAdmin(http.MethodPatch, "/customers/9999", map[string]any{"name": "Ghost"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCustomerDeleteCascadesPrescriptions(t *testing.T) {
	env := newTestEnv(t)
	customerID := env.createCustomer("Laura")

	w := env.doAdmin(http.MethodPost, "/prescriptions", map[string]any{
		"customer_id": customerID, "od_sphere": -1.25, "os_sphere": -1.5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, int64(1), env.count("prescriptions"))

	w = env.doAdmin(http.MethodDelete, fmt.Sprintf("/customers/%d", customerID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, int64(0), env.count("prescriptions"))
}

func TestCustomerDeleteBlockedByReferences(t *testing.T) {
	env := newTestEnv(t)

	withSale := env.createCustomer("Com Venda")
	productID := env.createProduct("Frame Z", 5, 10.0)
	w := env.doAdmin(http.MethodPost, "/sales", saleBody(withSale, saleItemBody{ProductID: productID, Quantity: 1}))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.doAdmin(http.MethodDelete, fmt.Sprintf("/customers/%d", withSale), nil)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, int64(1), env.count("sales"))

	withAppointment := env.createCustomer("Com Consulta")
	w = env.doAdmin(http.MethodPost, "/appointments", map[string]any{
		"customer_id": withAppointment, "date": "2026-09-01", "time": "10:00", "type": "eye_exam",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.doAdmin(http.MethodDelete, fmt.Sprintf("/customers/%d", withAppointment), nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = env.doAdmin(http.MethodDelete, "/customers/9999", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCustomersSearch(t *testing.T) {
	env := newTestEnv(t)
	env.createCustomer("Alberto Souza")
	env.createCustomer("Beatriz Lima")

	w := env.doAdmin(http.MethodGet, "/customers?query=Beatriz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var customers []domain.Customer
	env.decode(w, &customers)
	require.Len(t, customers, 1)
	require.Equal(t, "Beatriz Lima", customers[0].Name)
}

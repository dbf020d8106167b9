package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greengrocer/produce_shop/internal/models"
)

func TestCreateOrderHandler(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser("buyer@example.com", "password", models.RoleCustomer)
	category := env.seedCategory("Fruits")
	apples := env.seedProduct("Apples", 8.50, 5, category.ID)

	payload := map[string]any{
		"items":            []map[string]any{{"product_id": apples.ID, "quantity": 3}},
		"delivery_address": "12 Orchard Lane",
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", payload)
	env.asUser(c, user)

	require.NoError(t, env.Orders.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.InDelta(t, 25.50, resp.Order.TotalAmount, 1e-9)
	require.Equal(t, models.OrderStatusPending, resp.Order.Status)
	require.Len(t, resp.Order.Items, 1)
}

func TestCreateOrderHandlerInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser("buyer@example.com", "password", models.RoleCustomer)
	category := env.seedCategory("Fruits")
	apples := env.seedProduct("Apples", 8.50, 2, category.ID)

	payload := map[string]any{
		"items":            []map[string]any{{"product_id": apples.ID, "quantity": 3}},
		"delivery_address": "12 Orchard Lane",
	}
	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", payload)
	env.asUser(c, user)

	err := env.Orders.CreateOrder(c)
	require.Equal(t, http.StatusBadRequest, httpCode(t, err))
	require.Contains(t, err.(interface{ Error() string }).Error(), "Available: 2")
}

func TestCreateOrderHandlerEmptyItems(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser("buyer@example.com", "password", models.RoleCustomer)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", map[string]any{
		"items":            []map[string]any{},
		"delivery_address": "12 Orchard Lane",
	})
	env.asUser(c, user)

	err := env.Orders.CreateOrder(c)
	require.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

func TestGetOrderHandlerForbidden(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser("owner@example.com", "password", models.RoleCustomer)
	other := env.seedUser("other@example.com", "password", models.RoleCustomer)
	category := env.seedCategory("Fruits")
	apples := env.seedProduct("Apples", 8.50, 5, category.ID)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", map[string]any{
		"items":            []map[string]any{{"product_id": apples.ID, "quantity": 1}},
		"delivery_address": "12 Orchard Lane",
	})
	env.asUser(c, owner)
	require.NoError(t, env.Orders.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	_, c2 := env.doJSONRequest(http.MethodGet, "/api/v1/orders/1", nil)
	c2.SetParamNames("id")
	c2.SetParamValues("1")
	env.asUser(c2, other)

	err := env.Orders.GetOrder(c2)
	require.Equal(t, http.StatusForbidden, httpCode(t, err))
}

func TestListOrdersHandlerPagination(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser("buyer@example.com", "password", models.RoleCustomer)
	category := env.seedCategory("Fruits")
	apples := env.seedProduct("Apples", 2, 100, category.ID)

	for i := 0; i < 3; i++ {
		rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", map[string]any{
			"items":            []map[string]any{{"product_id": apples.ID, "quantity": 1}},
			"delivery_address": "12 Orchard Lane",
		})
		env.asUser(c, user)
		require.NoError(t, env.Orders.CreateOrder(c))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/orders?page=1&limit=2", nil)
	env.asUser(c, user)
	require.NoError(t, env.Orders.GetOrders(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Orders     []models.Order `json:"orders"`
		Pagination struct {
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
			Total int64 `json:"total"`
			Pages int64 `json:"pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 2)
	require.EqualValues(t, 3, resp.Pagination.Total)
	require.EqualValues(t, 2, resp.Pagination.Pages)
}

func TestCancelOrderHandlerTerminal(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser("buyer@example.com", "password", models.RoleCustomer)
	category := env.seedCategory("Fruits")
	apples := env.seedProduct("Apples", 8.50, 5, category.ID)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", map[string]any{
		"items":            []map[string]any{{"product_id": apples.ID, "quantity": 1}},
		"delivery_address": "12 Orchard Lane",
	})
	env.asUser(c, user)
	require.NoError(t, env.Orders.CreateOrder(c))

	var created struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	require.NoError(t, env.DB.Model(&models.Order{}).Where("id = ?", created.Order.ID).
		Update("status", models.OrderStatusDelivered).Error)

	_, c2 := env.doJSONRequest(http.MethodPatch, "/api/v1/orders/1/cancel", nil)
	c2.SetParamNames("id")
	c2.SetParamValues("1")
	env.asUser(c2, user)

	err := env.Orders.CancelOrder(c2)
	require.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

func TestUpdateStatusHandler(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser("buyer@example.com", "password", models.RoleCustomer)
	admin := env.seedUser("admin@example.com", "password", models.RoleAdmin)
	category := env.seedCategory("Fruits")
	apples := env.seedProduct("Apples", 8.50, 5, category.ID)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", map[string]any{
		"items":            []map[string]any{{"product_id": apples.ID, "quantity": 1}},
		"delivery_address": "12 Orchard Lane",
	})
	env.asUser(c, user)
	require.NoError(t, env.Orders.CreateOrder(c))

	rec2, c2 := env.doJSONRequest(http.MethodPatch, "/api/v1/orders/1/status", map[string]string{
		"status": models.OrderStatusConfirmed,
	})
	c2.SetParamNames("id")
	c2.SetParamValues("1")
	env.asUser(c2, admin)

	require.NoError(t, env.Orders.UpdateStatus(c2))
	require.Equal(t, http.StatusOK, rec2.Code)

	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &resp))
	require.Equal(t, models.OrderStatusConfirmed, resp.Order.Status)

	// Unknown status is a 400.
	_, c3 := env.doJSONRequest(http.MethodPatch, "/api/v1/orders/1/status", map[string]string{
		"status": "SHIPPED",
	})
	c3.SetParamNames("id")
	c3.SetParamValues("1")
	env.asUser(c3, admin)
	err := env.Orders.UpdateStatus(c3)
	require.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greengrocer/produce_shop/internal/middleware/auth"
	"github.com/greengrocer/produce_shop/internal/service/order"
	"github.com/greengrocer/produce_shop/internal/util"
)

// OrderHandler is a thin HTTP layer over the order service; all invariants
// live in the service.
type OrderHandler struct {
	Orders *order.Service
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req order.CreateInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ord, err := h.Orders.Create(c.Request().Context(), auth.UserID(c), req)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"order": ord})
}

func (h *OrderHandler) GetOrders(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	limit := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, limit)

	orders, total, err := h.Orders.List(c.Request().Context(), auth.UserID(c), auth.Role(c), offset, limit)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"orders":     orders,
		"pagination": util.Paginate(page, limit, total),
	})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	ord, err := h.Orders.Get(c.Request().Context(), id, auth.UserID(c), auth.Role(c))
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"order": ord})
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ord, err := h.Orders.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"order": ord})
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	ord, err := h.Orders.Cancel(c.Request().Context(), id, auth.UserID(c), auth.Role(c))
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"order": ord})
}

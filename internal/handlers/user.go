package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/greengrocer/produce_shop/internal/middleware/auth"
	"github.com/greengrocer/produce_shop/internal/models"
	"github.com/greengrocer/produce_shop/internal/util"
)

type UserHandler struct {
	DB *gorm.DB
}

func (h *UserHandler) GetUsers(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	limit := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, limit)

	var total int64
	if err := h.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return httpError(c, err)
	}

	var users []models.User
	if err := h.DB.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users":      users,
		"pagination": util.Paginate(page, limit, total),
	})
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return httpError(c, err)
	}

	var orders []models.Order
	err = h.DB.Where("user_id = ?", id).Order("created_at DESC").Limit(10).Find(&orders).Error
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user, "orders": orders})
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.DB.First(&user, auth.UserID(c)).Error; err != nil {
		return httpError(c, err)
	}

	user.Name = req.Name
	user.Phone = req.Phone
	user.Address = req.Address

	if err := h.DB.Save(&user).Error; err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// UpdateRole changes a user's role; admin only.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleCustomer {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid role")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return httpError(c, err)
	}

	if err := h.DB.Model(&user).Update("role", req.Role).Error; err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/greengrocer/produce_shop/internal/models"
	"github.com/greengrocer/produce_shop/internal/mykafka"
)

type CategoryHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *CategoryHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "category_events", fmt.Sprint(event["categoryID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func activeProducts(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true).Order("name ASC")
}

func (h *CategoryHandler) GetCategories(c echo.Context) error {
	var categories []models.Category
	err := h.DB.Preload("Products", activeProducts).Order("name ASC").Find(&categories).Error
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": categories})
}

func (h *CategoryHandler) GetCategory(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var category models.Category
	if err := h.DB.Preload("Products", activeProducts).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "category not found")
		}
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"category": category})
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	var existing models.Category
	if err := h.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "category already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return httpError(c, err)
	}

	category := models.Category{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if err := h.DB.Create(&category).Error; err != nil {
		return httpError(c, err)
	}

	h.publish(c, map[string]any{
		"type":       "category_created",
		"categoryID": category.ID,
		"name":       category.Name,
	})

	return c.JSON(http.StatusCreated, echo.Map{"category": category})
}

func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "category not found")
		}
		return httpError(c, err)
	}

	if req.Name != "" {
		category.Name = req.Name
	}
	category.Description = req.Description
	category.ImageURL = req.ImageURL

	if err := h.DB.Save(&category).Error; err != nil {
		return httpError(c, err)
	}

	h.publish(c, map[string]any{
		"type":       "category_updated",
		"categoryID": category.ID,
		"name":       category.Name,
	})

	return c.JSON(http.StatusOK, echo.Map{"category": category})
}

// DeleteCategory is blocked while any product references the category.
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "category not found")
		}
		return httpError(c, err)
	}

	var refs int64
	if err := h.DB.Model(&models.Product{}).Where("category_id = ?", id).Count(&refs).Error; err != nil {
		return httpError(c, err)
	}
	if refs > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot delete category with products")
	}

	if err := h.DB.Delete(&category).Error; err != nil {
		return httpError(c, err)
	}

	h.publish(c, map[string]any{
		"type":       "category_deleted",
		"categoryID": id,
	})

	return c.NoContent(http.StatusNoContent)
}

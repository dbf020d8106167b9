package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/greengrocer/produce_shop/internal/es"
	"github.com/greengrocer/produce_shop/internal/models"
	"github.com/greengrocer/produce_shop/internal/mykafka"
	"github.com/greengrocer/produce_shop/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	ES       *elasticsearch.Client
	Producer *mykafka.Producer
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ProductHandler) index(c echo.Context, p *models.Product) {
	if err := es.IndexProduct(c.Request().Context(), h.ES, p); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

// GetProducts lists the active catalog with optional category and search
// filters, paginated and ordered by name.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	limit := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, limit)

	q := h.DB.Model(&models.Product{}).Where("is_active = ?", true)
	if cat := c.QueryParam("category"); cat != "" {
		q = q.Where("category_id = ?", parseIntDefault(cat, 0))
	}
	if search := c.QueryParam("search"); search != "" {
		// LOWER on both sides keeps the match case-insensitive on postgres too.
		like := "%" + search + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return httpError(c, err)
	}

	var products []models.Product
	if err := q.Preload("Category").Order("name ASC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products":   products,
		"pagination": util.Paginate(page, limit, total),
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var product models.Product
	if err := h.DB.Preload("Category").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"product": product})
}

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Unit        string  `json:"unit"`
	ImageURL    string  `json:"image_url"`
	Stock       int     `json:"stock"`
	CategoryID  uint    `json:"category_id"`
	IsActive    *bool   `json:"is_active"`
}

func (r *productRequest) validate() error {
	if r.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if r.Price <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price must be greater than zero")
	}
	if r.Stock < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "stock must not be negative")
	}
	return nil
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	var category models.Category
	if err := h.DB.First(&category, req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "category not found")
		}
		return httpError(c, err)
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Unit:        req.Unit,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		IsActive:    true,
		CategoryID:  req.CategoryID,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.DB.Create(&product).Error; err != nil {
		return httpError(c, err)
	}
	product.Category = &category

	h.index(c, &product)
	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusCreated, echo.Map{"product": product})
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return httpError(c, err)
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Unit = req.Unit
	product.ImageURL = req.ImageURL
	product.Stock = req.Stock
	product.CategoryID = req.CategoryID
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&product).Error; err != nil {
		return httpError(c, err)
	}
	if err := h.DB.Preload("Category").First(&product, id).Error; err != nil {
		return httpError(c, err)
	}

	h.index(c, &product)
	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusOK, echo.Map{"product": product})
}

func (h *ProductHandler) UpdateStock(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req struct {
		Stock int `json:"stock"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Stock < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "stock must not be negative")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return httpError(c, err)
	}

	if err := h.DB.Model(&product).Update("stock", req.Stock).Error; err != nil {
		return httpError(c, err)
	}

	h.publish(c, map[string]any{
		"type":      "product_stock_updated",
		"productID": product.ID,
		"stock":     req.Stock,
	})

	return c.JSON(http.StatusOK, echo.Map{"product": product})
}

// DeleteProduct refuses to delete a product referenced by order items; order
// history must keep its snapshot lines resolvable.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return httpError(c, err)
	}

	var refs int64
	if err := h.DB.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
		return httpError(c, err)
	}
	if refs > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot delete product with existing orders")
	}

	if err := h.DB.Delete(&product).Error; err != nil {
		return httpError(c, err)
	}

	if err := es.DeleteProduct(c.Request().Context(), h.ES, id); err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
	}
	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})

	return c.NoContent(http.StatusNoContent)
}

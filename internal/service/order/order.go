package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greengrocer/produce_shop/internal/apperr"
	"github.com/greengrocer/produce_shop/internal/logging"
	"github.com/greengrocer/produce_shop/internal/models"
	"github.com/greengrocer/produce_shop/internal/mykafka"
)

const eventsTopic = "order_events"

type Service struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	now      func() time.Time
}

func NewService(db *gorm.DB, producer *mykafka.Producer) *Service {
	return &Service{
		DB:       db,
		Producer: producer,
		now:      time.Now,
	}
}

type LineInput struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CreateInput struct {
	Items           []LineInput `json:"items"`
	DeliveryAddress string      `json:"delivery_address"`
	Notes           string      `json:"notes"`
	DeliveryDate    *time.Time  `json:"delivery_date"`
}

// Create validates every line against the current catalog state, snapshots
// unit prices, persists the order with its items and applies the stock
// decrements, all inside one transaction. Decrements are conditional
// ("stock >= quantity"), so two concurrent orders can never drive stock
// negative; if any line fails the whole order rolls back.
func (s *Service) Create(ctx context.Context, userID uint, in CreateInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Validationf("order must contain at least one item")
	}
	if in.DeliveryAddress == "" {
		return nil, apperr.Validationf("delivery address is required")
	}
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return nil, apperr.Validationf("quantity must be greater than zero")
		}
	}

	var ord models.Order

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var (
			total float64
			items []models.OrderItem
		)

		// Validate every line before touching anything.
		for _, line := range in.Items {
			var p models.Product
			if err := tx.First(&p, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFoundf("product not found: %d", line.ProductID)
				}
				return err
			}
			if !p.IsActive {
				return apperr.Validationf("product not available: %s", p.Name)
			}
			if line.Quantity > p.Stock {
				return apperr.Validationf("insufficient stock for %s. Available: %d", p.Name, p.Stock)
			}

			total += p.Price * float64(line.Quantity)
			items = append(items, models.OrderItem{
				ProductID: p.ID,
				Quantity:  line.Quantity,
				Price:     p.Price,
			})
		}

		ord = models.Order{
			OrderNumber:     newOrderNumber(s.now()),
			UserID:          userID,
			Status:          models.OrderStatusPending,
			TotalAmount:     total,
			DeliveryAddress: in.DeliveryAddress,
			Notes:           in.Notes,
			DeliveryDate:    in.DeliveryDate,
			Items:           items,
			CreatedAt:       s.now(),
		}
		if err := tx.Create(&ord).Error; err != nil {
			return err
		}

		for _, line := range in.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Another order got there first; report what is left now.
				var p models.Product
				if err := tx.First(&p, line.ProductID).Error; err != nil {
					return err
				}
				return apperr.Validationf("insufficient stock for %s. Available: %d", p.Name, p.Stock)
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	created, err := s.load(ctx, ord.ID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, fmt.Sprint(userID), map[string]any{
		"type":         "order_created",
		"orderID":      created.ID,
		"orderNumber":  created.OrderNumber,
		"userID":       created.UserID,
		"total_amount": created.TotalAmount,
	})

	return created, nil
}

// Get returns one order with nested projections. Customers only see their own.
func (s *Service) Get(ctx context.Context, id, requesterID uint, role string) (*models.Order, error) {
	ord, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && ord.UserID != requesterID {
		return nil, apperr.Authorizationf("access denied")
	}
	return ord, nil
}

// List returns the requester's orders, or every order for admins, newest first.
func (s *Service) List(ctx context.Context, requesterID uint, role string, offset, limit int) ([]models.Order, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Order{})
	if role != models.RoleAdmin {
		q = q.Where("user_id = ?", requesterID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := q.
		Preload("User").
		Preload("Items").
		Preload("Items.Product").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus moves an order along the explicit transition graph. It never
// touches stock; only Create and Cancel do.
func (s *Service) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, apperr.Validationf("invalid status: %s", status)
	}

	var ord models.Order
	if err := s.DB.WithContext(ctx).First(&ord, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("order not found")
		}
		return nil, err
	}

	if !allowedTransition(ord.Status, status) {
		return nil, apperr.Validationf("cannot change status from %s to %s", ord.Status, status)
	}

	if err := s.DB.WithContext(ctx).Model(&ord).Update("status", status).Error; err != nil {
		return nil, err
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, fmt.Sprint(updated.UserID), map[string]any{
		"type":        "order_status_updated",
		"orderID":     updated.ID,
		"orderNumber": updated.OrderNumber,
		"status":      updated.Status,
	})

	return updated, nil
}

// Cancel marks the order CANCELLED and restores exactly the quantities
// recorded on its items, independent of any stock changes since creation.
func (s *Service) Cancel(ctx context.Context, id, requesterID uint, role string) (*models.Order, error) {
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ord models.Order
		if err := tx.Preload("Items").First(&ord, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("order not found")
			}
			return err
		}

		if role != models.RoleAdmin && ord.UserID != requesterID {
			return apperr.Authorizationf("access denied")
		}
		if models.TerminalOrderStatus(ord.Status) {
			return apperr.Validationf("order cannot be cancelled")
		}

		// The flip is conditional so a concurrent cancel or delivery that
		// committed after our read cannot lead to a second restock.
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status NOT IN ?", ord.ID,
				[]string{models.OrderStatusDelivered, models.OrderStatusCancelled}).
			Update("status", models.OrderStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Validationf("order cannot be cancelled")
		}

		for _, item := range ord.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	cancelled, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, fmt.Sprint(cancelled.UserID), map[string]any{
		"type":        "order_cancelled",
		"orderID":     cancelled.ID,
		"orderNumber": cancelled.OrderNumber,
		"userID":      cancelled.UserID,
	})

	return cancelled, nil
}

func (s *Service) load(ctx context.Context, id uint) (*models.Order, error) {
	var ord models.Order
	err := s.DB.WithContext(ctx).
		Preload("User").
		Preload("Items").
		Preload("Items.Product").
		First(&ord, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("order not found")
		}
		return nil, err
	}
	return &ord, nil
}

func (s *Service) publish(ctx context.Context, key string, event map[string]any) {
	if err := s.Producer.PublishEvent(ctx, eventsTopic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}

// newOrderNumber builds an ORD-<date>-<random> identifier. The random suffix
// keeps concurrent creations from colliding.
func newOrderNumber(now time.Time) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

// allowedTransition encodes the monotonic status chain with the CANCELLED
// escape from any non-terminal state. Terminal states are frozen.
func allowedTransition(from, to string) bool {
	if models.TerminalOrderStatus(from) {
		return false
	}
	if to == models.OrderStatusCancelled {
		return true
	}
	next := map[string]string{
		models.OrderStatusPending:        models.OrderStatusConfirmed,
		models.OrderStatusConfirmed:      models.OrderStatusPreparing,
		models.OrderStatusPreparing:      models.OrderStatusOutForDelivery,
		models.OrderStatusOutForDelivery: models.OrderStatusDelivered,
	}
	return next[from] == to
}

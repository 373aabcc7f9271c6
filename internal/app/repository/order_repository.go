package repository

import (
	"github.com/nvak1999/book-store/internal/app/model"
	"github.com/nvak1999/book-store/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(tx *gorm.DB, order *model.Order) error
	FindByID(orderID uint) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	FindAll() ([]model.Order, error)
	Save(order *model.Order) error
	Transaction(fn func(tx *gorm.DB) error) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create inserts the order and its line items in one statement tree.
func (r *orderRepository) Create(tx *gorm.DB, order *model.Order) error {
	if tx == nil {
		tx = r.db
	}
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":    order.UserID,
		"item_count": len(order.Items),
	})

	if err := tx.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) FindByID(orderID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items").First(&order, orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("id").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to load orders for user", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

// FindAll is the admin view and includes soft-deleted orders.
func (r *orderRepository) FindAll() ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Unscoped().
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("id").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to load all orders", err, nil)
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) Save(order *model.Order) error {
	if err := r.db.Save(order).Error; err != nil {
		logger.Error("Failed to update order in database", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}
	return nil
}

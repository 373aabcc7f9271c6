package repository

import (
	"github.com/nvak1999/book-store/internal/app/model"
	"github.com/nvak1999/book-store/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	FindByUserID(userID uint) ([]model.CartItem, error)
	FindByUserAndBook(userID, bookID uint) (*model.CartItem, error)
	Save(item *model.CartItem) error
	Delete(userID, bookID uint) error
	DeleteByUserAndBookIDs(tx *gorm.DB, userID uint, bookIDs []uint) error
	DeleteOrderedLeftovers() (int64, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) FindByUserID(userID uint) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.Preload("Book").
		Where("user_id = ?", userID).
		Order("id").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to load cart items", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return items, nil
}

// FindByUserAndBook looks past soft deletes so re-adding a removed
// book reuses the old row.
func (r *cartRepository) FindByUserAndBook(userID, bookID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Unscoped().
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) Save(item *model.CartItem) error {
	if err := r.db.Unscoped().Save(item).Error; err != nil {
		logger.Error("Failed to save cart item", err, map[string]interface{}{
			"user_id": item.UserID,
			"book_id": item.BookID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) Delete(userID, bookID uint) error {
	return r.db.
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&model.CartItem{}).Error
}

// DeleteByUserAndBookIDs pulls the ordered books out of a user's cart.
// It runs on the caller's transaction so the pull commits with the order.
func (r *cartRepository) DeleteByUserAndBookIDs(tx *gorm.DB, userID uint, bookIDs []uint) error {
	if len(bookIDs) == 0 {
		return nil
	}
	if tx == nil {
		tx = r.db
	}
	err := tx.
		Where("user_id = ? AND book_id IN ?", userID, bookIDs).
		Delete(&model.CartItem{}).Error
	if err != nil {
		logger.Error("Failed to remove ordered books from cart", err, map[string]interface{}{
			"user_id": userID,
		})
	}
	return err
}

// DeleteOrderedLeftovers sweeps cart rows that survived an order commit:
// any live cart item whose book appears in a later order by the same user.
func (r *cartRepository) DeleteOrderedLeftovers() (int64, error) {
	result := r.db.
		Where(`EXISTS (
			SELECT 1 FROM order_items
			JOIN orders ON orders.id = order_items.order_id AND orders.deleted_at IS NULL
			WHERE order_items.deleted_at IS NULL
			  AND orders.user_id = cart_items.user_id
			  AND order_items.book_id = cart_items.book_id
			  AND orders.created_at >= cart_items.updated_at
		)`).
		Delete(&model.CartItem{})
	if result.Error != nil {
		logger.Error("Failed to sweep ordered cart leftovers", result.Error, nil)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

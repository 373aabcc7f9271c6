package repository

import (
	"github.com/nvak1999/book-store/internal/app/model"
	"github.com/nvak1999/book-store/pkg/logger"
	"gorm.io/gorm"
)

type BookCategoryRepository interface {
	Link(bookID, categoryID uint) error
	Unlink(bookID, categoryID uint) error
	ReplaceForBook(bookID uint, categoryIDs []uint) error
	CategoryIDsForBook(bookID uint) ([]uint, error)
	BookIDsForCategory(categoryID uint) ([]uint, error)
}

type bookCategoryRepository struct {
	db *gorm.DB
}

func NewBookCategoryRepository(db *gorm.DB) BookCategoryRepository {
	return &bookCategoryRepository{db: db}
}

// Link attaches a book to a category, restoring a previously removed
// membership row instead of violating the unique index.
func (r *bookCategoryRepository) Link(bookID, categoryID uint) error {
	var existing model.BookCategory
	err := r.db.Unscoped().
		Where("book_id = ? AND category_id = ?", bookID, categoryID).
		First(&existing).Error
	if err == nil {
		if !existing.DeletedAt.Valid {
			return nil
		}
		existing.DeletedAt = gorm.DeletedAt{}
		return r.db.Unscoped().Save(&existing).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	membership := model.BookCategory{BookID: bookID, CategoryID: categoryID}
	if err := r.db.Create(&membership).Error; err != nil {
		logger.Error("Failed to link book to category", err, map[string]interface{}{
			"book_id":     bookID,
			"category_id": categoryID,
		})
		return err
	}
	return nil
}

func (r *bookCategoryRepository) Unlink(bookID, categoryID uint) error {
	return r.db.
		Where("book_id = ? AND category_id = ?", bookID, categoryID).
		Delete(&model.BookCategory{}).Error
}

// ReplaceForBook reconciles a book's memberships against the given set:
// missing links are created, links outside the set are soft-removed.
func (r *bookCategoryRepository) ReplaceForBook(bookID uint, categoryIDs []uint) error {
	current, err := r.CategoryIDsForBook(bookID)
	if err != nil {
		return err
	}

	wanted := make(map[uint]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		wanted[id] = true
	}
	have := make(map[uint]bool, len(current))
	for _, id := range current {
		have[id] = true
	}

	for _, id := range categoryIDs {
		if !have[id] {
			if err := r.Link(bookID, id); err != nil {
				return err
			}
		}
	}
	for _, id := range current {
		if !wanted[id] {
			if err := r.Unlink(bookID, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *bookCategoryRepository) CategoryIDsForBook(bookID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.BookCategory{}).
		Where("book_id = ?", bookID).
		Pluck("category_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// BookIDsForCategory returns the live members of a category, skipping
// memberships whose book has itself been removed.
func (r *bookCategoryRepository) BookIDsForCategory(categoryID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.BookCategory{}).
		Joins("JOIN books ON books.id = book_categories.book_id AND books.deleted_at IS NULL").
		Where("book_categories.category_id = ?", categoryID).
		Pluck("book_categories.book_id", &ids).Error
	if err != nil {
		logger.Error("Failed to list book ids for category", err, map[string]interface{}{
			"category_id": categoryID,
		})
		return nil, err
	}
	return ids, nil
}

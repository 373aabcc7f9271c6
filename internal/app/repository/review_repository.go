package repository

import (
	"github.com/nvak1999/book-store/internal/app/model"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(review *model.Review) error
	FindByBookID(bookID uint) ([]model.Review, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(review *model.Review) error {
	return r.db.Create(review).Error
}

func (r *reviewRepository) FindByBookID(bookID uint) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.Where("book_id = ?", bookID).Order("id").Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

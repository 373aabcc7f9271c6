package model

import (
	"time"

	"gorm.io/gorm"
)

type Book struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Name            string         `gorm:"not null" json:"name"`
	Author          string         `gorm:"not null" json:"author"`
	Price           float64        `gorm:"not null" json:"price"`
	PublicationDate string         `gorm:"type:varchar(100)" json:"publicationDate"` // free-form, expected to contain a 4-digit year
	ImageURL        string         `json:"img"`
	Description     string         `gorm:"type:text" json:"description"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Memberships []BookCategory `gorm:"foreignKey:BookID" json:"-"`
	Reviews     []Review       `gorm:"foreignKey:BookID" json:"-"`
	OrderItems  []OrderItem    `gorm:"foreignKey:BookID" json:"-"`
	CartItems   []CartItem     `gorm:"foreignKey:BookID" json:"-"`
}

func (Book) TableName() string {
	return "books"
}

// BookCategory is the many-to-many association between books and categories.
// It is a pure join row: it never owns either side and is filtered
// independently of them.
type BookCategory struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	BookID     uint           `gorm:"not null;index:idx_book_category,unique" json:"book_id"`
	CategoryID uint           `gorm:"not null;index:idx_book_category,unique" json:"category_id"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Book     Book     `gorm:"foreignKey:BookID" json:"-"`
	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
}

func (BookCategory) TableName() string {
	return "book_categories"
}

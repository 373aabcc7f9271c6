package model

import (
	"time"

	"gorm.io/gorm"
)

// Review belongs to a book for read purposes but is stored and
// soft-deleted independently.
type Review struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	BookID    uint           `gorm:"not null;index" json:"book_id"`
	UserName  string         `gorm:"type:varchar(100)" json:"user_name"`
	Comment   string         `gorm:"type:text;not null" json:"comment"`
	Rating    int            `json:"rating"` // 1-5
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Book Book `gorm:"foreignKey:BookID" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}

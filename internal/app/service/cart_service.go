package service

import (
	"errors"

	"github.com/nvak1999/book-store/internal/app/model"
	"github.com/nvak1999/book-store/internal/app/repository"
	"github.com/nvak1999/book-store/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
)

type CartItemView struct {
	BookID   uint    `json:"bookId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"img"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}

type CartView struct {
	Items []CartItemView `json:"items"`
	Total float64        `json:"total"`
}

type CartService interface {
	GetCart(userID uint) (*CartView, error)
	AddToCart(userID, bookID uint, quantity int) (*CartView, error)
	UpdateQuantity(userID, bookID uint, quantity int) (*CartView, error)
	RemoveFromCart(userID, bookID uint) (*CartView, error)
	ReconcileOrderedItems() (int64, error)
}

type cartService struct {
	cartRepo repository.CartRepository
	bookRepo repository.BookRepository
	userRepo repository.UserRepository
}

func NewCartService(
	cartRepo repository.CartRepository,
	bookRepo repository.BookRepository,
	userRepo repository.UserRepository,
) CartService {
	return &cartService{
		cartRepo: cartRepo,
		bookRepo: bookRepo,
		userRepo: userRepo,
	}
}

func (s *cartService) GetCart(userID uint) (*CartView, error) {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	items, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	return buildCartView(items), nil
}

// AddToCart puts a book into the user's cart, adding to the quantity
// when the book is already there. Re-adding a removed book restores
// the old row.
func (s *cartService) AddToCart(userID, bookID uint, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.bookRepo.FindByID(bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	logger.Debug("Adding book to cart", map[string]interface{}{
		"user_id":  userID,
		"book_id":  bookID,
		"quantity": quantity,
	})

	item, err := s.cartRepo.FindByUserAndBook(userID, bookID)
	switch {
	case err == nil:
		if item.DeletedAt.Valid {
			item.Quantity = quantity
			item.DeletedAt = gorm.DeletedAt{}
		} else {
			item.Quantity += quantity
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = &model.CartItem{UserID: userID, BookID: bookID, Quantity: quantity}
	default:
		return nil, err
	}

	if err := s.cartRepo.Save(item); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

func (s *cartService) UpdateQuantity(userID, bookID uint, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.cartRepo.FindByUserAndBook(userID, bookID)
	if err != nil || item.DeletedAt.Valid {
		if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	item.Quantity = quantity
	if err := s.cartRepo.Save(item); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

func (s *cartService) RemoveFromCart(userID, bookID uint) (*CartView, error) {
	item, err := s.cartRepo.FindByUserAndBook(userID, bookID)
	if err != nil || item.DeletedAt.Valid {
		if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	if err := s.cartRepo.Delete(userID, bookID); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

// ReconcileOrderedItems removes cart rows for books that were already
// ordered. Order placement clears them in the same transaction, so this
// is a periodic backstop rather than the primary path.
func (s *cartService) ReconcileOrderedItems() (int64, error) {
	removed, err := s.cartRepo.DeleteOrderedLeftovers()
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		logger.Info("Removed ordered leftovers from carts", map[string]interface{}{
			"removed": removed,
		})
	}
	return removed, nil
}

func buildCartView(items []model.CartItem) *CartView {
	view := &CartView{Items: []CartItemView{}}
	for _, item := range items {
		// The preload is scoped, so a row whose book was deleted after
		// being added carries a zero-valued Book. Such a line cannot be
		// ordered anymore and is left out of the view.
		if item.Book.ID == 0 {
			continue
		}
		subtotal := item.Book.Price * float64(item.Quantity)
		view.Items = append(view.Items, CartItemView{
			BookID:   item.BookID,
			Name:     item.Book.Name,
			Price:    item.Book.Price,
			ImageURL: item.Book.ImageURL,
			Quantity: item.Quantity,
			Subtotal: subtotal,
		})
		view.Total += subtotal
	}
	return view
}

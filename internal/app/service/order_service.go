package service

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/nvak1999/book-store/internal/app/model"
	"github.com/nvak1999/book-store/internal/app/repository"
	"github.com/nvak1999/book-store/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyOrder    = errors.New("order must contain at least one book")
)

// MissingBookError names the first requested book that could not be
// resolved, so the caller learns which line broke the order.
type MissingBookError struct {
	BookID uint
}

func (e *MissingBookError) Error() string {
	return fmt.Sprintf("book with id %d not found", e.BookID)
}

type OrderItemInput struct {
	BookID   uint `json:"bookId"`
	Quantity int  `json:"quantity"`
}

type CreateOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress string
}

type OrderItemView struct {
	BookID   uint    `json:"bookId"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

type OrderView struct {
	ID              uint              `json:"id"`
	UserID          uint              `json:"userId"`
	Status          model.OrderStatus `json:"status"`
	TotalAmount     float64           `json:"totalAmount"`
	ShippingAddress string            `json:"shippingAddress"`
	Books           []OrderItemView   `json:"books"`
	CreatedAt       string            `json:"createdAt"`
	Cancelled       bool              `json:"-"`
}

type OrderService interface {
	CreateOrder(userID uint, input CreateOrderInput) (*OrderView, error)
	GetUserOrders(userID uint) ([]OrderView, error)
	GetOrder(userID, orderID uint) (*OrderView, error)
	UpdateOrderStatus(userID, orderID uint, status model.OrderStatus) (*OrderView, error)
	DeleteOrder(userID, orderID uint) error
	ListAllOrders() ([]OrderView, error)
	ExportOrdersXLSX() ([]byte, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	userRepo  repository.UserRepository
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	userRepo repository.UserRepository,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		userRepo:  userRepo,
	}
}

// CreateOrder snapshots the requested books into line items, totals
// them, and pulls the ordered books out of the user's cart. The whole
// write runs in one transaction: a missing book aborts everything.
func (s *orderService) CreateOrder(userID uint, input CreateOrderInput) (*OrderView, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	logger.Debug("Creating order", map[string]interface{}{
		"user_id":    userID,
		"item_count": len(input.Items),
	})

	shippingAddress := input.ShippingAddress
	if shippingAddress == "" {
		shippingAddress = formatUserAddress(user)
	}

	order := &model.Order{
		UserID:          userID,
		Status:          model.StatusProcessing,
		ShippingAddress: shippingAddress,
	}

	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		bookIDs := make([]uint, 0, len(input.Items))
		for _, line := range input.Items {
			if line.Quantity < 1 {
				return ErrInvalidQuantity
			}

			var book model.Book
			if err := tx.First(&book, line.BookID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &MissingBookError{BookID: line.BookID}
				}
				return err
			}

			total := book.Price * float64(line.Quantity)
			order.Items = append(order.Items, model.OrderItem{
				BookID:   book.ID,
				Name:     book.Name,
				Quantity: line.Quantity,
				Price:    book.Price,
				Total:    total,
			})
			order.TotalAmount += total
			bookIDs = append(bookIDs, book.ID)
		}

		if err := s.orderRepo.Create(tx, order); err != nil {
			return err
		}
		return s.cartRepo.DeleteByUserAndBookIDs(tx, userID, bookIDs)
	})
	if err != nil {
		var missing *MissingBookError
		if !errors.As(err, &missing) && !errors.Is(err, ErrInvalidQuantity) {
			logger.Error("Failed to create order", err, map[string]interface{}{
				"user_id": userID,
			})
		}
		return nil, err
	}

	logger.Info("Order created", map[string]interface{}{
		"order_id":     order.ID,
		"user_id":      userID,
		"total_amount": order.TotalAmount,
	})

	view := toOrderView(order)
	return &view, nil
}

// GetUserOrders returns the user's orders with line items exactly as
// captured at order time. Later edits to a book do not leak in.
func (s *orderService) GetUserOrders(userID uint) ([]OrderView, error) {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, toOrderView(&orders[i]))
	}
	return views, nil
}

func (s *orderService) GetOrder(userID, orderID uint) (*OrderView, error) {
	order, err := s.findUserOrder(userID, orderID)
	if err != nil {
		return nil, err
	}
	view := toOrderView(order)
	return &view, nil
}

// UpdateOrderStatus moves an order to the given status. An order that
// is already cancelled stays cancelled, reported via the Cancelled
// flag rather than an error.
func (s *orderService) UpdateOrderStatus(userID, orderID uint, status model.OrderStatus) (*OrderView, error) {
	order, err := s.findUserOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == model.StatusCancelled {
		view := toOrderView(order)
		view.Cancelled = true
		return &view, nil
	}

	order.Status = status
	if err := s.orderRepo.Save(order); err != nil {
		return nil, err
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})

	view := toOrderView(order)
	return &view, nil
}

func (s *orderService) DeleteOrder(userID, orderID uint) error {
	order, err := s.findUserOrder(userID, orderID)
	if err != nil {
		return err
	}

	if err := s.softDeleteWithItems(order); err != nil {
		return err
	}

	logger.Info("Order deleted", map[string]interface{}{
		"order_id": orderID,
		"user_id":  userID,
	})
	return nil
}

func (s *orderService) softDeleteWithItems(order *model.Order) error {
	return s.orderRepo.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Order{}, order.ID).Error; err != nil {
			return err
		}
		return tx.Where("order_id = ?", order.ID).Delete(&model.OrderItem{}).Error
	})
}

func (s *orderService) ListAllOrders() ([]OrderView, error) {
	orders, err := s.orderRepo.FindAll()
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, toOrderView(&orders[i]))
	}
	return views, nil
}

// ExportOrdersXLSX renders every order, one line item per row, into a
// spreadsheet for back-office use.
func (s *orderService) ExportOrdersXLSX() ([]byte, error) {
	orders, err := s.orderRepo.FindAll()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Order ID", "User ID", "Status", "Book", "Quantity", "Unit Price", "Line Total", "Order Total", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, order := range orders {
		for _, item := range order.Items {
			values := []interface{}{
				order.ID,
				order.UserID,
				string(order.Status),
				item.Name,
				item.Quantity,
				item.Price,
				item.Total,
				order.TotalAmount,
				order.CreatedAt.Format("2006-01-02 15:04:05"),
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(sheet, cell, v)
			}
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		logger.Error("Failed to write orders spreadsheet", err, nil)
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *orderService) findUserOrder(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func toOrderView(order *model.Order) OrderView {
	view := OrderView{
		ID:              order.ID,
		UserID:          order.UserID,
		Status:          order.Status,
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		Books:           []OrderItemView{},
		CreatedAt:       order.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, item := range order.Items {
		view.Books = append(view.Books, OrderItemView{
			BookID:   item.BookID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
			Total:    item.Total,
		})
	}
	return view
}

func formatUserAddress(user *model.User) string {
	addr := user.Address
	if user.City != "" {
		addr += ", " + user.City
	}
	if user.State != "" {
		addr += ", " + user.State
	}
	if user.Zipcode != "" {
		addr += " " + user.Zipcode
	}
	return addr
}

package service

import (
	"testing"

	"github.com/nvak1999/book-store/internal/app/model"
	"github.com/nvak1999/book-store/internal/app/repository"
	"github.com/nvak1999/book-store/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderServiceFixture struct {
	service OrderService
	db      *gorm.DB
	user    *model.User
}

func setupOrderServiceTest(t *testing.T) *orderServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)

	user := &model.User{
		Name:         "Buyer",
		Email:        "buyer@example.com",
		PasswordHash: "hash",
		Address:      "13 Fiction Street",
		City:         "Springfield",
	}
	require.NoError(t, testDB.Create(user).Error)

	return &orderServiceFixture{
		service: NewOrderService(orderRepo, cartRepo, userRepo),
		db:      testDB,
		user:    user,
	}
}

func (f *orderServiceFixture) seedBook(t *testing.T, name string, price float64) *model.Book {
	t.Helper()
	book := &model.Book{Name: name, Author: "Author", Price: price}
	require.NoError(t, f.db.Create(book).Error)
	return book
}

func TestOrderService_CreateOrder(t *testing.T) {
	f := setupOrderServiceTest(t)

	dune := f.seedBook(t, "Dune", 19.99)
	hobbit := f.seedBook(t, "The Hobbit", 12.00)

	order, err := f.service.CreateOrder(f.user.ID, CreateOrderInput{
		Items: []OrderItemInput{
			{BookID: dune.ID, Quantity: 2},
			{BookID: hobbit.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusProcessing, order.Status)
	assert.InDelta(t, 51.98, order.TotalAmount, 0.001)
	require.Len(t, order.Books, 2)
	assert.Equal(t, "Dune", order.Books[0].Name)
	assert.InDelta(t, 39.98, order.Books[0].Total, 0.001)
	assert.Equal(t, "13 Fiction Street, Springfield", order.ShippingAddress)
}

func TestOrderService_CreateOrder_MissingBookAbortsAll(t *testing.T) {
	f := setupOrderServiceTest(t)

	dune := f.seedBook(t, "Dune", 19.99)

	_, err := f.service.CreateOrder(f.user.ID, CreateOrderInput{
		Items: []OrderItemInput{
			{BookID: dune.ID, Quantity: 1},
			{BookID: 9999, Quantity: 1},
		},
	})
	require.Error(t, err)

	var missing *MissingBookError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, uint(9999), missing.BookID)

	// Nothing from the order survived the rollback.
	var count int64
	f.db.Model(&model.Order{}).Count(&count)
	assert.Zero(t, count)
	f.db.Model(&model.OrderItem{}).Count(&count)
	assert.Zero(t, count)
}

func TestOrderService_CreateOrder_DeletedBookIsMissing(t *testing.T) {
	f := setupOrderServiceTest(t)

	gone := f.seedBook(t, "Gone", 10)
	require.NoError(t, f.db.Delete(gone).Error)

	_, err := f.service.CreateOrder(f.user.ID, CreateOrderInput{
		Items: []OrderItemInput{{BookID: gone.ID, Quantity: 1}},
	})

	var missing *MissingBookError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, gone.ID, missing.BookID)
}

func TestOrderService_CreateOrder_PullsOrderedBooksFromCart(t *testing.T) {
	f := setupOrderServiceTest(t)

	dune := f.seedBook(t, "Dune", 19.99)
	hobbit := f.seedBook(t, "The Hobbit", 12.00)

	require.NoError(t, f.db.Create(&model.CartItem{UserID: f.user.ID, BookID: dune.ID, Quantity: 2}).Error)
	require.NoError(t, f.db.Create(&model.CartItem{UserID: f.user.ID, BookID: hobbit.ID, Quantity: 1}).Error)

	_, err := f.service.CreateOrder(f.user.ID, CreateOrderInput{
		Items: []OrderItemInput{{BookID: dune.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	// Only the ordered book was pulled.
	var remaining []model.CartItem
	require.NoError(t, f.db.Where("user_id = ?", f.user.ID).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, hobbit.ID, remaining[0].BookID)
}

func TestOrderService_LineItemsKeepOrderTimeSnapshot(t *testing.T) {
	f := setupOrderServiceTest(t)

	book := f.seedBook(t, "First Edition", 10.00)

	order, err := f.service.CreateOrder(f.user.ID, CreateOrderInput{
		Items: []OrderItemInput{{BookID: book.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// Rename and reprice the book after the order.
	book.Name = "Second Edition"
	book.Price = 99.99
	require.NoError(t, f.db.Save(book).Error)

	got, err := f.service.GetOrder(f.user.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Books, 1)
	assert.Equal(t, "First Edition", got.Books[0].Name)
	assert.Equal(t, 10.00, got.Books[0].Price)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	f := setupOrderServiceTest(t)

	book := f.seedBook(t, "Dune", 19.99)
	order, err := f.service.CreateOrder(f.user.ID, CreateOrderInput{
		Items: []OrderItemInput{{BookID: book.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := f.service.UpdateOrderStatus(f.user.ID, order.ID, model.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, model.StatusShipped, updated.Status)
	assert.False(t, updated.Cancelled)

	_, err = f.service.UpdateOrderStatus(f.user.ID, 9999, model.StatusShipped)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_CancelledOrderStaysCancelled(t *testing.T) {
	f := setupOrderServiceTest(t)

	book := f.seedBook(t, "Dune", 19.99)
	order, err := f.service.CreateOrder(f.user.ID, CreateOrderInput{
		Items: []OrderItemInput{{BookID: book.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.service.UpdateOrderStatus(f.user.ID, order.ID, model.StatusCancelled)
	require.NoError(t, err)

	// Any further status change is a no-op flagged as already cancelled.
	again, err := f.service.UpdateOrderStatus(f.user.ID, order.ID, model.StatusShipped)
	require.NoError(t, err)
	assert.True(t, again.Cancelled)
	assert.Equal(t, model.StatusCancelled, again.Status)
}

func TestOrderService_GetOrder_ScopedToOwner(t *testing.T) {
	f := setupOrderServiceTest(t)

	other := &model.User{Name: "Other", Email: "other@example.com", PasswordHash: "hash"}
	require.NoError(t, f.db.Create(other).Error)

	book := f.seedBook(t, "Dune", 19.99)
	order, err := f.service.CreateOrder(f.user.ID, CreateOrderInput{
		Items: []OrderItemInput{{BookID: book.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.service.GetOrder(other.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_DeleteOrder(t *testing.T) {
	f := setupOrderServiceTest(t)

	book := f.seedBook(t, "Dune", 19.99)
	order, err := f.service.CreateOrder(f.user.ID, CreateOrderInput{
		Items: []OrderItemInput{{BookID: book.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteOrder(f.user.ID, order.ID))

	_, err = f.service.GetOrder(f.user.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// Deleting a deleted order reports not found.
	assert.ErrorIs(t, f.service.DeleteOrder(f.user.ID, order.ID), ErrOrderNotFound)

	// The admin view still sees it.
	all, err := f.service.ListAllOrders()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	f := setupOrderServiceTest(t)

	book := f.seedBook(t, "Dune", 19.99)

	_, err := f.service.CreateOrder(f.user.ID, CreateOrderInput{})
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = f.service.CreateOrder(9999, CreateOrderInput{
		Items: []OrderItemInput{{BookID: book.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.service.CreateOrder(f.user.ID, CreateOrderInput{
		Items: []OrderItemInput{{BookID: book.ID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestOrderService_ExportOrdersXLSX(t *testing.T) {
	f := setupOrderServiceTest(t)

	book := f.seedBook(t, "Dune", 19.99)
	_, err := f.service.CreateOrder(f.user.ID, CreateOrderInput{
		Items: []OrderItemInput{{BookID: book.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	data, err := f.service.ExportOrdersXLSX()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// XLSX files are zip archives.
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}

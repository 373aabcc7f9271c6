package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nvak1999/book-store/internal/app/model"
	"github.com/nvak1999/book-store/internal/app/service"
	apperrors "github.com/nvak1999/book-store/internal/errors"
	"github.com/nvak1999/book-store/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type CreateOrderRequest struct {
	Books           []service.OrderItemInput `json:"books" binding:"required"`
	ShippingAddress string                   `json:"shippingAddress"`
}

type UpdateOrderRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

// requireOrderAccess lets a user through to their own orders and an
// admin through to anyone's.
func requireOrderAccess(c *gin.Context) (uint, bool) {
	pathUserID, ok := parseIDParam(c, "userId")
	if !ok {
		apperrors.NotFound(c, "User not found", apperrors.NameGetOrderError)
		return 0, false
	}

	authUserID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return 0, false
	}
	if authUserID != pathUserID && !middleware.IsAdmin(c) {
		apperrors.Forbidden(c, "You can only access your own orders")
		return 0, false
	}
	return pathUserID, true
}

// CreateOrder places an order for the given user.
// POST /api/v1/orders/:userId
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireOrderAccess(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid order creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Invalid request data", apperrors.NameCreateOrderError)
		return
	}

	order, err := ctrl.orderService.CreateOrder(userID, service.CreateOrderInput{
		Items:           req.Books,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		var missing *service.MissingBookError
		switch {
		case errors.As(err, &missing):
			apperrors.NotFound(c, fmt.Sprintf("Book with id %d not found", missing.BookID), apperrors.NameCreateOrderError)
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, "User not found", apperrors.NameCreateOrderError)
		case errors.Is(err, service.ErrEmptyOrder), errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, err.Error(), apperrors.NameCreateOrderError)
		default:
			log.Error("Failed to create order", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.InternalError(c, "Failed to create order", apperrors.NameCreateOrderError)
		}
		return
	}

	log.Info("Order created successfully", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  userID,
	})
	apperrors.SendResponse(c, http.StatusCreated, order, "Order created successfully")
}

// GetUserOrders lists the user's orders.
// GET /api/v1/orders/:userId
func (ctrl *OrderController) GetUserOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireOrderAccess(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, "User not found", apperrors.NameGetOrderError)
			return
		}
		log.Error("Failed to fetch orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch orders", apperrors.NameGetOrderError)
		return
	}

	apperrors.SendResponse(c, http.StatusOK, orders, "Orders fetched successfully")
}

// GetOrder returns one of the user's orders.
// GET /api/v1/orders/:userId/:orderId
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireOrderAccess(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		apperrors.NotFound(c, "Order not found", apperrors.NameGetOrderError)
		return
	}

	order, err := ctrl.orderService.GetOrder(userID, orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, "Order not found", apperrors.NameGetOrderError)
			return
		}
		log.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.InternalError(c, "Failed to fetch order", apperrors.NameGetOrderError)
		return
	}

	apperrors.SendResponse(c, http.StatusOK, order, "Order fetched successfully")
}

// UpdateOrder changes an order's status. Cancelling an order that is
// already cancelled is a no-op with its own message.
// PUT /api/v1/orders/:userId/:orderId
func (ctrl *OrderController) UpdateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireOrderAccess(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		apperrors.NotFound(c, "Order not found", apperrors.NameOrderError)
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "status is required", apperrors.NameOrderError)
		return
	}

	order, err := ctrl.orderService.UpdateOrderStatus(userID, orderID, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, "Order not found", apperrors.NameOrderError)
			return
		}
		log.Error("Failed to update order", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.InternalError(c, "Failed to update order", apperrors.NameOrderError)
		return
	}

	if order.Cancelled {
		apperrors.SendResponse(c, http.StatusOK, order, "Order is already cancelled")
		return
	}
	apperrors.SendResponse(c, http.StatusOK, order, "Order updated successfully")
}

// DeleteOrder removes one of the user's orders.
// DELETE /api/v1/orders/:userId/:orderId
func (ctrl *OrderController) DeleteOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireOrderAccess(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		apperrors.NotFound(c, "Order not found", apperrors.NameOrderError)
		return
	}

	if err := ctrl.orderService.DeleteOrder(userID, orderID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, "Order not found", apperrors.NameOrderError)
			return
		}
		log.Error("Failed to delete order", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.InternalError(c, "Failed to delete order", apperrors.NameOrderError)
		return
	}

	apperrors.SendResponse(c, http.StatusOK, nil, "Order deleted successfully")
}

// ListAllOrders returns every order, deleted ones included (admin only).
// GET /api/v1/admin/orders
func (ctrl *OrderController) ListAllOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orders, err := ctrl.orderService.ListAllOrders()
	if err != nil {
		log.Error("Failed to fetch all orders", err, nil)
		apperrors.InternalError(c, "Failed to fetch orders", apperrors.NameGetOrderError)
		return
	}

	apperrors.SendResponse(c, http.StatusOK, orders, "Orders fetched successfully")
}

// ExportOrders streams every order as a spreadsheet (admin only).
// GET /api/v1/admin/orders/export
func (ctrl *OrderController) ExportOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	data, err := ctrl.orderService.ExportOrdersXLSX()
	if err != nil {
		log.Error("Failed to export orders", err, nil)
		apperrors.InternalError(c, "Failed to export orders", apperrors.NameGetOrderError)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="orders.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

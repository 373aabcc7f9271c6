package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nvak1999/book-store/internal/app/service"
	apperrors "github.com/nvak1999/book-store/internal/errors"
	"github.com/nvak1999/book-store/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	BookID   uint `json:"bookId" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,gte=1"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity" binding:"required,gte=1"`
}

// GetCart returns the authenticated user's cart.
// GET /api/v1/carts
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	cart, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch cart", apperrors.NameCartError)
		return
	}

	apperrors.SendResponse(c, http.StatusOK, cart, "Cart fetched successfully")
}

// AddToCart puts a book into the cart.
// POST /api/v1/carts
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "bookId and quantity are required", apperrors.NameCartError)
		return
	}

	cart, err := ctrl.cartService.AddToCart(userID, req.BookID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookNotFound):
			apperrors.NotFound(c, "Book not found", apperrors.NameCartError)
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, err.Error(), apperrors.NameCartError)
		default:
			log.Error("Failed to add book to cart", err, map[string]interface{}{
				"user_id": userID,
				"book_id": req.BookID,
			})
			apperrors.InternalError(c, "Failed to add book to cart", apperrors.NameCartError)
		}
		return
	}

	apperrors.SendResponse(c, http.StatusOK, cart, "Book added to cart")
}

// UpdateCartItem sets the quantity for a book already in the cart.
// PUT /api/v1/carts/:bookId
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		apperrors.NotFound(c, "Cart item not found", apperrors.NameCartError)
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "quantity is required", apperrors.NameCartError)
		return
	}

	cart, err := ctrl.cartService.UpdateQuantity(userID, bookID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartItemNotFound):
			apperrors.NotFound(c, "Cart item not found", apperrors.NameCartError)
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, err.Error(), apperrors.NameCartError)
		default:
			log.Error("Failed to update cart item", err, map[string]interface{}{
				"user_id": userID,
				"book_id": bookID,
			})
			apperrors.InternalError(c, "Failed to update cart item", apperrors.NameCartError)
		}
		return
	}

	apperrors.SendResponse(c, http.StatusOK, cart, "Cart updated successfully")
}

// RemoveFromCart takes a book out of the cart.
// DELETE /api/v1/carts/:bookId
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		apperrors.NotFound(c, "Cart item not found", apperrors.NameCartError)
		return
	}

	cart, err := ctrl.cartService.RemoveFromCart(userID, bookID)
	if err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			apperrors.NotFound(c, "Cart item not found", apperrors.NameCartError)
			return
		}
		log.Error("Failed to remove book from cart", err, map[string]interface{}{
			"user_id": userID,
			"book_id": bookID,
		})
		apperrors.InternalError(c, "Failed to remove book from cart", apperrors.NameCartError)
		return
	}

	apperrors.SendResponse(c, http.StatusOK, cart, "Book removed from cart")
}

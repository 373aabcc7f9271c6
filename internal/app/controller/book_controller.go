package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nvak1999/book-store/internal/app/service"
	apperrors "github.com/nvak1999/book-store/internal/errors"
	"github.com/nvak1999/book-store/internal/middleware"
)

type BookController struct {
	bookService service.BookService
}

func NewBookController(bookService service.BookService) *BookController {
	return &BookController{
		bookService: bookService,
	}
}

type CreateBookRequest struct {
	Name            string  `json:"name" binding:"required"`
	Author          string  `json:"author" binding:"required"`
	Price           float64 `json:"price" binding:"required,gt=0"`
	PublicationDate string  `json:"publicationDate"`
	ImageURL        string  `json:"img"`
	Description     string  `json:"description"`
	CategoryIDs     []uint  `json:"categories"`
}

type UpdateBookRequest struct {
	Name            *string  `json:"name"`
	Author          *string  `json:"author"`
	Price           *float64 `json:"price"`
	PublicationDate *string  `json:"publicationDate"`
	ImageURL        *string  `json:"img"`
	Description     *string  `json:"description"`
	CategoryIDs     []uint   `json:"categories"`
}

// ListBooks returns one page of the catalog.
// GET /api/v1/books?search=&minPrice=&maxPrice=&page=&limit=
func (ctrl *BookController) ListBooks(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts := service.BookListOptions{
		Search: c.Query("search"),
		Page:   parseIntQuery(c, "page", 1),
		Limit:  parseIntQuery(c, "limit", 10),
	}
	if v, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil {
		opts.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil {
		opts.MaxPrice = &v
	}

	page, err := ctrl.bookService.ListBooks(opts)
	if err != nil {
		log.Error("Failed to list books", err, nil)
		apperrors.InternalError(c, "Failed to fetch books", apperrors.NameGetBookError)
		return
	}

	log.Info("Books fetched successfully", map[string]interface{}{
		"count": len(page.Books),
	})
	apperrors.SendResponse(c, http.StatusOK, page, "Books fetched successfully")
}

// GetBookByID returns one book with its categories and reviews.
// GET /api/v1/books/:id
func (ctrl *BookController) GetBookByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		// A malformed identifier can never match a book.
		apperrors.NotFound(c, "Book not found", apperrors.NameGetBookError)
		return
	}

	book, err := ctrl.bookService.GetBookByID(id)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			log.Warn("Book not found", map[string]interface{}{
				"book_id": id,
			})
			apperrors.NotFound(c, "Book not found", apperrors.NameGetBookError)
			return
		}
		log.Error("Failed to fetch book", err, map[string]interface{}{
			"book_id": id,
		})
		apperrors.InternalError(c, "Failed to fetch book", apperrors.NameGetBookError)
		return
	}

	apperrors.SendResponse(c, http.StatusOK, book, "Book fetched successfully")
}

// CreateBook creates a book (admin only).
// POST /api/v1/books
func (ctrl *BookController) CreateBook(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid book creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Invalid request data", apperrors.NameCreateBookError)
		return
	}

	book, err := ctrl.bookService.CreateBook(service.CreateBookInput{
		Name:            req.Name,
		Author:          req.Author,
		Price:           req.Price,
		PublicationDate: req.PublicationDate,
		ImageURL:        req.ImageURL,
		Description:     req.Description,
		CategoryIDs:     req.CategoryIDs,
	})
	if err != nil {
		log.Error("Failed to create book", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.InternalError(c, "Failed to create book", apperrors.NameCreateBookError)
		return
	}

	log.Info("Book created successfully", map[string]interface{}{
		"book_id": book.ID,
	})
	apperrors.SendResponse(c, http.StatusCreated, book, "Book created successfully")
}

// UpdateBook merges the provided fields into a book (admin only).
// PUT /api/v1/books/:id
func (ctrl *BookController) UpdateBook(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.NotFound(c, "Book not found", apperrors.NameUpdateBookError)
		return
	}

	var req UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid book update request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Invalid request data", apperrors.NameUpdateBookError)
		return
	}

	book, err := ctrl.bookService.UpdateBook(id, service.UpdateBookInput{
		Name:            req.Name,
		Author:          req.Author,
		Price:           req.Price,
		PublicationDate: req.PublicationDate,
		ImageURL:        req.ImageURL,
		Description:     req.Description,
		CategoryIDs:     req.CategoryIDs,
	})
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			apperrors.NotFound(c, "Book not found", apperrors.NameUpdateBookError)
			return
		}
		log.Error("Failed to update book", err, map[string]interface{}{
			"book_id": id,
		})
		apperrors.InternalError(c, "Failed to update book", apperrors.NameUpdateBookError)
		return
	}

	apperrors.SendResponse(c, http.StatusOK, book, "Book updated successfully")
}

// DeleteBook removes a book (admin only).
// DELETE /api/v1/books/:id
func (ctrl *BookController) DeleteBook(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.NotFound(c, "Book not found", apperrors.NameDeleteBookError)
		return
	}

	if err := ctrl.bookService.DeleteBook(id); err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			apperrors.NotFound(c, "Book not found", apperrors.NameDeleteBookError)
			return
		}
		log.Error("Failed to delete book", err, map[string]interface{}{
			"book_id": id,
		})
		apperrors.InternalError(c, "Failed to delete book", apperrors.NameDeleteBookError)
		return
	}

	apperrors.SendResponse(c, http.StatusOK, nil, "Book deleted successfully")
}

type AddReviewRequest struct {
	UserName string `json:"userName" binding:"required"`
	Comment  string `json:"comment" binding:"required"`
	Rating   int    `json:"rating" binding:"required"`
}

// AddReview attaches a review to a book.
// POST /api/v1/books/:id/reviews
func (ctrl *BookController) AddReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.NotFound(c, "Book not found", apperrors.NameReviewError)
		return
	}

	var req AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid review request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Invalid request data", apperrors.NameReviewError)
		return
	}

	review, err := ctrl.bookService.AddReview(id, service.AddReviewInput{
		UserName: req.UserName,
		Comment:  req.Comment,
		Rating:   req.Rating,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookNotFound):
			apperrors.NotFound(c, "Book not found", apperrors.NameReviewError)
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, "Rating must be between 1 and 5", apperrors.NameReviewError)
		default:
			log.Error("Failed to create review", err, map[string]interface{}{
				"book_id": id,
			})
			apperrors.InternalError(c, "Failed to create review", apperrors.NameReviewError)
		}
		return
	}

	apperrors.SendResponse(c, http.StatusCreated, review, "Review created successfully")
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

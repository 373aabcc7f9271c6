package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nvak1999/book-store/internal/app/service"
	apperrors "github.com/nvak1999/book-store/internal/errors"
	"github.com/nvak1999/book-store/internal/middleware"
)

type CategoryController struct {
	categoryService service.CategoryService
}

func NewCategoryController(categoryService service.CategoryService) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
	}
}

type CategoryRequest struct {
	CategoryName string `json:"categoryName" binding:"required"`
	Description  string `json:"description"`
}

type UpdateCategoryRequest struct {
	CategoryName *string `json:"categoryName"`
	Description  *string `json:"description"`
}

// CreateCategories accepts either a single category object or an array
// of them, creating each one (admin only).
// POST /api/v1/categories
func (ctrl *CategoryController) CreateCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		apperrors.BadRequest(c, "Invalid request data", apperrors.NameCategoryError)
		return
	}

	var reqs []CategoryRequest
	if err := json.Unmarshal(body, &reqs); err != nil {
		var single CategoryRequest
		if err := json.Unmarshal(body, &single); err != nil {
			log.Warn("Invalid category creation request", map[string]interface{}{
				"error": err.Error(),
			})
			apperrors.BadRequest(c, "Invalid request data", apperrors.NameCategoryError)
			return
		}
		reqs = []CategoryRequest{single}
	}

	if len(reqs) == 0 {
		apperrors.BadRequest(c, "At least one category is required", apperrors.NameCategoryError)
		return
	}
	for _, req := range reqs {
		if req.CategoryName == "" {
			apperrors.BadRequest(c, "categoryName is required", apperrors.NameCategoryError)
			return
		}
	}

	inputs := make([]service.CategoryInput, 0, len(reqs))
	for _, req := range reqs {
		inputs = append(inputs, service.CategoryInput{
			CategoryName: req.CategoryName,
			Description:  req.Description,
		})
	}

	created, err := ctrl.categoryService.CreateCategories(inputs)
	if err != nil {
		log.Error("Failed to create categories", err, map[string]interface{}{
			"requested": len(inputs),
			"created":   len(created),
		})
		apperrors.InternalError(c, "Failed to create categories", apperrors.NameCategoryError)
		return
	}

	log.Info("Categories created successfully", map[string]interface{}{
		"count": len(created),
	})
	apperrors.SendResponse(c, http.StatusCreated, created, "Categories created successfully")
}

// ListCategories returns every live category.
// GET /api/v1/categories
func (ctrl *CategoryController) ListCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	categories, err := ctrl.categoryService.ListCategories()
	if err != nil {
		log.Error("Failed to list categories", err, nil)
		apperrors.InternalError(c, "Failed to fetch categories", apperrors.NameCategoryError)
		return
	}

	apperrors.SendResponse(c, http.StatusOK, categories, "Categories fetched successfully")
}

// GetCategoryWithBooks returns a category and one page of its books,
// filtered the same way as the catalog listing.
// GET /api/v1/categories/:id?search=&minPrice=&maxPrice=&page=&limit=
func (ctrl *CategoryController) GetCategoryWithBooks(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.NotFound(c, "Category not found", apperrors.NameCategoryError)
		return
	}

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

	result, err := ctrl.categoryService.GetCategoryWithBooks(id, opts)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.NotFound(c, "Category not found", apperrors.NameCategoryError)
			return
		}
		log.Error("Failed to fetch category", err, map[string]interface{}{
			"category_id": id,
		})
		apperrors.InternalError(c, "Failed to fetch category", apperrors.NameCategoryError)
		return
	}

	apperrors.SendResponse(c, http.StatusOK, result, "Category fetched successfully")
}

// UpdateCategory merges the provided fields into a category (admin only).
// PUT /api/v1/categories/:id
func (ctrl *CategoryController) UpdateCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.NotFound(c, "Category not found", apperrors.NameCategoryError)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request data", apperrors.NameCategoryError)
		return
	}

	category, err := ctrl.categoryService.UpdateCategory(id, service.UpdateCategoryInput{
		CategoryName: req.CategoryName,
		Description:  req.Description,
	})
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.NotFound(c, "Category not found", apperrors.NameCategoryError)
			return
		}
		log.Error("Failed to update category", err, map[string]interface{}{
			"category_id": id,
		})
		apperrors.InternalError(c, "Failed to update category", apperrors.NameCategoryError)
		return
	}

	apperrors.SendResponse(c, http.StatusOK, category, "Category updated successfully")
}

type LinkBookRequest struct {
	CategoryIDs []uint `json:"categories" binding:"required,min=1"`
}

// LinkBook links a book to one or more categories (admin only).
// POST /api/v1/books/:id/categories
func (ctrl *CategoryController) LinkBook(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	bookID, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.NotFound(c, "Book not found", apperrors.NameCategoryError)
		return
	}

	var req LinkBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request data", apperrors.NameCategoryError)
		return
	}

	if err := ctrl.categoryService.LinkBook(bookID, req.CategoryIDs); err != nil {
		switch {
		case errors.Is(err, service.ErrBookNotFound):
			apperrors.NotFound(c, "Book not found", apperrors.NameCategoryError)
		case errors.Is(err, service.ErrCategoryNotFound):
			apperrors.NotFound(c, "Category not found", apperrors.NameCategoryError)
		default:
			log.Error("Failed to link book to categories", err, map[string]interface{}{
				"book_id": bookID,
			})
			apperrors.InternalError(c, "Failed to link book to categories", apperrors.NameCategoryError)
		}
		return
	}

	apperrors.SendResponse(c, http.StatusOK, nil, "Book linked to categories successfully")
}

// UnlinkBook removes one book-category link (admin only).
// DELETE /api/v1/books/:id/categories/:categoryId
func (ctrl *CategoryController) UnlinkBook(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	bookID, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.NotFound(c, "Book not found", apperrors.NameCategoryError)
		return
	}
	categoryID, ok := parseIDParam(c, "categoryId")
	if !ok {
		apperrors.NotFound(c, "Category not found", apperrors.NameCategoryError)
		return
	}

	if err := ctrl.categoryService.UnlinkBook(bookID, categoryID); err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			apperrors.NotFound(c, "Book not found", apperrors.NameCategoryError)
			return
		}
		log.Error("Failed to unlink book from category", err, map[string]interface{}{
			"book_id":     bookID,
			"category_id": categoryID,
		})
		apperrors.InternalError(c, "Failed to unlink book from category", apperrors.NameCategoryError)
		return
	}

	apperrors.SendResponse(c, http.StatusOK, nil, "Book unlinked from category successfully")
}

// DeleteCategory removes a category (admin only).
// DELETE /api/v1/categories/:id
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.NotFound(c, "Category not found", apperrors.NameCategoryError)
		return
	}

	if err := ctrl.categoryService.DeleteCategory(id); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.NotFound(c, "Category not found", apperrors.NameCategoryError)
			return
		}
		log.Error("Failed to delete category", err, map[string]interface{}{
			"category_id": id,
		})
		apperrors.InternalError(c, "Failed to delete category", apperrors.NameCategoryError)
		return
	}

	apperrors.SendResponse(c, http.StatusOK, nil, "Category deleted successfully")
}

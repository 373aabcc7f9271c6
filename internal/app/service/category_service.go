package service

import (
	"errors"

	"github.com/nvak1999/book-store/internal/app/model"
	"github.com/nvak1999/book-store/internal/app/repository"
	"github.com/nvak1999/book-store/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

type CategoryInput struct {
	CategoryName string
	Description  string
}

type UpdateCategoryInput struct {
	CategoryName *string
	Description  *string
}

type CategoryView struct {
	ID           uint   `json:"id"`
	CategoryName string `json:"categoryName"`
	Description  string `json:"description"`
}

// CategoryBooksPage lists a category's live books one page at a time.
type CategoryBooksPage struct {
	Category    CategoryView `json:"category"`
	Books       []BookView   `json:"books"`
	TotalBooks  int64        `json:"totalBooks"`
	TotalPages  int          `json:"totalPages"`
	CurrentPage int          `json:"currentPage"`
}

type CategoryService interface {
	CreateCategories(inputs []CategoryInput) ([]CategoryView, error)
	ListCategories() ([]CategoryView, error)
	GetCategoryWithBooks(id uint, opts BookListOptions) (*CategoryBooksPage, error)
	UpdateCategory(id uint, input UpdateCategoryInput) (*CategoryView, error)
	DeleteCategory(id uint) error
	LinkBook(bookID uint, categoryIDs []uint) error
	UnlinkBook(bookID, categoryID uint) error
}

type categoryService struct {
	categoryRepo     repository.CategoryRepository
	bookRepo         repository.BookRepository
	bookCategoryRepo repository.BookCategoryRepository
}

func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	bookRepo repository.BookRepository,
	bookCategoryRepo repository.BookCategoryRepository,
) CategoryService {
	return &categoryService{
		categoryRepo:     categoryRepo,
		bookRepo:         bookRepo,
		bookCategoryRepo: bookCategoryRepo,
	}
}

// CreateCategories inserts each category on its own, so one bad entry
// does not roll back the ones already written.
func (s *categoryService) CreateCategories(inputs []CategoryInput) ([]CategoryView, error) {
	logger.Debug("Creating categories", map[string]interface{}{
		"count": len(inputs),
	})

	created := make([]CategoryView, 0, len(inputs))
	for _, input := range inputs {
		category := &model.Category{
			CategoryName: input.CategoryName,
			Description:  input.Description,
		}
		if err := s.categoryRepo.Create(category); err != nil {
			return created, err
		}
		created = append(created, toCategoryView(category))
	}
	return created, nil
}

func (s *categoryService) ListCategories() ([]CategoryView, error) {
	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		return nil, err
	}

	views := make([]CategoryView, 0, len(categories))
	for i := range categories {
		views = append(views, toCategoryView(&categories[i]))
	}
	return views, nil
}

// GetCategoryWithBooks pages through a category's live books, applying
// the same search term and closed price window as the catalog listing.
func (s *categoryService) GetCategoryWithBooks(id uint, opts BookListOptions) (*CategoryBooksPage, error) {
	if opts.Page < 1 {
		opts.Page = defaultPage
	}
	if opts.Limit < 1 {
		opts.Limit = defaultLimit
	}

	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	bookIDs, err := s.bookCategoryRepo.BookIDsForCategory(id)
	if err != nil {
		return nil, err
	}

	result := &CategoryBooksPage{
		Category:    toCategoryView(category),
		Books:       []BookView{},
		CurrentPage: opts.Page,
	}
	if len(bookIDs) == 0 {
		return result, nil
	}

	filter := repository.BookFilter{
		Search:  opts.Search,
		BookIDs: bookIDs,
		Limit:   opts.Limit,
		Offset:  (opts.Page - 1) * opts.Limit,
	}
	if opts.MinPrice != nil && opts.MaxPrice != nil {
		filter.MinPrice = opts.MinPrice
		filter.MaxPrice = opts.MaxPrice
	}

	books, total, err := s.bookRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list books for category", err, map[string]interface{}{
			"category_id": id,
		})
		return nil, err
	}

	names, err := s.bookRepo.CategoryNamesForBooks(bookIDs)
	if err != nil {
		return nil, err
	}
	for _, b := range books {
		categories := names[b.ID]
		if categories == nil {
			categories = []string{}
		}
		result.Books = append(result.Books, BookView{
			ID:              b.ID,
			Name:            b.Name,
			Author:          b.Author,
			Price:           b.Price,
			PublicationDate: b.PublicationDate,
			ImageURL:        b.ImageURL,
			Description:     b.Description,
			Categories:      categories,
			CreatedAt:       b.CreatedAt,
			UpdatedAt:       b.UpdatedAt,
		})
	}

	result.TotalBooks = total
	result.TotalPages = int((total + int64(opts.Limit) - 1) / int64(opts.Limit))
	return result, nil
}

// UpdateCategory merges the provided fields; updating a soft-deleted
// category restores it.
func (s *categoryService) UpdateCategory(id uint, input UpdateCategoryInput) (*CategoryView, error) {
	category, err := s.categoryRepo.FindByIDAny(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if input.CategoryName != nil {
		category.CategoryName = *input.CategoryName
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	category.DeletedAt = gorm.DeletedAt{}

	if err := s.categoryRepo.Save(category); err != nil {
		return nil, err
	}

	view := toCategoryView(category)
	return &view, nil
}

func (s *categoryService) DeleteCategory(id uint) error {
	if _, err := s.categoryRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	if err := s.categoryRepo.Delete(id); err != nil {
		return err
	}

	logger.Info("Category deleted", map[string]interface{}{
		"category_id": id,
	})
	return nil
}

// LinkBook attaches a live book to the given categories. Every category
// is resolved before any membership row is written, so a bad id leaves
// the book's memberships untouched.
func (s *categoryService) LinkBook(bookID uint, categoryIDs []uint) error {
	if _, err := s.bookRepo.FindByID(bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	for _, categoryID := range categoryIDs {
		if _, err := s.categoryRepo.FindByID(categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
	}

	for _, categoryID := range categoryIDs {
		if err := s.bookCategoryRepo.Link(bookID, categoryID); err != nil {
			return err
		}
	}

	logger.Debug("Linked book to categories", map[string]interface{}{
		"book_id":      bookID,
		"category_ids": categoryIDs,
	})
	return nil
}

// UnlinkBook soft-deletes one membership row.
func (s *categoryService) UnlinkBook(bookID, categoryID uint) error {
	if _, err := s.bookRepo.FindByID(bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}
	return s.bookCategoryRepo.Unlink(bookID, categoryID)
}

func toCategoryView(category *model.Category) CategoryView {
	return CategoryView{
		ID:           category.ID,
		CategoryName: category.CategoryName,
		Description:  category.Description,
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nvak1999/book-store/internal/app/model"
	"github.com/nvak1999/book-store/internal/app/repository"
	"github.com/nvak1999/book-store/pkg/logger"
	"github.com/nvak1999/book-store/pkg/redis"
	"gorm.io/gorm"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

const (
	defaultPage  = 1
	defaultLimit = 10

	bookListCachePrefix = "books:list:"
)

type BookListOptions struct {
	Search   string
	MinPrice *float64
	MaxPrice *float64
	Page     int
	Limit    int
}

// BookView is the wire shape of a book: memberships flattened to
// category names, reviews attached only on the detail view.
type BookView struct {
	ID              uint          `json:"id"`
	Name            string        `json:"name"`
	Author          string        `json:"author"`
	Price           float64       `json:"price"`
	PublicationDate string        `json:"publicationDate"`
	ImageURL        string        `json:"img"`
	Description     string        `json:"description"`
	Categories      []string      `json:"categories"`
	Reviews         []ReviewView  `json:"reviews,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

type ReviewView struct {
	ID       uint   `json:"id"`
	UserName string `json:"userName"`
	Comment  string `json:"comment"`
	Rating   int    `json:"rating"`
}

type BookPage struct {
	Books      []BookView `json:"books"`
	TotalPages int        `json:"totalPages"`
}

type CreateBookInput struct {
	Name            string
	Author          string
	Price           float64
	PublicationDate string
	ImageURL        string
	Description     string
	CategoryIDs     []uint
}

// UpdateBookInput carries only the fields the caller sent; nil means
// keep the stored value.
type UpdateBookInput struct {
	Name            *string
	Author          *string
	Price           *float64
	PublicationDate *string
	ImageURL        *string
	Description     *string
	CategoryIDs     []uint
}

type AddReviewInput struct {
	UserName string
	Comment  string
	Rating   int
}

type BookService interface {
	ListBooks(opts BookListOptions) (*BookPage, error)
	GetBookByID(id uint) (*BookView, error)
	CreateBook(input CreateBookInput) (*BookView, error)
	UpdateBook(id uint, input UpdateBookInput) (*BookView, error)
	DeleteBook(id uint) error
	AddReview(bookID uint, input AddReviewInput) (*ReviewView, error)
}

type bookService struct {
	bookRepo         repository.BookRepository
	bookCategoryRepo repository.BookCategoryRepository
	reviewRepo       repository.ReviewRepository
	cache            *redis.Cache
}

func NewBookService(
	bookRepo repository.BookRepository,
	bookCategoryRepo repository.BookCategoryRepository,
	reviewRepo repository.ReviewRepository,
	cache *redis.Cache,
) BookService {
	return &bookService{
		bookRepo:         bookRepo,
		bookCategoryRepo: bookCategoryRepo,
		reviewRepo:       reviewRepo,
		cache:            cache,
	}
}

func (s *bookService) ListBooks(opts BookListOptions) (*BookPage, error) {
	if opts.Page < 1 {
		opts.Page = defaultPage
	}
	if opts.Limit < 1 {
		opts.Limit = defaultLimit
	}

	logger.Debug("Listing books", map[string]interface{}{
		"search":    opts.Search,
		"min_price": opts.MinPrice,
		"max_price": opts.MaxPrice,
		"page":      opts.Page,
		"limit":     opts.Limit,
	})

	cacheKey := bookListCacheKey(opts)
	var cached BookPage
	if s.cache.GetJSON(context.Background(), cacheKey, &cached) {
		return &cached, nil
	}

	filter := repository.BookFilter{
		Search: opts.Search,
		Limit:  opts.Limit,
		Offset: (opts.Page - 1) * opts.Limit,
	}
	// The price window only applies when both bounds are present.
	if opts.MinPrice != nil && opts.MaxPrice != nil {
		filter.MinPrice = opts.MinPrice
		filter.MaxPrice = opts.MaxPrice
	}

	books, total, err := s.bookRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list books", err, nil)
		return nil, err
	}

	views, err := s.toViews(books)
	if err != nil {
		return nil, err
	}

	page := &BookPage{Books: views, TotalPages: 0}
	// An empty page reports zero total pages even when earlier pages
	// have results.
	if len(views) > 0 {
		page.TotalPages = int((total + int64(opts.Limit) - 1) / int64(opts.Limit))
	}

	s.cache.SetJSON(context.Background(), cacheKey, page)
	return page, nil
}

func (s *bookService) GetBookByID(id uint) (*BookView, error) {
	book, err := s.bookRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		logger.Error("Failed to get book", err, map[string]interface{}{
			"book_id": id,
		})
		return nil, err
	}

	views, err := s.toViews([]model.Book{*book})
	if err != nil {
		return nil, err
	}
	view := views[0]

	reviews, err := s.reviewRepo.FindByBookID(id)
	if err != nil {
		return nil, err
	}
	view.Reviews = make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		view.Reviews = append(view.Reviews, ReviewView{
			ID:       r.ID,
			UserName: r.UserName,
			Comment:  r.Comment,
			Rating:   r.Rating,
		})
	}

	return &view, nil
}

func (s *bookService) CreateBook(input CreateBookInput) (*BookView, error) {
	logger.Debug("Creating book", map[string]interface{}{
		"name":   input.Name,
		"author": input.Author,
	})

	book := &model.Book{
		Name:            input.Name,
		Author:          input.Author,
		Price:           input.Price,
		PublicationDate: input.PublicationDate,
		ImageURL:        input.ImageURL,
		Description:     input.Description,
	}
	if err := s.bookRepo.Create(book); err != nil {
		return nil, err
	}

	for _, categoryID := range input.CategoryIDs {
		if err := s.bookCategoryRepo.Link(book.ID, categoryID); err != nil {
			return nil, err
		}
	}

	s.invalidateListCache()

	views, err := s.toViews([]model.Book{*book})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// UpdateBook merges the provided fields into the stored book. Updating
// a soft-deleted book restores it.
func (s *bookService) UpdateBook(id uint, input UpdateBookInput) (*BookView, error) {
	book, err := s.bookRepo.FindByIDAny(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		book.Name = *input.Name
	}
	if input.Author != nil {
		book.Author = *input.Author
	}
	if input.Price != nil {
		book.Price = *input.Price
	}
	if input.PublicationDate != nil {
		book.PublicationDate = *input.PublicationDate
	}
	if input.ImageURL != nil {
		book.ImageURL = *input.ImageURL
	}
	if input.Description != nil {
		book.Description = *input.Description
	}
	book.DeletedAt = gorm.DeletedAt{}

	if err := s.bookRepo.Save(book); err != nil {
		return nil, err
	}

	if input.CategoryIDs != nil {
		if err := s.bookCategoryRepo.ReplaceForBook(book.ID, input.CategoryIDs); err != nil {
			return nil, err
		}
	}

	s.invalidateListCache()

	views, err := s.toViews([]model.Book{*book})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// DeleteBook removes a live book. A book that is already deleted is
// reported as not found.
func (s *bookService) DeleteBook(id uint) error {
	if _, err := s.bookRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	if err := s.bookRepo.Delete(id); err != nil {
		return err
	}

	s.invalidateListCache()

	logger.Info("Book deleted", map[string]interface{}{
		"book_id": id,
	})
	return nil
}

// AddReview attaches a review to a live book. Reviews on deleted books
// are rejected the same way any other read of a deleted book is.
func (s *bookService) AddReview(bookID uint, input AddReviewInput) (*ReviewView, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	if _, err := s.bookRepo.FindByID(bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	review := &model.Review{
		BookID:   bookID,
		UserName: input.UserName,
		Comment:  input.Comment,
		Rating:   input.Rating,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		logger.Error("Failed to create review", err, map[string]interface{}{
			"book_id": bookID,
		})
		return nil, err
	}

	return &ReviewView{
		ID:       review.ID,
		UserName: review.UserName,
		Comment:  review.Comment,
		Rating:   review.Rating,
	}, nil
}

func (s *bookService) toViews(books []model.Book) ([]BookView, error) {
	ids := make([]uint, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}

	names, err := s.bookRepo.CategoryNamesForBooks(ids)
	if err != nil {
		return nil, err
	}

	views := make([]BookView, 0, len(books))
	for _, b := range books {
		categories := names[b.ID]
		if categories == nil {
			categories = []string{}
		}
		views = append(views, BookView{
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
	return views, nil
}

func (s *bookService) invalidateListCache() {
	s.cache.InvalidatePrefix(context.Background(), bookListCachePrefix)
}

func bookListCacheKey(opts BookListOptions) string {
	min, max := "-", "-"
	if opts.MinPrice != nil {
		min = fmt.Sprintf("%g", *opts.MinPrice)
	}
	if opts.MaxPrice != nil {
		max = fmt.Sprintf("%g", *opts.MaxPrice)
	}
	return fmt.Sprintf("%s%s:%s:%s:%d:%d", bookListCachePrefix, opts.Search, min, max, opts.Page, opts.Limit)
}

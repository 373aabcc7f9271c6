package repository

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nvak1999/book-store/internal/app/model"
	"github.com/nvak1999/book-store/pkg/logger"
	"gorm.io/gorm"
)

// yearPattern detects a bare 4-digit token in a search term. A year-like
// term filters publication dates only and skips the general text search,
// because a plain substring match on four digits over-matches (prices,
// unrelated numerics).
var yearPattern = regexp.MustCompile(`\b\d{4}\b`)

// BookFilter describes one catalog query. BookIDs, when non-nil, restricts
// the candidate set (used by the category listing); Min/MaxPrice apply only
// when both are present.
type BookFilter struct {
	Search   string
	MinPrice *float64
	MaxPrice *float64
	BookIDs  []uint
	Limit    int
	Offset   int
}

type BookRepository interface {
	Create(book *model.Book) error
	FindByID(id uint) (*model.Book, error)
	FindByIDAny(id uint) (*model.Book, error)
	FindWithFilter(filter BookFilter) ([]model.Book, int64, error)
	CategoryNamesForBooks(bookIDs []uint) (map[uint][]string, error)
	Save(book *model.Book) error
	Delete(id uint) error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(book *model.Book) error {
	logger.Debug("Creating book in database", map[string]interface{}{
		"name":   book.Name,
		"author": book.Author,
		"price":  book.Price,
	})

	if err := r.db.Create(book).Error; err != nil {
		logger.Error("Failed to create book in database", err, map[string]interface{}{
			"name":   book.Name,
			"author": book.Author,
		})
		return err
	}

	logger.Debug("Book created in database", map[string]interface{}{
		"book_id": book.ID,
		"name":    book.Name,
	})
	return nil
}

// FindByID resolves a live (non-deleted) book
func (r *bookRepository) FindByID(id uint) (*model.Book, error) {
	var book model.Book
	if err := r.db.First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// FindByIDAny resolves a book regardless of its delete state. Update paths
// use it because an update is also an undelete.
func (r *bookRepository) FindByIDAny(id uint) (*model.Book, error) {
	var book model.Book
	if err := r.db.Unscoped().First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// FindWithFilter runs the catalog query pipeline: non-deleted books,
// optional id restriction, optional closed price range, and the search
// term. It returns the page of books plus the total matching count.
func (r *bookRepository) FindWithFilter(filter BookFilter) ([]model.Book, int64, error) {
	logger.Debug("Finding books with filter", map[string]interface{}{
		"search":    filter.Search,
		"min_price": filter.MinPrice,
		"max_price": filter.MaxPrice,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})

	query := r.db.Model(&model.Book{})

	if filter.BookIDs != nil {
		query = query.Where("books.id IN ?", filter.BookIDs)
	}

	if filter.MinPrice != nil && filter.MaxPrice != nil {
		query = query.Where("books.price >= ? AND books.price <= ?", *filter.MinPrice, *filter.MaxPrice)
	}

	year := ""
	if filter.Search != "" {
		year = yearPattern.FindString(filter.Search)
		if year != "" {
			// Narrow in SQL, anchor the token in Go below. LIKE alone
			// cannot express a digit-boundary portably across postgres
			// and the sqlite test harness.
			query = query.Where("books.publication_date LIKE ?", "%"+year+"%")
		} else {
			like := fmt.Sprintf("%%%s%%", strings.ToLower(filter.Search))
			categoryMatch := r.db.Table("book_categories").
				Select("1").
				Joins("JOIN categories ON categories.id = book_categories.category_id AND categories.deleted_at IS NULL").
				Where("book_categories.book_id = books.id").
				Where("book_categories.deleted_at IS NULL").
				Where("LOWER(categories.category_name) LIKE ?", like)
			query = query.Where(
				"LOWER(books.name) LIKE ? OR LOWER(books.author) LIKE ? OR LOWER(books.publication_date) LIKE ? OR EXISTS (?)",
				like, like, like, categoryMatch,
			)
		}
	}

	if year != "" {
		return r.pageWithYearToken(query, year, filter)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count books with filter", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, 0, err
	}

	var books []model.Book
	if err := query.Order("books.id").Limit(filter.Limit).Offset(filter.Offset).Find(&books).Error; err != nil {
		logger.Error("Failed to find books with filter", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, 0, err
	}

	logger.Debug("Books found with filter", map[string]interface{}{
		"count": len(books),
		"total": total,
	})
	return books, total, nil
}

// pageWithYearToken refines the LIKE-narrowed candidates with an anchored
// year match, then paginates the refined set in memory.
func (r *bookRepository) pageWithYearToken(query *gorm.DB, year string, filter BookFilter) ([]model.Book, int64, error) {
	var candidates []model.Book
	if err := query.Order("books.id").Find(&candidates).Error; err != nil {
		logger.Error("Failed to find books by year token", err, map[string]interface{}{
			"year": year,
		})
		return nil, 0, err
	}

	anchored := regexp.MustCompile(`\b` + year + `\b`)
	matched := candidates[:0]
	for _, book := range candidates {
		if anchored.MatchString(book.PublicationDate) {
			matched = append(matched, book)
		}
	}

	total := int64(len(matched))
	start := filter.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if filter.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}

	logger.Debug("Books found by year token", map[string]interface{}{
		"year":  year,
		"total": total,
	})
	return matched[start:end], total, nil
}

// CategoryNamesForBooks resolves the live category names for each book id
// through the membership join. Membership rows pointing at deleted
// categories are ignored.
func (r *bookRepository) CategoryNamesForBooks(bookIDs []uint) (map[uint][]string, error) {
	names := make(map[uint][]string, len(bookIDs))
	if len(bookIDs) == 0 {
		return names, nil
	}

	var rows []struct {
		BookID       uint
		CategoryName string
	}
	err := r.db.Table("book_categories").
		Select("book_categories.book_id, categories.category_name").
		Joins("JOIN categories ON categories.id = book_categories.category_id AND categories.deleted_at IS NULL").
		Where("book_categories.book_id IN ?", bookIDs).
		Where("book_categories.deleted_at IS NULL").
		Order("categories.category_name").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to resolve category names for books", err, map[string]interface{}{
			"book_count": len(bookIDs),
		})
		return nil, err
	}

	for _, row := range rows {
		names[row.BookID] = append(names[row.BookID], row.CategoryName)
	}
	return names, nil
}

// Save persists the book unscoped so that clearing DeletedAt restores a
// soft-deleted row.
func (r *bookRepository) Save(book *model.Book) error {
	logger.Debug("Updating book in database", map[string]interface{}{
		"book_id": book.ID,
		"name":    book.Name,
	})

	if err := r.db.Unscoped().Save(book).Error; err != nil {
		logger.Error("Failed to update book in database", err, map[string]interface{}{
			"book_id": book.ID,
		})
		return err
	}
	return nil
}

func (r *bookRepository) Delete(id uint) error {
	logger.Debug("Deleting book from database", map[string]interface{}{
		"book_id": id,
	})

	if err := r.db.Delete(&model.Book{}, id).Error; err != nil {
		logger.Error("Failed to delete book from database", err, map[string]interface{}{
			"book_id": id,
		})
		return err
	}

	logger.Debug("Book deleted from database", map[string]interface{}{
		"book_id": id,
	})
	return nil
}

package service

import (
	"fmt"
	"testing"

	"github.com/nvak1999/book-store/internal/app/model"
	"github.com/nvak1999/book-store/internal/app/repository"
	"github.com/nvak1999/book-store/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type categoryServiceFixture struct {
	service CategoryService
	db      *gorm.DB
}

func setupCategoryServiceTest(t *testing.T) *categoryServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	categoryRepo := repository.NewCategoryRepository(testDB)
	bookRepo := repository.NewBookRepository(testDB)
	bookCategoryRepo := repository.NewBookCategoryRepository(testDB)

	return &categoryServiceFixture{
		service: NewCategoryService(categoryRepo, bookRepo, bookCategoryRepo),
		db:      testDB,
	}
}

func TestCategoryService_CreateCategories(t *testing.T) {
	f := setupCategoryServiceTest(t)

	created, err := f.service.CreateCategories([]CategoryInput{
		{CategoryName: "Fiction"},
		{CategoryName: "Science", Description: "Popular science"},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "Fiction", created[0].CategoryName)
	assert.Equal(t, "Popular science", created[1].Description)

	all, err := f.service.ListCategories()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCategoryService_GetCategoryWithBooks(t *testing.T) {
	f := setupCategoryServiceTest(t)

	created, err := f.service.CreateCategories([]CategoryInput{{CategoryName: "Fiction"}})
	require.NoError(t, err)
	categoryID := created[0].ID

	for i := 0; i < 5; i++ {
		book := &model.Book{Name: fmt.Sprintf("Book %d", i), Author: "Author", Price: 10}
		require.NoError(t, f.db.Create(book).Error)
		require.NoError(t, f.db.Create(&model.BookCategory{BookID: book.ID, CategoryID: categoryID}).Error)
	}

	page, err := f.service.GetCategoryWithBooks(categoryID, BookListOptions{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, "Fiction", page.Category.CategoryName)
	assert.Len(t, page.Books, 2)
	assert.Equal(t, int64(5), page.TotalBooks)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)

	// Unlike the catalog list, an empty page still reports the real
	// page count fields.
	page, err = f.service.GetCategoryWithBooks(categoryID, BookListOptions{Page: 4, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Books, 0)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 4, page.CurrentPage)

	_, err = f.service.GetCategoryWithBooks(9999, BookListOptions{})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryService_GetCategoryWithBooks_SkipsDeletedBooks(t *testing.T) {
	f := setupCategoryServiceTest(t)

	created, err := f.service.CreateCategories([]CategoryInput{{CategoryName: "Fiction"}})
	require.NoError(t, err)
	categoryID := created[0].ID

	live := &model.Book{Name: "Live", Author: "A", Price: 10}
	gone := &model.Book{Name: "Gone", Author: "B", Price: 10}
	require.NoError(t, f.db.Create(live).Error)
	require.NoError(t, f.db.Create(gone).Error)
	require.NoError(t, f.db.Create(&model.BookCategory{BookID: live.ID, CategoryID: categoryID}).Error)
	require.NoError(t, f.db.Create(&model.BookCategory{BookID: gone.ID, CategoryID: categoryID}).Error)
	require.NoError(t, f.db.Delete(gone).Error)

	page, err := f.service.GetCategoryWithBooks(categoryID, BookListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "Live", page.Books[0].Name)
	assert.Equal(t, int64(1), page.TotalBooks)
}

func TestCategoryService_UpdateCategory(t *testing.T) {
	f := setupCategoryServiceTest(t)

	created, err := f.service.CreateCategories([]CategoryInput{{CategoryName: "Fiction"}})
	require.NoError(t, err)
	id := created[0].ID

	desc := "Made-up stories"
	updated, err := f.service.UpdateCategory(id, UpdateCategoryInput{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Fiction", updated.CategoryName)
	assert.Equal(t, "Made-up stories", updated.Description)

	_, err = f.service.UpdateCategory(9999, UpdateCategoryInput{Description: &desc})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryService_UpdateRestoresDeletedCategory(t *testing.T) {
	f := setupCategoryServiceTest(t)

	created, err := f.service.CreateCategories([]CategoryInput{{CategoryName: "Fiction"}})
	require.NoError(t, err)
	id := created[0].ID

	require.NoError(t, f.service.DeleteCategory(id))

	name := "Fiction Again"
	_, err = f.service.UpdateCategory(id, UpdateCategoryInput{CategoryName: &name})
	require.NoError(t, err)

	all, err := f.service.ListCategories()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Fiction Again", all[0].CategoryName)
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	f := setupCategoryServiceTest(t)

	created, err := f.service.CreateCategories([]CategoryInput{{CategoryName: "Fiction"}})
	require.NoError(t, err)
	id := created[0].ID

	require.NoError(t, f.service.DeleteCategory(id))

	// Deleting again reports not found.
	assert.ErrorIs(t, f.service.DeleteCategory(id), ErrCategoryNotFound)
	assert.ErrorIs(t, f.service.DeleteCategory(9999), ErrCategoryNotFound)

	_, err = f.service.GetCategoryWithBooks(id, BookListOptions{})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryService_LinkBook(t *testing.T) {
	f := setupCategoryServiceTest(t)

	created, err := f.service.CreateCategories([]CategoryInput{
		{CategoryName: "Fiction"},
		{CategoryName: "Classics"},
	})
	require.NoError(t, err)

	book := &model.Book{Name: "Dune", Author: "Frank Herbert", Price: 19.99}
	require.NoError(t, f.db.Create(book).Error)

	require.NoError(t, f.service.LinkBook(book.ID, []uint{created[0].ID, created[1].ID}))

	page, err := f.service.GetCategoryWithBooks(created[0].ID, BookListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Books, 1)
	assert.Equal(t, []string{"Classics", "Fiction"}, page.Books[0].Categories)
}

func TestCategoryService_LinkBook_BadIDsLeaveMembershipsUntouched(t *testing.T) {
	f := setupCategoryServiceTest(t)

	created, err := f.service.CreateCategories([]CategoryInput{{CategoryName: "Fiction"}})
	require.NoError(t, err)

	book := &model.Book{Name: "Dune", Author: "Frank Herbert", Price: 19.99}
	require.NoError(t, f.db.Create(book).Error)

	assert.ErrorIs(t, f.service.LinkBook(9999, []uint{created[0].ID}), ErrBookNotFound)

	// One bad category id in the batch fails validation before any row
	// is written.
	err = f.service.LinkBook(book.ID, []uint{created[0].ID, 9999})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	page, err := f.service.GetCategoryWithBooks(created[0].ID, BookListOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Books, 0)
}

func TestCategoryService_UnlinkBook(t *testing.T) {
	f := setupCategoryServiceTest(t)

	created, err := f.service.CreateCategories([]CategoryInput{{CategoryName: "Fiction"}})
	require.NoError(t, err)

	book := &model.Book{Name: "Dune", Author: "Frank Herbert", Price: 19.99}
	require.NoError(t, f.db.Create(book).Error)
	require.NoError(t, f.service.LinkBook(book.ID, []uint{created[0].ID}))

	require.NoError(t, f.service.UnlinkBook(book.ID, created[0].ID))

	page, err := f.service.GetCategoryWithBooks(created[0].ID, BookListOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Books, 0)

	// Linking again restores the soft-deleted membership row.
	require.NoError(t, f.service.LinkBook(book.ID, []uint{created[0].ID}))
	page, err = f.service.GetCategoryWithBooks(created[0].ID, BookListOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Books, 1)
}

func TestCategoryService_GetCategoryWithBooks_Search(t *testing.T) {
	f := setupCategoryServiceTest(t)

	created, err := f.service.CreateCategories([]CategoryInput{{CategoryName: "Fantasy"}})
	require.NoError(t, err)
	categoryID := created[0].ID

	dune := &model.Book{Name: "Dune", Author: "Frank Herbert", PublicationDate: "1965-08-01", Price: 20}
	hobbit := &model.Book{Name: "The Hobbit", Author: "J.R.R. Tolkien", PublicationDate: "1937-09-21", Price: 90}
	outside := &model.Book{Name: "Dune Messiah", Author: "Frank Herbert", PublicationDate: "1969-10-15", Price: 25}
	for _, book := range []*model.Book{dune, hobbit, outside} {
		require.NoError(t, f.db.Create(book).Error)
	}
	require.NoError(t, f.service.LinkBook(dune.ID, []uint{categoryID}))
	require.NoError(t, f.service.LinkBook(hobbit.ID, []uint{categoryID}))

	page, err := f.service.GetCategoryWithBooks(categoryID, BookListOptions{Search: "dune"})
	require.NoError(t, err)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "Dune", page.Books[0].Name)
	assert.Equal(t, int64(1), page.TotalBooks)
	assert.Equal(t, 1, page.TotalPages)

	// The search stays inside the category: "Dune Messiah" matches the
	// term but is not a member.
	page, err = f.service.GetCategoryWithBooks(categoryID, BookListOptions{Search: "herbert"})
	require.NoError(t, err)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "Dune", page.Books[0].Name)
}

func TestCategoryService_GetCategoryWithBooks_YearToken(t *testing.T) {
	f := setupCategoryServiceTest(t)

	created, err := f.service.CreateCategories([]CategoryInput{{CategoryName: "Fantasy"}})
	require.NoError(t, err)
	categoryID := created[0].ID

	dune := &model.Book{Name: "Dune", Author: "Frank Herbert", PublicationDate: "1965-08-01", Price: 20}
	hobbit := &model.Book{Name: "The Hobbit", Author: "J.R.R. Tolkien", PublicationDate: "1937-09-21", Price: 90}
	for _, book := range []*model.Book{dune, hobbit} {
		require.NoError(t, f.db.Create(book).Error)
		require.NoError(t, f.service.LinkBook(book.ID, []uint{categoryID}))
	}

	page, err := f.service.GetCategoryWithBooks(categoryID, BookListOptions{Search: "1937"})
	require.NoError(t, err)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "The Hobbit", page.Books[0].Name)
	assert.Equal(t, int64(1), page.TotalBooks)
}

func TestCategoryService_GetCategoryWithBooks_PriceWindow(t *testing.T) {
	f := setupCategoryServiceTest(t)

	created, err := f.service.CreateCategories([]CategoryInput{{CategoryName: "Fantasy"}})
	require.NoError(t, err)
	categoryID := created[0].ID

	dune := &model.Book{Name: "Dune", Author: "Frank Herbert", Price: 20}
	hobbit := &model.Book{Name: "The Hobbit", Author: "J.R.R. Tolkien", Price: 90}
	for _, book := range []*model.Book{dune, hobbit} {
		require.NoError(t, f.db.Create(book).Error)
		require.NoError(t, f.service.LinkBook(book.ID, []uint{categoryID}))
	}

	min, max := 10.0, 30.0
	page, err := f.service.GetCategoryWithBooks(categoryID, BookListOptions{MinPrice: &min, MaxPrice: &max})
	require.NoError(t, err)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "Dune", page.Books[0].Name)
	assert.Equal(t, int64(1), page.TotalBooks)

	// A single bound is ignored, same as the catalog listing.
	page, err = f.service.GetCategoryWithBooks(categoryID, BookListOptions{MinPrice: &min})
	require.NoError(t, err)
	assert.Len(t, page.Books, 2)
}

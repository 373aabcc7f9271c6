package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/nvak1999/book-store/config"
	"github.com/nvak1999/book-store/internal/app/model"
	"github.com/nvak1999/book-store/internal/app/repository"
	"github.com/nvak1999/book-store/internal/db"
	"github.com/xuri/excelize/v2"
)

// Imports a book catalog from an XLSX export. Expected columns:
// name, author, price, publicationDate, img, description, categories
// (categories separated by "|").
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}
	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	books, err := readBooksFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total books to import: %d\n", len(books))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	bookRepo := repository.NewBookRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	bookCategoryRepo := repository.NewBookCategoryRepository(db.GetDB())

	// Resolve category names to IDs, creating missing ones.
	existing, err := categoryRepo.FindAll()
	if err != nil {
		log.Fatal("Failed to load categories:", err)
	}
	categoryIDs := make(map[string]uint, len(existing))
	for _, c := range existing {
		categoryIDs[strings.ToLower(c.CategoryName)] = c.ID
	}

	imported := 0
	for _, row := range books {
		book := row.book
		if err := bookRepo.Create(&book); err != nil {
			log.Printf("Skipping %q: %v", book.Name, err)
			continue
		}

		for _, name := range row.categories {
			key := strings.ToLower(name)
			id, ok := categoryIDs[key]
			if !ok {
				category := model.Category{CategoryName: name}
				if err := categoryRepo.Create(&category); err != nil {
					log.Printf("Failed to create category %q: %v", name, err)
					continue
				}
				id = category.ID
				categoryIDs[key] = id
			}
			if err := bookCategoryRepo.Link(book.ID, id); err != nil {
				log.Printf("Failed to link %q to %q: %v", book.Name, name, err)
			}
		}

		imported++
		if imported%100 == 0 {
			fmt.Printf("Imported %d books...\n", imported)
		}
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total books imported: %d\n", imported)
}

type bookRow struct {
	book       model.Book
	categories []string
}

func readBooksFromXLSX(filePath string) ([]bookRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var books []bookRow
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < 3 {
			skipped++
			continue
		}

		name := strings.TrimSpace(cell(row, 0))
		author := strings.TrimSpace(cell(row, 1))
		priceStr := strings.TrimSpace(cell(row, 2))

		if name == "" || author == "" {
			skipped++
			continue
		}
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price <= 0 {
			skipped++
			continue
		}

		// Dedup on name+author
		key := strings.ToLower(name + "|" + author)
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true

		var categories []string
		for _, c := range strings.Split(cell(row, 6), "|") {
			if c = strings.TrimSpace(c); c != "" {
				categories = append(categories, c)
			}
		}

		books = append(books, bookRow{
			book: model.Book{
				Name:            name,
				Author:          author,
				Price:           price,
				PublicationDate: strings.TrimSpace(cell(row, 3)),
				ImageURL:        strings.TrimSpace(cell(row, 4)),
				Description:     strings.TrimSpace(cell(row, 5)),
			},
			categories: categories,
		})
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid books: %d\n", len(books))
	fmt.Printf("  Skipped rows: %d\n", skipped)

	return books, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// Package main provides a tool to seed the database with demo storefront data.
//
// Creates an admin account, a demo customer, and a small catalog so the API
// is immediately browsable.
//
// Usage:
//
//	DATA_PATH=~/bookhaven go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bookhavenapp/bookhaven-server/internal/auth"
	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/id"
	"github.com/bookhavenapp/bookhaven-server/internal/search"
	"github.com/bookhavenapp/bookhaven-server/internal/service"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

type seedBook struct {
	title       string
	authors     []string
	genre       string
	isbn        string
	priceCents  int64
	stock       int
	description string
}

var catalog = []seedBook{
	{"The Great Gatsby", []string{"F. Scott Fitzgerald"}, "Classic", "9780743273565", 1099, 12, "A portrait of the Jazz Age in all of its decadence and excess."},
	{"1984", []string{"George Orwell"}, "Science Fiction", "9780451524935", 999, 20, "A dystopian novel of surveillance and totalitarianism."},
	{"Pride and Prejudice", []string{"Jane Austen"}, "Romance", "9780141439518", 899, 15, "The turbulent courtship of Elizabeth Bennet and Mr. Darcy."},
	{"To Kill a Mockingbird", []string{"Harper Lee"}, "Classic", "9780060935467", 1199, 8, "A story of racial injustice in the Depression-era South."},
	{"Dune", []string{"Frank Herbert"}, "Science Fiction", "9780441172719", 1599, 10, "Politics, religion, and ecology collide on the desert planet Arrakis."},
	{"The Hobbit", []string{"J.R.R. Tolkien"}, "Fantasy", "9780547928227", 1299, 18, "Bilbo Baggins is swept into an epic quest to reclaim Erebor."},
	{"Murder on the Orient Express", []string{"Agatha Christie"}, "Mystery", "9780062693662", 1049, 9, "Hercule Poirot investigates a murder aboard a snowbound train."},
	{"Sapiens", []string{"Yuval Noah Harari"}, "History", "9780062316097", 1899, 7, "A brief history of humankind from the Stone Age to the present."},
	{"Educated", []string{"Tara Westover"}, "Biography & Memoir", "9780399590504", 1499, 5, "A memoir of a childhood without schooling and the pull of education."},
	{"The Name of the Wind", []string{"Patrick Rothfuss"}, "Fantasy", "9780756404741", 1799, 0, "The legend of Kvothe, told in his own words."},
}

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/bookhaven")
	}

	fmt.Printf("Seeding data at: %s\n", dataPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s, err := store.New(filepath.Join(dataPath, "db"), logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	idx, err := search.NewSearchIndex(search.Options{
		DataPath: filepath.Join(dataPath, "search"),
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()

	seedUser(ctx, s, "admin@bookhaven.dev", "admin-password-123", "Store Admin", domain.RoleAdmin)
	seedUser(ctx, s, "demo@bookhaven.dev", "demo-password-123", "Demo Customer", domain.RoleCustomer)

	catalogService := service.NewCatalogService(s, idx, logger)

	for _, b := range catalog {
		book := &domain.Book{
			Title:         b.title,
			Authors:       b.authors,
			Genre:         b.genre,
			ISBN:          b.isbn,
			PriceCents:    b.priceCents,
			StockQuantity: b.stock,
			Description:   b.description,
		}
		// ImportBook upserts by ISBN, so reseeding is safe.
		created, err := catalogService.ImportBook(ctx, book)
		if err != nil {
			log.Printf("Failed to seed %q: %v", b.title, err)
			continue
		}
		fmt.Printf("  book %-40s %s\n", created.Title, created.ID)
	}

	fmt.Println("Done.")
}

func seedUser(ctx context.Context, s *store.Store, email, password, name string, role domain.Role) {
	if existing, err := s.Users.GetByIndex(ctx, "email", email); err == nil && existing != nil {
		fmt.Printf("  user %s already exists\n", email)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		log.Fatalf("Failed to generate user ID: %v", err)
	}

	now := time.Now()
	user := &domain.User{
		Record: domain.Record{
			ID:        userID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
	}

	if err := s.Users.Create(ctx, userID, user); err != nil {
		log.Fatalf("Failed to create user %s: %v", email, err)
	}

	fmt.Printf("  user %s (%s) password: %s\n", email, role, password)
}

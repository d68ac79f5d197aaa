package books

import (
	"context"
	"fmt"

	"bookshelf/internal/models"
)

func strPtr(s string) *string { return &s }

// SampleBooks returns example books to pre-populate the shelf
func SampleBooks() []models.BookInput {
	return []models.BookInput{
		{
			Name:      strPtr("The Go Programming Language"),
			Year:      2015,
			Author:    "Alan A. A. Donovan",
			Summary:   "A thorough introduction to Go.",
			Publisher: "Addison-Wesley",
			PageCount: 380,
			ReadPage:  380,
			Reading:   false,
		},
		{
			Name:      strPtr("Concurrency in Go"),
			Year:      2017,
			Author:    "Katherine Cox-Buday",
			Summary:   "Tools and techniques for developers.",
			Publisher: "O'Reilly Media",
			PageCount: 238,
			ReadPage:  120,
			Reading:   true,
		},
		{
			Name:      strPtr("Laskar Pelangi"),
			Year:      2005,
			Author:    "Andrea Hirata",
			Summary:   "Ten children at a village school on Belitung.",
			Publisher: "Bentang Pustaka",
			PageCount: 529,
			ReadPage:  0,
			Reading:   false,
		},
	}
}

// Seed creates every input in order
func Seed(ctx context.Context, s *Store, inputs []models.BookInput) error {
	for _, in := range inputs {
		if _, err := s.Create(ctx, in); err != nil {
			return fmt.Errorf("failed to seed book: %w", err)
		}
	}
	return nil
}

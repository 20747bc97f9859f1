// Package seeders fills a database with demo data. Seeders are idempotent so
// `storefront seed` can run more than once.
package seeders

import (
	"context"
	"fmt"
	"io"

	"gorm.io/gorm"
)

// Seeder is one named seed step.
type Seeder struct {
	Name string
	Run  func(ctx context.Context, db *gorm.DB) error
}

// All lists the seeders in run order.
func All() []Seeder {
	return []Seeder{
		{Name: "catalog", Run: SeedCatalog},
	}
}

// Run executes the named seeders, or all of them when names is empty. It
// stops at the first failure.
func Run(ctx context.Context, db *gorm.DB, out io.Writer, names ...string) error {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	ran := 0
	for _, s := range All() {
		if len(want) > 0 && !want[s.Name] {
			continue
		}
		fmt.Fprintf(out, "Seeding: %s\n", s.Name)
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seeder %q: %w", s.Name, err)
		}
		ran++
	}
	if ran == 0 {
		return fmt.Errorf("no seeder matches %v", names)
	}
	return nil
}

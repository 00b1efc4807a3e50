package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"

	"bookrecords/internal/book"
	"bookrecords/internal/config"
	"bookrecords/internal/platform/logging"
	"bookrecords/internal/storage"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Print the seed books without writing them")
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel)

	if *dryRun {
		for _, b := range seedBooks() {
			slog.Info("seed book", "title", b.Title, "author", b.Author)
		}
		return
	}

	ctx := context.Background()
	coll, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	inserted, skipped, err := seed(ctx, book.NewService(coll), seedBooks())
	if err != nil {
		slog.Error("seeding failed", "inserted", inserted, "error", err)
		os.Exit(1)
	}
	slog.Info("seeding finished", "inserted", inserted, "skipped", skipped)
}

// seed creates each book, counting duplicates as skipped.
func seed(ctx context.Context, svc *book.Service, books []book.NewBook) (inserted, skipped int, err error) {
	for _, nb := range books {
		if _, err := svc.Create(ctx, nb); err != nil {
			if errors.Is(err, book.ErrConflict) {
				skipped++
				continue
			}
			return inserted, skipped, err
		}
		inserted++
	}
	return inserted, skipped, nil
}

func year(y int) *int { return &y }

func seedBooks() []book.NewBook {
	return []book.NewBook{
		{
			Title:           "1984",
			Author:          "George Orwell",
			ISBN:            "9780451524935",
			PublicationYear: year(1949),
			Genre:           "Dystopian",
			Description:     "A totalitarian regime watches everything.",
		},
		{
			Title:           "The Go Programming Language",
			Author:          "Alan A. A. Donovan",
			ISBN:            "9780134190440",
			PublicationYear: year(2015),
			Genre:           "Technology",
		},
		{
			Title:           "Concurrency in Go",
			Author:          "Katherine Cox-Buday",
			ISBN:            "9781491941195",
			PublicationYear: year(2017),
			Genre:           "Technology",
		},
		{
			Title:           "Dune",
			Author:          "Frank Herbert",
			ISBN:            "9780441013593",
			PublicationYear: year(1965),
			Genre:           "Science Fiction",
		},
		{
			Title:           "Pride and Prejudice",
			Author:          "Jane Austen",
			PublicationYear: year(1813),
			Genre:           "Romance",
		},
	}
}

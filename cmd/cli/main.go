package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/config"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "JSON file to import")

	if len(os.Args) < 2 {
		fmt.Println("expected 'export' or 'import' subcommands")
		os.Exit(1)
	}

	cfg := config.Load()
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to db: %v", err)
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		doExport(repo)
	case "import":
		importCmd.Parse(os.Args[2:])
		if *importFile == "" {
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		doImport(repo, *importFile)
	default:
		fmt.Println("expected 'export' or 'import' subcommands")
		os.Exit(1)
	}
}

// exportRecord carries the owner id, which the API representation hides.
type exportRecord struct {
	domain.Bookmark
	UserID int64 `json:"user_id"`
}

func doExport(repo *sqlite.SQLiteRepository) {
	bookmarks, err := repo.Dump(context.Background())
	if err != nil {
		log.Fatalf("Failed to dump bookmarks: %v", err)
	}

	records := make([]exportRecord, 0, len(bookmarks))
	for _, b := range bookmarks {
		records = append(records, exportRecord{Bookmark: b, UserID: b.UserID})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		log.Fatalf("Failed to encode bookmarks: %v", err)
	}
}

func doImport(repo *sqlite.SQLiteRepository, file string) {
	data, err := os.ReadFile(file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", file, err)
	}

	var records []exportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Fatalf("Failed to parse %s: %v", file, err)
	}

	imported := 0
	for i := range records {
		b := records[i].Bookmark
		b.UserID = records[i].UserID
		// Codes travel with the export; a collision means the row already
		// exists in the target database.
		if err := repo.CreateBookmark(context.Background(), &b); err != nil {
			if errors.Is(err, domain.ErrDuplicateCode) {
				log.Printf("skipping %s: code already present", b.ShortCode)
				continue
			}
			log.Fatalf("Failed to import %s: %v", b.ShortCode, err)
		}
		imported++
	}
	fmt.Printf("imported %d of %d bookmarks\n", imported, len(records))
}

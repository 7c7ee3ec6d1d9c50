package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cookbook/internal/db"
	"github.com/cookbook/internal/service"
)

func main() {
	var databaseURL string
	var dbPath string
	flag.StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "postgres connection string")
	flag.StringVar(&dbPath, "db", "cookbook.db", "sqlite db path (used when no database url)")
	flag.Parse()

	if err := db.Init(databaseURL, dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "init db: %v\n", err)
		os.Exit(1)
	}

	voteSvc := service.NewVoteService(db.DB)
	fixed, err := voteSvc.RecountAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "recount votes: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("done: fixed %d recipes\n", fixed)
}

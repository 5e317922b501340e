// orderbot-replay runs a YAML scenario on a simulated clock and prints the
// final state and journal as JSON.
// Usage: orderbot-replay [-db path] scenario.yaml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/fauzi-lee/se-take-home-assignment/internal/config"
	"github.com/fauzi-lee/se-take-home-assignment/internal/engine"
	"github.com/fauzi-lee/se-take-home-assignment/internal/scenario"
	"github.com/fauzi-lee/se-take-home-assignment/internal/store"
)

func main() {
	dbPath := flag.String("db", "", "also journal events to this SQLite database")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-db path] scenario.yaml\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "orderbot-replay: %v\n", err)
		os.Exit(1)
	}
}

func run(path, dbPath string) error {
	cfg := config.Load()
	logger := config.NewLogger(os.Stderr, cfg.LogLevel)

	sc, err := scenario.LoadFile(path)
	if err != nil {
		return err
	}

	var journal engine.Journal
	if dbPath != "" {
		db, err := store.NewSQLiteStore(dbPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer db.Close()
		journal = db
	}

	res, err := scenario.Run(context.Background(), sc, journal, logger)
	if err != nil {
		return fmt.Errorf("replay %s: %w", path, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

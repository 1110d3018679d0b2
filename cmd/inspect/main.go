package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/Gajesh2007/proj-leela-sub000/internal/logging"
	"github.com/Gajesh2007/proj-leela-sub000/internal/persist"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to leela.db")
	last := flag.Int("last", 20, "show N most recent rows")
	ideas := flag.Bool("ideas", false, "list ideas")
	concepts := flag.Bool("concepts", false, "list concepts")
	measurements := flag.Bool("log", false, "show the measurement log")
	jsonOut := flag.Bool("json", false, "output as JSON instead of text")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/leela.db [--ideas|--concepts|--log] [--last N] [--json]")
		os.Exit(2)
	}

	store, err := persist.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *ideas:
		err = runIdeas(store, *last, *jsonOut)
	case *concepts:
		err = runConcepts(store, *last, *jsonOut)
	case *measurements:
		err = runLog(store, *last, *jsonOut)
	default:
		err = runSummary(store)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region modes

func runSummary(store *persist.Store) error {
	summary, err := store.Summary()
	if err != nil {
		return err
	}
	fmt.Println(summary)
	return nil
}

func runIdeas(store *persist.Store, last int, jsonOut bool) error {
	rows, err := store.ListIdeas(last)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(rows)
	}
	for _, idea := range rows {
		fmt.Printf("%-10s  domain=%-12s  tokens=%-6d  %s\n",
			shortID(idea.ID), idea.Domain, idea.TokensUsed, truncate(idea.Content, 80))
	}
	return nil
}

func runConcepts(store *persist.Store, last int, jsonOut bool) error {
	rows, err := store.ListConcepts(last)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(rows)
	}
	for _, c := range rows {
		fmt.Printf("%-10s  domain=%-12s  states=%-3d  %s\n",
			shortID(c.ID), c.Domain, len(c.States), truncate(c.Definition, 80))
	}
	return nil
}

func runLog(store *persist.Store, last int, jsonOut bool) error {
	entries, err := logging.Recent(store.DB(), last)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(entries)
	}
	for _, e := range entries {
		fmt.Printf("%s  %-11s  %-10s  %s\n",
			e.CreatedAt.Format("2006-01-02T15:04:05Z"), e.Trigger, shortID(e.ConceptID), truncate(e.Definition, 60))
	}
	return nil
}

// #endregion modes

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// #endregion output

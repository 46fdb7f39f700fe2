package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"stockcount/internal"
	"stockcount/internal/config"
	"stockcount/internal/pipeline"
	"stockcount/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger := config.NewLogger(cfg)

	var (
		db     *storage.DB
		ledger pipeline.Ledger
	)
	if strings.TrimSpace(cfg.DBPath) != "" {
		db, err = storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
		ledger = db
	}

	runner, err := pipeline.NewRunner(cfg, logger, ledger)
	must(err)

	cmd := os.Args[1]
	switch cmd {
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		products := fs.String("products", "", "products file (csv|xlsx|xls|eml)")
		schedule := fs.String("schedule", "", "schedule file (csv|xlsx|xls|eml)")
		out := fs.String("out", "", "output directory")
		date := fs.String("date", "", "report date DD-MM-YYYY, defaults to today")
		zip := fs.Bool("zip", false, "also write a zip bundle")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*products) == "" || strings.TrimSpace(*schedule) == "" {
			must(fmt.Errorf("--products and --schedule are required"))
		}

		now := time.Now()
		if strings.TrimSpace(*date) != "" {
			now, err = time.ParseInLocation("02-01-2006 15:04", strings.TrimSpace(*date)+" 12:00", runner.Location())
			must(err)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		res, err := runner.Run(ctx, pipeline.RunInput{
			ProductsPath: *products,
			SchedulePath: *schedule,
			OutputDir:    *out,
			Now:          now,
			Zip:          *zip,
		})
		must(err)
		for _, f := range res.Files {
			fmt.Printf("wrote %s sheets=%d entries=%d\n", f.Path, len(f.Sheets), f.Entries)
		}
		if res.ZipPath != "" {
			fmt.Printf("bundle %s\n", res.ZipPath)
		}
		for _, issue := range res.Issues {
			fmt.Printf("warning: %s\n", issue.Message)
		}
		fmt.Printf("run done id=%s date=%s scheduled=%d unmatched=%d entries=%d files=%d\n",
			res.RunID, res.Today, res.Counts.TodayRows, res.Counts.UnmatchedPairs, res.Counts.MatchedEntries, res.Counts.Files)
	case "preview":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", "", "input file")
		kind := fs.String("kind", "products", "products|schedule")
		rows := fs.Int("rows", 10, "rows to print")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*file) == "" {
			must(fmt.Errorf("--file is required"))
		}
		must(preview(runner, *file, internal.TableKind(strings.ToLower(*kind)), *rows))
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs")
		_ = fs.Parse(os.Args[2:])
		must(cfg.Require("DB_PATH", cfg.DBPath))
		runs, err := db.ListRuns(*limit)
		must(err)
		last, err := db.GetMetadata(storage.LastRunKey)
		must(err)
		for _, r := range runs {
			marker := " "
			if last != nil && *last == r.RunID {
				marker = "*"
			}
			fmt.Printf("%s %s date=%s products=%s schedule=%s entries=%d files=%d issues=%d at=%s\n",
				marker, r.RunID, r.ReportDate, r.Products, r.Schedule, r.Counts.MatchedEntries, r.Counts.Files, r.Issues, r.CreatedAt)
		}
	case "runs:show":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "run id")
		_ = fs.Parse(os.Args[2:])
		must(cfg.Require("DB_PATH", cfg.DBPath))
		if strings.TrimSpace(*id) == "" {
			must(fmt.Errorf("--id is required"))
		}
		run, err := db.GetRun(*id)
		must(err)
		if run == nil {
			must(fmt.Errorf("no run with id=%s", *id))
		}
		c := run.Counts
		fmt.Printf("run %s date=%s at=%s\n", run.RunID, run.ReportDate, run.CreatedAt)
		fmt.Printf("  products=%s rows=%d\n", run.Products, c.Products)
		fmt.Printf("  schedule=%s rows=%d today=%d unmatched=%d\n", run.Schedule, c.ScheduleRows, c.TodayRows, c.UnmatchedPairs)
		fmt.Printf("  entries=%d files=%d invalidDates=%d invalidQuantities=%d\n", c.MatchedEntries, c.Files, c.InvalidDates, c.InvalidQuantity)
		issues, err := db.RunIssues(run.RunID)
		must(err)
		for _, issue := range issues {
			fmt.Printf("  %s %s row=%d value=%q: %s\n", issue.Kind, issue.Table, issue.RowNo, issue.Value, issue.Message)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func preview(runner *pipeline.Runner, path string, kind internal.TableKind, limit int) error {
	var (
		table  internal.Table
		fields []pipeline.Field
		err    error
	)
	switch kind {
	case internal.TableProducts:
		table, err = runner.LoadProducts(path)
		fields = pipeline.ProductFields
	case internal.TableSchedule:
		table, err = runner.LoadSchedule(path)
		fields = pipeline.ScheduleFields
	default:
		return fmt.Errorf("unsupported kind: %s", kind)
	}
	if err != nil {
		return err
	}

	fmt.Printf("file=%s sheet=%s rows=%d\n", table.Name, table.Sheet, len(table.Rows))
	cols, err := pipeline.ResolveColumns(kind, table.Headers, fields)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if cols.Has(f.Name) {
			fmt.Printf("  %-20s <- %q (column %d)\n", f.Name, cols.Header(f.Name), cols.Index(f.Name)+1)
		} else {
			fmt.Printf("  %-20s (absent)\n", f.Name)
		}
	}
	for i, row := range table.Rows {
		if i >= limit {
			break
		}
		values := make([]string, 0, len(fields))
		for _, f := range fields {
			values = append(values, cols.Value(row, f.Name))
		}
		fmt.Printf("%4d | %s\n", i+2, strings.Join(values, " | "))
	}
	return nil
}

func usage() {
	fmt.Println("usage: stockcount <command>")
	fmt.Println("commands:")
	fmt.Println("  run --products=FILE --schedule=FILE [--out=DIR] [--date=DD-MM-YYYY] [--zip]")
	fmt.Println("  preview --file=FILE --kind=products|schedule [--rows=10]")
	fmt.Println("  runs:list [--limit=20]")
	fmt.Println("  runs:show --id=RUN_ID")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

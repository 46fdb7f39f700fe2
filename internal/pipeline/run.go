package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"stockcount/internal"
	"stockcount/internal/config"
	"stockcount/internal/source"
)

// Ledger records finished runs. *storage.DB implements it.
type Ledger interface {
	InsertRun(rec internal.RunRecord, timings map[string]float64, issues []internal.RowIssue) error
}

type Runner struct {
	cfg    config.Config
	loc    *time.Location
	logger *logrus.Logger
	ledger Ledger
}

func NewRunner(cfg config.Config, logger *logrus.Logger, ledger Ledger) (*Runner, error) {
	loc, err := LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = config.DiscardLogger()
	}
	return &Runner{cfg: cfg, loc: loc, logger: logger, ledger: ledger}, nil
}

func (r *Runner) Location() *time.Location { return r.loc }

type RunInput struct {
	ProductsPath string
	SchedulePath string
	OutputDir    string
	Now          time.Time
	Zip          bool
}

type RunResult struct {
	RunID   string
	Today   internal.Date
	Files   []internal.ReportFile
	ZipPath string
	Issues  []internal.RowIssue
	Counts  internal.RunCounts
}

// Outcome is the in-memory result of reconciling two tables for one day.
type Outcome struct {
	Today          internal.Date
	Products       []internal.ProductRow
	Schedule       []internal.ScheduleRow
	TodayRows      []internal.ScheduleRow
	Reconciliation *Reconciliation
	Errors         []error
}

func (o *Outcome) Counts() internal.RunCounts {
	c := internal.RunCounts{
		Products:       len(o.Products),
		ScheduleRows:   len(o.Schedule),
		TodayRows:      len(o.TodayRows),
		UnmatchedPairs: len(o.Reconciliation.Unmatched),
		MatchedEntries: o.Reconciliation.EntryCount(),
	}
	for _, issue := range Issues(o.Errors) {
		switch issue.Kind {
		case internal.IssueInvalidDate:
			c.InvalidDates++
		case internal.IssueInvalidQuantity:
			c.InvalidQuantity++
		}
	}
	return c
}

// Process runs the reconciliation over two loaded tables. Column problems in
// either table are returned before anything else happens.
func (r *Runner) Process(products, schedule internal.Table, now time.Time) (*Outcome, error) {
	local := now.In(r.loc)
	productRows, err := ParseProducts(products)
	if err != nil {
		return nil, err
	}
	scheduleRows, rowErrs, err := ParseSchedule(schedule, local, ScheduleOptions{SplitBrandCells: r.cfg.SplitBrandCells})
	if err != nil {
		return nil, err
	}

	today := Today(now, r.loc)
	todayRows := FilterToday(scheduleRows, today)
	rec := Reconcile(todayRows, productRows, r.logger)

	out := &Outcome{
		Today:          today,
		Products:       productRows,
		Schedule:       scheduleRows,
		TodayRows:      todayRows,
		Reconciliation: rec,
	}
	out.Errors = append(out.Errors, rowErrs...)
	out.Errors = append(out.Errors, rec.Errors...)
	return out, nil
}

func (r *Runner) sourceOptions(fields []Field) source.Options {
	return source.Options{
		MaxUploadMB:    r.cfg.MaxUploadMB,
		CSVEncoding:    r.cfg.CSVEncoding,
		PreferredSheet: r.cfg.PreferredSheetName,
		Probe:          HeadersSatisfy(fields),
	}
}

func (r *Runner) LoadProducts(path string) (internal.Table, error) {
	return source.Load(path, r.sourceOptions(ProductFields))
}

func (r *Runner) LoadSchedule(path string) (internal.Table, error) {
	return source.Load(path, r.sourceOptions(ScheduleFields))
}

// Run loads both inputs, reconciles them for today and writes the branch
// reports. Per-row problems are returned in RunResult.Issues.
func (r *Runner) Run(ctx context.Context, in RunInput) (RunResult, error) {
	start := time.Now()
	runID := uuid.New().String()
	log := r.logger.WithField("run", runID)
	if in.Now.IsZero() {
		in.Now = time.Now()
	}
	if in.OutputDir == "" {
		in.OutputDir = r.cfg.OutputDir
	}

	products, err := r.LoadProducts(in.ProductsPath)
	if err != nil {
		return RunResult{}, fmt.Errorf("products: %w", err)
	}
	schedule, err := r.LoadSchedule(in.SchedulePath)
	if err != nil {
		return RunResult{}, fmt.Errorf("schedule: %w", err)
	}
	loadedAt := time.Now()

	outcome, err := r.Process(products, schedule, in.Now)
	if err != nil {
		return RunResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return RunResult{}, err
	}
	log.WithFields(logrus.Fields{
		"today":     outcome.Today.String(),
		"products":  len(outcome.Products),
		"schedule":  len(outcome.Schedule),
		"todayRows": len(outcome.TodayRows),
	}).Info("schedule reconciled")

	workbooks, err := BuildReports(outcome.Reconciliation, outcome.Today, ReportOptions{
		SummarySheet: r.cfg.SummarySheetName,
		LiveFormulas: r.cfg.LiveFormulas,
	})
	if err != nil {
		return RunResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return RunResult{}, err
	}

	files, err := SaveReports(in.OutputDir, workbooks)
	if err != nil {
		return RunResult{}, err
	}

	res := RunResult{
		RunID:  runID,
		Today:  outcome.Today,
		Files:  files,
		Issues: Issues(outcome.Errors),
		Counts: outcome.Counts(),
	}
	res.Counts.Files = len(files)

	if (in.Zip || r.cfg.ZipReports) && len(files) > 0 {
		res.ZipPath = filepath.Join(in.OutputDir, BundleName(outcome.Today))
		if err := BundleReports(files, res.ZipPath); err != nil {
			return res, err
		}
	}

	for _, issue := range res.Issues {
		log.WithFields(logrus.Fields{"table": issue.Table, "row": issue.RowNo, "kind": issue.Kind}).Warn(issue.Message)
	}

	if r.ledger != nil {
		record := internal.RunRecord{
			RunID:      runID,
			ReportDate: outcome.Today.ISO(),
			Products:   products.Name,
			Schedule:   schedule.Name,
			Counts:     res.Counts,
			Issues:     len(res.Issues),
		}
		timings := map[string]float64{
			"loadMs":  float64(loadedAt.Sub(start).Milliseconds()),
			"totalMs": float64(time.Since(start).Milliseconds()),
		}
		if err := r.ledger.InsertRun(record, timings, res.Issues); err != nil {
			config.LogError(r.logger, "pipeline", "Run", "record run", runID, err)
		}
	}
	return res, nil
}

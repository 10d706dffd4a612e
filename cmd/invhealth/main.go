package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hefangdw/invhealth/internal/cache"
	"github.com/hefangdw/invhealth/internal/config"
	"github.com/hefangdw/invhealth/internal/domain"
	"github.com/hefangdw/invhealth/internal/export"
	"github.com/hefangdw/invhealth/internal/health"
	"github.com/hefangdw/invhealth/internal/pipeline"
	"github.com/hefangdw/invhealth/internal/quality"
	"github.com/hefangdw/invhealth/internal/repository"
	"github.com/hefangdw/invhealth/internal/repository/postgres"
	"github.com/hefangdw/invhealth/internal/snapshot"
	"github.com/hefangdw/invhealth/pkg/logger"
)

// Exit codes consumed by the scheduler wrapper: 0 success, 1 completed with
// warnings, 2 run failed, 3 could not start.
const (
	exitWarnings  = 1
	exitRunFailed = 2
	exitStartup   = 3
)

func newDateFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "date",
		Usage:   "Snapshot date as YYYYMMDD",
		Value:   domain.DateID(time.Now()),
		EnvVars: []string{"SNAPSHOT_DATE"},
	}
}

// deps bundles everything a command needs, built once per invocation.
type deps struct {
	cfg     *config.Config
	db      *postgres.DB
	facts   repository.FactStore
	records repository.HealthRecordStore
	manager *snapshot.Manager
	checker *quality.Checker
}

func buildDeps() (*deps, error) {
	cfg := config.Load()
	logger.SetLevel(cfg.Run.LogLevel)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return nil, err
	}

	snapCache, err := cache.NewSnapshotCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("cache unavailable, continuing without it")
		snapCache = cache.NewNoopSnapshotCache()
	}

	facts := postgres.NewFactStore(db, cfg.Business)
	records := postgres.NewHealthStore(db, logger.Log)
	calc := health.NewCalculator(cfg.Business)
	engine := health.NewEngine(facts, calc, logger.Log)
	grader := health.NewGrader(cfg.Business)
	manager := snapshot.NewManager(engine, grader, records, snapCache, logger.Log)
	checker := quality.NewChecker(db.DB, logger.Log)

	return &deps{
		cfg:     cfg,
		db:      db,
		facts:   facts,
		records: records,
		manager: manager,
		checker: checker,
	}, nil
}

func (d *deps) close() {
	if err := d.db.Close(); err != nil {
		logger.Log.Warn().Err(err).Msg("closing warehouse connection")
	}
}

func main() {
	app := &cli.App{
		Name:  "invhealth",
		Usage: "Inventory health and grading engine for the retail warehouse",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the full daily pipeline for a snapshot date",
				Flags:  []cli.Flag{newDateFlag()},
				Action: runPipeline,
			},
			{
				Name:   "health",
				Usage:  "Compute, grade and replace the snapshot only",
				Flags:  []cli.Flag{newDateFlag()},
				Action: runHealthOnly,
			},
			{
				Name:   "check",
				Usage:  "Run data-quality checks against a persisted snapshot",
				Flags:  []cli.Flag{newDateFlag()},
				Action: runCheck,
			},
			{
				Name:   "summary",
				Usage:  "Print the per-date digest, from cache when available",
				Flags:  []cli.Flag{newDateFlag()},
				Action: runSummary,
			},
			{
				Name:  "export",
				Usage: "Export a persisted snapshot as CSV or XLSX",
				Flags: []cli.Flag{
					newDateFlag(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: csv or xlsx",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output path ('-' for stdout with csv)",
					},
					&cli.Int64SliceFlag{
						Name:  "category",
						Usage: "Restrict to these category ids",
					},
				},
				Action: runExport,
			},
			{
				Name:  "dates",
				Usage: "List snapshot dates present in the warehouse",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 30},
				},
				Action: runDates,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Error().Err(err).Msg("command failed")
		if coder, ok := err.(cli.ExitCoder); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(exitRunFailed)
	}
}

func runPipeline(c *cli.Context) error {
	d, err := buildDeps()
	if err != nil {
		return cli.Exit(err.Error(), exitStartup)
	}
	defer d.close()

	dateID := c.Int("date")

	availabilityPolicy := pipeline.PolicyFailSoft
	if d.cfg.Run.FailFast {
		availabilityPolicy = pipeline.PolicyFailFast
	}

	var result *snapshot.Result
	var findings []quality.Finding

	orch, err := pipeline.NewOrchestrator(logger.Log,
		pipeline.NewFactAvailabilityStage(d.facts, dateID, availabilityPolicy, logger.Log),
		pipeline.NewHealthSnapshotStage(d.manager, dateID, func(r *snapshot.Result) { result = r }),
		pipeline.NewQualityCheckStage(d.checker, dateID, func(f []quality.Finding) { findings = f }),
	)
	if err != nil {
		return cli.Exit(err.Error(), exitStartup)
	}

	report, err := orch.Run(c.Context)
	if err != nil {
		return cli.Exit(fmt.Sprintf("run failed for %d: %v", dateID, err), exitRunFailed)
	}

	if result != nil {
		printRunSummary(result)
	}
	printFindings(findings)

	if report.HasFailures() || quality.HasWarnings(findings) {
		return cli.Exit("run completed with warnings", exitWarnings)
	}
	return nil
}

func runHealthOnly(c *cli.Context) error {
	d, err := buildDeps()
	if err != nil {
		return cli.Exit(err.Error(), exitStartup)
	}
	defer d.close()

	result, err := d.manager.Run(c.Context, c.Int("date"))
	if err != nil {
		return cli.Exit(err.Error(), exitRunFailed)
	}

	printRunSummary(result)
	return nil
}

func runCheck(c *cli.Context) error {
	d, err := buildDeps()
	if err != nil {
		return cli.Exit(err.Error(), exitStartup)
	}
	defer d.close()

	findings, err := d.checker.Run(c.Context, c.Int("date"))
	if err != nil {
		return cli.Exit(err.Error(), exitRunFailed)
	}

	printFindings(findings)
	if quality.HasWarnings(findings) {
		return cli.Exit("quality checks found problems", exitWarnings)
	}
	return nil
}

func runSummary(c *cli.Context) error {
	d, err := buildDeps()
	if err != nil {
		return cli.Exit(err.Error(), exitStartup)
	}
	defer d.close()

	summary, err := d.manager.Summary(c.Context, c.Int("date"))
	if err != nil {
		return cli.Exit(err.Error(), exitRunFailed)
	}

	printDateSummary(summary)
	return nil
}

func runExport(c *cli.Context) error {
	d, err := buildDeps()
	if err != nil {
		return cli.Exit(err.Error(), exitStartup)
	}
	defer d.close()

	dateID := c.Int("date")
	format := strings.ToLower(c.String("format"))
	filter := repository.SnapshotFilter{CategoryIDs: c.Int64Slice("category")}
	exporter := export.NewExporter(d.records)

	out := c.String("out")
	var rows int

	switch format {
	case "csv":
		if out == "" {
			out = fmt.Sprintf("ads_inventory_health_%d.csv", dateID)
		}
		if out == "-" {
			rows, err = exporter.WriteCSV(c.Context, dateID, filter, os.Stdout)
		} else {
			rows, err = exporter.WriteCSVFile(c.Context, dateID, filter, out)
		}
	case "xlsx":
		if out == "" {
			out = fmt.Sprintf("ads_inventory_health_%d.xlsx", dateID)
		}
		rows, err = exporter.WriteXLSX(c.Context, dateID, filter, out)
	default:
		return cli.Exit(fmt.Sprintf("unknown format %q", format), exitStartup)
	}

	if err != nil {
		return cli.Exit(err.Error(), exitRunFailed)
	}

	logger.Log.Info().Int("rows", rows).Str("path", out).Msg("export complete")
	return nil
}

func runDates(c *cli.Context) error {
	d, err := buildDeps()
	if err != nil {
		return cli.Exit(err.Error(), exitStartup)
	}
	defer d.close()

	dates, err := d.records.AvailableDates(c.Context, c.Int("limit"))
	if err != nil {
		return cli.Exit(err.Error(), exitRunFailed)
	}

	for _, date := range dates {
		fmt.Println(date)
	}
	return nil
}

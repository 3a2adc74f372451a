package app

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/tenantwatch/caselink/internal/common"
	"github.com/tenantwatch/caselink/internal/services/caselink"
	"github.com/tenantwatch/caselink/internal/services/pdf"
	"github.com/tenantwatch/caselink/internal/services/pleadings"
	"github.com/tenantwatch/caselink/internal/services/scheduler"
	"github.com/tenantwatch/caselink/internal/storage/sqlite"
)

// App wires the storage and pipeline services together
type App struct {
	Config    *common.Config
	Logger    arbor.ILogger
	Store     *sqlite.Manager
	Crawler   *caselink.Crawler
	Extractor *pleadings.Extractor
	Judgments *pleadings.JudgmentService
	Scheduler *scheduler.Service
}

// New initializes storage and the pipeline stages
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	store, err := sqlite.NewManager(logger, &config.Storage.SQLite)
	if err != nil {
		return nil, err
	}

	engine := caselink.NewEngine(store.Warrants(), store.Documents(), store.Hearings(), config, logger)
	crawler := caselink.NewCrawler(store.Warrants(), engine, config, logger)

	judgments := pleadings.NewJudgmentService(store.Documents(), store.Hearings(), store.Judgments(), logger)
	extractor := pleadings.NewExtractor(store.Documents(), judgments, pdf.NewExtractor(logger), config, logger)

	return &App{
		Config:    config,
		Logger:    logger,
		Store:     store,
		Crawler:   crawler,
		Extractor: extractor,
		Judgments: judgments,
		Scheduler: scheduler.NewService(logger),
	}, nil
}

// RegisterScheduledJobs wires the pipeline stages onto their cron schedules
func (a *App) RegisterScheduledJobs(ctx context.Context) error {
	cfg := a.Config.Scheduler

	jobs := []struct {
		name     string
		schedule string
		handler  func() error
	}{
		{"crawl-pending", cfg.CrawlSchedule, func() error {
			_, err := a.Crawler.UpdatePendingWarrants(ctx)
			return err
		}},
		{"extract-documents", cfg.ExtractSchedule, func() error {
			return a.Extractor.ProcessPendingDocuments(ctx)
		}},
		{"reconcile-judgments", cfg.ReconcileSchedule, func() error {
			return a.Judgments.ReconcileAll(ctx)
		}},
	}

	for _, job := range jobs {
		if err := a.Scheduler.Register(job.name, job.schedule, job.handler); err != nil {
			return err
		}
	}
	return nil
}

// Close releases application resources
func (a *App) Close() error {
	return a.Store.Close()
}

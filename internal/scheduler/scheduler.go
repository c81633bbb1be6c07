package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"MeasureInGoods/internal/catalog"
	"MeasureInGoods/internal/logging"
	"MeasureInGoods/internal/page"
)

const refreshTimeout = 30 * time.Second

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron    *cron.Cron
	Catalog *catalog.Store
	Pages   *page.Registry
	LogKeep int // rotated log files to keep; 0 disables rotation
	Ctx     context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, store *catalog.Store, pages *page.Registry, logKeep int) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Catalog: store,
		Pages:   pages,
		LogKeep: logKeep,
		Ctx:     ctx,
	}
}

// RegisterAll registers the catalog refresh, log rotation and page sweep.
// An empty rotateCron skips rotation.
func (s *Scheduler) RegisterAll(catalogCron, rotateCron, sweepCron string) error {
	if _, err := s.Cron.AddFunc(catalogCron, s.refreshCatalog); err != nil {
		return fmt.Errorf("register catalog task: %w", err)
	}
	if rotateCron != "" && s.LogKeep > 0 {
		if _, err := s.Cron.AddFunc(rotateCron, s.rotateLogs); err != nil {
			return fmt.Errorf("register log rotation: %w", err)
		}
	}
	if _, err := s.Cron.AddFunc(sweepCron, s.sweepPages); err != nil {
		return fmt.Errorf("register page sweep: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunCatalogRefreshNow refreshes the catalog immediately (startup).
func (s *Scheduler) RunCatalogRefreshNow() {
	s.refreshCatalog()
}

func (s *Scheduler) refreshCatalog() {
	ctx, cancel := context.WithTimeout(s.Ctx, refreshTimeout)
	defer cancel()
	if err := s.Catalog.Refresh(ctx); err != nil {
		log.Printf("[ERROR] catalog refresh: %v", err)
	}
}

func (s *Scheduler) rotateLogs() {
	if err := logging.RotateLogs(s.LogKeep); err != nil {
		log.Printf("[ERROR] rotate logs: %v", err)
	}
}

func (s *Scheduler) sweepPages() {
	s.Pages.Sweep(time.Now())
}

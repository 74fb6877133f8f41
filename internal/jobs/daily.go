package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"classpulse/internal/model"
)

type alertGenerator interface {
	GenerateAlerts(ctx context.Context, subjectID string, periodDays int) ([]model.Alert, error)
}

type subjectLister interface {
	ActiveSubjectIDs(ctx context.Context, since time.Time) ([]string, error)
}

// DailyAnalysis re-analyzes every subject with recent responses and collects
// their alerts. Subject pipelines run concurrently and are failure-isolated:
// one subject's error never aborts the batch.
type DailyAnalysis struct {
	subjects      subjectLister
	alerts        alertGenerator
	periodDays    int
	maxConcurrent int
	logger        *zap.Logger
}

func NewDailyAnalysis(subjects subjectLister, alerts alertGenerator, periodDays, maxConcurrent int, logger *zap.Logger) *DailyAnalysis {
	if periodDays <= 0 {
		periodDays = 30
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &DailyAnalysis{
		subjects:      subjects,
		alerts:        alerts,
		periodDays:    periodDays,
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

// Run analyzes subjects active in the last 24 hours and returns the alerts
// produced across all of them.
func (j *DailyAnalysis) Run(ctx context.Context) ([]model.Alert, error) {
	since := time.Now().Add(-24 * time.Hour)
	ids, err := j.subjects.ActiveSubjectIDs(ctx, since)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		j.logger.Info("no active subjects with recent responses")
		return []model.Alert{}, nil
	}

	j.logger.Info("starting daily analysis", zap.Int("subjects", len(ids)))

	var (
		mu        sync.Mutex
		allAlerts []model.Alert
		analyzed  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.maxConcurrent)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			alerts, err := j.alerts.GenerateAlerts(gctx, id, j.periodDays)
			if err != nil {
				j.logger.Error("daily analysis failed for subject",
					zap.String("subjectId", id),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			analyzed++
			allAlerts = append(allAlerts, alerts...)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	j.logger.Info("daily analysis completed",
		zap.Int("subjectsAnalyzed", analyzed),
		zap.Int("alerts", len(allAlerts)))
	return allAlerts, nil
}

// Scheduler runs a DailyAnalysis on a fixed interval until the context is
// cancelled.
type Scheduler struct {
	job      *DailyAnalysis
	interval time.Duration
	logger   *zap.Logger
}

func NewScheduler(job *DailyAnalysis, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		job:      job,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the scheduling loop in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("scheduler stopped")
				return
			case <-ticker.C:
				if _, err := s.job.Run(ctx); err != nil {
					s.logger.Error("scheduled analysis failed", zap.Error(err))
				}
			}
		}
	}()
}

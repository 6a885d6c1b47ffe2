package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/hallbridge/internal/service"
	"github.com/Dan9191/hallbridge/internal/utils"
)

// jobTimeout bounds a single scheduled run
const jobTimeout = 5 * time.Minute

// Jobs is what the scheduler triggers
type Jobs interface {
	RunMonthlyBilling(ctx context.Context) (*service.BillingResult, error)
	RunLateFees(ctx context.Context) (int, error)
}

// Scheduler runs the billing and late-fee jobs on cron schedules in the hall calendar
type Scheduler struct {
	cron *cron.Cron
	jobs Jobs
	log  *logrus.Logger
}

// New registers both jobs; schedules use the standard five-field cron syntax
func New(jobs Jobs, log *logrus.Logger, billingSpec, lateFeeSpec string) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithLocation(utils.HallZone), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		jobs: jobs,
		log:  log,
	}
	if _, err := s.cron.AddFunc(billingSpec, s.billing); err != nil {
		return nil, fmt.Errorf("invalid billing schedule %q: %w", billingSpec, err)
	}
	if _, err := s.cron.AddFunc(lateFeeSpec, s.lateFees); err != nil {
		return nil, fmt.Errorf("invalid late fee schedule %q: %w", lateFeeSpec, err)
	}
	return s, nil
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Infof("Scheduler started with %d jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish or ctx to expire
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Scheduler stop timed out with jobs still running")
	}
}

func (s *Scheduler) billing() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.jobs.RunMonthlyBilling(ctx); err != nil {
		s.log.Errorf("Scheduled billing failed: %v", err)
	}
}

func (s *Scheduler) lateFees() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.jobs.RunLateFees(ctx); err != nil {
		s.log.Errorf("Scheduled late fee run failed: %v", err)
	}
}

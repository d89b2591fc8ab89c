package scheduler

import (
	"context"

	"github.com/flexprice/recurring/internal/api/dto"
	"github.com/flexprice/recurring/internal/config"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/pyroscope"
	"github.com/flexprice/recurring/internal/service"
	"github.com/flexprice/recurring/internal/types"
	"github.com/robfig/cron/v3"
)

// JobFunc is one lifecycle sweep
type JobFunc func(ctx context.Context) (*dto.SweepReport, error)

type job struct {
	name string
	spec string
	run  JobFunc
}

// Scheduler runs the lifecycle sweeps on their configured cron specs in the billing timezone
type Scheduler struct {
	cron     *cron.Cron
	jobs     []job
	profiler *pyroscope.Service
	logger   *logger.Logger
}

func NewScheduler(cfg *config.Configuration, lifecycle service.LifecycleService, profiler *pyroscope.Service, logger *logger.Logger) (*Scheduler, error) {
	cronLogger := logger.GetCronLogger()
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(cfg.Billing.Location()),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		profiler: profiler,
		logger:   logger,
	}

	jobs := []job{
		{name: service.JobTrialExpiry, spec: cfg.Scheduler.TrialExpirySpec, run: lifecycle.NotifyExpiringTrials},
		{name: service.JobEnterpriseExpiry, spec: cfg.Scheduler.EnterpriseExpirySpec, run: lifecycle.NotifyExpiringEnterprise},
		{name: service.JobAutoExpire, spec: cfg.Scheduler.AutoExpireSpec, run: lifecycle.SweepExpired},
	}

	for _, j := range jobs {
		if j.spec == "" {
			logger.Infow("lifecycle job disabled", "job", j.name)
			continue
		}
		if err := s.add(j); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Scheduler) add(j job) error {
	_, err := s.cron.AddFunc(j.spec, func() {
		s.RunJob(context.Background(), j.name, j.run)
	})
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Invalid cron spec %q for job %s", j.spec, j.name).
			Mark(ierr.ErrConfiguration)
	}
	s.jobs = append(s.jobs, j)
	return nil
}

// RunJob runs a sweep once and logs its report. Item failures never stop the schedule.
func (s *Scheduler) RunJob(ctx context.Context, name string, run JobFunc) *dto.SweepReport {
	ctx = types.SetRequestID(ctx, types.GenerateUUID())
	log := s.logger.With("job", name, "request_id", types.GetRequestID(ctx))
	log.Infow("starting lifecycle job")

	var (
		report *dto.SweepReport
		err    error
	)
	s.profiler.TagWrapper(ctx, map[string]string{"job": name}, func(ctx context.Context) {
		report, err = run(ctx)
	})
	if err != nil {
		log.Errorw("lifecycle job failed", "error", err)
		return nil
	}

	for _, e := range report.Errors {
		log.Warnw("lifecycle item failed",
			"subscription_id", e.SubscriptionID,
			"account_id", e.AccountID,
			"error", e.Error)
	}
	log.Infow("completed lifecycle job",
		"scanned", report.Scanned,
		"succeeded", report.Succeeded,
		"failed", report.Failed)
	return report
}

// Jobs lists the names of the scheduled jobs
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.jobs))
	for _, j := range s.jobs {
		names = append(names, j.name)
	}
	return names
}

func (s *Scheduler) Start() {
	s.logger.Infow("starting lifecycle scheduler", "jobs", s.Jobs())
	s.cron.Start()
}

// Stop waits for running jobs to finish or ctx to end
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"garageflow/internal/billing"
	"garageflow/internal/config"
	"garageflow/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

const (
	monthlyBillingJob = "mg-monthly-billing"
	billingRunTimeout = 30 * time.Minute
)

// BillingRunner is the part of the MG billing service the scheduler drives
type BillingRunner interface {
	RunScheduledBilling(ctx context.Context, period billing.BillingPeriod) (*services.ScheduledRunResult, error)
}

// JobScheduler runs recurring workshop jobs in UTC
type JobScheduler struct {
	scheduler gocron.Scheduler
	runner    BillingRunner
	policy    config.MGFleetPolicy
	now       func() time.Time
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

func NewJobScheduler(runner BillingRunner, policy config.MGFleetPolicy) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		runner:    runner,
		policy:    policy,
		now:       time.Now,
		jobs:      make(map[string]gocron.Job),
	}
	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Info().Int("jobs", len(js.jobs)).Msg("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Info().Msg("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.MonthlyJob(
			1,
			gocron.NewDaysOfTheMonth(js.policy.RunDay),
			gocron.NewAtTimes(gocron.NewAtTime(uint(js.policy.RunHour), 0, 0)),
		),
		gocron.NewTask(js.runMonthlyBilling, context.Background()),
		gocron.WithName(monthlyBillingJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", monthlyBillingJob, err)
	}
	js.jobs[monthlyBillingJob] = job

	log.Info().Str("job", monthlyBillingJob).Int("day", js.policy.RunDay).Int("hour", js.policy.RunHour).
		Msg("registered background job")
	return nil
}

// JobNames lists the registered jobs
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()
	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}

// runMonthlyBilling bills the calendar month before the current one
func (js *JobScheduler) runMonthlyBilling(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, billingRunTimeout)
	defer cancel()

	period := billing.PeriodOf(js.now()).Previous()
	started := time.Now()
	log.Info().Str("period", period.String()).Msg("starting scheduled MG billing")

	result, err := js.runner.RunScheduledBilling(ctx, period)
	if result != nil {
		log.Info().
			Str("period", result.Period).
			Int("billed", result.Billed).
			Int("skipped", result.Skipped).
			Int("failed", result.Failed).
			Dur("took", time.Since(started)).
			Msg("scheduled MG billing finished")
	}
	if err != nil {
		log.Error().Err(err).Str("period", period.String()).Msg("scheduled MG billing had failures")
		return err
	}
	return nil
}

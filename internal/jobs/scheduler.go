package jobs

import (
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// CronSpec holds the cron expressions for the recurring tasks.
type CronSpec struct {
	TapsReset       string
	SnapshotPersist string
}

// Scheduler registers and runs the recurring task schedule.
type Scheduler interface {
	RegisterTasks() error
	Run()
	Shutdown()
}

type scheduler struct {
	asynqScheduler *asynq.Scheduler
	crons          CronSpec
	log            *slog.Logger
}

// NewScheduler builds a Scheduler backed by asynq.
func NewScheduler(redisOpt asynq.RedisConnOpt, crons CronSpec, log *slog.Logger) Scheduler {
	return &scheduler{
		asynqScheduler: asynq.NewScheduler(redisOpt, nil),
		crons:          crons,
		log:            log,
	}
}

func (s *scheduler) RegisterTasks() error {
	reset, err := NewTapsResetTask(time.Now().UnixMilli())
	if err != nil {
		return err
	}
	if _, err := s.asynqScheduler.Register(s.crons.TapsReset, reset); err != nil {
		return err
	}

	persist, err := NewSnapshotPersistTask(time.Now().UnixMilli())
	if err != nil {
		return err
	}
	if _, err := s.asynqScheduler.Register(s.crons.SnapshotPersist, persist); err != nil {
		return err
	}

	s.log.Info("scheduler: registered recurring tasks",
		slog.String("taps_reset", s.crons.TapsReset),
		slog.String("snapshot_persist", s.crons.SnapshotPersist),
	)

	return nil
}

func (s *scheduler) Run() {
	s.log.Info("scheduler: starting")

	go func() {
		if err := s.asynqScheduler.Run(); err != nil {
			s.log.Error("scheduler: run failed", slog.Any("error", err))
		}
	}()
}

func (s *scheduler) Shutdown() {
	s.log.Info("scheduler: shutting down")
	s.asynqScheduler.Shutdown()
}

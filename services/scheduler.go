package services

import (
	"time"

	"github.com/madflojo/tasks"
	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/config"
)

type SchedulerService interface {
	ScheduleExecutionSweep(swapService SwapService)
	DropTask(taskID string)
}

func NewSchedulerService(cfg *config.Config, scheduler *tasks.Scheduler, log *zap.Logger) SchedulerService {
	return &schedulerService{
		service: service{
			log: log,
		},
		cfg:       cfg,
		scheduler: scheduler,
	}
}

type schedulerService struct {
	service
	cfg       *config.Config
	scheduler *tasks.Scheduler
}

func (s *schedulerService) DropTask(taskID string) {
	s.scheduler.Del(taskID)
}

// ScheduleExecutionSweep runs the retention sweep on a fixed cadence so
// finished executions do not accumulate for the life of the process.
func (s *schedulerService) ScheduleExecutionSweep(swapService SwapService) {
	interval := s.cfg.ExecutionRetention / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	s.scheduler.AddWithID("swap-execution-sweep", &tasks.Task{
		Interval: interval,
		TaskFunc: func() error {
			if n := swapService.Sweep(s.cfg.ExecutionRetention); n > 0 {
				s.log.Info("swept swap executions", zap.Int("count", n))
			}
			return nil
		},
	})
}

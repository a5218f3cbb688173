package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/madflojo/tasks"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/chain"
	"github.com/0xzenith/zenith-go/config"
	"github.com/0xzenith/zenith-go/db"
	"github.com/0xzenith/zenith-go/fhe"
	"github.com/0xzenith/zenith-go/handlers"
	"github.com/0xzenith/zenith-go/services"
)

func main() {
	// Absent .env is fine; config falls back to real env vars.
	_ = godotenv.Load()

	fx.New(
		fx.Provide(
			NewHttpServer,
			fx.Annotate(
				NewServeMux,
				fx.ParamTags(`group:"handlers"`),
			),
			fx.Annotate(
				handlers.NewAccountHandler,
				fx.As(new(handlers.Handler)),
				fx.ResultTags(`group:"handlers"`),
			),
			fx.Annotate(
				handlers.NewSwapHandler,
				fx.As(new(handlers.Handler)),
				fx.ResultTags(`group:"handlers"`),
			),
			fx.Annotate(
				handlers.NewBalanceHandler,
				fx.As(new(handlers.Handler)),
				fx.ResultTags(`group:"handlers"`),
			),
			fx.Annotate(
				handlers.NewRegistryHandler,
				fx.As(new(handlers.Handler)),
				fx.ResultTags(`group:"handlers"`),
			),
			handlers.NewMiddlewareHandler,
			fx.Annotate(
				chain.NewClient,
				fx.As(new(chain.Backend)),
			),
			fhe.NewRelayerClient,
			fhe.NewPipeline,
			NewTxTracker,
			services.NewSwapService,
			services.NewBalanceService,
			services.NewRegistryService,
			services.NewComplianceService,
			services.NewWebhookService,
			services.NewSchedulerService,
			services.NewAccountService,
			db.GetDataDBConnection,
			config.Load,
			tasks.New,
			zap.NewProduction,
		),
		fx.Invoke(func(lc fx.Lifecycle, scheduler *tasks.Scheduler, schedulerService services.SchedulerService, swapService services.SwapService) {
			schedulerService.ScheduleExecutionSweep(swapService)
			lc.Append(fx.StopHook(scheduler.Stop))
		}),
		fx.Invoke(func(*http.Server) {}),
	).Run()
}

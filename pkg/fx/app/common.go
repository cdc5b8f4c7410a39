// Package app assembles every subsystem module into the single fx.Option
// cmd/summarizerd hands to fx.New, mirroring the teacher's
// pkg/fx/app.CommonModules aggregation.
package app

import (
	"go.uber.org/fx"

	"github.com/jaye773/summarizer-core/internal/worker"
	"github.com/jaye773/summarizer-core/pkg/config"
	echofx "github.com/jaye773/summarizer-core/pkg/fx/echo"
	eventbusfx "github.com/jaye773/summarizer-core/pkg/fx/eventbus"
	jobsapifx "github.com/jaye773/summarizer-core/pkg/fx/jobsapi"
	queuefx "github.com/jaye773/summarizer-core/pkg/fx/queue"
	statestorefx "github.com/jaye773/summarizer-core/pkg/fx/statestore"
	telemetryfx "github.com/jaye773/summarizer-core/pkg/fx/telemetry"
	workerfx "github.com/jaye773/summarizer-core/pkg/fx/worker"
	"github.com/jaye773/summarizer-core/pkg/health"
)

// CommonModules wires every subsystem behind cfg, the way the teacher's
// app.CommonModules(cfg) assembles fx.Supply(cfg) plus one fx.Module per
// concern. summarizer is the caller-supplied Summarizer implementation;
// version is reported on /healthz.
func CommonModules(cfg config.LocalConfig, summarizer worker.Summarizer, version string) fx.Option {
	return fx.Module("common",
		fx.Supply(
			cfg,
			cfg.Repo,
			cfg.Server,
			cfg.Queue,
			cfg.Worker,
			cfg.StateStore,
			cfg.EventBus,
			cfg.Telemetry,
			health.BuildVersion(version),
		),
		fx.Supply(
			fx.Annotate(summarizer, fx.As(new(worker.Summarizer))),
		),
		telemetryfx.Module,
		health.Module,
		queuefx.Module,
		statestorefx.Module,
		eventbusfx.Module,
		jobsapifx.Module,
		workerfx.Module,
		echofx.Module,
	)
}

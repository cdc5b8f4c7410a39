// Package jobsapi wires the job submission/query HTTP surface into the
// composition root.
package jobsapi

import (
	"go.uber.org/fx"

	"github.com/jaye773/summarizer-core/internal/jobsapi"
	"github.com/jaye773/summarizer-core/internal/logging"
	"github.com/jaye773/summarizer-core/internal/queue"
	"github.com/jaye773/summarizer-core/internal/statestore"
	echofx "github.com/jaye773/summarizer-core/pkg/fx/echo"
)

var Module = fx.Module("jobsapi",
	fx.Provide(
		fx.Annotate(
			NewHandler,
			fx.As(new(echofx.RouteRegistrar)),
			fx.ResultTags(`group:"route_registrar"`),
		),
	),
)

// NewHandler builds the job submission/query RouteRegistrar over q and
// store.
func NewHandler(q *queue.Queue, store *statestore.Store) *jobsapi.Handler {
	return jobsapi.New(q, store, logging.Logger("jobsapi"))
}

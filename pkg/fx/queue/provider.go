// Package queue provides the priority queue as an fx module, following the
// teacher's one-package-per-concern layout under pkg/fx.
package queue

import (
	"go.uber.org/fx"

	"github.com/jaye773/summarizer-core/internal/logging"
	"github.com/jaye773/summarizer-core/internal/queue"
	"github.com/jaye773/summarizer-core/pkg/config"
)

var Module = fx.Module("queue",
	fx.Provide(New),
)

// New builds the priority queue from cfg, wiring the subsystem-scoped
// logger the way the teacher's fx providers do.
func New(cfg config.QueueConfig) *queue.Queue {
	return queue.New(queue.Config{
		MaxSize:         cfg.MaxSize,
		RateLimitPerMin: cfg.RateLimitPerMin,
		RateLimitWindow: cfg.RateLimitWindow,
		Logger:          logging.Logger("queue"),
	})
}

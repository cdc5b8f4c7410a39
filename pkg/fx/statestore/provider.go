// Package statestore wires the in-memory job store and its JSON-on-disk
// PersistentStore into the composition root.
package statestore

import (
	"context"
	"path/filepath"

	"go.uber.org/fx"

	"github.com/jaye773/summarizer-core/internal/logging"
	"github.com/jaye773/summarizer-core/internal/statestore"
	"github.com/jaye773/summarizer-core/internal/statestore/jsonstore"
	"github.com/jaye773/summarizer-core/pkg/config"
)

var Module = fx.Module("statestore",
	fx.Provide(
		NewPersistentStore,
		New,
	),
	fx.Invoke(registerLifecycle),
)

// jobsFileName is the single file the jsonstore persists the job map to,
// inside the configured repo data dir.
const jobsFileName = "jobs.json"

// NewPersistentStore builds the default JSON-file durability backend under
// repo.DataDir.
func NewPersistentStore(repo config.RepoConfig) statestore.PersistentStore {
	path := filepath.Join(repo.DataDir, jobsFileName)
	return jsonstore.New(path, logging.Logger("statestore/jsonstore"))
}

// New builds the in-memory Store, not yet started.
func New(cfg config.StateStoreConfig, persistent statestore.PersistentStore) *statestore.Store {
	return statestore.New(statestore.Config{
		FlushInterval:   cfg.FlushInterval,
		RetentionWindow: cfg.RetentionWindow,
		RetentionSweep:  cfg.RetentionSweep,
		Logger:          logging.Logger("statestore"),
		Persistent:      persistent,
	})
}

// registerLifecycle hydrates the store from its PersistentStore on start.
// Stop is the worker pool's responsibility (Pool.Stop flushes and stops the
// store as the final step of its own shutdown sequencing, so it is not
// duplicated here).
func registerLifecycle(lc fx.Lifecycle, store *statestore.Store) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return store.Start(ctx)
		},
	})
}

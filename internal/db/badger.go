package db

import (
	"github.com/dgraph-io/badger/v3"
	"github.com/j00les/workout-map/internal/config"
)

// OpenBadger opens the embedded store at BADGER_PATH. An empty path opens
// an in-memory database.
func OpenBadger(cfg config.Config) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.BadgerPath).WithLoggingLevel(badger.ERROR)
	if cfg.BadgerPath == "" {
		opts = opts.WithInMemory(true)
	}
	return badger.Open(opts)
}

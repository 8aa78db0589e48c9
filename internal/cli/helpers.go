package cli

import (
	"fmt"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/store"
)

// withStore opens the configured experiment database for the duration of fn.
func (o *rootOptions) withStore(fn func(*store.SQLiteStore) error) error {
	o.logger.Debug("opening experiment database", "db", o.cfg.DBPath)

	s, err := store.Open(o.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", o.cfg.DBPath, err)
	}
	defer s.Close()

	return fn(s)
}

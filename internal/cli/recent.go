package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/retrace/internal/history"
)

// Execute implements the go-flags Commander interface for RecentCommand.
func (c *RecentCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	if c.Limit > 0 {
		cfg.Recent.Lines = c.Limit
	}

	env, err := openStoreWithConfig(cfg, c.globals, nil)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer env.Close()

	return c.executeWithStore(env.store)
}

// executeWithStore runs the recent logic against a provided store (used by tests).
func (c *RecentCommand) executeWithStore(store *history.Store) error {
	lines, err := store.RecentDisplay()
	if err != nil {
		return fmt.Errorf("read recent history: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		out := map[string]interface{}{
			"lines": lines,
			"count": len(lines),
		}
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(out)
	}

	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

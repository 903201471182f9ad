package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/retrace/internal/history"
)

// Execute implements the go-flags Commander interface for AddCommand.
func (c *AddCommand) Execute(args []string) error {
	if c.URL == "" {
		return fmt.Errorf("--url is required for add command")
	}

	env, err := openStore(c.globals, nil)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer env.Close()

	if err := c.executeWithStore(env.store); err != nil {
		return err
	}

	if err := env.saves.FlushAll(); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}

	return c.printResult(env.store)
}

// executeWithStore runs the add logic against a provided store (used by tests).
func (c *AddCommand) executeWithStore(store *history.Store) error {
	if c.RequestedURL != "" {
		return store.AddFromNavigation(c.URL, c.RequestedURL, c.Title)
	}

	var opts []history.AddOption
	if c.Redirect {
		opts = append(opts, history.WithRedirect())
	}
	if c.Atime != nil {
		opts = append(opts, history.WithAtime(*c.Atime))
	}
	return store.Add(c.URL, c.Title, opts...)
}

func (c *AddCommand) printResult(store *history.Store) error {
	if c.globals != nil && c.globals.JSON {
		out := map[string]interface{}{
			"added": store.NewCount(),
			"url":   c.URL,
		}
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(out)
	}

	if store.NewCount() == 0 {
		fmt.Println("Nothing recorded (invalid or ignored URL).")
		return nil
	}
	fmt.Printf("Recorded %d entr%s.\n", store.NewCount(), plural(store.NewCount(), "y", "ies"))
	return nil
}

// plural picks the singular or plural suffix for n.
func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

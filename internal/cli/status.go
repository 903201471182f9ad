package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version       string `json:"version"`
	HistoryPath   string `json:"history_path"`
	FileSizeBytes int64  `json:"file_size_bytes"`
	IndexEntries  int    `json:"index_entries"`
	NewThisRun    int    `json:"new_this_run"`
	Unsaved       int    `json:"unsaved"`
	Loaded        bool   `json:"loaded"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	env, err := openStore(c.globals, nil)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer env.Close()

	return c.executeWithEnv(env)
}

// executeWithEnv runs status against a provided environment (used by tests).
func (c *StatusCommand) executeWithEnv(env *storeEnv) error {
	size, err := env.file.Size()
	if err != nil {
		return fmt.Errorf("stat history: %w", err)
	}

	entries, err := env.table.Len()
	if err != nil {
		return fmt.Errorf("count index: %w", err)
	}

	histPath, err := env.cfg.HistoryPath()
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		out := statusJSON{
			Version:       c.version,
			HistoryPath:   histPath,
			FileSizeBytes: size,
			IndexEntries:  entries,
			NewThisRun:    env.store.NewCount(),
			Unsaved:       env.store.UnsavedCount(),
			Loaded:        env.store.Loaded(),
		}
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(out)
	}

	fmt.Println("Retrace Status")
	fmt.Println("==============")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("History file:  %s (%d bytes)\n", histPath, size)
	fmt.Printf("Index entries: %d\n", entries)
	fmt.Printf("New this run:  %d\n", env.store.NewCount())
	fmt.Printf("Unsaved:       %d\n", env.store.UnsavedCount())
	if env.store.Loaded() {
		fmt.Println("Load:          complete")
	} else {
		fmt.Println("Load:          in progress")
	}
	return nil
}

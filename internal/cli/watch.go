package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Execute implements the go-flags Commander interface for WatchCommand.
func (c *WatchCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	if c.Interval > 0 {
		cfg.Save.IntervalSeconds = c.Interval
	}

	env, err := openStoreWithConfig(cfg, c.globals, nil)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer env.Close()

	interval := time.Duration(cfg.Save.IntervalSeconds) * time.Second
	return c.watch(env, os.Stdin, interval)
}

// watch records one navigation per input line ("<url> [<title>]")
// until EOF, flushing through the save manager at the given interval
// and once more on the way out. Input lines and save ticks are handled
// on a single goroutine; the store never sees concurrent calls.
func (c *WatchCommand) watch(env *storeEnv, r io.Reader, interval time.Duration) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				return env.saves.FlushAll()
			}
			if err := c.record(env, line); err != nil {
				return err
			}
		case <-ticker.C:
			if err := env.saves.FlushAll(); err != nil {
				return fmt.Errorf("periodic save: %w", err)
			}
		}
	}
}

// record parses one input line into a visit. Blank lines are skipped;
// everything after the URL is the title.
func (c *WatchCommand) record(env *storeEnv, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	url, title := line, ""
	if idx := strings.IndexAny(line, " \t"); idx >= 0 {
		url, title = line[:idx], strings.TrimSpace(line[idx:])
	}
	return env.store.Add(url, title)
}

package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// stdinConfirmer asks a yes/no question on the terminal.
type stdinConfirmer struct {
	in  io.Reader
	out io.Writer
}

// Confirm prints the question and reads one line; only "y" or "yes"
// (case-insensitive) count as affirmation.
func (c *stdinConfirmer) Confirm(message string) (bool, error) {
	fmt.Fprintf(c.out, "%s [y/N] ", message)

	scanner := bufio.NewScanner(c.in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return false, err
		}
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes", nil
}

// Execute implements the go-flags Commander interface for ClearCommand.
func (c *ClearCommand) Execute(args []string) error {
	confirmer := &stdinConfirmer{in: os.Stdin, out: os.Stdout}

	env, err := openStore(c.globals, confirmer)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer env.Close()

	cleared := false
	env.store.OnCleared(func() { cleared = true })

	if err := env.store.Clear(c.Force); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		out := map[string]interface{}{
			"cleared": cleared,
		}
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(out)
	}

	if cleared {
		fmt.Println("Cleared all browsing history.")
	} else {
		fmt.Println("Aborted: history left untouched.")
	}
	return nil
}

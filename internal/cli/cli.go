package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Add    *AddCommand
	Recent *RecentCommand
	Watch  *WatchCommand
	Clear  *ClearCommand
	Status *StatusCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "retrace"
	parser.LongDescription = "Append-only local browsing history with a live, queryable view."

	cmds := &commands{
		Add:    &AddCommand{globals: &globals, version: version},
		Recent: &RecentCommand{globals: &globals, version: version},
		Watch:  &WatchCommand{globals: &globals, version: version},
		Clear:  &ClearCommand{globals: &globals, version: version},
		Status: &StatusCommand{globals: &globals, version: version},
	}

	parser.AddCommand("add", "Record a visited URL", "Record a visited URL in the browsing history, optionally as a redirect pair.", cmds.Add)
	parser.AddCommand("recent", "Show recent history", "Show the most recent history entries without scanning the whole log.", cmds.Recent)
	parser.AddCommand("watch", "Record navigations from stdin", "Record one navigation per stdin line (\"<url> [<title>]\"), saving at the configured interval until EOF.", cmds.Watch)
	parser.AddCommand("clear", "Clear all browsing history", "Clear all browsing history, on disk and in memory. Asks for confirmation unless --force.", cmds.Clear)
	parser.AddCommand("status", "Show history statistics", "Show history file statistics and load state.", cmds.Status)

	return parser, &globals, cmds
}

// Run is the main entry point for the retrace CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("retrace %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}

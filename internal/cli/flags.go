package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// AddCommand — record a visited URL in the history.
type AddCommand struct {
	URL          string   `long:"url" description:"URL that was visited (required)"`
	Title        string   `long:"title" description:"Page title"`
	RequestedURL string   `long:"requested-url" description:"URL originally requested, if a redirect happened"`
	Redirect     bool     `long:"redirect" description:"Record as a hidden redirect entry"`
	Atime        *float64 `long:"atime" description:"Override access time (seconds since epoch)"`

	globals *GlobalFlags
	version string
}

// RecentCommand — show the most recent history entries.
type RecentCommand struct {
	Limit int `long:"limit" description:"Maximum log-tail lines" default:"100"`

	globals *GlobalFlags
	version string
}

// WatchCommand — record navigations streamed on stdin, saving at the
// configured interval.
type WatchCommand struct {
	Interval int `long:"interval" description:"Override save interval (seconds)"`

	globals *GlobalFlags
	version string
}

// ClearCommand — wipe all browsing history with safety confirmation.
type ClearCommand struct {
	Force bool `long:"force" description:"Skip the confirmation prompt"`

	globals *GlobalFlags
	version string
}

// StatusCommand — show history file statistics and load state.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// Package history implements the browsing-history store: an append-only
// on-disk log of visited URLs behind a live, queryable in-memory view.
//
// This is a little more complex than you'd expect so the history can be
// read from disk incrementally while new history is already arriving.
// While the initial read is still in progress, new entries are held in a
// temporary buffer and only merged into the index once the read
// completes. All history which is new in this session (rather than read
// from disk from a previous session) is also kept in order, together
// with a count of how many of those entries were already written to
// disk, so saving always appends to the existing data and never
// rewrites it.
package history

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/runnerr0/retrace/internal/linefile"
)

// Index is the in-memory last-write-wins view the store commits entries
// into. Implemented by internal/index.
type Index interface {
	Upsert(Entry) error
	Get(url string) (Entry, bool, error)
	DeleteWhere(pred func(Entry) bool) error
	Clear() error
	Len() (int, error)
}

// Confirmer asks the user a yes/no question before a destructive
// operation proceeds.
type Confirmer interface {
	Confirm(message string) (bool, error)
}

// Registrar is the durability scheduler the store registers its Save
// with once the initial load completes. External code decides when
// flushes actually run; the store never schedules its own saves.
type Registrar interface {
	Register(name string, flush func() error, dirty func() bool)
}

// Load phases. Only LoadStep suspends; everything else runs to
// completion without interleaving.
type loadPhase int

const (
	loadNotStarted loadPhase = iota
	loadStreaming
	loadComplete
)

// Store is the global history of visited pages. One instance owns the
// backing file and the index exclusively; there is a single logical
// thread of control, so no locking.
type Store struct {
	file  *linefile.File
	index Index

	phase  loadPhase
	reader *linefile.Reader

	// Entries added while the initial read is still in progress.
	tempHistory []Entry
	// Entries new in this session, in arrival order.
	newHistory []Entry
	// How many leading newHistory entries are already on disk.
	savedCount int

	recentLines int

	confirmer Confirmer
	registrar Registrar
	logger    *slog.Logger

	loadDoneFns []func()
	clearedFns  []func()
}

// Options configures optional store collaborators.
type Options struct {
	// Confirmer handles the prompt for non-forced clears. Nil means
	// non-forced clears are refused.
	Confirmer Confirmer
	// Registrar receives the store's Save once loading completes.
	Registrar Registrar
	// Logger for warnings on malformed lines and ignored calls.
	// Nil means slog.Default().
	Logger *slog.Logger
	// RecentLines bounds the log tail used by RecentDisplay.
	RecentLines int
}

const defaultRecentLines = 100

// NewStore creates a store over the given backing file and index.
func NewStore(file *linefile.File, idx Index, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recent := opts.RecentLines
	if recent <= 0 {
		recent = defaultRecentLines
	}
	return &Store{
		file:        file,
		index:       idx,
		confirmer:   opts.Confirmer,
		registrar:   opts.Registrar,
		logger:      logger,
		recentLines: recent,
	}
}

// OnLoadDone registers a listener for the one-time load-completed
// notification. Listeners run synchronously, in registration order.
func (s *Store) OnLoadDone(fn func()) {
	s.loadDoneFns = append(s.loadDoneFns, fn)
}

// OnCleared registers a listener fired after every successful clear.
func (s *Store) OnCleared(fn func()) {
	s.clearedFns = append(s.clearedFns, fn)
}

// BeginLoad starts the incremental read of the backing file. Calling it
// again while a load is running or finished is a logged no-op.
func (s *Store) BeginLoad() error {
	if s.phase != loadNotStarted {
		s.logger.Debug("ignoring BeginLoad because reading is started")
		return nil
	}
	reader, err := s.file.OpenReader()
	if err != nil {
		return fmt.Errorf("begin history load: %w", err)
	}
	s.reader = reader
	s.phase = loadStreaming
	return nil
}

// LoadStep consumes exactly one line of the backing file and returns
// done=true once the file is exhausted. Each call is one suspension
// point: callers interleave other work (including Add) between steps.
func (s *Store) LoadStep() (done bool, err error) {
	switch s.phase {
	case loadNotStarted:
		return false, fmt.Errorf("load step before BeginLoad")
	case loadComplete:
		return true, nil
	}

	if s.reader.Next() {
		line := strings.TrimRight(s.reader.Line(), " \t\r\n")
		if line == "" {
			return false, nil
		}
		entry, err := ParseEntry(line)
		if err != nil {
			s.logger.Warn("invalid history entry",
				"line", line, "error", err)
			return false, nil
		}
		// This de-duplicates history entries; only the latest entry
		// for each URL is kept.
		if err := s.index.Upsert(entry); err != nil {
			return false, err
		}
		return false, nil
	}

	readErr := s.reader.Err()
	closeErr := s.reader.Close()
	s.reader = nil
	if readErr != nil {
		return false, fmt.Errorf("read history file: %w", readErr)
	}
	if closeErr != nil {
		return false, fmt.Errorf("close history file: %w", closeErr)
	}

	if err := s.finishLoad(); err != nil {
		return false, err
	}
	return true, nil
}

// finishLoad transitions to the complete phase: drains the temporary
// buffer into the index and session list in arrival order, notifies
// listeners, and hands Save to the durability scheduler.
func (s *Store) finishLoad() error {
	s.phase = loadComplete

	for _, entry := range s.tempHistory {
		if err := s.index.Upsert(entry); err != nil {
			return err
		}
		s.newHistory = append(s.newHistory, entry)
	}
	s.tempHistory = nil

	for _, fn := range s.loadDoneFns {
		fn()
	}
	if s.registrar != nil {
		s.registrar.Register("history", s.Save, func() bool {
			return s.UnsavedCount() > 0
		})
	}
	return nil
}

// RunLoad drives the load to completion, one line per step.
func (s *Store) RunLoad() error {
	if err := s.BeginLoad(); err != nil {
		return err
	}
	for {
		done, err := s.LoadStep()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Loaded reports whether the initial read has completed.
func (s *Store) Loaded() bool {
	return s.phase == loadComplete
}

// AddOption overrides a default on Add.
type AddOption func(*addConfig)

type addConfig struct {
	redirect bool
	atime    float64
	hasAtime bool
}

// WithRedirect marks the entry as an intermediate hop, hidden from
// user-facing suggestions.
func WithRedirect() AddOption {
	return func(c *addConfig) { c.redirect = true }
}

// WithAtime overrides the access time (seconds since epoch).
func WithAtime(atime float64) AddOption {
	return func(c *addConfig) {
		c.atime = atime
		c.hasAtime = true
	}
}

// Add records a visit to a URL. An empty or invalid URL is a logged
// no-op, not an error; data: URLs are never recorded. While the initial
// read is still running the entry only enters the temporary buffer and
// becomes visible once the load completes.
func (s *Store) Add(rawURL, title string, opts ...AddOption) error {
	if isDataURL(rawURL) {
		return nil
	}

	var cfg addConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.hasAtime {
		cfg.atime = float64(time.Now().UnixNano()) / 1e9
	}

	entry, err := NewEntry(cfg.atime, rawURL, title, cfg.redirect)
	if err != nil {
		s.logger.Warn("ignoring invalid URL being added to history",
			"url", rawURL, "error", err)
		return nil
	}

	if s.phase == loadComplete {
		if err := s.index.Upsert(entry); err != nil {
			return err
		}
		s.newHistory = append(s.newHistory, entry)
	} else {
		s.tempHistory = append(s.tempHistory, entry)
	}
	return nil
}

// AddFromNavigation records a committed navigation. When the final URL
// differs from the originally requested one (a redirect happened), the
// requested URL is recorded as a hidden redirect entry and the final URL
// as a normal one. An empty displayed URL (synthetic content) is a
// no-op.
func (s *Store) AddFromNavigation(urlStr, requestedURL, title string) error {
	if isDataURL(urlStr) || isDataURL(requestedURL) {
		return nil
	}
	if urlStr == "" {
		// Content set directly, nothing navigable to record.
		return nil
	}

	if requestedURL != "" && requestedURL != urlStr {
		if err := s.Add(requestedURL, title, WithRedirect()); err != nil {
			return err
		}
	}
	return s.Add(urlStr, title)
}

// RecentDisplay returns the most recent history as text lines: the tail
// of the on-disk log followed by everything new in this session. It
// works in any load phase and never scans the whole file.
func (s *Store) RecentDisplay() ([]string, error) {
	lines, err := s.file.Recent(s.recentLines)
	if err != nil {
		return nil, err
	}
	for _, entry := range s.newHistory {
		lines = append(lines, entry.String())
	}
	return lines, nil
}

// NewCount returns how many entries are new in this session.
func (s *Store) NewCount() int {
	return len(s.newHistory)
}

// UnsavedCount returns how many session entries are not yet on disk.
func (s *Store) UnsavedCount() int {
	return len(s.newHistory) - s.savedCount
}

// Save appends the not-yet-durable session entries to the backing file.
// Safe to call repeatedly; a clean store appends nothing.
func (s *Store) Save() error {
	pending := s.newHistory[s.savedCount:]
	lines := make([]string, 0, len(pending))
	for _, entry := range pending {
		lines = append(lines, entry.String())
	}
	if err := s.file.Append(lines); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	s.savedCount = len(s.newHistory)
	return nil
}

// Clear wipes all browsing history, on disk and in memory. Without
// force it first asks the configured Confirmer; a declined prompt
// leaves everything untouched.
func (s *Store) Clear(force bool) error {
	if !force {
		if s.confirmer == nil {
			return fmt.Errorf("clear requires confirmation but no confirmer is configured")
		}
		ok, err := s.confirmer.Confirm("Clear all browsing history?")
		if err != nil {
			return fmt.Errorf("confirm clear: %w", err)
		}
		if !ok {
			return nil
		}
	}
	return s.doClear()
}

func (s *Store) doClear() error {
	if err := s.file.Clear(); err != nil {
		return err
	}
	if err := s.index.Clear(); err != nil {
		return err
	}
	s.tempHistory = nil
	s.newHistory = nil
	s.savedCount = 0

	for _, fn := range s.clearedFns {
		fn()
	}
	return nil
}

// isDataURL reports whether the URL uses the embedded-content pseudo
// scheme, which is never recorded.
func isDataURL(rawURL string) bool {
	return len(rawURL) >= 5 && rawURL[:5] == "data:"
}

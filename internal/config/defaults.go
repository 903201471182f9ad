package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:        "~/.local/share/retrace",
			HistoryFile: "history",
		},
		Recent: RecentConfig{
			Lines: 100,
		},
		Save: SaveConfig{
			IntervalSeconds: 60,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

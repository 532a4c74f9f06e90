package app

import "errors"

// Config holds everything an App instance needs to run.
type Config struct {
	// Paths are the input files or directories, in request order.
	Paths []string
	// ProfilePath optionally names an HCL checker profile.
	ProfilePath string
	// ReportPath optionally names a JSON batch report to write.
	ReportPath string

	Verbose   bool
	Workers   int
	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and fills defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("at least one input path is required")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &cfg, nil
}

package config

import "time"

// Default values for configuration fields.
const (
	// Lexer defaults
	DefaultTabWidth        = 4
	DefaultIncludeComments = true

	// Parser defaults
	DefaultMaxDepth    = 64
	DefaultMaxFileSize = int64(10 * 1024 * 1024) // 10MB

	// Validator defaults
	DefaultMaxPromptLength  = 10000
	DefaultWarningsAsErrors = false

	// History defaults
	DefaultHistoryEnabled       = false
	DefaultHistoryPath          = "data/prose-history.db"
	DefaultHistoryRetentionDays = 90

	// Metrics defaults
	DefaultMetricsEnabled       = false
	DefaultMetricsListenAddress = "127.0.0.1:9464"
	DefaultMetricsNamespace     = "prose"

	// Watch defaults
	DefaultWatchDebounce       = 300 * time.Millisecond
	DefaultWatchRescanSchedule = "@every 10m"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// ApplyDefaults fills in default values for any zero-valued fields in the
// configuration. It is called automatically by LoadConfig.
func ApplyDefaults(cfg *Config) {
	if cfg.Lexer.TabWidth == 0 {
		cfg.Lexer.TabWidth = DefaultTabWidth
	}
	if cfg.Parser.MaxDepth == 0 {
		cfg.Parser.MaxDepth = DefaultMaxDepth
	}
	if cfg.Parser.MaxFileSize == 0 {
		cfg.Parser.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Validator.MaxPromptLength == 0 {
		cfg.Validator.MaxPromptLength = DefaultMaxPromptLength
	}
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	if cfg.History.RetentionDays == 0 {
		cfg.History.RetentionDays = DefaultHistoryRetentionDays
	}
	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
	if cfg.Watch.RescanSchedule == "" {
		cfg.Watch.RescanSchedule = DefaultWatchRescanSchedule
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}

// NewDefault returns a configuration with every field at its default.
func NewDefault() *Config {
	cfg := &Config{
		Lexer: LexerConfig{
			IncludeComments: DefaultIncludeComments,
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

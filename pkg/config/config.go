package config

import "time"

// Config is the root configuration structure for the Prose toolchain.
// It contains one section per pipeline stage plus the supporting
// subsystems: run history, metrics, and watch mode.
type Config struct {
	// Lexer contains tokenizer settings.
	Lexer LexerConfig `yaml:"lexer"`

	// Parser contains parser limits.
	Parser ParserConfig `yaml:"parser"`

	// Validator contains semantic analysis settings.
	Validator ValidatorConfig `yaml:"validator"`

	// History contains configuration for the check-run history store.
	History HistoryConfig `yaml:"history"`

	// Metrics contains Prometheus exposition settings for watch mode.
	Metrics MetricsConfig `yaml:"metrics"`

	// Watch contains file-watching and rescan settings.
	Watch WatchConfig `yaml:"watch"`

	// Logging contains structured-logging settings.
	Logging LoggingConfig `yaml:"logging"`
}

// LexerConfig contains tokenizer settings.
type LexerConfig struct {
	// TabWidth is the number of columns a tab advances to when measuring
	// indentation. Tabs round up to the next multiple of this width.
	// Default: 4
	TabWidth int `yaml:"tab_width"`

	// IncludeComments controls whether comment tokens are kept in the
	// token stream. The parser needs them to report comment positions;
	// disable only for token dumps.
	// Default: true
	IncludeComments bool `yaml:"include_comments"`
}

// ParserConfig contains parser limits.
type ParserConfig struct {
	// MaxDepth caps statement nesting depth. Exceeding it is reported as
	// a parse error instead of risking stack exhaustion.
	// Default: 64
	MaxDepth int `yaml:"max_depth"`

	// MaxFileSize is the largest source file, in bytes, the CLI will
	// read. Zero disables the limit.
	// Default: 10485760 (10MB)
	MaxFileSize int64 `yaml:"max_file_size"`
}

// ValidatorConfig contains semantic analysis settings.
type ValidatorConfig struct {
	// MaxPromptLength is the prompt length above which the validator
	// warns about overly long prompts.
	// Default: 10000
	MaxPromptLength int `yaml:"max_prompt_length"`

	// WarningsAsErrors makes the CLI exit non-zero when warnings are
	// present, for CI pipelines that want a clean bill.
	// Default: false
	WarningsAsErrors bool `yaml:"warnings_as_errors"`
}

// HistoryConfig contains configuration for the check-run history store.
type HistoryConfig struct {
	// Enabled controls whether check runs are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file holding run records.
	// Default: "data/prose-history.db"
	Path string `yaml:"path"`

	// RetentionDays is how long run records are kept before the
	// scheduled cleanup removes them. Zero keeps records forever.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`
}

// MetricsConfig contains Prometheus exposition settings.
type MetricsConfig struct {
	// Enabled controls whether watch mode serves metrics.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address the metrics endpoint binds to.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Namespace prefixes every metric name.
	// Default: "prose"
	Namespace string `yaml:"namespace"`
}

// WatchConfig contains file-watching and rescan settings.
type WatchConfig struct {
	// Debounce is how long to wait after the last filesystem event
	// before rechecking, so editors that write in bursts trigger one
	// check instead of several.
	// Default: 300ms
	Debounce time.Duration `yaml:"debounce"`

	// RescanSchedule is a cron expression for periodic full rescans of
	// the watched paths, catching changes the watcher missed. Empty
	// disables scheduled rescans.
	// Default: "@every 10m"
	RescanSchedule string `yaml:"rescan_schedule"`
}

// LoggingConfig contains structured-logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "text" or "json".
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

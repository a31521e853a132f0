package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the configuration file looked for in the working
// directory when no explicit path is given.
const DefaultFileName = "prose.yaml"

// LoadConfig loads configuration from a YAML file at the specified path.
// Unset fields keep their defaults, and the result is validated before it
// is returned. A missing file is not an error: it yields the defaults, so
// running the CLI without a prose.yaml just works.
func LoadConfig(path string) (*Config, error) {
	cfg := NewDefault()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention PROSE_SECTION_FIELD (e.g. PROSE_PARSER_MAX_DEPTH) and always
// take precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	// Lexer overrides
	if val := os.Getenv("PROSE_LEXER_TAB_WIDTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Lexer.TabWidth = i
		}
	}
	if val := os.Getenv("PROSE_LEXER_INCLUDE_COMMENTS"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Lexer.IncludeComments = b
		}
	}

	// Parser overrides
	if val := os.Getenv("PROSE_PARSER_MAX_DEPTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Parser.MaxDepth = i
		}
	}
	if val := os.Getenv("PROSE_PARSER_MAX_FILE_SIZE"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Parser.MaxFileSize = i
		}
	}

	// Validator overrides
	if val := os.Getenv("PROSE_VALIDATOR_MAX_PROMPT_LENGTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Validator.MaxPromptLength = i
		}
	}
	if val := os.Getenv("PROSE_VALIDATOR_WARNINGS_AS_ERRORS"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Validator.WarningsAsErrors = b
		}
	}

	// History overrides
	if val := os.Getenv("PROSE_HISTORY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.History.Enabled = b
		}
	}
	if val := os.Getenv("PROSE_HISTORY_PATH"); val != "" {
		cfg.History.Path = val
	}
	if val := os.Getenv("PROSE_HISTORY_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.History.RetentionDays = i
		}
	}

	// Metrics overrides
	if val := os.Getenv("PROSE_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("PROSE_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Metrics.ListenAddress = val
	}
	if val := os.Getenv("PROSE_METRICS_NAMESPACE"); val != "" {
		cfg.Metrics.Namespace = val
	}

	// Watch overrides
	if val := os.Getenv("PROSE_WATCH_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Watch.Debounce = d
		}
	}
	if val := os.Getenv("PROSE_WATCH_RESCAN_SCHEDULE"); val != "" {
		cfg.Watch.RescanSchedule = val
	}

	// Logging overrides
	if val := os.Getenv("PROSE_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("PROSE_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
	if val := os.Getenv("PROSE_LOGGING_ADD_SOURCE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Logging.AddSource = b
		}
	}
}

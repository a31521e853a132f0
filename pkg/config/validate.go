package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "parser.max_depth").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the entire configuration and returns a ValidationError
// if any rule fails. All violations are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	if cfg.Lexer.TabWidth < 1 {
		errs = append(errs, FieldError{
			Field:   "lexer.tab_width",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Lexer.TabWidth),
		})
	}

	if cfg.Parser.MaxDepth < 1 {
		errs = append(errs, FieldError{
			Field:   "parser.max_depth",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Parser.MaxDepth),
		})
	}
	if cfg.Parser.MaxFileSize < 0 {
		errs = append(errs, FieldError{
			Field:   "parser.max_file_size",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Parser.MaxFileSize),
		})
	}

	if cfg.Validator.MaxPromptLength < 1 {
		errs = append(errs, FieldError{
			Field:   "validator.max_prompt_length",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Validator.MaxPromptLength),
		})
	}

	if cfg.History.Enabled && cfg.History.Path == "" {
		errs = append(errs, FieldError{
			Field:   "history.path",
			Message: "must be set when history is enabled",
		})
	}
	if cfg.History.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "history.retention_days",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.History.RetentionDays),
		})
	}

	if cfg.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(cfg.Metrics.ListenAddress); err != nil {
			errs = append(errs, FieldError{
				Field:   "metrics.listen_address",
				Message: fmt.Sprintf("invalid host:port %q: %v", cfg.Metrics.ListenAddress, err),
			})
		}
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, FieldError{
			Field:   "watch.debounce",
			Message: "must not be negative",
		})
	}
	if cfg.Watch.RescanSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Watch.RescanSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "watch.rescan_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Watch.RescanSchedule, err),
			})
		}
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error; got %q", cfg.Logging.Level),
		})
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("must be text or json, got %q", cfg.Logging.Format),
		})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

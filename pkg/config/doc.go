// Package config provides configuration management for the Prose toolchain.
//
// Configuration is loaded from a prose.yaml file with environment variable
// overrides, validated, and filled with sensible defaults. A missing file
// is not an error; every setting has a default, so the CLI works with no
// configuration at all.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("prose.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("prose.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention PROSE_SECTION_FIELD
// and always take precedence over file values. For example:
//
//   - PROSE_PARSER_MAX_DEPTH overrides parser.max_depth
//   - PROSE_VALIDATOR_WARNINGS_AS_ERRORS overrides validator.warnings_as_errors
//   - PROSE_METRICS_LISTEN_ADDRESS overrides metrics.listen_address
//
// # Sections
//
// lexer and parser tune the front-end stages; validator controls semantic
// analysis thresholds; history, metrics, and watch configure the optional
// subsystems around the core pipeline.
package config

// Package logging configures the process-wide structured logger.
//
// The toolchain logs through log/slog everywhere; this package just
// translates the logging section of the configuration into a handler
// (text or console JSON, level, source locations) that the CLI installs
// as the default.
package logging

package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants for CLI flag counts.
const (
	VerbosityUser  = 0 // No flags: results, warnings, and errors only
	VerbosityInfo  = 1 // -v: + progress, startup, cycle status
	VerbosityDebug = 2 // -vv: + prompts, timing, config details
)

// VerbosityToLevel maps verbosity flags (-v, -vv, etc.) to zap log levels
//
// Mapping:
//
//	<0 (--quiet) -> ErrorLevel (errors only)
//	0 (none)     -> WarnLevel  (errors and warnings only)
//	1 (-v)       -> InfoLevel  (+ informational messages)
//	2+ (-vv)     -> DebugLevel (+ debug messages)
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity < VerbosityUser:
		return zapcore.ErrorLevel
	case verbosity == VerbosityUser:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

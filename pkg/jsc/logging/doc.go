// Package logging is the log facade of the JavaScriptCore wrapper.
//
// Contexts, context groups and classes report their lifecycle here: creation,
// release, finalizer-driven cleanup of leaked handles, garbage collection
// requests and panics recovered from host callbacks. Everything logs at
// Debug except leaks (Warn) and callback panics (Error).
//
// Logger mirrors the context-taking half of log/slog. New binds it to a
// *slog.Logger, NewZap to a *zap.Logger, and Nop drops every record.
//
// # What never gets logged
//
// Script text and values passed between scripts and host functions may hold
// user data. Evaluations are logged through Script, which keeps the source
// URL, line and byte count but replaces the text:
//
//	logger.Debug(ctx, "evaluate script", logging.Script(src, "main.js", 1)...)
//	// source="[redacted]" source_bytes=42 url=main.js line=1
//
// Engine references are opaque pointers; Handle prints them as hex so a
// group can be followed across records.
package logging

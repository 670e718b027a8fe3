// Package logging configures structured slog output for lexrag.
//
// Logs are JSON, written to stderr and, when a file path is configured, to a
// size-rotated file under ~/.lexrag/logs/. The stdio MCP server logs to the
// file only, since stdout carries the protocol stream.
package logging

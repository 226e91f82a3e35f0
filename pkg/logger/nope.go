package logger

import "log/slog"

// NewNope returns a logger that discards everything. It is the default when
// no logger is configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

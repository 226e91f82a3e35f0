// Package logger provides structured logging with context extraction.
//
// It extends the standard library's log/slog with automatic context-based
// attribute injection: extractors pull request-scoped values (request IDs,
// route patterns) out of a context.Context and attach them to every log
// record passing through the handler.
//
// # Basic Usage
//
// Create a logger with context extractors:
//
//	requestIDExtractor := func(ctx context.Context) (slog.Attr, bool) {
//		if reqID, ok := ctx.Value(requestIDKey{}).(string); ok && reqID != "" {
//			return slog.String("request_id", reqID), true
//		}
//		return slog.Attr{}, false
//	}
//
//	log := logger.New(requestIDExtractor)
//	log.InfoContext(ctx, "request served") // includes request_id when present
//
// Use NewNope as a silent default when logging is not configured.
package logger

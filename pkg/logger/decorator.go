package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor pulls one attribute out of a request context. Returning
// false skips the attribute for this record.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// extractHandler decorates a slog.Handler with per-record context
// extraction, so request-scoped values (request IDs and the like) show up
// on every log line without the call sites knowing about them.
type extractHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

func newExtractHandler(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	if len(clean) == 0 {
		return next
	}
	return &extractHandler{next: next, extractors: clean}
}

func (h *extractHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *extractHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *extractHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &extractHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *extractHandler) WithGroup(name string) slog.Handler {
	return &extractHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}

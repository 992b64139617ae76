package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	libraryKey contextKey = "library"
	titleKey   contextKey = "title"
)

// WithRunID annotates context with the reconciliation run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithLibrary annotates context with the library kind (movie/series).
func WithLibrary(ctx context.Context, kind string) context.Context {
	if kind == "" {
		return ctx
	}
	return context.WithValue(ctx, libraryKey, kind)
}

// LibraryFromContext returns the library kind if present.
func LibraryFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(libraryKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTitle annotates context with the title of the item under reconciliation.
func WithTitle(ctx context.Context, title string) context.Context {
	if title == "" {
		return ctx
	}
	return context.WithValue(ctx, titleKey, title)
}

// TitleFromContext extracts the item title if present.
func TitleFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(titleKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

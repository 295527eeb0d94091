package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID       = "run_id"
	KeyStage       = "stage"
	KeyStatus      = "status"
	KeyDurationMS  = "duration_ms"
	KeyDocument    = "document"
	KeyPath        = "path"
	KeyField       = "field"
	KeySlug        = "slug"
	KeyCount       = "count"
	KeySource      = "source"
	KeyRef         = "ref"
	KeySubject     = "subject"
	KeyURL         = "url"
	KeyError       = "error"
	KeyDiagnostics = "diagnostics"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Status(s string) slog.Attr       { return slog.String(KeyStatus, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Document(p string) slog.Attr     { return slog.String(KeyDocument, p) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Field(f string) slog.Attr        { return slog.String(KeyField, f) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func Ref(r string) slog.Attr          { return slog.String(KeyRef, r) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Diagnostics(n int) slog.Attr     { return slog.Int(KeyDiagnostics, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

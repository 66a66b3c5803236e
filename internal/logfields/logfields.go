package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyState      = "state"
	KeyDurationMS = "duration_ms"
	KeyURI        = "uri"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyLanguage   = "language"
	KeyCount      = "count"
	KeyWorker     = "worker"
	KeyPhrase     = "phrase"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func State(s string) slog.Attr        { return slog.String(KeyState, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func URI(u string) slog.Attr          { return slog.String(KeyURI, u) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Language(l string) slog.Attr     { return slog.String(KeyLanguage, l) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Worker(id int) slog.Attr         { return slog.Int(KeyWorker, id) }
func Phrase(p string) slog.Attr       { return slog.String(KeyPhrase, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

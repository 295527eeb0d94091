package site

import (
	"errors"
	"fmt"
	"strings"
)

// Diagnostic is one path-qualified problem report, e.g.
// {Path: "sidebar[0].slug", Message: "unknown slug: concepts/flights"}.
type Diagnostic struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Path == "" {
		return d.Message
	}
	return d.Path + ": " + d.Message
}

// Diagnostics is an ordered diagnostics report.
type Diagnostics []Diagnostic

// Add appends a formatted diagnostic.
func (ds *Diagnostics) Add(path, format string, args ...any) {
	*ds = append(*ds, Diagnostic{Path: path, Message: fmt.Sprintf(format, args...)})
}

// String renders one diagnostic per line.
func (ds Diagnostics) String() string {
	lines := make([]string, 0, len(ds))
	for _, d := range ds {
		lines = append(lines, d.String())
	}
	return strings.Join(lines, "\n")
}

// NormalizationError reports raw input that matches no known shape.
type NormalizationError struct {
	Diagnostics Diagnostics
}

func (e *NormalizationError) Error() string {
	return summarize("normalization failed", e.Diagnostics)
}

// ValidationError aggregates every invariant violation found in one validation pass.
type ValidationError struct {
	Diagnostics Diagnostics
}

func (e *ValidationError) Error() string {
	return summarize("validation failed", e.Diagnostics)
}

func summarize(prefix string, ds Diagnostics) string {
	switch len(ds) {
	case 0:
		return prefix
	case 1:
		return prefix + ": " + ds[0].String()
	default:
		return fmt.Sprintf("%s: %s (and %d more)", prefix, ds[0].String(), len(ds)-1)
	}
}

// DiagnosticsOf extracts the diagnostics carried by a NormalizationError or
// ValidationError anywhere in err's chain.
func DiagnosticsOf(err error) Diagnostics {
	var nerr *NormalizationError
	if errors.As(err, &nerr) {
		return nerr.Diagnostics
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Diagnostics
	}
	return nil
}

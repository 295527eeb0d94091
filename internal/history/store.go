// Package history persists one record per resolver run.
package history

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sitecfg/internal/manifest"
	"git.home.luguber.info/inful/sitecfg/internal/site"
)

// Run is the stored summary of one resolver run.
type Run struct {
	ID           string
	Timestamp    time.Time
	Document     string
	Status       manifest.Status
	DocumentHash string
	ContentHash  string
	DurationMS   int64
	Diagnostics  site.Diagnostics
}

// FromManifest summarizes m.
func FromManifest(m *manifest.ResolutionManifest) Run {
	return Run{
		ID:           m.ID,
		Timestamp:    m.Timestamp,
		Document:     m.Inputs.Document,
		Status:       m.Status,
		DocumentHash: m.Inputs.DocumentHash,
		ContentHash:  m.Inputs.ContentHash,
		DurationMS:   m.DurationMS,
		Diagnostics:  m.Diagnostics,
	}
}

// Store defines the interface for persisting and retrieving runs.
type Store interface {
	Record(ctx context.Context, run Run) error
	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]Run, error)
	Get(ctx context.Context, id string) (*Run, error)
	Close() error
}

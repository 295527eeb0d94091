// Package notify publishes run outcomes to interested subscribers.
package notify

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sitecfg/internal/manifest"
	"git.home.luguber.info/inful/sitecfg/internal/site"
)

// RunEvent is the published summary of one run.
type RunEvent struct {
	RunID        string           `json:"run_id"`
	Timestamp    time.Time        `json:"timestamp"`
	Document     string           `json:"document"`
	Status       manifest.Status  `json:"status"`
	DurationMS   int64            `json:"duration_ms"`
	DocumentHash string           `json:"document_hash"`
	ContentHash  string           `json:"content_hash,omitempty"`
	Warnings     int              `json:"warnings"`
	Diagnostics  site.Diagnostics `json:"diagnostics,omitempty"`
}

// EventFromManifest summarizes m for publication.
func EventFromManifest(m *manifest.ResolutionManifest) RunEvent {
	return RunEvent{
		RunID:        m.ID,
		Timestamp:    m.Timestamp,
		Document:     m.Inputs.Document,
		Status:       m.Status,
		DurationMS:   m.DurationMS,
		DocumentHash: m.Inputs.DocumentHash,
		ContentHash:  m.Inputs.ContentHash,
		Warnings:     len(m.Warnings),
		Diagnostics:  m.Diagnostics,
	}
}

// Publisher delivers run events.
type Publisher interface {
	Publish(ctx context.Context, ev RunEvent) error
	Close() error
}

// Noop discards events.
type Noop struct{}

func (Noop) Publish(context.Context, RunEvent) error { return nil }
func (Noop) Close() error                            { return nil }

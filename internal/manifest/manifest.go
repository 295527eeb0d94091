// Package manifest records the inputs and result of one resolver run.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitecfg/internal/site"
)

// Status is the final state of a run.
type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
	StatusError   Status = "error"
)

// ResolutionManifest represents a complete record of a run's inputs and output.
type ResolutionManifest struct {
	ID          string           `json:"id" yaml:"id"`
	Timestamp   time.Time        `json:"timestamp" yaml:"timestamp"`
	Inputs      Inputs           `json:"inputs" yaml:"inputs"`
	Status      Status           `json:"status" yaml:"status"`
	DurationMS  int64            `json:"duration_ms" yaml:"duration_ms"`
	Plugins     []string         `json:"plugins,omitempty" yaml:"plugins,omitempty"`
	Config      *site.SiteConfig `json:"config,omitempty" yaml:"config,omitempty"`
	Warnings    []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Diagnostics site.Diagnostics `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Inputs identifies what the run was computed from.
type Inputs struct {
	Document     string `json:"document" yaml:"document"`
	DocumentHash string `json:"document_hash" yaml:"document_hash"`
	ContentHash  string `json:"content_hash,omitempty" yaml:"content_hash,omitempty"`
	ContentCount int    `json:"content_count" yaml:"content_count"`
}

// New starts a manifest with a fresh ID.
func New(now time.Time) *ResolutionManifest {
	return &ResolutionManifest{ID: uuid.NewString(), Timestamp: now.UTC()}
}

// SetConfig attaches the certified configuration and records its plugin names.
func (m *ResolutionManifest) SetConfig(cfg *site.SiteConfig) {
	m.Config = cfg
	m.Plugins = nil
	if cfg == nil {
		return
	}
	for _, ref := range cfg.Integrations {
		m.Plugins = append(m.Plugins, ref.Name)
	}
}

// HashBytes is the hex sha256 of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ToJSON serializes the manifest to JSON.
func (m *ResolutionManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*ResolutionManifest, error) {
	var m ResolutionManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash computes a deterministic hash over the inputs and the certified
// configuration. Two runs with equal hashes produced the same result from the
// same inputs, whatever their IDs and timestamps.
func (m *ResolutionManifest) Hash() (string, error) {
	hashInput := struct {
		DocumentHash string           `json:"document_hash" yaml:"document_hash"`
		ContentHash  string           `json:"content_hash" yaml:"content_hash"`
		Status       Status           `json:"status" yaml:"status"`
		Config       *site.SiteConfig `json:"config" yaml:"config"`
		Diagnostics  site.Diagnostics `json:"diagnostics" yaml:"diagnostics"`
	}{
		DocumentHash: m.Inputs.DocumentHash,
		ContentHash:  m.Inputs.ContentHash,
		Status:       m.Status,
		Config:       m.Config,
		Diagnostics:  m.Diagnostics,
	}
	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	return HashBytes(data), nil
}

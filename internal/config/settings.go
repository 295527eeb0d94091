// Package config holds the tool's own settings and the site document loader.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitecfg/internal/content"
	"git.home.luguber.info/inful/sitecfg/internal/foundation/normalization"
)

// Default values applied by ApplyDefaults.
const (
	DefaultDocument      = "sitecfg.yaml"
	DefaultContentDir    = "src/content/docs"
	DefaultNotifySubject = "sitecfg.runs"
	DefaultDebounce      = 500 * time.Millisecond
	DefaultHistoryLimit  = 20
)

// DefaultExtensions are the content file extensions indexed by default.
var DefaultExtensions = content.DefaultExtensions

// ContentSource selects where the content index comes from.
type ContentSource string

const (
	ContentSourceDir  ContentSource = "dir"
	ContentSourceGit  ContentSource = "git"
	ContentSourceList ContentSource = "list"
)

var contentSourceNormalizer = normalization.NewNormalizer(map[string]ContentSource{
	"dir":       ContentSourceDir,
	"directory": ContentSourceDir,
	"git":       ContentSourceGit,
	"list":      ContentSourceList,
}, ContentSourceDir)

// OutputFormat selects the render encoding.
type OutputFormat string

const (
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

var outputFormatNormalizer = normalization.NewNormalizer(map[string]OutputFormat{
	"json": OutputFormatJSON,
	"yaml": OutputFormatYAML,
	"yml":  OutputFormatYAML,
}, OutputFormatJSON)

// Settings configures one resolver process.
type Settings struct {
	Document string
	Lenient  bool
	Content  ContentSettings
	Output   OutputSettings
	Logging  LoggingSettings
	Metrics  MetricsSettings
	History  HistorySettings
	Notify   NotifySettings
	Watch    WatchSettings
}

// ContentSettings describes the content index source.
type ContentSettings struct {
	Source        ContentSource
	Dir           string
	Repo          string // git repository path, Source=git
	Ref           string // git revision, Source=git; empty means HEAD
	SlugsFile     string // newline separated slugs, Source=list
	Extensions    []string
	IncludeDrafts bool
}

type OutputSettings struct {
	Format   OutputFormat
	Manifest bool
	Path     string // empty writes to stdout
}

type LoggingSettings struct {
	Level  LogLevel
	Format LogFormat
}

type MetricsSettings struct {
	Textfile string
}

type HistorySettings struct {
	Path  string
	Limit int
}

type NotifySettings struct {
	URL     string
	Subject string
}

type WatchSettings struct {
	Debounce time.Duration
	Every    time.Duration
}

// NormalizationResult captures coercions made while normalizing settings.
type NormalizationResult struct {
	Warnings []string
}

// Prepare normalizes s, fills defaults and validates the result.
func Prepare(s *Settings) (*NormalizationResult, error) {
	res, err := Normalize(s)
	if err != nil {
		return nil, err
	}
	ApplyDefaults(s)
	if err := Validate(s); err != nil {
		return res, err
	}
	return res, nil
}

// Normalize canonicalizes enumerated fields in place. Unknown values fall
// back to their defaults with a warning.
func Normalize(s *Settings) (*NormalizationResult, error) {
	if s == nil {
		return nil, errors.New("settings nil")
	}
	res := &NormalizationResult{}
	s.Content.Source = normalizeEnum(res, "content.source", s.Content.Source, contentSourceNormalizer)
	s.Output.Format = normalizeEnum(res, "output.format", s.Output.Format, outputFormatNormalizer)
	s.Logging.Level = normalizeEnum(res, "logging.level", s.Logging.Level, logLevelNormalizer)
	s.Logging.Format = normalizeEnum(res, "logging.format", s.Logging.Format, logFormatNormalizer)

	for i, ext := range s.Content.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.Content.Extensions[i] = ext
	}
	s.Notify.Subject = strings.TrimSpace(s.Notify.Subject)
	if s.Watch.Debounce < 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("negative watch.debounce %s, using default", s.Watch.Debounce))
		s.Watch.Debounce = 0
	}
	if s.History.Limit < 0 {
		s.History.Limit = 0
	}
	return res, nil
}

func normalizeEnum[T ~string](res *NormalizationResult, field string, v T, n *normalization.Normalizer[T]) T {
	raw := strings.TrimSpace(string(v))
	if raw == "" {
		return v
	}
	parsed, err := n.Parse(raw)
	if err != nil {
		def := n.Normalize("")
		res.Warnings = append(res.Warnings, fmt.Sprintf("unknown %s %q, defaulting to %s", field, raw, def))
		return def
	}
	if parsed != v {
		res.Warnings = append(res.Warnings, fmt.Sprintf("normalized %s from %q to %q", field, v, parsed))
	}
	return parsed
}

// ApplyDefaults fills unset fields.
func ApplyDefaults(s *Settings) {
	if s.Document == "" {
		s.Document = DefaultDocument
	}
	if s.Content.Source == "" {
		s.Content.Source = ContentSourceDir
	}
	if s.Content.Dir == "" && s.Content.Source != ContentSourceList {
		s.Content.Dir = DefaultContentDir
		if s.Content.Source == ContentSourceDir {
			s.Content.Dir = filepath.Join(filepath.Dir(s.Document), DefaultContentDir)
		}
	}
	if s.Content.Source == ContentSourceGit && s.Content.Repo == "" {
		s.Content.Repo = filepath.Dir(s.Document)
	}
	var exts []string
	for _, ext := range s.Content.Extensions {
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	if len(exts) == 0 {
		exts = append([]string(nil), DefaultExtensions...)
	}
	s.Content.Extensions = exts
	if s.Output.Format == "" {
		s.Output.Format = OutputFormatJSON
	}
	if s.Logging.Level == "" {
		s.Logging.Level = LogLevelInfo
	}
	if s.Logging.Format == "" {
		s.Logging.Format = LogFormatText
	}
	if s.Notify.Subject == "" {
		s.Notify.Subject = DefaultNotifySubject
	}
	if s.Watch.Debounce == 0 {
		s.Watch.Debounce = DefaultDebounce
	}
	if s.History.Limit == 0 {
		s.History.Limit = DefaultHistoryLimit
	}
}

// Validate reports the first inconsistency in s.
func Validate(s *Settings) error {
	if strings.TrimSpace(s.Document) == "" {
		return errors.New("document path must not be empty")
	}
	switch s.Content.Source {
	case ContentSourceDir:
		if s.Content.Dir == "" {
			return errors.New("content.dir is required for the dir source")
		}
	case ContentSourceGit:
		if s.Content.Repo == "" {
			return errors.New("content.repo is required for the git source")
		}
	case ContentSourceList:
		if s.Content.SlugsFile == "" {
			return errors.New("content.slugs_file is required for the list source")
		}
	default:
		return fmt.Errorf("unsupported content.source: %s", s.Content.Source)
	}
	if s.Watch.Every < 0 {
		return fmt.Errorf("watch.every must not be negative: %s", s.Watch.Every)
	}
	if s.Watch.Every > 0 && s.Watch.Every < time.Second {
		return fmt.Errorf("watch.every must be at least 1s: %s", s.Watch.Every)
	}
	if s.Notify.Subject != "" && strings.ContainsAny(s.Notify.Subject, " \t*>") {
		return fmt.Errorf("notify.subject must be a literal subject: %q", s.Notify.Subject)
	}
	return nil
}

package commands

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
)

// Global carries process-wide state shared by all commands.
type Global struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewGlobal writes to the process streams.
func NewGlobal() *Global {
	return &Global{Stdout: os.Stdout, Stderr: os.Stderr}
}

// CLI definition & global flags.
type CLI struct {
	Document  string           `short:"d" help:"Site document path (YAML or JSON)" default:"sitecfg.yaml" env:"SITECFG_DOCUMENT"`
	LogLevel  string           `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info" env:"SITECFG_LOG_LEVEL"`
	LogFormat string           `name:"log-format" help:"Log format (text, json)" default:"text" env:"SITECFG_LOG_FORMAT"`
	Verbose   bool             `short:"v" help:"Enable verbose logging and error output"`
	Lenient   bool             `help:"Drop malformed social, sidebar and integration entries instead of failing" env:"SITECFG_LENIENT"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Content ContentFlags `embed:"" prefix:"content-" group:"Content index"`

	MetricsTextfile string `name:"metrics-textfile" help:"Write Prometheus metrics to this textfile after the run" env:"SITECFG_METRICS_TEXTFILE"`
	HistoryDB       string `name:"history-db" help:"SQLite database recording every run" env:"SITECFG_HISTORY_DB"`
	NATSURL         string `name:"nats-url" help:"Publish run outcomes to this NATS server" env:"SITECFG_NATS_URL"`
	NATSSubject     string `name:"nats-subject" help:"Subject for run outcomes" default:"sitecfg.runs" env:"SITECFG_NATS_SUBJECT"`

	Check   CheckCmd   `cmd:"" default:"1" help:"Normalize and validate the site document"`
	Render  RenderCmd  `cmd:"" help:"Emit the certified configuration or the resolution manifest"`
	Index   IndexCmd   `cmd:"" help:"List the content index used for slug validation"`
	Init    InitCmd    `cmd:"" help:"Write an example site document"`
	Watch   WatchCmd   `cmd:"" help:"Re-check whenever the document or content changes"`
	History HistoryCmd `cmd:"" help:"Show recorded runs"`
}

// ContentFlags select the content index source.
type ContentFlags struct {
	Source        string   `help:"Index source (dir, git, list)" default:"dir" env:"SITECFG_CONTENT_SOURCE"`
	Dir           string   `help:"Content directory, relative to the repository for the git source" env:"SITECFG_CONTENT_DIR"`
	Repo          string   `help:"Git repository for the git source (default: the document's directory)" env:"SITECFG_CONTENT_REPO"`
	Ref           string   `help:"Git revision for the git source (default: HEAD)" env:"SITECFG_CONTENT_REF"`
	SlugsFile     string   `name:"slugs-file" help:"Newline separated slug list for the list source" env:"SITECFG_CONTENT_SLUGS_FILE"`
	Extensions    []string `help:"Content file extensions" env:"SITECFG_CONTENT_EXTENSIONS"`
	IncludeDrafts bool     `name:"include-drafts" help:"Index pages marked draft"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := config.NormalizeLogLevel(c.LogLevel)
	if c.Verbose {
		level = config.LogLevelDebug
	}
	logger := config.NewLogger(os.Stderr, config.LoggingSettings{Level: level, Format: config.NormalizeLogFormat(c.LogFormat)})
	slog.SetDefault(logger)
	return nil
}

// Settings assembles and prepares the tool settings from the flags.
func (c *CLI) Settings() (*config.Settings, error) {
	s := &config.Settings{
		Document: c.Document,
		Lenient:  c.Lenient,
		Content: config.ContentSettings{
			Source:        config.ContentSource(c.Content.Source),
			Dir:           c.Content.Dir,
			Repo:          c.Content.Repo,
			Ref:           c.Content.Ref,
			SlugsFile:     c.Content.SlugsFile,
			Extensions:    append([]string(nil), c.Content.Extensions...),
			IncludeDrafts: c.Content.IncludeDrafts,
		},
		Logging: config.LoggingSettings{Level: config.LogLevel(c.LogLevel), Format: config.LogFormat(c.LogFormat)},
		Metrics: config.MetricsSettings{Textfile: c.MetricsTextfile},
		History: config.HistorySettings{Path: c.HistoryDB},
		Notify:  config.NotifySettings{URL: c.NATSURL, Subject: c.NATSSubject},
	}
	if c.Verbose {
		s.Logging.Level = config.LogLevelDebug
	}
	res, err := config.Prepare(s)
	if err != nil {
		return nil, configError(err)
	}
	for _, w := range res.Warnings {
		slog.Warn("Settings adjusted", slog.String("warning", w))
	}
	return s, nil
}

func watchSettings(s *config.Settings, debounce, every time.Duration) {
	if debounce > 0 {
		s.Watch.Debounce = debounce
	}
	s.Watch.Every = every
	slog.Debug("Watch settings", logfields.Document(s.Document), slog.Duration("debounce", s.Watch.Debounce), slog.Duration("every", s.Watch.Every))
}

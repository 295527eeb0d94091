package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitecfg/internal/logfields"
	"git.home.luguber.info/inful/sitecfg/internal/site"
)

// ErrDocumentNotFound indicates the site document path does not exist.
var ErrDocumentNotFound = errors.New("site document not found")

// RawDocument is a loaded, not yet normalized, site document.
type RawDocument struct {
	Path  string
	Bytes []byte // file content as read
	Value any    // site.OrderedMap, []any and scalars
}

// LoadDocument reads a YAML or JSON site document. .env files next to the
// document and in the working directory are loaded first, then ${VAR}
// references in string values are expanded. Integration options are left
// verbatim. Mapping key order is preserved.
func LoadDocument(path string) (*RawDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return nil, fmt.Errorf("stat document: %w", err)
	}
	if loaded, err := loadEnvFiles(filepath.Dir(path), "."); err != nil {
		slog.Warn("Failed to load .env file", logfields.Error(err))
	} else if len(loaded) > 0 {
		slog.Debug("Loaded environment files", slog.Any("files", loaded))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	value, err := parseDocument(data, true)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &RawDocument{Path: path, Bytes: data, Value: value}, nil
}

// ParseDocument decodes YAML (or JSON, a YAML subset) into raw values.
// No environment expansion is applied.
func ParseDocument(data []byte) (any, error) {
	return parseDocument(data, false)
}

func parseDocument(data []byte, expand bool) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 {
		return nil, nil
	}
	d := decoder{expand: expand}
	return d.node(&root, scopeRoot)
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvRefs replaces ${NAME} references with the value of NAME. Every
// other '$' is kept as is.
func expandEnvRefs(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

// scope tracks where in the document a node sits, so integration options
// can be passed through untouched.
type scope int

const (
	scopeRoot scope = iota
	scopeAny
	scopeIntegrations
	scopeIntegration
	scopeVerbatim
)

type decoder struct {
	expand bool
}

func (d decoder) node(n *yaml.Node, sc scope) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.node(n.Content[0], sc)
	case yaml.MappingNode:
		m := make(site.OrderedMap, 0, len(n.Content)/2)
		lines := make(map[string]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			if first, dup := lines[k.Value]; dup {
				return nil, fmt.Errorf("line %d: mapping key %q already defined at line %d", k.Line, k.Value, first)
			}
			lines[k.Value] = k.Line
			val, err := d.node(v, childScope(sc, k.Value))
			if err != nil {
				return nil, err
			}
			m = append(m, site.Entry{Key: k.Value, Value: val})
		}
		return m, nil
	case yaml.SequenceNode:
		elem := scopeAny
		switch sc {
		case scopeIntegrations:
			elem = scopeIntegration
		case scopeVerbatim:
			elem = scopeVerbatim
		}
		seq := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := d.node(c, elem)
			if err != nil {
				return nil, err
			}
			seq = append(seq, val)
		}
		return seq, nil
	case yaml.AliasNode:
		return d.node(n.Alias, sc)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		if s, ok := v.(string); ok && d.expand && sc != scopeVerbatim {
			return expandEnvRefs(s), nil
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
	}
}

// childScope returns the scope of the value stored under key. Inside an
// integration entry only the "name" value is a plain field; options, in
// either the {name, options} or the {<name>: options} form, are verbatim.
func childScope(parent scope, key string) scope {
	switch parent {
	case scopeRoot:
		if key == "integrations" {
			return scopeIntegrations
		}
		return scopeAny
	case scopeIntegration:
		if key == "name" {
			return scopeAny
		}
		return scopeVerbatim
	case scopeVerbatim:
		return scopeVerbatim
	}
	return scopeAny
}

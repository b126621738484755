// Package templates maps extracted document fields onto the field names of a
// target form. A template lists, for each official form field, the extracted
// keys that may supply its value.
package templates

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/agext/levenshtein"
	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/formfill/internal/common"
)

// DefaultCutoff is the minimum key similarity accepted by the fuzzy match.
const DefaultCutoff = 0.65

//go:embed schema.json
var schemaJSON []byte

//go:embed builtin/*.json
var builtin embed.FS

// Template is one form definition.
type Template struct {
	Name        string              `json:"name" yaml:"name"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Mapping     map[string][]string `json:"mapping" yaml:"mapping"`
	Source      string              `json:"-" yaml:"source"`
}

// Mapped is the result of applying a template to extracted fields.
type Mapped struct {
	Template string            `json:"template" yaml:"template"`
	Fields   map[string]string `json:"mapped_fields" yaml:"mapped_fields"`
}

type Option func(*Registry)

// WithCutoff overrides DefaultCutoff. Values outside (0, 1] are ignored.
func WithCutoff(c float64) Option {
	return func(r *Registry) {
		if c > 0 && c <= 1 {
			r.cutoff = c
		}
	}
}

// Registry holds the built-in templates plus any found in dir. Templates in dir
// replace built-ins of the same name. It is safe for concurrent use.
type Registry struct {
	dir    string
	cutoff float64
	logger *slog.Logger
	schema *jsonschema.Schema

	mu        sync.RWMutex
	templates map[string]Template
}

func NewRegistry(dir string, logger *slog.Logger, opts ...Option) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	r := &Registry{dir: dir, cutoff: DefaultCutoff, logger: logger, schema: schema}
	for _, o := range opts {
		o(r)
	}

	set, err := r.load()
	if err != nil {
		return nil, err
	}
	r.templates = set
	logger.Info("templates.loaded", "count", len(set), "dir", dir)
	return r, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("template.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("template.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func (r *Registry) load() (map[string]Template, error) {
	set := make(map[string]Template)

	entries, err := fs.Glob(builtin, "builtin/*.json")
	if err != nil {
		return nil, err
	}
	for _, name := range entries {
		b, err := builtin.ReadFile(name)
		if err != nil {
			return nil, err
		}
		t, err := r.Parse(b, name)
		if err != nil {
			return nil, err
		}
		set[t.Name] = t
	}

	if r.dir == "" {
		return set, nil
	}
	files, err := filepath.Glob(filepath.Join(r.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	for _, path := range files {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", path, err)
		}
		t, err := r.Parse(b, path)
		if err != nil {
			return nil, err
		}
		set[t.Name] = t
	}
	return set, nil
}

// Parse validates a template document against the template schema. A
// template without a name is named after the base of source.
func (r *Registry) Parse(data []byte, source string) (Template, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Template{}, common.NewAppError("TEMPLATE_INVALID", "decode "+source, err)
	}
	if err := r.schema.Validate(doc); err != nil {
		return Template{}, common.NewAppError("TEMPLATE_INVALID", "template "+source+" does not match schema", err)
	}

	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return Template{}, common.NewAppError("TEMPLATE_INVALID", "decode "+source, err)
	}
	if t.Name == "" {
		t.Name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	t.Source = source
	return t, nil
}

// Reload re-reads the template directory. On error the previous set is kept.
func (r *Registry) Reload() error {
	set, err := r.load()
	if err != nil {
		r.logger.Warn("templates.reload.failed", "dir", r.dir, "err", err)
		return err
	}
	r.mu.Lock()
	r.templates = set
	r.mu.Unlock()
	r.logger.Info("templates.reloaded", "count", len(set))
	return nil
}

// Names returns the template names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.templates))
	for name := range r.templates {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Get returns the named template.
func (r *Registry) Get(name string) (Template, error) {
	r.mu.RLock()
	t, ok := r.templates[name]
	r.mu.RUnlock()
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", common.ErrTemplateNotFound, name)
	}
	return t, nil
}

// Map fills every official field of the named template from fields. For each
// official field the candidate keys are tried as exact matches with a
// non-empty value, then as fuzzy matches against the extracted keys. Fields
// that match nothing are "".
func (r *Registry) Map(name string, fields map[string]string) (Mapped, error) {
	t, err := r.Get(name)
	if err != nil {
		return Mapped{}, err
	}

	out := Mapped{Template: t.Name, Fields: make(map[string]string, len(t.Mapping))}
	for official, candidates := range t.Mapping {
		v, how := r.match(candidates, fields)
		out.Fields[official] = v
		if how != "" {
			r.logger.Debug("templates.map.field", "template", t.Name, "field", official, "match", how)
		}
	}
	r.logger.Info("templates.map.ok", "template", t.Name, "fields", len(out.Fields))
	return out, nil
}

func (r *Registry) match(candidates []string, fields map[string]string) (string, string) {
	for _, key := range candidates {
		if v := fields[key]; v != "" {
			return v, "exact"
		}
	}
	for _, key := range candidates {
		if k, ok := closest(key, fields, r.cutoff); ok {
			return fields[k], "fuzzy"
		}
	}
	return "", ""
}

// closest returns the extracted key most similar to want, ignoring keys with
// empty values. Ties go to the lexically smaller key.
func closest(want string, fields map[string]string, cutoff float64) (string, bool) {
	var (
		bestKey   string
		bestScore float64
	)
	for k, v := range fields {
		if v == "" {
			continue
		}
		score := levenshtein.Similarity(want, k, nil)
		if score < cutoff {
			continue
		}
		if score > bestScore || (score == bestScore && k < bestKey) {
			bestKey, bestScore = k, score
		}
	}
	return bestKey, bestKey != ""
}

// Watch reloads the registry whenever a template file in dir changes. It
// blocks until ctx is done.
func (r *Registry) Watch(ctx context.Context) error {
	if r.dir == "" {
		return errors.New("templates: no directory to watch")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(r.dir); err != nil {
		return fmt.Errorf("watch %s: %w", r.dir, err)
	}
	r.logger.Info("templates.watch.start", "dir", r.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(e.Name), ".json") {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			_ = r.Reload()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("templates.watch.error", "err", err)
		}
	}
}

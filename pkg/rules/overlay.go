package rules

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// aliasTable holds the current field-name aliasing data, keyed by the
// AliasKey a rule references. Replacing it wholesale is the only way
// overlays affect rule evaluation — the rule logic that consults it via
// aliasesFor never changes (spec.md §4.2 purity; SPEC_FULL.md §5 Open
// Question 2).
var (
	aliasMu    sync.RWMutex
	aliasTable = defaultAliasTable()
)

func defaultAliasTable() map[string][]string {
	return map[string][]string{
		"name":       {"name", "practitionerName", "practitioner_name"},
		"license":    {"licenseNumber", "license_number", "license"},
		"address":    {"address", "street_address", "mailingAddress"},
		"state":      {"state", "stateCode", "state_code"},
		"specialty":  {"specialty", "practiceSpecialty"},
		"experience": {"experience", "yearsExperience", "years_experience"},
		"zip":        {"zip", "zipCode", "postal_code"},
		"email":      {"email", "emailAddress", "email_address"},
	}
}

// aliasesFor returns the alias list currently registered under key.
func aliasesFor(key string) []string {
	aliasMu.RLock()
	defer aliasMu.RUnlock()
	return aliasTable[key]
}

// overlayDocument is the shape of a rule-pack overlay YAML file: purely
// data, never executable rule logic.
type overlayDocument struct {
	FieldAliases map[string][]string `yaml:"field_aliases"`
	StateCodes   []string            `yaml:"state_codes"`
}

// LoadOverlayFile parses a single overlay YAML file and applies it.
func LoadOverlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read overlay %q: %w", path, err)
	}

	var doc overlayDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse overlay %q: %w", path, err)
	}

	if len(doc.FieldAliases) > 0 {
		aliasMu.Lock()
		merged := defaultAliasTable()
		for k, v := range doc.FieldAliases {
			merged[k] = v
		}
		aliasTable = merged
		aliasMu.Unlock()
	}

	if len(doc.StateCodes) > 0 {
		codes := make(map[string]bool, len(doc.StateCodes))
		for _, c := range doc.StateCodes {
			codes[strings.ToUpper(strings.TrimSpace(c))] = true
		}
		SetValidStateCodes(codes)
	}

	return nil
}

// OverlayWatcher watches a directory of *.yaml overlay files and reloads
// the alias/state-code data tables on change, debouncing rapid writes.
// Adapted from the policy manager's file watcher; scoped here to
// data-only overlays so the compiled rule logic is never hot-swapped.
type OverlayWatcher struct {
	dir      string
	logger   *slog.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewOverlayWatcher creates a watcher over dir. Call Watch to start it.
func NewOverlayWatcher(dir string, logger *slog.Logger) (*OverlayWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create overlay watcher: %w", err)
	}
	return &OverlayWatcher{
		dir:      dir,
		logger:   logger.With("component", "rules.overlay"),
		debounce: 200 * time.Millisecond,
		watcher:  w,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch loads every *.yaml file in the directory once, then blocks,
// reloading on change until Stop is called.
func (w *OverlayWatcher) Watch() error {
	defer close(w.doneCh)

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read overlay dir %q: %w", w.dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		if err := LoadOverlayFile(filepath.Join(w.dir, e.Name())); err != nil {
			w.logger.Error("initial overlay load failed", "file", e.Name(), "error", err)
		}
	}

	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch overlay dir %q: %w", w.dir, err)
	}
	w.logger.Info("overlay watcher started", "dir", w.dir)

	var timer *time.Timer
	reload := func(path string) {
		if err := LoadOverlayFile(path); err != nil {
			w.logger.Error("overlay reload failed", "file", path, "error", err)
			return
		}
		w.logger.Info("overlay reloaded", "file", path)
	}

	for {
		select {
		case <-w.stopCh:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod || !isYAML(event.Name) {
				continue
			}
			path := event.Name
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() { reload(path) })
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("overlay watcher error", "error", err)
		}
	}
}

// Stop halts the watcher and releases its fsnotify handle.
func (w *OverlayWatcher) Stop() error {
	close(w.stopCh)
	<-w.doneCh
	return w.watcher.Close()
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

package prompts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/akishore/ComplyAPI/internal/domain/commonModels"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

var ErrNoControls = errors.New("no control definitions found for category")

// LoadFailure records one prompt file that could not be turned into a
// runnable control. The executor surfaces these as sentinel results so a
// broken definition shows up in the report instead of vanishing.
type LoadFailure struct {
	ControlID string
	Cause     string
}

// Store loads control definitions from JSON files laid out as
// <root>/<CATEGORY>/<control>.json. Files are re-read on every call so
// operators can drop in new controls without a restart.
type Store struct {
	root   string
	logger *logger_i.Logger
}

func NewStore(root string) *Store {
	return &Store{
		root:   root,
		logger: logger_i.NewLogger("Prompt Store"),
	}
}

// List returns every valid control definition under the category
// directory, sorted by file name so execution order is deterministic.
// Malformed files come back as LoadFailures, never silently dropped.
func (s *Store) List(category string) ([]commonModels.ControlDefinition, []LoadFailure, error) {
	dir := filepath.Join(s.root, category)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read prompt directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	defs := make([]commonModels.ControlDefinition, 0, len(names))
	var failures []LoadFailure
	for _, name := range names {
		def, err := s.Load(filepath.Join(dir, name))
		if err != nil {
			s.logger.Warn("Invalid prompt file", "file", name, "error", err)
			failures = append(failures, LoadFailure{
				ControlID: strings.TrimSuffix(name, filepath.Ext(name)),
				Cause:     err.Error(),
			})
			continue
		}
		defs = append(defs, def)
	}

	if len(defs) == 0 && len(failures) == 0 {
		return nil, nil, ErrNoControls
	}
	return defs, failures, nil
}

// Load parses one prompt file. A definition without instructions is
// useless to the executor, so it is rejected here instead of producing
// an empty evaluation downstream.
func (s *Store) Load(path string) (commonModels.ControlDefinition, error) {
	var def commonModels.ControlDefinition

	raw, err := os.ReadFile(path)
	if err != nil {
		return def, err
	}
	if err := json.Unmarshal(raw, &def); err != nil {
		return def, fmt.Errorf("malformed JSON: %w", err)
	}

	if len(def.Instructions) == 0 {
		return def, errors.New("prompt_instructions is empty")
	}
	for _, inst := range def.Instructions {
		if strings.TrimSpace(inst) == "" {
			return def, errors.New("prompt_instructions contains a blank entry")
		}
	}

	if def.ControlID == "" {
		base := filepath.Base(path)
		def.ControlID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return def, nil
}

// Categories lists the category directories that actually contain
// prompt files. Used by the listing endpoint and the MCP tool.
func (s *Store) Categories() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("cannot read prompt root %s: %w", s.root, err)
	}

	cats := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			cats = append(cats, e.Name())
		}
	}
	sort.Strings(cats)
	return cats, nil
}

// ListAll returns every control definition grouped by category.
func (s *Store) ListAll() (map[string][]commonModels.ControlDefinition, error) {
	cats, err := s.Categories()
	if err != nil {
		return nil, err
	}

	all := make(map[string][]commonModels.ControlDefinition, len(cats))
	for _, cat := range cats {
		defs, _, err := s.List(cat)
		if err != nil {
			if errors.Is(err, ErrNoControls) {
				continue
			}
			return nil, err
		}
		if len(defs) > 0 {
			all[cat] = defs
		}
	}
	return all, nil
}

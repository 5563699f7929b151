// Package store reads and writes the on-disk representation of scripts:
// one TOML metadata file and one content file per script, both named after
// the script. The metadata directory is a mutable shared resource and is
// rescanned on every load; nothing here is cached across calls.
package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"

	"scriptsync/internal/logging"
	"scriptsync/internal/model"
	"scriptsync/internal/util"
)

// Store provides access to the local script collection under a fixed pair
// of roots.
type Store struct {
	roots model.Roots
}

// New creates a Store over the given roots.
func New(roots model.Roots) *Store {
	return &Store{roots: roots}
}

// Roots returns the directories this store operates on.
func (s *Store) Roots() model.Roots {
	return s.roots
}

// LoadAll reads every metadata file under the metadata root and returns the
// local records, each with its name injected from the filename stem. The
// metadata file itself never stores the name. Results are ordered by name.
func (s *Store) LoadAll() ([]model.LocalScript, error) {
	pattern := filepath.Join(s.roots.MetadataDir, "*"+model.MetadataExt)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("scan metadata dir %s: %w", s.roots.MetadataDir, err)
	}

	scripts := make([]model.LocalScript, 0, len(matches))
	for _, path := range matches {
		ls, err := s.loadOne(path)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, ls)
	}

	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Name < scripts[j].Name })

	logging.Debug("loaded local scripts",
		logging.Path(s.roots.MetadataDir),
		logging.Count(len(scripts)),
	)
	return scripts, nil
}

// loadOne decodes a single metadata file into a local record.
func (s *Store) loadOne(path string) (model.LocalScript, error) {
	var base model.Script
	if _, err := toml.DecodeFile(path, &base); err != nil {
		return model.LocalScript{}, fmt.Errorf("decode metadata %s: %w", path, err)
	}

	ls := model.NewLocalScript(util.Stem(path), base, s.roots)
	if err := ls.ValidateCategory(); err != nil {
		return model.LocalScript{}, fmt.Errorf("metadata %s: %w", path, err)
	}
	return ls, nil
}

// WriteMetadata persists the record's metadata file. Name, category id and
// script contents are excluded by the model's TOML projection.
func (s *Store) WriteMetadata(ls model.LocalScript) error {
	if err := os.MkdirAll(s.roots.MetadataDir, 0o750); err != nil {
		return fmt.Errorf("create metadata dir %s: %w", s.roots.MetadataDir, err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(ls.Script); err != nil {
		return fmt.Errorf("encode metadata for %s: %w", ls.Name, err)
	}

	path := ls.MetadataPath()
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write metadata %s: %w", path, err)
	}

	logging.Debug("wrote metadata", logging.Script(ls.Name), logging.Path(path))
	return nil
}

// WriteContents writes the script content file.
func (s *Store) WriteContents(ls model.LocalScript, contents string) error {
	if err := os.MkdirAll(s.roots.ScriptsDir, 0o750); err != nil {
		return fmt.Errorf("create scripts dir %s: %w", s.roots.ScriptsDir, err)
	}

	path := ls.ScriptPath()
	// #nosec G306 - script files are meant to be executable-adjacent user files
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("write script %s: %w", path, err)
	}

	logging.Debug("wrote script contents", logging.Script(ls.Name), logging.Path(path))
	return nil
}

// LoadContents reads the script content file into the record. Contents are
// loaded lazily: only immediately before a push or a content comparison.
func (s *Store) LoadContents(ls *model.LocalScript) error {
	path := ls.ScriptPath()
	// #nosec G304 - path is derived from the configured scripts root
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &NotFoundError{Kind: "script", Key: path}
		}
		return fmt.Errorf("read script %s: %w", path, err)
	}
	ls.Contents = string(data)
	return nil
}

// Rename renames both of the record's files to reflect a new script name
// and returns the updated record. The script file is renamed first, then
// the metadata file; each failure is reported with its stage so a partial
// rename is never silent.
func (s *Store) Rename(ls model.LocalScript, newName string) (model.LocalScript, error) {
	renamed := model.NewLocalScript(newName, ls.Script, s.roots)

	if err := os.Rename(ls.ScriptPath(), renamed.ScriptPath()); err != nil {
		return ls, &RenameError{
			Stage: RenameStageScript,
			From:  ls.ScriptPath(),
			To:    renamed.ScriptPath(),
			Err:   err,
		}
	}

	if err := os.Rename(ls.MetadataPath(), renamed.MetadataPath()); err != nil {
		return ls, &RenameError{
			Stage: RenameStageMetadata,
			From:  ls.MetadataPath(),
			To:    renamed.MetadataPath(),
			Err:   err,
		}
	}

	logging.Info("renamed local script",
		logging.Script(ls.Name),
		logging.Path(renamed.ScriptPath()),
	)
	return renamed, nil
}

// ScriptByID finds the local record whose id equals the target. Records
// without an id (never pushed) are ignored. Zero matches yields a
// NotFoundError; more than one is an AmbiguityError carrying every
// conflicting metadata path. The directory is rescanned on each call.
func (s *Store) ScriptByID(id int) (model.LocalScript, error) {
	all, err := s.LoadAll()
	if err != nil {
		return model.LocalScript{}, err
	}

	var found []model.LocalScript
	for _, ls := range all {
		if ls.Registered() && ls.ID == id {
			found = append(found, ls)
		}
	}

	switch len(found) {
	case 0:
		return model.LocalScript{}, &NotFoundError{Kind: "script", Key: "id " + strconv.Itoa(id)}
	case 1:
		return found[0], nil
	default:
		paths := make([]string, len(found))
		for i, ls := range found {
			paths[i] = ls.MetadataPath()
		}
		return model.LocalScript{}, &AmbiguityError{
			Kind:    "script id",
			Key:     strconv.Itoa(id),
			Matches: paths,
		}
	}
}

// ScriptByPath finds the local record whose derived script path equals the
// target path.
func (s *Store) ScriptByPath(path string) (model.LocalScript, error) {
	all, err := s.LoadAll()
	if err != nil {
		return model.LocalScript{}, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	for _, ls := range all {
		candidate, err := filepath.Abs(ls.ScriptPath())
		if err != nil {
			candidate = ls.ScriptPath()
		}
		if candidate == abs {
			return ls, nil
		}
	}
	return model.LocalScript{}, &NotFoundError{Kind: "script", Key: path}
}

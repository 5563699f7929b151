// Package model defines the script and category records the sync engine
// operates on, in both their local (filesystem) and remote (server) forms.
package model

import (
	"fmt"
	"path/filepath"
)

// File extensions for the two files that make up a local script.
const (
	ScriptExt   = ".sh"
	MetadataExt = ".toml"
)

// Sentinel values for "no category assigned". The pairing must never
// diverge in a persisted record.
const (
	NoCategoryID   = -1
	NoCategoryName = "NONE"
)

// Roots holds the configured directories a local script's files live under.
type Roots struct {
	// ScriptsDir contains the script content files (<name>.sh).
	ScriptsDir string
	// MetadataDir contains the metadata files (<name>.toml).
	MetadataDir string
}

// Script holds the fields shared by local and remote script records.
//
// JSON tags describe the server payload; TOML tags describe the persisted
// metadata file. Name, CategoryID and Contents are excluded from the
// metadata file because they are always re-derivable: Name from the
// filename stem, CategoryID from CategoryName at push time, Contents from
// the script file.
type Script struct {
	ID             int      `json:"id,omitempty" toml:"id,omitempty"`
	Name           string   `json:"name" toml:"-"`
	Info           string   `json:"info" toml:"info"`
	Notes          string   `json:"notes" toml:"notes"`
	Priority       Priority `json:"priority" toml:"priority"`
	Parameter4     string   `json:"parameter4" toml:"parameter4"`
	Parameter5     string   `json:"parameter5" toml:"parameter5"`
	Parameter6     string   `json:"parameter6" toml:"parameter6"`
	Parameter7     string   `json:"parameter7" toml:"parameter7"`
	Parameter8     string   `json:"parameter8" toml:"parameter8"`
	Parameter9     string   `json:"parameter9" toml:"parameter9"`
	Parameter10    string   `json:"parameter10" toml:"parameter10"`
	Parameter11    string   `json:"parameter11" toml:"parameter11"`
	OSRequirements string   `json:"osRequirements" toml:"osRequirements"`
	Contents       string   `json:"scriptContents" toml:"-"`
	CategoryID     int      `json:"categoryId" toml:"-"`
	CategoryName   string   `json:"categoryName" toml:"categoryName"`
}

// Registered reports whether the script has been assigned a server id.
// A script with no id has never been pushed.
func (s Script) Registered() bool {
	return s.ID > 0
}

// Normalize fills in defaults for fields the metadata file may omit.
func (s *Script) Normalize() {
	if s.Priority == "" {
		s.Priority = PriorityAfter
	}
	if s.CategoryName == "" {
		s.CategoryName = NoCategoryName
	}
	if s.CategoryName == NoCategoryName {
		s.CategoryID = NoCategoryID
	}
}

// ValidateCategory checks the "NONE"/-1 sentinel pairing.
func (s Script) ValidateCategory() error {
	if (s.CategoryName == NoCategoryName) != (s.CategoryID == NoCategoryID) {
		return fmt.Errorf("category pairing diverged: name=%q id=%d", s.CategoryName, s.CategoryID)
	}
	return nil
}

// Fields returns the shared fields as a map keyed by payload field name,
// for use with the diff engine. CategoryID is omitted: local records only
// resolve it immediately before a push.
func (s Script) Fields() map[string]any {
	m := map[string]any{
		"name":           s.Name,
		"info":           s.Info,
		"notes":          s.Notes,
		"priority":       string(s.Priority),
		"parameter4":     s.Parameter4,
		"parameter5":     s.Parameter5,
		"parameter6":     s.Parameter6,
		"parameter7":     s.Parameter7,
		"parameter8":     s.Parameter8,
		"parameter9":     s.Parameter9,
		"parameter10":    s.Parameter10,
		"parameter11":    s.Parameter11,
		"osRequirements": s.OSRequirements,
		"scriptContents": s.Contents,
		"categoryName":   s.CategoryName,
	}
	if s.Registered() {
		m["id"] = s.ID
	}
	return m
}

// LocalScript is a script as it exists on the local filesystem: a content
// file and a metadata file, both named after the script. The two paths are
// derived from the roots at construction time and never persisted.
type LocalScript struct {
	Script

	roots Roots
}

// NewLocalScript constructs a LocalScript from shared fields. The name is a
// required argument rather than a field of base: loaders inject it from the
// metadata filename stem, and it must never be left unset.
func NewLocalScript(name string, base Script, roots Roots) LocalScript {
	base.Name = name
	base.Normalize()
	return LocalScript{Script: base, roots: roots}
}

// Roots returns the directories this script's files are derived from.
func (l LocalScript) Roots() Roots {
	return l.roots
}

// ScriptPath returns the derived path of the script content file.
func (l LocalScript) ScriptPath() string {
	return filepath.Join(l.roots.ScriptsDir, l.Name+ScriptExt)
}

// MetadataPath returns the derived path of the metadata file.
func (l LocalScript) MetadataPath() string {
	return filepath.Join(l.roots.MetadataDir, l.Name+MetadataExt)
}

// ToRemote converts the local record to its remote form. It fails when the
// script has no server id yet; callers tolerate an unregistered record up
// to this explicit conversion point.
func (l LocalScript) ToRemote() (RemoteScript, error) {
	if !l.Registered() {
		return RemoteScript{}, fmt.Errorf("script %q is not yet registered remotely", l.Name)
	}
	return RemoteScript{Script: l.Script}, nil
}

// RemoteScript is a script as held by the management server. ID and Name
// are mandatory; the server always assigns both.
type RemoteScript struct {
	Script
}

// Validate checks the server-mandatory fields.
func (r RemoteScript) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("remote script %q has no id", r.Name)
	}
	if r.Name == "" {
		return fmt.Errorf("remote script %d has no name", r.ID)
	}
	return nil
}

// ToLocal converts the remote record to its local projection, deriving the
// file paths from the given roots. All shared fields are preserved.
func (r RemoteScript) ToLocal(roots Roots) LocalScript {
	return NewLocalScript(r.Name, r.Script, roots)
}

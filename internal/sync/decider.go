package sync

import "scriptsync/internal/model"

// File kinds passed to overwrite decisions during pull.
const (
	// FileMetadata is the TOML metadata file. Overwriting it may discard
	// local-only edits such as notes, so its default decision is decline.
	FileMetadata = "metadata"
	// FileContents is the script content file. It is always regenerable
	// from remote, so its default decision is accept.
	FileContents = "script"
)

// Decider answers the engine's interactive decisions. The reconciliation
// algorithm never talks to a terminal itself; it asks a Decider, which is
// either a terminal prompter or a non-interactive Policy.
type Decider interface {
	// KeepLocalName decides a name mismatch between a matched local and
	// remote pair. Returning true keeps the local name (the remote record
	// is renamed); false keeps the remote name (the local files are
	// renamed). The suggested default is keep-local.
	KeepLocalName(local model.LocalScript, remote model.RemoteScript) (bool, error)

	// ConfirmOverwrite decides whether an existing file may be replaced
	// during pull. kind is FileMetadata or FileContents; defaultYes is the
	// suggested answer for that kind.
	ConfirmOverwrite(kind, path string, defaultYes bool) (bool, error)

	// ConfirmDelete decides whether a remote script may be deleted.
	ConfirmDelete(remote model.RemoteScript) (bool, error)
}

// Policy is a non-interactive Decider with fixed answers. The zero value
// matches the engine's defaults: keep the local name, decline metadata
// overwrites, accept content overwrites, decline deletes.
type Policy struct {
	// KeepRemoteName renames local files instead of the remote record on
	// a name mismatch.
	KeepRemoteName bool
	// OverwriteMetadata replaces existing metadata files during pull.
	OverwriteMetadata bool
	// SkipContents leaves existing script content files untouched during
	// pull.
	SkipContents bool
	// AllowDelete permits remote deletes.
	AllowDelete bool
}

// KeepLocalName implements Decider.
func (p Policy) KeepLocalName(model.LocalScript, model.RemoteScript) (bool, error) {
	return !p.KeepRemoteName, nil
}

// ConfirmOverwrite implements Decider.
func (p Policy) ConfirmOverwrite(kind, _ string, _ bool) (bool, error) {
	if kind == FileMetadata {
		return p.OverwriteMetadata, nil
	}
	return !p.SkipContents, nil
}

// ConfirmDelete implements Decider.
func (p Policy) ConfirmDelete(model.RemoteScript) (bool, error) {
	return p.AllowDelete, nil
}

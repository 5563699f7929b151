package sync

import (
	"scriptsync/internal/logging"
	"scriptsync/internal/model"
)

// Renamer is the slice of the store the conflict resolver needs.
type Renamer interface {
	Rename(ls model.LocalScript, newName string) (model.LocalScript, error)
}

// ResolveNameMismatch reconciles the display name of a matched local and
// remote pair. The name is the one attribute treated as a true conflict:
// it is both the remote record's identity-facing field and the local
// filesystem layout.
//
// Equal names are a no-op. Otherwise the Decider makes a single choice:
// keeping the local name mutates remote.Name in memory (the caller is
// responsible for pushing it); keeping the remote name renames the local
// record's two files on disk and returns the renamed record. A failed
// rename is returned as-is so partial renames surface loudly.
func ResolveNameMismatch(r Renamer, d Decider, local model.LocalScript, remote *model.RemoteScript) (model.LocalScript, error) {
	if local.Name == remote.Name {
		return local, nil
	}

	keepLocal, err := d.KeepLocalName(local, *remote)
	if err != nil {
		return local, err
	}

	if keepLocal {
		logging.Info("keeping local name, remote will be renamed on push",
			logging.Script(local.Name),
			logging.ScriptID(remote.ID),
		)
		remote.Name = local.Name
		return local, nil
	}

	logging.Info("keeping remote name, renaming local files",
		logging.Script(remote.Name),
		logging.ScriptID(remote.ID),
	)
	return r.Rename(local, remote.Name)
}

// Package sync implements the reconciliation engine: pairing local and
// remote script records, resolving naming and category disagreements, and
// driving the pull and push workflows one item at a time.
//
// Execution is strictly sequential. Throughput is bounded by the single
// interactive decision point (the Decider), which must not race with other
// in-flight operations.
package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"scriptsync/internal/diff"
	"scriptsync/internal/logging"
	"scriptsync/internal/model"
	"scriptsync/internal/store"
	"scriptsync/internal/util"
)

// Client is the slice of the transport the orchestrator consumes. No
// component other than the orchestrator calls it.
type Client interface {
	CategoryLister
	ListScripts(ctx context.Context) ([]model.RemoteScript, error)
	GetScript(ctx context.Context, id int) (model.RemoteScript, error)
	UpsertScript(ctx context.Context, s model.Script) (model.RemoteScript, error)
	DeleteScript(ctx context.Context, id int) error
}

// Orchestrator drives the pull, push, verify, new and delete workflows.
type Orchestrator struct {
	client     Client
	store      *store.Store
	categories *CategoryResolver
	decider    Decider
}

// New creates an Orchestrator.
func New(client Client, st *store.Store, decider Decider) *Orchestrator {
	return &Orchestrator{
		client:     client,
		store:      st,
		categories: NewCategoryResolver(client),
		decider:    decider,
	}
}

// PullOptions configures the pull workflow.
type PullOptions struct {
	// Force overwrites existing local files without asking.
	Force bool
}

// Pull downloads every remote script and writes its local projection. The
// metadata file and the content file are decided and written independently:
// a declined metadata overwrite does not block the content write. Metadata
// overwrites default to decline (metadata may carry local-only edits);
// content overwrites default to accept (content is always regenerable).
func (o *Orchestrator) Pull(ctx context.Context, opts PullOptions) (*Result, error) {
	defer logging.Timer("pull")()

	remotes, err := o.client.ListScripts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list remote scripts: %w", err)
	}

	result := &Result{Operation: "pull"}
	for _, remote := range remotes {
		result.Add(o.pullOne(remote, opts))
	}
	return result, nil
}

// pullOne writes one remote script's two files, each behind its own
// overwrite decision.
func (o *Orchestrator) pullOne(remote model.RemoteScript, opts PullOptions) ItemResult {
	local := remote.ToLocal(o.store.Roots())
	item := ItemResult{Name: local.Name, ID: remote.ID}

	existed := fileExists(local.MetadataPath()) || fileExists(local.ScriptPath())

	wroteMetadata, err := o.pullFile(local.MetadataPath(), FileMetadata, false, opts.Force, func() error {
		return o.store.WriteMetadata(local)
	})
	if err != nil {
		item.Action = ActionFailed
		item.Error = err
		return item
	}

	wroteContents, err := o.pullFile(local.ScriptPath(), FileContents, true, opts.Force, func() error {
		return o.store.WriteContents(local, remote.Contents)
	})
	if err != nil {
		item.Action = ActionFailed
		item.Error = err
		return item
	}

	switch {
	case !wroteMetadata && !wroteContents:
		item.Action = ActionSkipped
		item.Message = "both files declined"
	case existed:
		item.Action = ActionUpdated
		item.Message = pullMessage(wroteMetadata, wroteContents)
	default:
		item.Action = ActionCreated
	}
	return item
}

// pullFile runs the exist/force/decision logic for a single file and
// reports whether it was written.
func (o *Orchestrator) pullFile(path, kind string, defaultYes, force bool, write func() error) (bool, error) {
	if fileExists(path) && !force {
		ok, err := o.decider.ConfirmOverwrite(kind, path, defaultYes)
		if err != nil {
			return false, err
		}
		if !ok {
			logging.Debug("declined overwrite", logging.Path(path))
			return false, nil
		}
	}
	if err := write(); err != nil {
		return false, err
	}
	return true, nil
}

func pullMessage(metadata, contents bool) string {
	switch {
	case metadata && contents:
		return "metadata and contents written"
	case metadata:
		return "metadata written, contents declined"
	default:
		return "contents written, metadata declined"
	}
}

// PushOptions selects which scripts to push. The three selection modes are
// mutually exclusive; none selected means push everything under the root.
type PushOptions struct {
	// All pushes every script under the configured root that has a
	// corresponding metadata file.
	All bool
	// Files pushes the named script files.
	Files []string
	// IDs pushes the scripts with the given server ids, reconciling names
	// against the remote records first.
	IDs []int
}

func (opts PushOptions) selections() int {
	n := 0
	if opts.All {
		n++
	}
	if len(opts.Files) > 0 {
		n++
	}
	if len(opts.IDs) > 0 {
		n++
	}
	return n
}

// Push creates or updates remote scripts from the local store. Selecting
// more than one mode is a usage error raised before any remote call. A
// failed API call aborts only that item; remaining items are attempted.
func (o *Orchestrator) Push(ctx context.Context, opts PushOptions) (*Result, error) {
	defer logging.Timer("push")()

	if opts.selections() > 1 {
		return nil, &UsageError{Msg: "push accepts only one of --file, --id, or the default directory mode"}
	}

	result := &Result{Operation: "push"}

	switch {
	case len(opts.Files) > 0:
		o.pushFiles(ctx, result, opts.Files)
	case len(opts.IDs) > 0:
		o.pushIDs(ctx, result, opts.IDs)
	default:
		if err := o.pushAll(ctx, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// pushAll pushes every script under the scripts root that has a metadata
// file; scripts without one are skipped with a warning, not an error.
func (o *Orchestrator) pushAll(ctx context.Context, result *Result) error {
	roots := o.store.Roots()
	pattern := filepath.Join(roots.ScriptsDir, "*"+model.ScriptExt)
	files, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("scan scripts dir %s: %w", roots.ScriptsDir, err)
	}

	o.pushFiles(ctx, result, files)
	return nil
}

// pushFiles pushes the named script files. Each item verifies both files
// exist (warn-and-skip otherwise), resolves the local record, and pushes.
func (o *Orchestrator) pushFiles(ctx context.Context, result *Result, files []string) {
	roots := o.store.Roots()

	for _, file := range files {
		name := util.Stem(file)
		item := ItemResult{Name: name}

		if !fileExists(file) {
			logging.Warn("script file missing, skipping", logging.Path(file))
			item.Action = ActionSkipped
			item.Message = "script file missing"
			result.Add(item)
			continue
		}

		metadataPath := filepath.Join(roots.MetadataDir, name+model.MetadataExt)
		if !fileExists(metadataPath) {
			logging.Warn("metadata file missing, skipping",
				logging.Script(name),
				logging.Path(metadataPath),
			)
			item.Action = ActionSkipped
			item.Message = "metadata file missing"
			result.Add(item)
			continue
		}

		local, err := o.store.ScriptByPath(filepath.Join(roots.ScriptsDir, name+model.ScriptExt))
		if err != nil {
			item.Action = ActionFailed
			item.Error = err
			result.Add(item)
			continue
		}

		result.Add(o.pushOne(ctx, local))
	}
}

// pushIDs pushes scripts matched by server id: the remote record is fetched,
// the local record looked up by id, the name mismatch reconciled, and the
// result pushed. A missing local match is warn-and-skip; a duplicate local
// id is fatal for that item.
func (o *Orchestrator) pushIDs(ctx context.Context, result *Result, ids []int) {
	for _, id := range ids {
		item := ItemResult{ID: id}

		remote, err := o.client.GetScript(ctx, id)
		if err != nil {
			item.Action = ActionFailed
			item.Error = err
			result.Add(item)
			continue
		}
		item.Name = remote.Name

		local, err := o.store.ScriptByID(id)
		if err != nil {
			if store.IsNotFound(err) {
				logging.Warn("no local script for id, skipping", logging.ScriptID(id))
				item.Action = ActionSkipped
				item.Message = "no local script with this id"
			} else {
				item.Action = ActionFailed
				item.Error = err
			}
			result.Add(item)
			continue
		}
		item.Name = local.Name

		local, err = ResolveNameMismatch(o.store, o.decider, local, &remote)
		if err != nil {
			item.Action = ActionFailed
			item.Error = err
			result.Add(item)
			continue
		}
		item.Name = local.Name

		result.Add(o.pushOne(ctx, local))
	}
}

// pushOne loads contents, resolves the category, and performs the create or
// update call. Create vs update is read off the record's id, not decided at
// push time. After a create, the server-assigned id is written back into
// the metadata file immediately so a repeated push becomes an update.
func (o *Orchestrator) pushOne(ctx context.Context, local model.LocalScript) ItemResult {
	item := ItemResult{Name: local.Name, ID: local.ID}

	fail := func(err error) ItemResult {
		item.Action = ActionFailed
		item.Error = err
		return item
	}

	if err := o.store.LoadContents(&local); err != nil {
		return fail(err)
	}

	categoryID, err := o.categories.Resolve(ctx, local.CategoryName)
	if err != nil {
		return fail(err)
	}
	local.CategoryID = categoryID

	wasCreate := !local.Registered()

	remote, err := o.client.UpsertScript(ctx, local.Script)
	if err != nil {
		return fail(err)
	}

	if wasCreate {
		local.ID = remote.ID
		item.ID = remote.ID
		if err := o.store.WriteMetadata(local); err != nil {
			return fail(fmt.Errorf("created remotely as id %d but failed to record it locally: %w", remote.ID, err))
		}
		item.Action = ActionCreated
		logging.Info("created remote script",
			logging.Script(local.Name),
			logging.ScriptID(remote.ID),
		)
		return item
	}

	item.Action = ActionUpdated
	logging.Info("updated remote script",
		logging.Script(local.Name),
		logging.ScriptID(local.ID),
	)
	return item
}

// Verify compares the local store against the remote collection and returns
// the three-way partition, pairing by id first and name second. It is
// read-only: neither side is mutated. Local contents are loaded so content
// drift is reported alongside metadata drift.
func (o *Orchestrator) Verify(ctx context.Context) (diff.Result, error) {
	defer logging.Timer("verify")()

	locals, err := o.store.LoadAll()
	if err != nil {
		return diff.Result{}, err
	}

	localRecords := make([]diff.Record, 0, len(locals))
	for i := range locals {
		if err := o.store.LoadContents(&locals[i]); err != nil && !store.IsNotFound(err) {
			return diff.Result{}, err
		}
		localRecords = append(localRecords, locals[i].Fields())
	}

	remotes, err := o.client.ListScripts(ctx)
	if err != nil {
		return diff.Result{}, fmt.Errorf("list remote scripts: %w", err)
	}

	remoteRecords := make([]diff.Record, 0, len(remotes))
	for _, rs := range remotes {
		remoteRecords = append(remoteRecords, rs.Fields())
	}

	return diff.Lists(localRecords, remoteRecords, "id", "name"), nil
}

// NewScript scaffolds a new local script: a template metadata file and a
// shell stub. It refuses to clobber existing files.
func (o *Orchestrator) NewScript(name, info, notes string) (model.LocalScript, error) {
	local := model.NewLocalScript(name, model.Script{Info: info, Notes: notes}, o.store.Roots())

	if fileExists(local.MetadataPath()) {
		return model.LocalScript{}, fmt.Errorf("metadata file %s already exists", local.MetadataPath())
	}
	if fileExists(local.ScriptPath()) {
		return model.LocalScript{}, fmt.Errorf("script file %s already exists", local.ScriptPath())
	}

	if err := o.store.WriteMetadata(local); err != nil {
		return model.LocalScript{}, err
	}
	if err := o.store.WriteContents(local, "#!/bin/bash\n\n"); err != nil {
		return model.LocalScript{}, err
	}

	logging.Info("created new script", logging.Script(name), logging.Path(local.ScriptPath()))
	return local, nil
}

// Delete removes a remote script by id after a Decider confirmation. The
// local files are left untouched.
func (o *Orchestrator) Delete(ctx context.Context, id int) (*Result, error) {
	result := &Result{Operation: "delete"}

	remote, err := o.client.GetScript(ctx, id)
	if err != nil {
		return nil, err
	}

	item := ItemResult{Name: remote.Name, ID: id}

	ok, err := o.decider.ConfirmDelete(remote)
	if err != nil {
		return nil, err
	}
	if !ok {
		item.Action = ActionSkipped
		item.Message = "delete declined"
		result.Add(item)
		return result, nil
	}

	if err := o.client.DeleteScript(ctx, id); err != nil {
		item.Action = ActionFailed
		item.Error = err
		result.Add(item)
		return result, nil
	}

	item.Action = ActionDeleted
	result.Add(item)
	logging.Info("deleted remote script", logging.Script(remote.Name), logging.ScriptID(id))
	return result, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

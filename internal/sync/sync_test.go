package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"scriptsync/internal/model"
	"scriptsync/internal/store"
)

// fakeClient is an in-memory transport for orchestrator tests. It records
// every upsert payload and delete so the tests can assert on exactly what
// would have gone over the wire.
type fakeClient struct {
	categories []model.Category
	remotes    map[int]model.RemoteScript
	nextID     int
	upserts    []model.Script
	deleted    []int
}

func newFakeClient() *fakeClient {
	return &fakeClient{remotes: make(map[int]model.RemoteScript), nextID: 100}
}

func (f *fakeClient) addRemote(s model.Script) {
	f.remotes[s.ID] = model.RemoteScript{Script: s}
}

func (f *fakeClient) ListCategories(context.Context) ([]model.Category, error) {
	return f.categories, nil
}

func (f *fakeClient) ListScripts(context.Context) ([]model.RemoteScript, error) {
	out := make([]model.RemoteScript, 0, len(f.remotes))
	for _, rs := range f.remotes {
		out = append(out, rs)
	}
	return out, nil
}

func (f *fakeClient) GetScript(_ context.Context, id int) (model.RemoteScript, error) {
	rs, ok := f.remotes[id]
	if !ok {
		return model.RemoteScript{}, fmt.Errorf("script %d not found", id)
	}
	return rs, nil
}

func (f *fakeClient) UpsertScript(_ context.Context, s model.Script) (model.RemoteScript, error) {
	f.upserts = append(f.upserts, s)
	if s.ID == 0 {
		f.nextID++
		s.ID = f.nextID
	}
	f.remotes[s.ID] = model.RemoteScript{Script: s}
	return model.RemoteScript{Script: s}, nil
}

func (f *fakeClient) DeleteScript(_ context.Context, id int) error {
	f.deleted = append(f.deleted, id)
	delete(f.remotes, id)
	return nil
}

func TestPushCreateWritesBackID(t *testing.T) {
	st := newConflictStore(t)
	seedLocal(t, st, "deploy", model.Script{Info: "deploys things"})
	client := newFakeClient()
	orch := New(client, st, Policy{})

	result, err := orch.Push(context.Background(), PushOptions{All: true})
	if err != nil {
		t.Fatalf("Push() unexpected error: %v", err)
	}

	created := result.Created()
	if len(created) != 1 {
		t.Fatalf("Created() = %d items, want 1: %s", len(created), result.Summary())
	}
	if created[0].ID != 101 {
		t.Errorf("created item ID = %d, want 101", created[0].ID)
	}

	// The server id must already be on disk: a repeated push is an update.
	reloaded, err := st.ScriptByID(101)
	if err != nil {
		t.Fatalf("metadata not rewritten with server id: %v", err)
	}
	if reloaded.Name != "deploy" {
		t.Errorf("reloaded.Name = %q, want \"deploy\"", reloaded.Name)
	}

	result, err = orch.Push(context.Background(), PushOptions{All: true})
	if err != nil {
		t.Fatalf("second Push() unexpected error: %v", err)
	}
	if len(result.Updated()) != 1 {
		t.Errorf("second push should update, got: %s", result.Summary())
	}
}

func TestPushResolvesCategoryBeforeUpsert(t *testing.T) {
	st := newConflictStore(t)
	seedLocal(t, st, "audit", model.Script{ID: 5, CategoryName: "Maintenance"})
	client := newFakeClient()
	client.categories = []model.Category{{ID: 7, Name: "Maintenance"}}
	client.addRemote(model.Script{ID: 5, Name: "audit"})
	orch := New(client, st, Policy{})

	result, err := orch.Push(context.Background(), PushOptions{All: true})
	if err != nil {
		t.Fatalf("Push() unexpected error: %v", err)
	}
	if len(result.Updated()) != 1 {
		t.Fatalf("push did not update: %s", result.Summary())
	}

	if len(client.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(client.upserts))
	}
	if got := client.upserts[0].CategoryID; got != 7 {
		t.Errorf("upsert payload CategoryID = %d, want 7 (resolved at push time)", got)
	}
}

func TestPushUnknownCategoryFailsItem(t *testing.T) {
	st := newConflictStore(t)
	seedLocal(t, st, "audit", model.Script{CategoryName: "Ghost"})
	client := newFakeClient()
	orch := New(client, st, Policy{})

	result, err := orch.Push(context.Background(), PushOptions{All: true})
	if err != nil {
		t.Fatalf("Push() unexpected error: %v", err)
	}

	failed := result.Failed()
	if len(failed) != 1 {
		t.Fatalf("Failed() = %d items, want 1", len(failed))
	}
	var nf *CategoryNotFoundError
	if !errors.As(failed[0].Error, &nf) {
		t.Errorf("item error = %v, want CategoryNotFoundError", failed[0].Error)
	}
	if len(client.upserts) != 0 {
		t.Error("nothing should be pushed when the category cannot be resolved")
	}
}

func TestPushSelectionModesAreExclusive(t *testing.T) {
	orch := New(newFakeClient(), newConflictStore(t), Policy{})

	_, err := orch.Push(context.Background(), PushOptions{
		Files: []string{"deploy.sh"},
		IDs:   []int{42},
	})

	var ue *UsageError
	if !errors.As(err, &ue) {
		t.Fatalf("Push() = %v, want UsageError", err)
	}
}

func TestPushFilesSkipsMissingMetadata(t *testing.T) {
	st := newConflictStore(t)
	// Content file without a metadata file.
	orphan := model.NewLocalScript("orphan", model.Script{}, st.Roots())
	if err := st.WriteContents(orphan, "#!/bin/bash\n"); err != nil {
		t.Fatal(err)
	}
	client := newFakeClient()
	orch := New(client, st, Policy{})

	result, err := orch.Push(context.Background(), PushOptions{Files: []string{orphan.ScriptPath()}})
	if err != nil {
		t.Fatalf("Push() unexpected error: %v", err)
	}
	if len(result.Skipped()) != 1 {
		t.Fatalf("Skipped() = %d items, want 1: %s", len(result.Skipped()), result.Summary())
	}
	if len(client.upserts) != 0 {
		t.Error("orphan script must not be pushed")
	}
}

func TestPushIDsKeepLocalName(t *testing.T) {
	st := newConflictStore(t)
	local := seedLocal(t, st, "setup-v2", model.Script{ID: 42})
	client := newFakeClient()
	client.addRemote(model.Script{ID: 42, Name: "Setup"})
	// Policy zero value keeps the local name.
	orch := New(client, st, Policy{})

	result, err := orch.Push(context.Background(), PushOptions{IDs: []int{42}})
	if err != nil {
		t.Fatalf("Push() unexpected error: %v", err)
	}
	if len(result.Updated()) != 1 {
		t.Fatalf("push did not update: %s", result.Summary())
	}

	if len(client.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(client.upserts))
	}
	if got := client.upserts[0].Name; got != "setup-v2" {
		t.Errorf("upsert payload Name = %q, want \"setup-v2\"", got)
	}
	// Keeping the local name leaves the local files where they were.
	for _, path := range []string{local.ScriptPath(), local.MetadataPath()} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("local file %s was touched: %v", path, err)
		}
	}
}

func TestPushIDsKeepRemoteName(t *testing.T) {
	st := newConflictStore(t)
	seedLocal(t, st, "setup-v2", model.Script{ID: 42})
	client := newFakeClient()
	client.addRemote(model.Script{ID: 42, Name: "Setup"})
	orch := New(client, st, Policy{KeepRemoteName: true})

	result, err := orch.Push(context.Background(), PushOptions{IDs: []int{42}})
	if err != nil {
		t.Fatalf("Push() unexpected error: %v", err)
	}
	if len(result.Updated()) != 1 {
		t.Fatalf("push did not update: %s", result.Summary())
	}

	if got := client.upserts[0].Name; got != "Setup" {
		t.Errorf("upsert payload Name = %q, want \"Setup\"", got)
	}
	if _, err := st.ScriptByPath(model.NewLocalScript("Setup", model.Script{}, st.Roots()).ScriptPath()); err != nil {
		t.Errorf("local files not renamed to remote name: %v", err)
	}
}

func TestPushIDsDuplicateLocalID(t *testing.T) {
	st := newConflictStore(t)
	seedLocal(t, st, "one", model.Script{ID: 10})
	seedLocal(t, st, "two", model.Script{ID: 10})
	client := newFakeClient()
	client.addRemote(model.Script{ID: 10, Name: "one"})
	orch := New(client, st, Policy{})

	result, err := orch.Push(context.Background(), PushOptions{IDs: []int{10}})
	if err != nil {
		t.Fatalf("Push() unexpected error: %v", err)
	}

	failed := result.Failed()
	if len(failed) != 1 {
		t.Fatalf("Failed() = %d items, want 1: %s", len(failed), result.Summary())
	}
	var ae *store.AmbiguityError
	if !errors.As(failed[0].Error, &ae) {
		t.Errorf("item error = %v, want AmbiguityError", failed[0].Error)
	}
	if len(client.upserts) != 0 {
		t.Error("an ambiguous id must not push anything")
	}
}

func TestPushIDsNoLocalMatchSkips(t *testing.T) {
	st := newConflictStore(t)
	client := newFakeClient()
	client.addRemote(model.Script{ID: 42, Name: "Setup"})
	orch := New(client, st, Policy{})

	result, err := orch.Push(context.Background(), PushOptions{IDs: []int{42}})
	if err != nil {
		t.Fatalf("Push() unexpected error: %v", err)
	}
	if len(result.Skipped()) != 1 {
		t.Fatalf("Skipped() = %d items, want 1: %s", len(result.Skipped()), result.Summary())
	}
}

func TestPullCreatesBothFiles(t *testing.T) {
	st := newConflictStore(t)
	client := newFakeClient()
	client.addRemote(model.Script{
		ID:           1,
		Name:         "deploy",
		Info:         "deploys things",
		Priority:     model.PriorityAfter,
		CategoryName: model.NoCategoryName,
		CategoryID:   model.NoCategoryID,
		Contents:     "#!/bin/bash\necho hi\n",
	})
	orch := New(client, st, Policy{})

	result, err := orch.Pull(context.Background(), PullOptions{})
	if err != nil {
		t.Fatalf("Pull() unexpected error: %v", err)
	}
	if len(result.Created()) != 1 {
		t.Fatalf("Created() = %d items, want 1: %s", len(result.Created()), result.Summary())
	}

	local, err := st.ScriptByID(1)
	if err != nil {
		t.Fatalf("pulled script not on disk: %v", err)
	}
	if err := st.LoadContents(&local); err != nil {
		t.Fatal(err)
	}
	if local.Contents != "#!/bin/bash\necho hi\n" {
		t.Errorf("Contents = %q", local.Contents)
	}
}

func TestPullPreservesExistingMetadataByDefault(t *testing.T) {
	st := newConflictStore(t)
	local := seedLocal(t, st, "deploy", model.Script{ID: 1, Notes: "local-only edit"})
	before, err := os.ReadFile(local.MetadataPath())
	if err != nil {
		t.Fatal(err)
	}

	client := newFakeClient()
	client.addRemote(model.Script{ID: 1, Name: "deploy", Notes: "remote notes", Contents: "#!/bin/bash\nnew\n"})
	orch := New(client, st, Policy{})

	result, err := orch.Pull(context.Background(), PullOptions{})
	if err != nil {
		t.Fatalf("Pull() unexpected error: %v", err)
	}
	if len(result.Updated()) != 1 {
		t.Fatalf("Updated() = %d items, want 1: %s", len(result.Updated()), result.Summary())
	}

	after, err := os.ReadFile(local.MetadataPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("metadata file was overwritten despite the default decline")
	}

	if err := st.LoadContents(&local); err != nil {
		t.Fatal(err)
	}
	if local.Contents != "#!/bin/bash\nnew\n" {
		t.Errorf("Contents = %q, want the remote contents (default accept)", local.Contents)
	}
}

func TestPullForceOverwritesEverything(t *testing.T) {
	st := newConflictStore(t)
	seedLocal(t, st, "deploy", model.Script{ID: 1, Notes: "local-only edit"})

	client := newFakeClient()
	client.addRemote(model.Script{ID: 1, Name: "deploy", Notes: "remote notes", Contents: "#!/bin/bash\nnew\n"})
	orch := New(client, st, Policy{})

	if _, err := orch.Pull(context.Background(), PullOptions{Force: true}); err != nil {
		t.Fatalf("Pull() unexpected error: %v", err)
	}

	local, err := st.ScriptByID(1)
	if err != nil {
		t.Fatal(err)
	}
	if local.Notes != "remote notes" {
		t.Errorf("Notes = %q, want the remote notes after --force", local.Notes)
	}
}

func TestVerify(t *testing.T) {
	st := newConflictStore(t)
	seedLocal(t, st, "deploy", model.Script{ID: 1})

	client := newFakeClient()
	client.addRemote(model.Script{
		ID:           1,
		Name:         "deploy",
		Priority:     model.PriorityAfter,
		CategoryName: model.NoCategoryName,
		CategoryID:   model.NoCategoryID,
		Contents:     "#!/bin/bash\n",
	})
	orch := New(client, st, Policy{})

	report, err := orch.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if !report.InSync() {
		t.Errorf("identical sides reported as out of sync: %+v", report)
	}

	// Introduce drift on the remote side.
	client.addRemote(model.Script{
		ID:           1,
		Name:         "deploy",
		Info:         "changed remotely",
		Priority:     model.PriorityAfter,
		CategoryName: model.NoCategoryName,
		CategoryID:   model.NoCategoryID,
		Contents:     "#!/bin/bash\n",
	})

	report, err = orch.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if len(report.MatchedDiffs) != 1 {
		t.Errorf("MatchedDiffs = %d, want 1 after remote edit", len(report.MatchedDiffs))
	}
}

func TestNewScriptRefusesClobber(t *testing.T) {
	st := newConflictStore(t)
	orch := New(nil, st, Policy{})

	local, err := orch.NewScript("deploy", "deploys things", "")
	if err != nil {
		t.Fatalf("NewScript() unexpected error: %v", err)
	}
	for _, path := range []string{local.ScriptPath(), local.MetadataPath()} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("scaffolded file %s missing: %v", path, err)
		}
	}

	if _, err := orch.NewScript("deploy", "", ""); err == nil {
		t.Fatal("NewScript() over existing files expected error, got nil")
	}
}

func TestDelete(t *testing.T) {
	st := newConflictStore(t)
	client := newFakeClient()
	client.addRemote(model.Script{ID: 42, Name: "Setup"})

	t.Run("declined by default", func(t *testing.T) {
		result, err := New(client, st, Policy{}).Delete(context.Background(), 42)
		if err != nil {
			t.Fatalf("Delete() unexpected error: %v", err)
		}
		if len(result.Skipped()) != 1 {
			t.Fatalf("Skipped() = %d items, want 1", len(result.Skipped()))
		}
		if len(client.deleted) != 0 {
			t.Error("declined delete must not reach the server")
		}
	})

	t.Run("allowed", func(t *testing.T) {
		result, err := New(client, st, Policy{AllowDelete: true}).Delete(context.Background(), 42)
		if err != nil {
			t.Fatalf("Delete() unexpected error: %v", err)
		}
		if len(result.Deleted()) != 1 {
			t.Fatalf("Deleted() = %d items, want 1", len(result.Deleted()))
		}
		if len(client.deleted) != 1 || client.deleted[0] != 42 {
			t.Errorf("deleted ids = %v, want [42]", client.deleted)
		}
	})
}

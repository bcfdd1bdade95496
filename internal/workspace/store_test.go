// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_FreshStoreGetsInstallID(t *testing.T) {
	store, err := Open(NewMemKV())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if store.InstallID() == "" {
		t.Error("fresh store should generate an install id")
	}
}

func TestActiveProject_NoneSelected(t *testing.T) {
	store, err := Open(NewMemKV())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	_, err = store.ActiveProject()
	if !errors.Is(err, ErrNoActiveProject) {
		t.Errorf("err = %v, want ErrNoActiveProject", err)
	}
	if store.ActiveProjectID() != "" {
		t.Error("ActiveProjectID should be empty with no selection")
	}
}

func TestSetAndClearActiveProject(t *testing.T) {
	store, err := Open(NewMemKV())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := store.SetActiveProject("proj-1", "Knowledge Base"); err != nil {
		t.Fatalf("SetActiveProject failed: %v", err)
	}

	sel, err := store.ActiveProject()
	if err != nil {
		t.Fatalf("ActiveProject failed: %v", err)
	}
	if sel.ID != "proj-1" || sel.Name != "Knowledge Base" {
		t.Errorf("selection = %+v", sel)
	}
	if sel.SelectedAt.IsZero() {
		t.Error("SelectedAt should be stamped")
	}

	if err := store.ClearActiveProject(); err != nil {
		t.Fatalf("ClearActiveProject failed: %v", err)
	}
	if _, err := store.ActiveProject(); !errors.Is(err, ErrNoActiveProject) {
		t.Error("selection should be gone after clear")
	}
}

func TestSetActiveProject_RejectsEmptyID(t *testing.T) {
	store, _ := Open(NewMemKV())
	if err := store.SetActiveProject("", "x"); !errors.Is(err, ErrNoActiveProject) {
		t.Errorf("err = %v, want ErrNoActiveProject", err)
	}
}

func TestPersistence_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	kv := NewFileKV(dir)

	store, err := Open(kv)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	installID := store.InstallID()
	if err := store.SetActiveProject("proj-7", "Docs"); err != nil {
		t.Fatalf("SetActiveProject failed: %v", err)
	}

	reopened, err := Open(NewFileKV(dir))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reopened.InstallID() != installID {
		t.Error("install id must be stable across opens")
	}
	if reopened.ActiveProjectID() != "proj-7" {
		t.Errorf("active project = %q, want proj-7", reopened.ActiveProjectID())
	}
}

func TestOpen_CorruptStateStartsFresh(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workspace.json")
	if err := os.WriteFile(path, []byte("{broken"), 0600); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	store, err := Open(NewFileKV(dir))
	if err != nil {
		t.Fatalf("Open should tolerate corrupt state: %v", err)
	}
	if store.InstallID() == "" {
		t.Error("fresh state should be generated over corrupt data")
	}
	if _, err := store.ActiveProject(); !errors.Is(err, ErrNoActiveProject) {
		t.Error("corrupt state should yield no selection")
	}
}

func TestFileKV_RoundTrip(t *testing.T) {
	kv := NewFileKV(t.TempDir())

	if _, ok, err := kv.Get("missing"); err != nil || ok {
		t.Errorf("missing key: ok=%v err=%v", ok, err)
	}

	if err := kv.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	data, ok, err := kv.Get("k")
	if err != nil || !ok || string(data) != "v" {
		t.Errorf("Get = %q ok=%v err=%v", data, ok, err)
	}

	if err := kv.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := kv.Delete("k"); err != nil {
		t.Errorf("deleting a missing key should not error: %v", err)
	}
}

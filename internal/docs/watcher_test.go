// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type fakeUploader struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeUploader) UploadDocument(_ context.Context, _, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	if f.err != nil {
		return "", f.err
	}
	return "documents/" + filepath.Base(path), nil
}

func (f *fakeUploader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestUploadable(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"report.pdf", true},
		{"notes.MD", true},
		{"data.csv", true},
		{"archive.zip", false},
		{"binary", false},
		{".hidden.pdf", false},
		{"dir/.swap.md", false},
	}
	for _, tt := range tests {
		if got := Uploadable(tt.path); got != tt.want {
			t.Errorf("Uploadable(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestNewWatcher_RequiresDir(t *testing.T) {
	_, err := NewWatcher("", "proj-1", &fakeUploader{}, 0)
	if !errors.Is(err, ErrNoWatchDir) {
		t.Errorf("err = %v, want ErrNoWatchDir", err)
	}
}

func waitForResult(t *testing.T, w *Watcher) UploadResult {
	t.Helper()
	select {
	case r := <-w.Results():
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for upload result")
		return UploadResult{}
	}
}

func TestWatcher_UploadsSettledFile(t *testing.T) {
	dir := t.TempDir()
	up := &fakeUploader{}

	w, err := NewWatcher(dir, "proj-1", up, 0)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	w.SetDebounce(50 * time.Millisecond)
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	path := filepath.Join(dir, "guide.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	r := waitForResult(t, w)
	if r.Err != nil {
		t.Fatalf("upload reported error: %v", r.Err)
	}
	if r.Path != path {
		t.Errorf("result path = %q, want %q", r.Path, path)
	}
	if r.ObjectName != "documents/guide.pdf" {
		t.Errorf("object name = %q", r.ObjectName)
	}
}

func TestWatcher_DebouncesRepeatedWrites(t *testing.T) {
	dir := t.TempDir()
	up := &fakeUploader{}

	w, err := NewWatcher(dir, "proj-1", up, 0)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	w.SetDebounce(100 * time.Millisecond)
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	path := filepath.Join(dir, "notes.md")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("chunk"), 0644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	waitForResult(t, w)
	// Give any stray second upload a chance to appear.
	time.Sleep(150 * time.Millisecond)

	if n := up.callCount(); n != 1 {
		t.Errorf("upload count = %d, want 1 (writes must coalesce)", n)
	}
}

func TestWatcher_IgnoresUnknownTypes(t *testing.T) {
	dir := t.TempDir()
	up := &fakeUploader{}

	w, err := NewWatcher(dir, "proj-1", up, 0)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	w.SetDebounce(30 * time.Millisecond)
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "blob.bin"), []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if n := up.callCount(); n != 0 {
		t.Errorf("upload count = %d, want 0", n)
	}
}

func TestWatcher_RejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	up := &fakeUploader{}

	w, err := NewWatcher(dir, "proj-1", up, 4)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	w.SetDebounce(30 * time.Millisecond)
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "big.txt"), []byte("too large"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	r := waitForResult(t, w)
	if r.Err == nil {
		t.Fatal("oversized file should report an error")
	}
	if n := up.callCount(); n != 0 {
		t.Errorf("uploader called %d times for oversized file", n)
	}
}

func TestWatcher_SurfacesUploadError(t *testing.T) {
	dir := t.TempDir()
	up := &fakeUploader{err: errors.New("backend down")}

	w, err := NewWatcher(dir, "proj-1", up, 0)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	w.SetDebounce(30 * time.Millisecond)
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "doc.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	r := waitForResult(t, w)
	if r.Err == nil {
		t.Error("upload failure should surface in the result")
	}
}

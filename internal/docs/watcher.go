// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// UPLOADER INTERFACE
// =============================================================================

// Uploader pushes a single local file into a project's document store and
// returns the stored object name.
type Uploader interface {
	UploadDocument(ctx context.Context, projectID, path string) (string, error)
}

// UploadResult records the outcome of one upload attempt.
type UploadResult struct {
	Path       string
	ObjectName string
	Err        error
}

// DocumentAPI is the slice of the backend client uploads go through.
type DocumentAPI interface {
	UploadDocument(ctx context.Context, projectID, fileName, contentType string, size int64, body io.Reader) (string, error)
}

// APIUploader adapts the signed-URL upload flow to path-based uploads.
type APIUploader struct {
	api DocumentAPI
}

// NewAPIUploader wraps a backend client as an Uploader.
func NewAPIUploader(api DocumentAPI) *APIUploader {
	return &APIUploader{api: api}
}

// UploadDocument implements Uploader.
func (u *APIUploader) UploadDocument(ctx context.Context, projectID, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return u.api.UploadDocument(ctx, projectID, filepath.Base(path), ContentTypeFor(path), info.Size(), f)
}

// ContentTypeFor maps a file name to a MIME type, defaulting to octet-stream.
func ContentTypeFor(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// =============================================================================
// WATCHER
// =============================================================================

// DefaultDebounce is how long a file must be quiet before it uploads.
const DefaultDebounce = 2 * time.Second

// ErrNoWatchDir is returned when Watch is called without a configured folder.
var ErrNoWatchDir = errors.New("no watch directory configured")

// uploadableExts are the document types the backend can index. Anything else
// dropped into the folder is ignored.
var uploadableExts = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".html": true,
	".csv":  true,
	".json": true,
	".docx": true,
}

// Watcher watches a drop folder and uploads settled files.
type Watcher struct {
	dir       string
	projectID string
	uploader  Uploader
	maxBytes  int64
	debounce  time.Duration
	results   chan UploadResult

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	pending map[string]time.Time // File path -> last change time
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWatcher creates a watcher for dir that uploads into projectID.
// maxBytes caps individual file size; zero means no cap.
func NewWatcher(dir, projectID string, uploader Uploader, maxBytes int64) (*Watcher, error) {
	if dir == "" {
		return nil, ErrNoWatchDir
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		dir:       dir,
		projectID: projectID,
		uploader:  uploader,
		maxBytes:  maxBytes,
		debounce:  DefaultDebounce,
		results:   make(chan UploadResult, 16),
		watcher:   fsw,
		pending:   make(map[string]time.Time),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// SetDebounce overrides the settle window. Must be called before Watch.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Results delivers one UploadResult per attempted upload.
func (w *Watcher) Results() <-chan UploadResult {
	return w.results
}

// Watch starts watching. Existing files in the folder are not uploaded;
// only files created or modified after Watch starts.
func (w *Watcher) Watch() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	go w.processEvents()
	go w.processPending()

	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

// processEvents collects change events into the pending set.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !Uploadable(event.Name) {
				continue
			}

			w.mu.Lock()
			w.pending[event.Name] = time.Now()
			w.mu.Unlock()

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Non-fatal; keep watching.
		}
	}
}

// processPending uploads files once they have been quiet for the debounce
// window.
func (w *Watcher) processPending() {
	tick := w.debounce / 4
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			w.mu.Lock()
			var settled []string
			for path, changed := range w.pending {
				if now.Sub(changed) >= w.debounce {
					settled = append(settled, path)
					delete(w.pending, path)
				}
			}
			w.mu.Unlock()

			for _, path := range settled {
				w.upload(path)
			}
		}
	}
}

// upload pushes one settled file and reports the result.
func (w *Watcher) upload(path string) {
	info, err := os.Stat(path)
	if err != nil {
		// Deleted before it settled; nothing to do.
		return
	}
	if info.IsDir() {
		return
	}
	if w.maxBytes > 0 && info.Size() > w.maxBytes {
		w.report(UploadResult{Path: path, Err: fmt.Errorf("file exceeds upload limit (%d bytes)", w.maxBytes)})
		return
	}

	objectName, err := w.uploader.UploadDocument(w.ctx, w.projectID, path)
	w.report(UploadResult{Path: path, ObjectName: objectName, Err: err})
}

// report delivers a result without blocking a slow consumer forever.
func (w *Watcher) report(r UploadResult) {
	select {
	case w.results <- r:
	case <-w.ctx.Done():
	}
}

// Uploadable reports whether a file is a document type worth uploading.
// Hidden files and unknown extensions are skipped.
func Uploadable(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return uploadableExts[strings.ToLower(filepath.Ext(base))]
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"os"
	"path/filepath"

	"github.com/jeranaias/doctalk-tui/internal/util"
)

// FileKV is the default KV backing: one JSON file per key under a directory,
// written atomically so partial writes never surface.
type FileKV struct {
	dir string
}

// NewFileKV creates a file-backed KV rooted at dir.
func NewFileKV(dir string) *FileKV {
	return &FileKV{dir: dir}
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Get implements KV.
func (f *FileKV) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set implements KV.
func (f *FileKV) Set(key string, value []byte) error {
	return util.AtomicWriteFileWithDir(f.path(key), value, 0600, 0700)
}

// Delete implements KV.
func (f *FileKV) Delete(key string) error {
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemKV is an in-memory KV for tests and ephemeral runs.
type MemKV struct {
	values map[string][]byte
}

// NewMemKV creates an empty in-memory KV.
func NewMemKV() *MemKV {
	return &MemKV{values: make(map[string][]byte)}
}

// Get implements KV.
func (m *MemKV) Get(key string) ([]byte, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements KV.
func (m *MemKV) Set(key string, value []byte) error {
	m.values[key] = append([]byte(nil), value...)
	return nil
}

// Delete implements KV.
func (m *MemKV) Delete(key string) error {
	delete(m.values, key)
	return nil
}

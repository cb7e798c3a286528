// Package storage provides mnemonic persistence for the wallet. One wallet
// per storage location; the core pipeline only sees the Store interface, so
// the filesystem layout is swappable (and replaceable with an in-memory
// store in tests).
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store loads and saves the wallet mnemonic.
type Store interface {
	// LoadMnemonic returns the stored mnemonic, or an empty string when
	// no wallet has been saved yet.
	LoadMnemonic() (string, error)

	// SaveMnemonic stores the mnemonic, replacing any previous one.
	SaveMnemonic(mnemonic string) error

	// Reset removes the stored mnemonic.
	Reset() error
}

// mnemonicFileName is the plain-text mnemonic file inside the data dir.
const mnemonicFileName = "mnemonic.txt"

// FileStore persists the mnemonic as a plain-text file in a data directory.
type FileStore struct {
	dataDir string
}

// NewFileStore creates a file store rooted at dataDir.
func NewFileStore(dataDir string) *FileStore {
	return &FileStore{dataDir: ExpandPath(dataDir)}
}

// LoadMnemonic reads the mnemonic file. A missing file is not an error.
func (s *FileStore) LoadMnemonic() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, mnemonicFileName))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read mnemonic: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveMnemonic writes the mnemonic file with owner-only permissions.
func (s *FileStore) SaveMnemonic(mnemonic string) error {
	if err := os.MkdirAll(s.dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	path := filepath.Join(s.dataDir, mnemonicFileName)
	if err := os.WriteFile(path, []byte(mnemonic), 0600); err != nil {
		return fmt.Errorf("failed to save mnemonic: %w", err)
	}
	return nil
}

// Reset removes the mnemonic file. Missing files are ignored.
func (s *FileStore) Reset() error {
	err := os.Remove(filepath.Join(s.dataDir, mnemonicFileName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to reset storage: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mnemonic string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) LoadMnemonic() (string, error) {
	return s.mnemonic, nil
}

func (s *MemStore) SaveMnemonic(mnemonic string) error {
	s.mnemonic = mnemonic
	return nil
}

func (s *MemStore) Reset() error {
	s.mnemonic = ""
	return nil
}

// ExpandPath expands ~ to the home directory.
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

// Ensure implementations satisfy Store
var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemStore)(nil)
)

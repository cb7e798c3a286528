// Encrypted mnemonic storage. Only Argon2id + AES-256-GCM is supported.
package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
)

// Argon2 parameters (OWASP recommended for password hashing)
const (
	argon2Time        = 3         // Number of iterations
	argon2Memory      = 64 * 1024 // 64 MB memory
	argon2Parallelism = 4         // Parallel threads
	argon2KeyLen      = 32        // Output key length for AES-256
	argon2SaltLen     = 32        // Salt length
)

// seedFileName is the encrypted mnemonic envelope inside the data dir.
const seedFileName = "mnemonic.seed"

// encryptedSeed is the on-disk envelope for an encrypted mnemonic.
type encryptedSeed struct {
	Version     int    `json:"version"`
	Ciphertext  []byte `json:"ciphertext"`
	Salt        []byte `json:"salt"`
	Nonce       []byte `json:"nonce"`
	Time        uint32 `json:"time"`
	Memory      uint32 `json:"memory"`
	Parallelism uint8  `json:"parallelism"`
}

// EncryptedFileStore persists the mnemonic encrypted with a password using
// Argon2id key derivation and AES-256-GCM.
type EncryptedFileStore struct {
	dataDir  string
	password string
}

// NewEncryptedFileStore creates an encrypted store rooted at dataDir.
func NewEncryptedFileStore(dataDir, password string) *EncryptedFileStore {
	return &EncryptedFileStore{dataDir: ExpandPath(dataDir), password: password}
}

// LoadMnemonic decrypts and returns the stored mnemonic. A missing file is
// not an error; a wrong password is.
func (s *EncryptedFileStore) LoadMnemonic() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, seedFileName))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed encryptedSeed
	if err := json.Unmarshal(data, &seed); err != nil {
		return "", fmt.Errorf("failed to parse seed file: %w", err)
	}

	key := argon2.IDKey([]byte(s.password), seed.Salt, seed.Time, seed.Memory, seed.Parallelism, argon2KeyLen)
	defer secureClear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, seed.Nonce, seed.Ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt (wrong password?): %w", err)
	}

	return string(plaintext), nil
}

// SaveMnemonic encrypts and stores the mnemonic.
func (s *EncryptedFileStore) SaveMnemonic(mnemonic string) error {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(s.password), salt, argon2Time, argon2Memory, argon2Parallelism, argon2KeyLen)
	defer secureClear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	seed := encryptedSeed{
		Version:     1,
		Ciphertext:  gcm.Seal(nil, nonce, []byte(mnemonic), nil),
		Salt:        salt,
		Nonce:       nonce,
		Time:        argon2Time,
		Memory:      argon2Memory,
		Parallelism: argon2Parallelism,
	}

	data, err := json.Marshal(&seed)
	if err != nil {
		return fmt.Errorf("failed to marshal seed: %w", err)
	}

	if err := os.MkdirAll(s.dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dataDir, seedFileName), data, 0600); err != nil {
		return fmt.Errorf("failed to write seed file: %w", err)
	}
	return nil
}

// Reset removes the encrypted seed file. Missing files are ignored.
func (s *EncryptedFileStore) Reset() error {
	err := os.Remove(filepath.Join(s.dataDir, seedFileName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to reset storage: %w", err)
	}
	return nil
}

// secureClear overwrites a byte slice with zeros.
func secureClear(data []byte) {
	for i := range data {
		data[i] = 0
	}
}

// Ensure EncryptedFileStore satisfies Store
var _ Store = (*EncryptedFileStore)(nil)

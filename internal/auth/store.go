package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// EnvCredentialsPath overrides where the persisted credential lives.
	EnvCredentialsPath = "GMAIL_CREDENTIALS_PATH"
	// EnvClientIDPath overrides where the OAuth client identity file lives.
	EnvClientIDPath = "GMAIL_OAUTH_PATH"

	configDirName     = "gmail-mcp"
	credentialsFile   = "credentials.json"
	clientIDFileName  = "gcp-oauth.keys.json"
	invalidatedSuffix = ".invalid"
)

// DefaultCredentialsPath returns the credential file location, honoring
// the environment override.
func DefaultCredentialsPath() string {
	if p := os.Getenv(EnvCredentialsPath); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, configDirName, credentialsFile)
}

// DefaultClientIDPath returns the OAuth client identity file location,
// honoring the environment override.
func DefaultClientIDPath() string {
	if p := os.Getenv(EnvClientIDPath); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, configDirName, clientIDFileName)
}

// Store persists a single credential record.
type Store interface {
	// Load returns the stored credential, ErrNotFound if none exists,
	// or ErrCorrupt if the record cannot be parsed.
	Load() (*Credential, error)
	// Save atomically replaces the stored credential.
	Save(*Credential) error
	// Invalidate marks the stored credential as unusable without
	// destroying it, so a rejected grant can still be inspected.
	Invalidate() error
}

// FileStore keeps the credential as a JSON file on disk. Writes go
// through a temp file in the same directory followed by a rename, so a
// crash mid-write never leaves a truncated record behind.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the given file path. An empty
// path falls back to DefaultCredentialsPath.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultCredentialsPath()
	}
	return &FileStore{path: path}
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (*Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading credential file: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if cred.AccessToken == "" && cred.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no tokens in record", ErrCorrupt)
	}
	return &cred, nil
}

func (s *FileStore) Save(cred *Credential) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*.json")
	if err != nil {
		return fmt.Errorf("creating temp credential file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting credential file mode: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credential file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing credential file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing credential file: %w", err)
	}
	return nil
}

func (s *FileStore) Invalidate() error {
	err := os.Rename(s.path, s.path+invalidatedSuffix)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("invalidating credential file: %w", err)
	}
	return nil
}

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// credentialFileName is the fixed key the credential is durably stored
// under, the client-side analog of a localStorage entry.
const credentialFileName = "credential.json"

// Keeper persists the session credential across runs. Load returns an
// empty string, not an error, when nothing is stored.
type Keeper interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

type storedCredential struct {
	Token string `json:"token"`
}

// FileKeeper keeps the credential in a single 0600 file under dir.
type FileKeeper struct {
	dir string
}

// NewFileKeeper uses dir, or <user home>/.pulseboard when dir is empty.
func NewFileKeeper(dir string) (*FileKeeper, error) {
	if dir == `` {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("session/keeper: can't find home directory, %w", err)
		}
		dir = filepath.Join(home, ".pulseboard")
	}
	return &FileKeeper{dir: dir}, nil
}

func (fk *FileKeeper) path() string {
	return filepath.Join(fk.dir, credentialFileName)
}

func (fk *FileKeeper) Load() (string, error) {
	data, err := os.ReadFile(fk.path())
	if errors.Is(err, fs.ErrNotExist) {
		return ``, nil
	}
	if err != nil {
		return ``, fmt.Errorf("session/keeper: failed reading credential file, %w", err)
	}

	cred := new(storedCredential)
	if err := json.Unmarshal(data, cred); err != nil {
		return ``, fmt.Errorf("session/keeper: failed parsing credential file, %w", err)
	}
	return cred.Token, nil
}

func (fk *FileKeeper) Save(token string) error {
	if err := os.MkdirAll(fk.dir, 0o700); err != nil {
		return fmt.Errorf("session/keeper: can't create credential directory, %w", err)
	}

	data, err := json.MarshalIndent(storedCredential{Token: token}, "", "  ")
	if err != nil {
		return fmt.Errorf("session/keeper: can't marshal credential, %w", err)
	}
	if err := os.WriteFile(fk.path(), data, 0o600); err != nil {
		return fmt.Errorf("session/keeper: can't write credential file, %w", err)
	}
	return nil
}

func (fk *FileKeeper) Clear() error {
	err := os.Remove(fk.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryKeeper holds the credential for the current run only. Used for the
// cookie transport (nothing to persist) and in tests.
type MemoryKeeper struct {
	mu    sync.Mutex
	token string
}

func NewMemoryKeeper() *MemoryKeeper {
	return &MemoryKeeper{}
}

func (mk *MemoryKeeper) Load() (string, error) {
	mk.mu.Lock()
	defer mk.mu.Unlock()
	return mk.token, nil
}

func (mk *MemoryKeeper) Save(token string) error {
	mk.mu.Lock()
	defer mk.mu.Unlock()
	mk.token = token
	return nil
}

func (mk *MemoryKeeper) Clear() error {
	mk.mu.Lock()
	defer mk.mu.Unlock()
	mk.token = ``
	return nil
}

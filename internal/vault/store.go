package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const fileVersion = 1

type envelope struct {
	Version int       `json:"version"`
	KDF     kdfParams `json:"kdf"`
	Salt    []byte    `json:"salt"`
	Data    []byte    `json:"data"`
}

// FileStore implements Provider on an argon2id/AES-256-GCM encrypted file.
type FileStore struct {
	mu    sync.RWMutex
	path  string
	key   []byte
	env   envelope
	creds map[string]Credential
}

// OpenFileStore opens the vault at path, or creates an empty one with a
// fresh salt when the file does not exist yet.
func OpenFileStore(path string, password []byte) (*FileStore, error) {
	s := &FileStore{path: path, creds: make(map[string]Credential)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		salt, err := newSalt()
		if err != nil {
			return nil, err
		}
		s.env = envelope{Version: fileVersion, KDF: defaultKDF, Salt: salt}
		s.key = s.env.KDF.derive(password, salt)
		return s, s.save()
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, &s.env); err != nil {
		return nil, fmt.Errorf("corrupt credential vault: %w", err)
	}
	if s.env.Version == 0 {
		s.env.Version = fileVersion
		s.env.KDF = defaultKDF
	}
	s.key = s.env.KDF.derive(password, s.env.Salt)

	plaintext, err := open(s.key, s.env.Data)
	if err != nil {
		return nil, ErrDecrypt
	}
	if err := json.Unmarshal(plaintext, &s.creds); err != nil {
		return nil, fmt.Errorf("corrupt credential data: %w", err)
	}
	return s, nil
}

// Path returns the vault file location.
func (s *FileStore) Path() string {
	return s.path
}

// save writes the vault through a temp file so a crash never leaves a
// truncated file behind.
func (s *FileStore) save() error {
	plaintext, err := json.Marshal(s.creds)
	if err != nil {
		return err
	}
	s.env.Data, err = seal(s.key, plaintext)
	if err != nil {
		return err
	}
	data, err := json.Marshal(s.env)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// List returns summaries of all stored credentials sorted by name.
func (s *FileStore) List() ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.creds))
	for _, c := range s.creds {
		out = append(out, c.Summarize())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns the named credential, or ErrNotFound.
func (s *FileStore) Get(name string) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.creds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return &c, nil
}

// Add stores a new credential. Returns ErrDuplicate if the name is taken.
func (s *FileStore) Add(c Credential) error {
	if err := c.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.creds[c.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, c.Name)
	}
	s.creds[c.Name] = c
	return s.save()
}

// Update replaces the named credential, renaming it if c.Name differs.
func (s *FileStore) Update(name string, c Credential) error {
	if err := c.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.creds[name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if name != c.Name {
		if _, taken := s.creds[c.Name]; taken {
			return fmt.Errorf("%w: %s", ErrDuplicate, c.Name)
		}
		delete(s.creds, name)
	}
	s.creds[c.Name] = c
	return s.save()
}

// Remove deletes the named credential.
func (s *FileStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.creds[name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(s.creds, name)
	return s.save()
}

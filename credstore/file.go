package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	profileFile = "profile.json"
	refreshFile = "refresh_credential"
)

// FileStore persists the record under a directory, one entry for the cached
// profile and one for the refresh credential, mirroring the two durable
// storage keys of the deployment. Writes go through a temp file and rename.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a FileStore rooted at dir, creating it when missing.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return &FileStore{dir: dir}, nil
}

type profileRecord struct {
	UserID              string `json:"user_id"`
	Email               string `json:"email"`
	SecondFactorEnabled bool   `json:"second_factor_enabled"`
}

func (s *FileStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile := profileRecord{
		UserID:              rec.UserID,
		Email:               rec.Email,
		SecondFactorEnabled: rec.SecondFactorEnabled,
	}
	encoded, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("%w: encode profile: %v", ErrBackend, err)
	}
	if err := s.writeFile(profileFile, encoded); err != nil {
		return err
	}
	return s.writeFile(refreshFile, []byte(rec.RefreshToken))
}

func (s *FileStore) Load(ctx context.Context) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profileRaw, err := os.ReadFile(filepath.Join(s.dir, profileFile))
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	refreshRaw, err := os.ReadFile(filepath.Join(s.dir, refreshFile))
	if errors.Is(err, os.ErrNotExist) {
		// Half a record is as unusable as a corrupt one.
		s.clearLocked()
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: %v", ErrBackend, err)
	}

	var profile profileRecord
	refresh := strings.TrimSpace(string(refreshRaw))
	if err := json.Unmarshal(profileRaw, &profile); err != nil || profile.UserID == "" || refresh == "" {
		s.clearLocked()
		return Record{}, false, nil
	}

	return Record{
		UserID:              profile.UserID,
		Email:               profile.Email,
		SecondFactorEnabled: profile.SecondFactorEnabled,
		RefreshToken:        refresh,
	}, true, nil
}

func (s *FileStore) UpdateRefreshToken(ctx context.Context, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(filepath.Join(s.dir, profileFile)); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return s.writeFile(refreshFile, []byte(refreshToken))
}

func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	return nil
}

func (s *FileStore) clearLocked() {
	_ = os.Remove(filepath.Join(s.dir, profileFile))
	_ = os.Remove(filepath.Join(s.dir, refreshFile))
}

// writeFile writes via a temp file then rename so a crashed write never
// leaves a truncated entry behind.
func (s *FileStore) writeFile(name string, data []byte) error {
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)

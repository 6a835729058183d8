package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"commutecast/internal/modules/session/domain"
	sessionout "commutecast/internal/modules/session/port/out"
	apperrors "commutecast/internal/platform/errors"
)

type activeFile struct {
	SchemaVersion int          `json:"schema_version"`
	State         domain.State `json:"state"`
}

type FileActiveSessionStore struct {
	path string
}

func NewFileActiveSessionStore(dataDir string) sessionout.ActiveSessionStore {
	return &FileActiveSessionStore{path: filepath.Join(dataDir, "playback.json")}
}

func (s *FileActiveSessionStore) SaveActive(_ context.Context, state domain.State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create playback dir: %w", err)
	}
	payload, err := json.MarshalIndent(activeFile{SchemaVersion: domain.SchemaVersion, State: state}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal playback state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write playback state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace playback state: %w", err)
	}
	return nil
}

func (s *FileActiveSessionStore) LoadActive(_ context.Context) (domain.State, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.State{}, apperrors.ErrNoActiveSession
		}
		return domain.State{}, fmt.Errorf("read playback state: %w", err)
	}
	file := activeFile{}
	if err := json.Unmarshal(payload, &file); err != nil {
		return domain.State{}, fmt.Errorf("decode playback state: %w", err)
	}
	if file.State.Status == "" {
		return domain.State{}, apperrors.ErrNoActiveSession
	}
	return file.State, nil
}

func (s *FileActiveSessionStore) ClearActive(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear playback state: %w", err)
	}
	return nil
}

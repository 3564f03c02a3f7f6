package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/stat9k/Cluedo-Text/game/service"
)

const sessionFileExt = ".json"

// FilePersistence stores each session as <id>.json in one directory. Writes
// go to a temporary file first so a reader never sees half a game.
type FilePersistence struct {
	dir     string
	configs service.ConfigManager
}

// NewFilePersistence creates dir if needed
func NewFilePersistence(dir string, configs service.ConfigManager) (*FilePersistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &FilePersistence{dir: dir, configs: configs}, nil
}

func (fp *FilePersistence) path(id string) (string, error) {
	if err := ValidateSessionID(id); err != nil {
		return "", err
	}
	return filepath.Join(fp.dir, strings.ToLower(id)+sessionFileExt), nil
}

func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	target, err := fp.path(session.ID)
	if err != nil {
		return err
	}

	data, err := snapshot(session, fp.configs)
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	tmp, err := os.CreateTemp(fp.dir, "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	_, werr := tmp.Write(encoded)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	target, err := fp.path(id)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSessionNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", id, err)
	}
	return restore(&data, fp.configs)
}

func (fp *FilePersistence) Delete(id string) error {
	target, err := fp.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(target); errors.Is(err, fs.ErrNotExist) {
		return ErrSessionNotFound
	} else if err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// ListAll returns the IDs of every stored session. Temporary files left by
// an interrupted Save are skipped.
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != sessionFileExt {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, sessionFileExt))
	}
	return ids, nil
}

func (fp *FilePersistence) Exists(id string) bool {
	target, err := fp.path(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(target)
	return err == nil
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Session remembers which save file the one-shot commands operate on.
type Session struct {
	SavePath  string    `json:"save_path"`
	GameID    string    `json:"game_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

var ErrNoSession = errors.New("no active game: run `rigtycoon new` or `rigtycoon load <file>`")

func sessionPath(home string) (string, error) {
	if err := os.MkdirAll(home, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(home, "session.json"), nil
}

// DefaultSavePath is where `new` writes when no path is given.
func DefaultSavePath(home string) string {
	return filepath.Join(home, "saves", "current.json")
}

func SaveSession(home string, s Session) error {
	path, err := sessionPath(home)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(s.SavePath)
	if err != nil {
		return err
	}
	s.SavePath = abs
	s.UpdatedAt = time.Now().UTC()
	body, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o600)
}

func LoadSession(home string) (Session, error) {
	path, err := sessionPath(home)
	if err != nil {
		return Session{}, err
	}
	body, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return Session{}, fmt.Errorf("session file %s: %w", path, err)
	}
	if strings.TrimSpace(s.SavePath) == "" {
		return Session{}, ErrNoSession
	}
	return s, nil
}

func ClearSession(home string) error {
	path, err := sessionPath(home)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return os.Remove(path)
}

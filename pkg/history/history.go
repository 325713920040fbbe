// Package history is a file-backed undo/redo store for processed images,
// keyed by a client-chosen session ID. Every pushed state is a timestamped
// PNG; pushing a new state clears the redo stack, undo moves the newest
// state onto the redo stack, redo moves it back.
package history

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/pixgonz/pixgonz/pkg/raster"
)

const statePrefix = "state_"

// Store manages per-session undo/redo stacks under a base directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to create history directory %s", dir)
	}
	return &Store{dir: dir}, nil
}

// NewSessionID returns a fresh session identifier for clients that do not
// bring their own.
func NewSessionID() string {
	return uuid.NewString()
}

// Push appends img to the session's undo stack and clears the redo stack.
func (s *Store) Push(sessionID string, img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	undoDir, redoDir, err := s.sessionDirs(sessionID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(undoDir, 0o755); err != nil {
		return pkgerrors.Wrap(err, "failed to create undo directory")
	}
	if err := os.RemoveAll(redoDir); err != nil {
		return pkgerrors.Wrap(err, "failed to clear redo stack")
	}

	encoded, err := raster.EncodePNG(img)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to encode history state")
	}

	name := fmt.Sprintf("%s%d.png", statePrefix, time.Now().UnixNano())
	if err := os.WriteFile(filepath.Join(undoDir, name), encoded, 0o644); err != nil {
		return pkgerrors.Wrap(err, "failed to write history state")
	}
	return nil
}

// Undo moves the newest undo state onto the redo stack and returns the
// state that is now on top of the undo stack. It returns nil when there is
// nothing left to undo to.
func (s *Store) Undo(sessionID string) (*image.NRGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	undoDir, redoDir, err := s.sessionDirs(sessionID)
	if err != nil {
		return nil, err
	}

	states, err := listStates(undoDir)
	if err != nil || len(states) == 0 {
		return nil, err
	}

	last := states[len(states)-1]
	if err := os.MkdirAll(redoDir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create redo directory")
	}
	if err := os.Rename(filepath.Join(undoDir, last), filepath.Join(redoDir, last)); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to move state to redo stack")
	}

	remaining := states[:len(states)-1]
	if len(remaining) == 0 {
		return nil, nil
	}
	return loadState(filepath.Join(undoDir, remaining[len(remaining)-1]))
}

// Redo moves the newest redo state back onto the undo stack and returns it.
// It returns nil when there is nothing to redo.
func (s *Store) Redo(sessionID string) (*image.NRGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	undoDir, redoDir, err := s.sessionDirs(sessionID)
	if err != nil {
		return nil, err
	}

	states, err := listStates(redoDir)
	if err != nil || len(states) == 0 {
		return nil, err
	}

	last := states[len(states)-1]
	if err := os.MkdirAll(undoDir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create undo directory")
	}
	target := filepath.Join(undoDir, last)
	if err := os.Rename(filepath.Join(redoDir, last), target); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to move state to undo stack")
	}
	return loadState(target)
}

// Prune deletes sessions whose newest state is older than maxAge. It
// returns the number of removed sessions.
func (s *Store) Prune(maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(err, "failed to read history directory")
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sessionDir := filepath.Join(s.dir, entry.Name())
		newest, err := newestStateTime(sessionDir)
		if err != nil {
			continue
		}
		if newest.Before(cutoff) {
			if err := os.RemoveAll(sessionDir); err != nil {
				return removed, pkgerrors.Wrapf(err, "failed to remove session %s", entry.Name())
			}
			removed++
		}
	}
	return removed, nil
}

func (s *Store) sessionDirs(sessionID string) (undoDir, redoDir string, err error) {
	id := strings.TrimSpace(sessionID)
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", "", pkgerrors.Errorf("invalid session id %q", sessionID)
	}
	base := filepath.Join(s.dir, id)
	return filepath.Join(base, "undo"), filepath.Join(base, "redo"), nil
}

func listStates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "failed to list history states")
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, statePrefix) && strings.HasSuffix(name, ".png") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func loadState(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to open history state")
	}
	defer f.Close()
	return raster.Decode(f)
}

func newestStateTime(sessionDir string) (time.Time, error) {
	var newest time.Time
	found := false
	for _, stack := range []string{"undo", "redo"} {
		entries, err := os.ReadDir(filepath.Join(sessionDir, stack))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(newest) {
				newest = info.ModTime()
				found = true
			}
		}
	}
	if !found {
		return time.Time{}, pkgerrors.New("no states in session")
	}
	return newest, nil
}

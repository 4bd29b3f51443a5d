package orchestrator

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// slot is the working directory one invocation runs in and the plot.png inside it.
type slot struct {
	dir       string
	ephemeral bool
}

func (s *slot) artifactPath() string {
	return filepath.Join(s.dir, ArtifactName)
}

// openSlot prepares the directory and removes any leftover artifact, so a failed
// or text-only turn can never pick up an older image.
func openSlot(root, requestID string, perRequest bool) (*slot, error) {
	s := &slot{dir: root}
	if perRequest {
		s.dir = filepath.Join(root, requestID)
		s.ephemeral = true
	}

	abs, err := filepath.Abs(s.dir)
	if err != nil {
		return nil, fmt.Errorf("resolve work dir: %w", err)
	}
	s.dir = abs

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	if err := os.Remove(s.artifactPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale artifact: %w", err)
	}
	return s, nil
}

// exists reports whether the agent left a non-empty artifact behind.
func (s *slot) exists() bool {
	info, err := os.Stat(s.artifactPath())
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

func (s *slot) encode() (string, error) {
	data, err := os.ReadFile(s.artifactPath())
	if err != nil {
		return "", fmt.Errorf("read artifact: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// release drops per-request directories; the shared directory is left for the
// next invocation's cleanup.
func (s *slot) release() error {
	if !s.ephemeral {
		return nil
	}
	return os.RemoveAll(s.dir)
}

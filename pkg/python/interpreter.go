package python

import (
	"errors"
	"os"
	"os/exec"
)

var ErrPythonNotFound = errors.New("python interpreter not found; set PYTHON_PATH")

// FindInterpreter picks an interpreter: the configured path if it exists, else python3, else python.
func FindInterpreter(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
		if path, err := exec.LookPath(configured); err == nil {
			return path, nil
		}
		return "", ErrPythonNotFound
	}

	for _, name := range []string{"python3", "python"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrPythonNotFound
}

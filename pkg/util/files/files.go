package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

func Exists(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return true, nil
	} else if os.IsNotExist(err) {
		return false, nil
	} else {
		return false, fmt.Errorf("Failed to determine if %s exists: %w", path, err)
	}
}

func IsDir(path string) (bool, error) {
	file, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return file.Mode().IsDir(), nil
}

// ExpandUser resolves a leading ~ to the user's home directory.
func ExpandUser(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("Failed to expand %s: %w", path, err)
	}
	return expanded, nil
}

// WriteIfDifferent writes content to file unless the file already holds
// exactly that content, so the modification time of an up to date Dockerfile
// doesn't change. It reports whether the file was written.
func WriteIfDifferent(file, content string) (bool, error) {
	file, err := ExpandUser(file)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(file); err == nil {
		bs, err := os.ReadFile(file)
		if err != nil {
			return false, err
		}
		if string(bs) == content {
			return false, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return false, fmt.Errorf("Failed to create directory for %s: %w", file, err)
	}
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

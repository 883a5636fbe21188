package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// DataDir is the directory created by "noteblocks init" inside a project.
const DataDir = ".noteblocks"

// ErrNoRoot is returned by FindRoot when no data directory exists above the start.
var ErrNoRoot = errors.New("no noteblocks data directory found")

// FindRoot walks upwards from startDir and returns the first directory that holds a
// noteblocks.yaml file, or the .noteblocks directory of the first ancestor having one.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigFile) {
			return dir, nil
		}
		if hasFile(dir, DataDir) {
			return filepath.Join(dir, DataDir), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrNoRoot
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

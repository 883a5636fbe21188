package platform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MediaDir removes media files stored under a directory.
type MediaDir string

// Release implements core.MediaReleaser. Paths are relative to the directory; paths
// escaping it are refused and missing files are ignored.
func (d MediaDir) Release(ctx context.Context, paths []string) error {
	root := filepath.Clean(string(d))
	var errs []error
	for _, p := range paths {
		full := filepath.Join(root, p)
		if !strings.HasPrefix(full, root+string(filepath.Separator)) {
			errs = append(errs, fmt.Errorf("media path %q escapes %s", p, root))
			continue
		}
		if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

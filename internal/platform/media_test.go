package platform

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaDir_Release(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "media")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "img"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img", "a.png"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "outside.txt"), []byte("keep"), 0644))

	err := MediaDir(dir).Release(context.Background(), []string{"img/a.png", "missing.png"})
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "img", "a.png"))

	err = MediaDir(dir).Release(context.Background(), []string{"../outside.txt", "."})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")
	assert.FileExists(t, filepath.Join(root, "outside.txt"))
}

package artifactstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"utitriage/domain/artifacts"
	"utitriage/internal"
	"utitriage/internal/errors"
	"utitriage/internal/testkit"
)

func quietStore(dir string) *FileStore {
	return NewFileStore(dir, internal.NewLogger(internal.LogLevelError))
}

func TestFileStoreLoadsDemoBundle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bundle-7")
	require.NoError(t, testkit.WriteDir(dir))

	set, err := quietStore(dir).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bundle-7", set.Version())
	assert.Equal(t, artifacts.ClassifierOrder, set.ClassifierNames())
}

func TestFileStoreChecksumMatchesBundle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, testkit.WriteDir(dir))

	a, err := quietStore(dir).Load(context.Background())
	require.NoError(t, err)
	b, err := quietStore(dir).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a.Checksum(), b.Checksum())
}

func TestFileStoreMissingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, testkit.WriteDir(dir))
	require.NoError(t, os.Remove(filepath.Join(dir, "xgb_model.json")))

	_, err := quietStore(dir).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeArtifactLoadFailed))
	assert.Contains(t, err.Error(), "xgb_model.json")
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, testkit.WriteDir(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scaler.json"), []byte("not json"), 0o644))

	_, err := quietStore(dir).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeArtifactLoadFailed))
	assert.Contains(t, err.Error(), "scaler")
}

func TestFileStoreMissingDirectory(t *testing.T) {
	_, err := quietStore(filepath.Join(t.TempDir(), "nope")).Load(context.Background())
	assert.True(t, errors.HasCode(err, errors.CodeArtifactLoadFailed))
}

package diskconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	content := "workers: 4\nignorePrefixes:\n  - wip\n  - scratch\nslugMaxLength: 20\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Workers:        4,
		IgnorePrefixes: []string{"wip", "scratch"},
		SlugMaxLength:  20,
	}, cfg)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("workers: [this is not an int"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestMergeOverlaysNonZeroFields(t *testing.T) {
	base := Config{Workers: 2, IgnorePrefixes: []string{"wip"}, SlugMaxLength: 48}
	override := Config{Workers: 8}

	got := Merge(base, override)
	assert.Equal(t, Config{Workers: 8, IgnorePrefixes: []string{"wip"}, SlugMaxLength: 48}, got)
}

func TestMergeZeroOverrideKeepsBase(t *testing.T) {
	base := Config{Workers: 2, IgnorePrefixes: []string{"wip"}, SlugMaxLength: 48}
	got := Merge(base, Config{})
	assert.Equal(t, base, got)
}

func TestMergeAllFieldsOverridden(t *testing.T) {
	base := Config{Workers: 2, IgnorePrefixes: []string{"wip"}, SlugMaxLength: 48}
	override := Config{Workers: 8, IgnorePrefixes: []string{"scratch"}, SlugMaxLength: 10}
	assert.Equal(t, override, Merge(base, override))
}

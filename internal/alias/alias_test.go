package alias

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// mapSource is a fixed, in-memory [Source] for testing [Expand] without
// going through git config.
type mapSource map[string][]string

func (s mapSource) Expand(arg string) ([]string, bool) {
	v, ok := s[arg]
	return v, ok
}

func TestExpandNoAlias(t *testing.T) {
	src := mapSource{}
	got := Expand(src, []string{"sync", "--branch", "main"})
	assert.Equal(t, []string{"sync", "--branch", "main"}, got)
}

func TestExpandSimple(t *testing.T) {
	src := mapSource{"s": {"sync", "--branch", "main"}}
	got := Expand(src, []string{"s", "--dry-run"})
	assert.Equal(t, []string{"sync", "--branch", "main", "--dry-run"}, got)
}

func TestExpandChained(t *testing.T) {
	src := mapSource{
		"s":  {"sync"},
		"sync": {"sync-real", "--branch", "main"},
	}
	got := Expand(src, []string{"s"})
	assert.Equal(t, []string{"sync-real", "--branch", "main"}, got)
}

func TestExpandStopsOnSelfReference(t *testing.T) {
	src := mapSource{"loop": {"loop", "--flag"}}
	got := Expand(src, []string{"loop"})
	assert.Equal(t, []string{"loop", "--flag"}, got)
}

func TestExpandStopsOnCycle(t *testing.T) {
	src := mapSource{
		"a": {"b"},
		"b": {"a"},
	}
	got := Expand(src, []string{"a"})
	assert.Equal(t, []string{"a"}, got)
}

func TestExpandEmptyArgs(t *testing.T) {
	src := mapSource{}
	got := Expand(src, nil)
	assert.Empty(t, got)
}

func TestExpandToEmpty(t *testing.T) {
	src := mapSource{"noop": {}}
	got := Expand(src, []string{"noop"})
	assert.Empty(t, got)
}

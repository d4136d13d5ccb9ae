package main

import (
	"flag"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/develar/branch-deck/internal/git/gittest"
	"github.com/develar/branch-deck/internal/termtest"
)

var _update = flag.Bool("update", false, "update golden files")

func TestMain(m *testing.M) {
	testscript.RunMain(m, map[string]func() int{
		"branchdeck": func() int {
			main()
			return 0
		},
		"with-term": termtest.WithTerm,
	})
}

// TestScript drives cmd/branchdeck end-to-end against throwaway
// repositories built by testscript files under testdata/script. Scripts
// that exercise the interactive progress view (progressview.go) do so
// through "with-term", which runs the command inside a real pty and
// lets the script assert on rendered terminal output rather than raw
// bytes.
func TestScript(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:                filepath.Join("testdata", "script"),
		UpdateScripts:      *_update,
		RequireUniqueNames: true,
		Setup: func(e *testscript.Env) error {
			// GIT_CONFIG_KEY_<n>/GIT_CONFIG_VALUE_<n> set global Git
			// config values without touching the real user config.
			var n int
			for k, v := range gittest.DefaultConfig() {
				e.Setenv("GIT_CONFIG_KEY_"+strconv.Itoa(n), k)
				e.Setenv("GIT_CONFIG_VALUE_"+strconv.Itoa(n), v)
				n++
			}
			e.Setenv("GIT_CONFIG_COUNT", strconv.Itoa(n))
			return nil
		},
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"git": gittest.CmdGit,
			"as":  gittest.CmdAs,
			"at":  gittest.CmdAt,
		},
	})
}

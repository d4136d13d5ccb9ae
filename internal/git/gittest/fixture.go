// Package gittest provides utilities for building throwaway Git
// repositories from testscript files, for use in tests that need a
// real `git` binary rather than a mocked execer.
package gittest

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rogpeppe/go-internal/testscript"
	"github.com/develar/branch-deck/internal/must"
	"github.com/develar/branch-deck/internal/osutil"
)

// Fixture is a temporary directory containing a Git repository built
// from a testscript file.
type Fixture struct {
	dir string
}

// Cleanup removes the fixture's temporary directory.
func (f *Fixture) Cleanup() { _ = os.RemoveAll(f.dir) }

// Dir returns the fixture's repository directory.
func (f *Fixture) Dir() string { return f.dir }

// LoadFixtureFile loads a fixture from a testscript file at path: a
// script of `git` commands (plus the `as`/`at` helpers) that build up a
// repository in a temporary directory.
func LoadFixtureFile(path string) (_ *Fixture, err error) {
	globalConfigPath, err := osutil.TempFilePath("", "gittest-gitconfig-")
	if err != nil {
		return nil, fmt.Errorf("create global config: %w", err)
	}
	defer func() { _ = os.Remove(globalConfigPath) }()
	if err := DefaultConfig().WriteTo(globalConfigPath); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}

	defaultEnv := map[string]string{
		"EDITOR":             "false",
		"GIT_CONFIG_GLOBAL":  globalConfigPath,
		"GIT_CONFIG_NOSYSTEM": "1",
		"GIT_AUTHOR_NAME":     "Test",
		"GIT_AUTHOR_EMAIL":    "test@example.com",
		"GIT_COMMITTER_NAME":  "Test",
		"GIT_COMMITTER_EMAIL": "test@example.com",
	}

	var (
		t          fakeT
		fixtureDir string
	)

	// Run in a separate goroutine so FailNow/Skip can call
	// runtime.Goexit without tearing down this goroutine.
	done := make(chan struct{})
	go func() {
		defer close(done)

		testscript.RunT(&t, testscript.Params{
			Files:              []string{path},
			TestWork:           true, // keep the work dir after the run
			RequireUniqueNames: true,
			Setup: func(e *testscript.Env) error {
				for k, v := range defaultEnv {
					e.Setenv(k, v)
				}
				fixtureDir = e.WorkDir
				return nil
			},
			Cmds: map[string]func(*testscript.TestScript, bool, []string){
				"git": CmdGit,
				"as":  CmdAs,
				"at":  CmdAt,
			},
		})
	}()
	<-done

	if t.skipped || t.failed || t.fatal {
		return nil, fmt.Errorf("testscript failed or was skipped:\n%s", t.msgs.String())
	}

	must.NotBeBlankf(fixtureDir, "fixtureDir must not be blank")
	if _, err := os.Stat(fixtureDir); err != nil {
		must.Failf("fixtureDir must exist: %v", err)
	}

	return &Fixture{dir: fixtureDir}, nil
}

// LoadFixtureScript is [LoadFixtureFile] for an inline script rather
// than a file on disk.
func LoadFixtureScript(script []byte) (_ *Fixture, err error) {
	tmpDir, err := os.MkdirTemp("", "gittest-fixture-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	tmpScript := filepath.Join(tmpDir, "test.txt")
	if err := os.WriteFile(tmpScript, script, 0o644); err != nil {
		return nil, fmt.Errorf("write script: %w", err)
	}

	return LoadFixtureFile(tmpScript)
}

// fakeT implements testscript.T so a testscript run can be driven
// without creating Go subtests of its own.
type fakeT struct {
	fatal   bool
	failed  bool
	skipped bool
	msgs    strings.Builder
}

var _ testscript.T = (*fakeT)(nil)

func (*fakeT) Parallel()                              {}
func (f *fakeT) Run(_ string, run func(testscript.T)) { run(f) }

func (f *fakeT) FailNow() {
	f.fatal = true
	f.failed = true
	runtime.Goexit()
}

func (f *fakeT) Fatal(args ...any) {
	fmt.Fprintln(&f.msgs, fmt.Sprint(args...))
	f.FailNow()
}

func (f *fakeT) Log(args ...any) {
	fmt.Fprintln(&f.msgs, fmt.Sprint(args...))
}

func (f *fakeT) Skip(args ...any) {
	f.skipped = true
	fmt.Fprintln(&f.msgs, fmt.Sprint(args...))
	runtime.Goexit()
}

func (f *fakeT) Verbose() bool { return false }

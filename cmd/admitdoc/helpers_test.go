package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-admitdoc/internal/config"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Environment and prompter
// ---------------------------------------------------------------------------

// fixedNow is the clock of every CLI test.
var fixedNow = time.Date(2026, 10, 17, 14, 30, 0, 0, time.UTC)

// testEnv is an Environment whose paths all live under a temp dir.
type testEnv struct {
	*Environment
	dir    string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestEnv returns an environment with no override file, a store and an
// output directory under t.TempDir(), and a fixed clock.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Templates.OverrideFile = ""
	cfg.Templates.StorePath = filepath.Join(dir, "store", "templates.db")
	cfg.Images.BaseDir = filepath.Join(dir, "images")
	cfg.Output.DefaultDir = filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	return &testEnv{
		Environment: &Environment{
			Now:      func() time.Time { return fixedNow },
			Stdin:    strings.NewReader(""),
			Stdout:   &stdout,
			Stderr:   &stderr,
			Prompter: &scriptedPrompter{},
			Config:   cfg,
		},
		dir:    dir,
		stdout: &stdout,
		stderr: &stderr,
	}
}

// run invokes runMain with the program name prepended.
func (e *testEnv) run(args ...string) int {
	return runMain(append([]string{"admitdoc"}, args...), e.Environment)
}

// scriptedPrompter answers prompts from fixed lists.
type scriptedPrompter struct {
	inputs  []string
	selects []int
	err     error // returned by every call when set

	inputCalls  int
	selectCalls int
}

func (p *scriptedPrompter) Input(_ context.Context, _, _ string, validate func(string) error) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	answer := p.inputs[p.inputCalls]
	p.inputCalls++
	if validate != nil {
		if err := validate(answer); err != nil {
			return "", err
		}
	}
	return answer, nil
}

func (p *scriptedPrompter) Select(_ context.Context, _ string, _ []string) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	answer := p.selects[p.selectCalls]
	p.selectCalls++
	return answer, nil
}

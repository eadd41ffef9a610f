package main

// Notes:
// - Whether the SQLite cache opens depends on cgo, so tests accept "ready"
//   and "warnings" where only the cache could differ.
// - Failing checks are provoked with files under t.TempDir(): an invalid
//   defaults directory, a broken override file, a missing header image.

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/alnah/go-admitdoc/internal/assets"
	"github.com/alnah/go-admitdoc/internal/templatestore"
)

func runDoctorJSON(t *testing.T, env *testEnv, args ...string) (int, *doctorResult) {
	t.Helper()
	code := env.run(append([]string{"doctor", "--json"}, args...)...)
	var r doctorResult
	if err := json.Unmarshal(env.stdout.Bytes(), &r); err != nil {
		t.Fatalf("decoding doctor JSON: %v\n%s", err, env.stdout.String())
	}
	return code, &r
}

func containsPrefix(list []string, prefix string) bool {
	return slices.ContainsFunc(list, func(s string) bool { return strings.HasPrefix(s, prefix) })
}

// ---------------------------------------------------------------------------
// TestRunDoctor - Setup diagnostics
// ---------------------------------------------------------------------------

func TestRunDoctor(t *testing.T) {
	t.Parallel()

	t.Run("defaults with existing output dir", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		if err := os.MkdirAll(env.Config.Output.DefaultDir, 0o755); err != nil {
			t.Fatal(err)
		}

		code, r := runDoctorJSON(t, env)
		if code != ExitSuccess {
			t.Fatalf("exit code = %d, errors: %v", code, r.Errors)
		}
		if r.Status != statusReady && r.Status != statusWarnings {
			t.Errorf("status = %q", r.Status)
		}
		if !r.Config.Valid || r.Config.Path != "" {
			t.Errorf("config = %+v, want valid built-in defaults", r.Config)
		}
		if r.Templates.Override != "unset" || r.Templates.Defaults != "built-in" {
			t.Errorf("templates = %+v", r.Templates)
		}
		if !r.System.OutputWritable {
			t.Error("output dir should be writable")
		}
		entries, err := os.ReadDir(env.Config.Output.DefaultDir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("doctor left %d file(s) in the output dir", len(entries))
		}
	})

	t.Run("missing output dir is a warning", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		code, r := runDoctorJSON(t, env)
		if code != ExitSuccess {
			t.Fatalf("exit code = %d", code)
		}
		if r.Status != statusWarnings || !containsPrefix(r.Warnings, "Output directory") {
			t.Errorf("status = %q, warnings = %v", r.Status, r.Warnings)
		}
	})

	t.Run("missing header image", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		writeOverride(t, env, &templatestore.Config{
			Voluntary:   &templatestore.Entry{HeaderImage: assets.StoredFilename("logo.png")},
			Involuntary: &templatestore.Entry{HeaderImage: assets.InlinePayload(pngBytes(t), assets.FormatPNG)},
		})

		code, r := runDoctorJSON(t, env)
		if code != ExitSuccess {
			t.Fatalf("exit code = %d, errors: %v", code, r.Errors)
		}
		if r.Templates.Override != "valid" {
			t.Errorf("override = %q, want valid", r.Templates.Override)
		}
		if !containsPrefix(r.Warnings, "voluntaria header image") {
			t.Errorf("warnings = %v", r.Warnings)
		}
		if len(r.Images) != 2 {
			t.Fatalf("images = %+v", r.Images)
		}
		if r.Images[0].Loaded {
			t.Error("stored image should not load")
		}
		if img := r.Images[1]; !img.Loaded || img.Format != "PNG" || img.Width != 4 || img.Height != 2 {
			t.Errorf("inline image = %+v", img)
		}
	})

	t.Run("broken override file", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		path := filepath.Join(env.dir, "templates.json")
		if err := os.WriteFile(path, []byte(`{"voluntaria": {}}`), 0o644); err != nil {
			t.Fatal(err)
		}
		env.Config.Templates.OverrideFile = path

		code, r := runDoctorJSON(t, env)
		if code != ExitSuccess {
			t.Fatalf("exit code = %d", code)
		}
		if r.Templates.Override != "invalid" || !containsPrefix(r.Warnings, "Override file ignored") {
			t.Errorf("templates = %+v, warnings = %v", r.Templates, r.Warnings)
		}
	})

	t.Run("invalid defaults dir fails", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.Config.Templates.DefaultsDir = filepath.Join(env.dir, "no-such-dir")

		code, r := runDoctorJSON(t, env)
		if code != ExitGeneral {
			t.Fatalf("exit code = %d, want %d", code, ExitGeneral)
		}
		if r.Status != statusErrors || !containsPrefix(r.Errors, "Default templates directory") {
			t.Errorf("status = %q, errors = %v", r.Status, r.Errors)
		}
	})

	t.Run("human output", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		if code := env.run("doctor"); code != ExitSuccess {
			t.Fatalf("exit code = %d", code)
		}
		for _, want := range []string{"admitdoc doctor", "Configuration", "[OK] Built-in defaults", "Templates", "System", "Status: Ready"} {
			if !strings.Contains(env.stdout.String(), want) {
				t.Errorf("output should contain %q, got:\n%s", want, env.stdout.String())
			}
		}
	})

	t.Run("unexpected argument", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		if code := env.run("doctor", "now"); code != ExitUsage {
			t.Errorf("exit code = %d, want %d", code, ExitUsage)
		}
	})
}

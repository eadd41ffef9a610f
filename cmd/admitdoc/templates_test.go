package main

// Notes:
// - The SQLite cache needs cgo; without it the commands warn and fall back
//   to the built-in texts, which is what most tests here rely on. Import
//   round trips live in templates_cgo_test.go.
// - Header images are tiny PNGs encoded in memory; export-images must write
//   their bytes unchanged.

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-admitdoc/internal/assets"
	"github.com/alnah/go-admitdoc/internal/templatestore"
)

// pngBytes returns a small valid PNG.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// writeOverride writes cfg as an override file and points env at it.
func writeOverride(t *testing.T, env *testEnv, cfg *templatestore.Config) string {
	t.Helper()
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(env.dir, "templates.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	env.Config.Templates.OverrideFile = path
	return path
}

// ---------------------------------------------------------------------------
// TestTemplatesShow - Active configuration display
// ---------------------------------------------------------------------------

func TestTemplatesShow(t *testing.T) {
	t.Parallel()

	t.Run("defaults for one type", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		if code := env.run("templates", "show", "-t", "voluntaria"); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, env.stderr.String())
		}
		out := env.stdout.String()
		for _, want := range []string{
			"== Leitura de Normas - Internação Voluntária (voluntaria)",
			"Header image: none",
			"Bold phrases: none",
			"Content:",
			"{{NOME_PACIENTE}}",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output should contain %q, got:\n%s", want, out)
			}
		}
		if strings.Contains(out, "(involuntaria)") {
			t.Error("output should only show the selected type")
		}
	})

	t.Run("override file with image and bold phrases", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		writeOverride(t, env, &templatestore.Config{
			Voluntary: &templatestore.Entry{
				Content:     "Paciente: {{NOME_PACIENTE}}\nRegras da unidade.",
				HeaderImage: assets.StoredFilename("logo.png"),
				BoldTexts:   []string{"Regras da unidade"},
			},
			Involuntary: &templatestore.Entry{
				HeaderImage: assets.InlinePayload(pngBytes(t), assets.FormatPNG),
			},
		})

		if code := env.run("templates", "show", "-q"); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, env.stderr.String())
		}
		out := env.stdout.String()
		for _, want := range []string{
			"Header image: logo.png",
			"  - Regras da unidade",
			"Regras da unidade.",
			"(involuntaria)",
			"Header image: inline PNG (",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output should contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		if code := env.run("templates", "show", "-t", "eletiva"); code != ExitUsage {
			t.Errorf("exit code = %d, want %d", code, ExitUsage)
		}
	})
}

// ---------------------------------------------------------------------------
// TestTemplatesExport - Bundle output
// ---------------------------------------------------------------------------

func TestTemplatesExport(t *testing.T) {
	t.Parallel()

	t.Run("to file", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		path := filepath.Join(env.dir, "bundle.json")
		if code := env.run("templates", "export", "-o", path); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, env.stderr.String())
		}
		if !strings.Contains(env.stdout.String(), "Exported "+path) {
			t.Errorf("stdout = %q", env.stdout.String())
		}

		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		defer func() { _ = f.Close() }()
		b, err := templatestore.DecodeBundle(f)
		if err != nil {
			t.Fatalf("exported bundle should decode: %v", err)
		}
		if b.Version != templatestore.BundleVersion {
			t.Errorf("version = %q, want %q", b.Version, templatestore.BundleVersion)
		}
		if b.ExportDate != "2026-10-17T14:30:00.000Z" {
			t.Errorf("exportDate = %q", b.ExportDate)
		}
		if !strings.Contains(b.Config.Voluntary.Content, "LEITURA DE NORMAS") {
			t.Errorf("voluntary content = %q", b.Config.Voluntary.Content)
		}
	})

	t.Run("default filename in output dir", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		if code := env.run("templates", "export", "-q"); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, env.stderr.String())
		}
		want := filepath.Join(env.Config.Output.DefaultDir, "config_templates_2026-10-17.json")
		if _, err := os.Stat(want); err != nil {
			t.Errorf("expected %s: %v", want, err)
		}
	})

	t.Run("to stdout", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		if code := env.run("templates", "export", "-o", "-"); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, env.stderr.String())
		}
		if _, err := templatestore.DecodeBundle(env.stdout); err != nil {
			t.Errorf("stdout should hold a bundle: %v", err)
		}
	})

	t.Run("extra argument", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		if code := env.run("templates", "export", "bundle.json"); code != ExitUsage {
			t.Errorf("exit code = %d, want %d", code, ExitUsage)
		}
	})
}

// ---------------------------------------------------------------------------
// TestTemplatesPublish - Override file output
// ---------------------------------------------------------------------------

func TestTemplatesPublish(t *testing.T) {
	t.Parallel()

	t.Run("writes a loadable override file and its images", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		img := pngBytes(t)
		writeOverride(t, env, &templatestore.Config{
			Voluntary:   &templatestore.Entry{HeaderImage: assets.InlinePayload(img, assets.FormatPNG)},
			Involuntary: &templatestore.Entry{},
		})
		path := filepath.Join(env.dir, "published", "templates.json")

		if code := env.run("templates", "publish", "-o", path); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, env.stderr.String())
		}
		if !strings.Contains(env.stdout.String(), "Published "+path) {
			t.Errorf("stdout = %q", env.stdout.String())
		}

		cfg, err := (&templatestore.FileSource{Path: path}).Load(t.Context())
		if err != nil {
			t.Fatalf("published file should load: %v", err)
		}
		if got := cfg.Voluntary.HeaderImage.Name(); got != "cabecalho_voluntaria.png" {
			t.Errorf("header image = %q, want stored filename", got)
		}
		written, err := os.ReadFile(filepath.Join(env.Config.Images.BaseDir, "cabecalho_voluntaria.png"))
		if err != nil {
			t.Fatalf("image should be written to the base dir: %v", err)
		}
		if !bytes.Equal(written, img) {
			t.Error("written image differs from the inline payload")
		}
	})

	t.Run("no destination", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		if code := env.run("templates", "publish"); code != ExitUsage {
			t.Errorf("exit code = %d, want %d", code, ExitUsage)
		}
		if !strings.Contains(env.stderr.String(), "no override file") {
			t.Errorf("stderr = %q", env.stderr.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestTemplatesExportImages - Header image files
// ---------------------------------------------------------------------------

func TestTemplatesExportImages(t *testing.T) {
	t.Parallel()

	t.Run("inline image", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		img := pngBytes(t)
		writeOverride(t, env, &templatestore.Config{
			Voluntary:   &templatestore.Entry{HeaderImage: assets.InlinePayload(img, assets.FormatPNG)},
			Involuntary: &templatestore.Entry{},
		})
		dir := filepath.Join(env.dir, "exported")

		if code := env.run("templates", "export-images", "-o", dir); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, env.stderr.String())
		}
		path := filepath.Join(dir, "cabecalho_voluntaria.png")
		written, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(written, img) {
			t.Error("written image differs from the inline payload")
		}
		if !strings.Contains(env.stdout.String(), "Created "+path) {
			t.Errorf("stdout = %q", env.stdout.String())
		}
	})

	t.Run("no images", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		if code := env.run("templates", "export-images"); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, env.stderr.String())
		}
		if !strings.Contains(env.stdout.String(), "No header images configured") {
			t.Errorf("stdout = %q", env.stdout.String())
		}
	})

	t.Run("missing stored image", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		writeOverride(t, env, &templatestore.Config{
			Voluntary:   &templatestore.Entry{HeaderImage: assets.StoredFilename("missing.png")},
			Involuntary: &templatestore.Entry{},
		})
		if code := env.run("templates", "export-images"); code != ExitIO {
			t.Errorf("exit code = %d, want %d; stderr: %s", code, ExitIO, env.stderr.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestTemplatesImport_NoCache - Import needs a writable cache
// ---------------------------------------------------------------------------

func TestTemplatesImport_NoCache(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	// A regular file where the store directory should be makes the cache
	// unusable with or without cgo.
	blocker := filepath.Join(env.dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	env.Config.Templates.StorePath = filepath.Join(blocker, "templates.db")

	if code := env.run("templates", "import", "-"); code != ExitIO {
		t.Errorf("exit code = %d, want %d; stderr: %s", code, ExitIO, env.stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestRunConfig - Effective configuration
// ---------------------------------------------------------------------------

func TestRunConfig(t *testing.T) {
	t.Parallel()

	t.Run("show", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		if code := env.run("config", "show"); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, env.stderr.String())
		}
		for _, want := range []string{"minimumAge: 18", "timeout: 5s"} {
			if !strings.Contains(env.stdout.String(), want) {
				t.Errorf("output should contain %q, got:\n%s", want, env.stdout.String())
			}
		}
	})

	t.Run("unknown subcommand", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		if code := env.run("config", "edit"); code != ExitUsage {
			t.Errorf("exit code = %d, want %d", code, ExitUsage)
		}
	})

	t.Run("no subcommand shows usage", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		if code := env.run("config"); code != ExitSuccess {
			t.Fatalf("exit code = %d", code)
		}
		if !strings.Contains(env.stdout.String(), "Usage: admitdoc config show") {
			t.Errorf("stdout = %q", env.stdout.String())
		}
	})
}

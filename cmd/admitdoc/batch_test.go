package main

// Notes:
// - readRoster: we build .xlsx files with excelize in t.TempDir() and test
//   header detection, positional columns, blank rows, sheet selection, and
//   date serials.
// - runBatch: end-to-end with real rendering; a failing row must not stop
//   the others, and homonyms must not overwrite each other.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

// writeRoster saves rows into a new workbook at path, on sheet (empty
// means the default first sheet).
func writeRoster(t *testing.T, path, sheet string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	name := f.GetSheetName(0)
	if sheet != "" {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("creating sheet: %v", err)
		}
		name = sheet
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(name, cellRef, &row); err != nil {
			t.Fatalf("writing row %d: %v", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving roster: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestReadRoster - Spreadsheet parsing
// ---------------------------------------------------------------------------

func TestReadRoster(t *testing.T) {
	t.Parallel()

	t.Run("header row locates columns in any order", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "roster.xlsx")
		writeRoster(t, path, "", [][]any{
			{"Tipo de Internação", "Nome do Paciente", "Data de Nascimento"},
			{"voluntaria", "Maria Silva", "1980-03-02"},
			{"", "", ""},
			{"involuntaria", "José", ""},
		})

		got, err := readRoster(path, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []rosterRow{
			{line: 2, name: "Maria Silva", birthDate: "1980-03-02", admission: "voluntaria"},
			{line: 4, name: "José", admission: "involuntaria"},
		}
		if diff := cmp.Diff(want, got, cmp.AllowUnexported(rosterRow{})); diff != "" {
			t.Errorf("rows mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no header uses positional columns", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "roster.xlsx")
		writeRoster(t, path, "", [][]any{
			{"Maria Silva", "02/03/1980", "voluntaria"},
		})

		got, err := readRoster(path, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []rosterRow{{line: 1, name: "Maria Silva", birthDate: "02/03/1980", admission: "voluntaria"}}
		if diff := cmp.Diff(want, got, cmp.AllowUnexported(rosterRow{})); diff != "" {
			t.Errorf("rows mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("named sheet", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "roster.xlsx")
		writeRoster(t, path, "Outubro", [][]any{
			{"Nome", "Tipo"},
			{"Ana", "voluntaria"},
		})

		got, err := readRoster(path, "Outubro")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].name != "Ana" || got[0].admission != "voluntaria" {
			t.Errorf("rows = %+v", got)
		}
	})

	t.Run("header only is empty", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "roster.xlsx")
		writeRoster(t, path, "", [][]any{{"Nome", "Nascimento", "Tipo"}})

		_, err := readRoster(path, "")
		if !errors.Is(err, ErrEmptyRoster) {
			t.Errorf("error = %v, want ErrEmptyRoster", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := readRoster(filepath.Join(t.TempDir(), "missing.xlsx"), "")
		if !errors.Is(err, ErrReadRoster) {
			t.Errorf("error = %v, want ErrReadRoster", err)
		}
	})

	t.Run("unknown sheet", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "roster.xlsx")
		writeRoster(t, path, "", [][]any{{"Ana", "", "voluntaria"}})

		_, err := readRoster(path, "Dezembro")
		if !errors.Is(err, ErrReadRoster) {
			t.Errorf("error = %v, want ErrReadRoster", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestParseRosterDate - Text dates and Excel serials
// ---------------------------------------------------------------------------

func TestParseRosterDate(t *testing.T) {
	t.Parallel()

	want := time.Date(1980, 3, 2, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"1980-03-02", false},
		{"02/03/1980", false},
		{"29282", false}, // Excel serial for 1980-03-02
		{"29282.0", false},
		{"amanhã", true},
		{"-5", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := parseRosterDate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseRosterDate(%q) should fail, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(want) {
				t.Errorf("parseRosterDate(%q) = %v, want %v", tt.in, got, want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestNormalizeHeader - Header label matching
// ---------------------------------------------------------------------------

func TestNormalizeHeader(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"  Nome ":            "nome",
		"Tipo de Internação": "tipo de internacao",
		"DATA DE NASCIMENTO": "data de nascimento",
	}
	for in, want := range tests {
		if got := normalizeHeader(in); got != want {
			t.Errorf("normalizeHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRunBatch - Roster to PDFs
// ---------------------------------------------------------------------------

func TestRunBatch(t *testing.T) {
	t.Parallel()

	t.Run("renders every valid row and reports failures", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		roster := filepath.Join(env.dir, "roster.xlsx")
		writeRoster(t, roster, "", [][]any{
			{"Nome", "Data de Nascimento", "Tipo"},
			{"Maria Silva", "1980-03-02", "voluntaria"},
			{"José da Conceição", "02/01/1975", "involuntária"},
			{"Ana Souza", "2015-01-01", "voluntaria"},
			{"Maria Silva", "", "voluntaria"},
			{"Pedro", "", "eletiva"},
		})
		outDir := filepath.Join(env.dir, "batch")

		code := env.run("batch", roster, "-o", outDir, "-w", "2")
		if code != ExitGeneral {
			t.Fatalf("exit code = %d, want %d; stderr: %s", code, ExitGeneral, env.stderr.String())
		}

		for _, name := range []string{
			"voluntaria_maria_silva_2026-10-17.pdf",
			"voluntaria_maria_silva_2026-10-17_2.pdf",
			"involuntaria_jose_da_conceicao_2026-10-17.pdf",
		} {
			if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
				t.Errorf("expected %s: %v", name, err)
			}
		}
		entries, err := os.ReadDir(outDir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 3 {
			t.Errorf("got %d files, want 3", len(entries))
		}

		stderr := env.stderr.String()
		for _, want := range []string{"FAILED row 4 (Ana Souza)", "FAILED row 6 (Pedro)", "2 of 5 notice(s) failed"} {
			if !strings.Contains(stderr, want) {
				t.Errorf("stderr should contain %q, got %q", want, stderr)
			}
		}
		if !strings.Contains(env.stdout.String(), "3 succeeded, 2 failed") {
			t.Errorf("stdout should summarize, got %q", env.stdout.String())
		}
	})

	t.Run("all rows valid exits 0", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		roster := filepath.Join(env.dir, "roster.xlsx")
		writeRoster(t, roster, "", [][]any{
			{"Maria Silva", "1980-03-02", "voluntaria"},
			{"José", "", "involuntaria"},
		})

		if code := env.run("batch", roster, "-q"); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, env.stderr.String())
		}
		entries, err := os.ReadDir(env.Config.Output.DefaultDir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 2 {
			t.Errorf("got %d files in default dir, want 2", len(entries))
		}
	})
}

package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestEmbeddedLoader_LoadTemplate(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	for _, name := range []string{"voluntaria", "involuntaria"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			content, err := loader.LoadTemplate(name)
			if err != nil {
				t.Fatalf("LoadTemplate(%q) error = %v", name, err)
			}
			for _, token := range []string{"{{NOME_PACIENTE}}", "{{DATA_NASCIMENTO}}", "{{DATA_ATUAL}}"} {
				if !strings.Contains(content, token) {
					t.Errorf("template %q missing %s", name, token)
				}
			}
			if !strings.HasPrefix(content, "LEITURA DE NORMAS") {
				t.Errorf("template %q starts with %q", name, content[:20])
			}
			if strings.HasSuffix(content, "\n") {
				t.Errorf("template %q keeps the file's final newline", name)
			}
		})
	}
}

func TestEmbeddedLoader_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "unknown template", input: "emergencia", wantErr: ErrTemplateNotFound},
		{name: "empty name", input: "", wantErr: ErrInvalidAssetName},
		{name: "traversal", input: "../voluntaria", wantErr: ErrInvalidAssetName},
		{name: "extension", input: "voluntaria.txt", wantErr: ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewEmbeddedLoader().LoadTemplate(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadTemplate(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestDefaultTemplate(t *testing.T) {
	t.Parallel()

	content, err := DefaultTemplate("involuntaria")
	if err != nil {
		t.Fatalf("DefaultTemplate() error = %v", err)
	}
	if !strings.Contains(content, "INVOLUNTÁRIA") {
		t.Error("involuntary template text not returned")
	}
}

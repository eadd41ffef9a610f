package assets

import (
	"errors"
	"testing"
)

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple name", input: "voluntaria"},
		{name: "with underscore", input: "my_template"},
		{name: "empty", input: "", wantErr: true},
		{name: "dot", input: "a.txt", wantErr: true},
		{name: "slash", input: "a/b", wantErr: true},
		{name: "backslash", input: `a\b`, wantErr: true},
		{name: "traversal", input: "..", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateAssetName(tt.input)
			if tt.wantErr != errors.Is(err, ErrInvalidAssetName) {
				t.Errorf("ValidateAssetName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateImageName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "png filename", input: "cabecalho_voluntaria.png"},
		{name: "multiple dots", input: "logo.v2.svg"},
		{name: "empty", input: "", wantErr: true},
		{name: "parent", input: "..", wantErr: true},
		{name: "hidden", input: ".secret", wantErr: true},
		{name: "nested", input: "a/b.png", wantErr: true},
		{name: "nul byte", input: "a\x00.png", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateImageName(tt.input)
			if tt.wantErr != errors.Is(err, ErrInvalidAssetName) {
				t.Errorf("ValidateImageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

package templatestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Notes:
// - memStore is an in-memory Store used to test Resolver and bundle logic
//   without cgo; SQLiteCache has its own tests behind the cgo build tag.

type memStore struct {
	cfg       *Config
	templates *Templates
	loadErr   error
	saveErr   error
	saves     int
}

func (m *memStore) Load(ctx context.Context) (*Config, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.cfg == nil {
		return nil, ErrNotFound
	}
	return m.cfg.Clone(), nil
}

func (m *memStore) Save(ctx context.Context, cfg *Config) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.cfg = cfg.Clone()
	return nil
}

func (m *memStore) LoadTemplates(ctx context.Context) (*Templates, error) {
	if m.templates == nil {
		return nil, ErrNotFound
	}
	t := *m.templates
	return &t, nil
}

func (m *memStore) SaveTemplates(ctx context.Context, t *Templates) error {
	cp := *t
	m.templates = &cp
	return nil
}

func (m *memStore) ReplaceAll(ctx context.Context, t *Templates, cfg *Config) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *t
	m.templates = &cp
	m.cfg = cfg.Clone()
	return nil
}

var _ Store = (*memStore)(nil)

type staticSource struct {
	cfg *Config
	err error
}

func (s staticSource) Load(ctx context.Context) (*Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cfg.Clone(), nil
}

func sampleConfig() *Config {
	return &Config{
		Voluntary:   &Entry{Content: "Vol {{NOME_PACIENTE}}", BoldTexts: []string{"Vol"}},
		Involuntary: &Entry{Content: "Invol {{NOME_PACIENTE}}", BoldTexts: []string{}},
	}
}

func writeJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

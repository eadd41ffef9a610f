package templatestore

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func quietLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestResolver_Precedence(t *testing.T) {
	t.Parallel()

	override := sampleConfig()
	override.Voluntary.Content = "from override"
	cached := sampleConfig()
	cached.Voluntary.Content = "from cache"

	tests := []struct {
		name        string
		override    Source
		cache       *memStore
		wantContent string
		wantSaves   int
		wantLog     string
	}{
		{
			name:        "override wins and is written through",
			override:    staticSource{cfg: override},
			cache:       &memStore{cfg: cached},
			wantContent: "from override",
			wantSaves:   1,
		},
		{
			name:        "missing override falls back to cache",
			override:    staticSource{err: ErrNotFound},
			cache:       &memStore{cfg: cached},
			wantContent: "from cache",
		},
		{
			name:        "invalid override falls back to cache with a warning",
			override:    staticSource{err: ErrInvalidConfig},
			cache:       &memStore{cfg: cached},
			wantContent: "from cache",
			wantLog:     "override configuration unusable",
		},
		{
			name:        "empty cache falls back to defaults",
			override:    nil,
			cache:       &memStore{},
			wantContent: "LEITURA DE NORMAS - INTERNAÇÃO VOLUNTÁRIA",
		},
		{
			name:        "corrupt cache falls back to defaults with a warning",
			cache:       &memStore{loadErr: ErrInvalidConfig},
			wantContent: "LEITURA DE NORMAS - INTERNAÇÃO VOLUNTÁRIA",
			wantLog:     "cached configuration unusable",
		},
		{
			name:        "cache write failure is not fatal",
			override:    staticSource{cfg: override},
			cache:       &memStore{saveErr: ErrStore},
			wantContent: "from override",
			wantLog:     "caching override configuration failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var logs bytes.Buffer
			r := &Resolver{Override: tt.override, Cache: tt.cache, Logger: quietLogger(&logs)}

			cfg, err := r.Load(context.Background())
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !strings.HasPrefix(cfg.Voluntary.Content, tt.wantContent) {
				t.Errorf("Voluntary.Content = %.50q, want prefix %q", cfg.Voluntary.Content, tt.wantContent)
			}
			if tt.cache.saves != tt.wantSaves {
				t.Errorf("cache saves = %d, want %d", tt.cache.saves, tt.wantSaves)
			}
			if tt.wantLog != "" && !strings.Contains(logs.String(), tt.wantLog) {
				t.Errorf("log %q does not contain %q", logs.String(), tt.wantLog)
			}
		})
	}
}

func TestResolver_EmptyContentGetsDefault(t *testing.T) {
	t.Parallel()

	cfg := sampleConfig()
	cfg.Involuntary.Content = ""
	cfg.Involuntary.BoldTexts = nil

	r := &Resolver{Override: staticSource{cfg: cfg}}
	got, err := r.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !strings.Contains(got.Involuntary.Content, "INVOLUNTÁRIA") {
		t.Errorf("Involuntary.Content = %.40q, want default text", got.Involuntary.Content)
	}
	if got.Involuntary.BoldTexts == nil || len(got.Involuntary.BoldTexts) != 0 {
		t.Errorf("BoldTexts = %#v, want empty list", got.Involuntary.BoldTexts)
	}
}

func TestResolver_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Resolver{Override: &FileSource{Path: "templates.json"}}
	if _, err := r.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestResolver_Templates(t *testing.T) {
	t.Parallel()

	t.Run("cached", func(t *testing.T) {
		t.Parallel()

		r := &Resolver{Cache: &memStore{templates: &Templates{Voluntary: "v", Involuntary: "i"}}}
		got, err := r.Templates(context.Background())
		if err != nil || got.Voluntary != "v" {
			t.Errorf("Templates() = %+v, %v", got, err)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		got, err := (&Resolver{}).Templates(context.Background())
		if err != nil {
			t.Fatalf("Templates() error = %v", err)
		}
		if !strings.Contains(got.Involuntary, "INVOLUNTÁRIA") {
			t.Errorf("Involuntary = %.40q", got.Involuntary)
		}
	})
}

func TestResolver_Save(t *testing.T) {
	t.Parallel()

	if err := (&Resolver{}).Save(context.Background(), sampleConfig()); !errors.Is(err, ErrNoCache) {
		t.Errorf("Save() without cache error = %v, want ErrNoCache", err)
	}

	cache := &memStore{}
	r := &Resolver{Cache: cache}
	cfg := sampleConfig()
	cfg.Involuntary.BoldTexts = nil
	if err := r.Save(context.Background(), cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if cache.cfg.Involuntary.BoldTexts == nil {
		t.Error("saved config has nil boldTexts")
	}
	if cfg.Involuntary.BoldTexts != nil {
		t.Error("Save() mutated its argument")
	}

	cfg.Voluntary = nil
	if err := r.Save(context.Background(), cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Save(partial) error = %v, want ErrInvalidConfig", err)
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/alnah/go-admitdoc/internal/assets"
	"github.com/alnah/go-admitdoc/internal/config"
	"github.com/alnah/go-admitdoc/internal/templatestore"
	flag "github.com/spf13/pflag"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string        `json:"status"`
	Config    configInfo    `json:"config"`
	Templates templatesInfo `json:"templates"`
	Images    []imageInfo   `json:"images,omitempty"`
	System    systemInfo    `json:"system"`
	Warnings  []string      `json:"warnings,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
}

// configInfo describes the configuration file in use.
type configInfo struct {
	Path  string `json:"path,omitempty"` // empty means built-in defaults
	Valid bool   `json:"valid"`
}

// templatesInfo describes the template sources.
type templatesInfo struct {
	OverrideFile  string `json:"override_file,omitempty"`
	Override      string `json:"override"` // "unset", "absent", "valid", "invalid"
	StorePath     string `json:"store_path,omitempty"`
	CacheOpen     bool   `json:"cache_open"`
	SchemaVersion int    `json:"schema_version,omitempty"`
	Defaults      string `json:"defaults"`
}

// imageInfo is the load result of one configured header image.
type imageInfo struct {
	Admission string `json:"admission"`
	Ref       string `json:"ref"`
	Loaded    bool   `json:"loaded"`
	Format    string `json:"format,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// systemInfo holds platform and output directory checks.
type systemInfo struct {
	OS             string `json:"os"`
	Arch           string `json:"arch"`
	OutputDir      string `json:"output_dir"`
	OutputExists   bool   `json:"output_exists"`
	OutputWritable bool   `json:"output_writable"`
}

// runDoctor checks that notices can be generated with the current setup.
// Warnings describe degraded operation (no cache, dropped header images);
// errors mean generation would fail.
func runDoctor(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseDoctorFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printDoctorUsage(env.Stdout)
			return nil
		}
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: doctor: unexpected argument %q", ErrUsage, positional[0])
	}

	result := diagnose(ctx, f, env)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return fmt.Errorf("doctor found %d problem(s)", len(result.Errors))
	}
	return nil
}

// diagnose performs all checks.
func diagnose(ctx context.Context, f *doctorFlags, env *Environment) *doctorResult {
	r := &doctorResult{
		System: systemInfo{OS: runtime.GOOS, Arch: runtime.GOARCH},
	}
	logger := newLogger(f.common, env.Stderr)

	cfg := checkConfig(r, f.common, env)
	tc := checkTemplates(ctx, r, cfg, logger)
	if tc != nil {
		checkImages(ctx, r, tc, cfg, f.image.timeout)
	}
	checkOutputDir(r, cfg.Output.DefaultDir)

	switch {
	case len(r.Errors) > 0:
		r.Status = statusErrors
	case len(r.Warnings) > 0:
		r.Status = statusWarnings
	default:
		r.Status = statusReady
	}
	return r
}

// checkConfig loads the configuration. An invalid one is reported and the
// remaining checks run against the defaults.
func checkConfig(r *doctorResult, common commonFlags, env *Environment) *config.Config {
	r.Config.Path = common.config
	if r.Config.Path == "" {
		r.Config.Path = loadEnvConfig().ConfigPath
	}

	s, err := loadSettings(common, env)
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("Configuration: %v", err))
		return config.DefaultConfig()
	}
	r.Config.Valid = true
	return s.cfg
}

// checkTemplates opens every template source and returns the active
// configuration, or nil when none can be built.
func checkTemplates(ctx context.Context, r *doctorResult, cfg *config.Config, logger *slog.Logger) *templatestore.Config {
	t := &r.Templates
	res := &templatestore.Resolver{Logger: slog.New(slog.DiscardHandler)}

	t.Defaults = "built-in"
	if dir := cfg.Templates.DefaultsDir; dir != "" {
		t.Defaults = dir
		defaults, err := assets.NewAssetResolver(dir)
		if err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("Default templates directory: %v", err))
			return nil
		}
		res.Defaults = defaults
	}

	t.Override = "unset"
	if path := cfg.Templates.OverrideFile; path != "" {
		t.OverrideFile = path
		src := &templatestore.FileSource{Path: path}
		_, err := src.Load(ctx)
		switch {
		case err == nil:
			t.Override = "valid"
		case errors.Is(err, templatestore.ErrNotFound):
			t.Override = "absent"
		default:
			t.Override = "invalid"
			r.Warnings = append(r.Warnings, fmt.Sprintf("Override file ignored: %v", err))
		}
		res.Override = src
	}

	path, err := storePath(cfg)
	if err != nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf("Template cache unavailable: %v", err))
	} else {
		t.StorePath = path
		cache, err := templatestore.OpenSQLiteCache(ctx, path, logger)
		if err != nil {
			r.Warnings = append(r.Warnings, fmt.Sprintf("Template cache unavailable, import is disabled: %v", err))
		} else {
			defer func() { _ = cache.Close() }()
			t.CacheOpen = true
			if v, err := cache.SchemaVersion(ctx); err == nil {
				t.SchemaVersion = v
			}
			res.Cache = cache
		}
	}

	tc, err := res.Load(ctx)
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("Templates: %v", err))
		return nil
	}
	return tc
}

// checkImages loads every configured header image the way generation does.
func checkImages(ctx context.Context, r *doctorResult, tc *templatestore.Config, cfg *config.Config, timeoutFlag string) {
	timeout, err := resolveImageTimeout(timeoutFlag, cfg)
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("Image timeout: %v", err))
		return
	}
	loader := &assets.ImageLoader{BaseDir: cfg.Images.BaseDir}

	for _, key := range templatestore.Keys {
		entry, err := tc.Entry(key)
		if err != nil || entry.HeaderImage.IsZero() {
			continue
		}
		info := imageInfo{Admission: key, Ref: describeImage(entry.HeaderImage)}
		img, err := loader.Load(ctx, entry.HeaderImage, timeout)
		if err != nil {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s header image: %v (notices are generated without it)", key, err))
		} else {
			info.Loaded = true
			info.Format = string(img.Format)
			info.Width, info.Height = img.Width, img.Height
		}
		r.Images = append(r.Images, info)
	}
}

// checkOutputDir verifies the default output directory accepts files.
func checkOutputDir(r *doctorResult, dir string) {
	if dir == "" {
		dir = "."
	}
	r.System.OutputDir = dir

	if !isDir(dir) {
		r.Warnings = append(r.Warnings, fmt.Sprintf("Output directory %s does not exist yet (created on first use)", dir))
		return
	}
	r.System.OutputExists = true

	probe, err := os.CreateTemp(dir, ".admitdoc-doctor-*")
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("Output directory not writable: %s", dir))
		return
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())
	r.System.OutputWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "admitdoc doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Configuration")
	switch {
	case !r.Config.Valid:
		fmt.Fprintln(w, "  [ERROR] Invalid")
	case r.Config.Path == "":
		fmt.Fprintln(w, "  [OK] Built-in defaults")
	default:
		fmt.Fprintf(w, "  [OK] %s\n", r.Config.Path)
	}
	fmt.Fprintln(w)

	t := r.Templates
	fmt.Fprintln(w, "Templates")
	switch t.Override {
	case "unset":
		fmt.Fprintln(w, "  [OK] Override file: not configured")
	case "absent":
		fmt.Fprintf(w, "  [OK] Override file: %s (not present)\n", t.OverrideFile)
	case "valid":
		fmt.Fprintf(w, "  [OK] Override file: %s\n", t.OverrideFile)
	case "invalid":
		fmt.Fprintf(w, "  [WARN] Override file: %s (ignored)\n", t.OverrideFile)
	}
	if t.CacheOpen {
		fmt.Fprintf(w, "  [OK] Cache: %s (schema v%d)\n", t.StorePath, t.SchemaVersion)
	} else {
		fmt.Fprintln(w, "  [WARN] Cache: unavailable")
	}
	fmt.Fprintf(w, "  [OK] Defaults: %s\n", t.Defaults)
	fmt.Fprintln(w)

	if len(r.Images) > 0 {
		fmt.Fprintln(w, "Header images")
		for _, img := range r.Images {
			if img.Loaded {
				fmt.Fprintf(w, "  [OK] %s: %s (%s, %dx%d)\n", img.Admission, img.Ref, img.Format, img.Width, img.Height)
			} else {
				fmt.Fprintf(w, "  [WARN] %s: %s (not loadable)\n", img.Admission, img.Ref)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "System")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.System.OS, r.System.Arch)
	switch {
	case r.System.OutputWritable:
		fmt.Fprintf(w, "  [OK] Output directory: %s (writable)\n", r.System.OutputDir)
	case r.System.OutputExists:
		fmt.Fprintf(w, "  [ERROR] Output directory: %s (not writable)\n", r.System.OutputDir)
	default:
		fmt.Fprintf(w, "  [WARN] Output directory: %s (missing)\n", r.System.OutputDir)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to generate")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

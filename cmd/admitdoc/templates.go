package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	admitdoc "github.com/alnah/go-admitdoc"
	"github.com/alnah/go-admitdoc/internal/assets"
	"github.com/alnah/go-admitdoc/internal/fileutil"
	"github.com/alnah/go-admitdoc/internal/hints"
	"github.com/alnah/go-admitdoc/internal/templatestore"
	flag "github.com/spf13/pflag"
)

// stdioPath selects stdin or stdout in place of a file.
const stdioPath = "-"

// templateSubcommands maps subcommand names to their runners.
var templateSubcommands = map[string]func(context.Context, *templatesFlags, []string, *templateSession) error{
	"show":          runTemplatesShow,
	"export":        runTemplatesExport,
	"import":        runTemplatesImport,
	"export-images": runTemplatesExportImages,
	"publish":       runTemplatesPublish,
}

// templateSession is the state shared by the templates subcommands.
type templateSession struct {
	env      *Environment
	settings *settings
	sources  *templateSources
	loader   *assets.ImageLoader
}

// runTemplates dispatches a templates subcommand.
func runTemplates(ctx context.Context, args []string, env *Environment) error {
	if len(args) == 0 || isHelpArg(args[0]) {
		printTemplatesUsage(env.Stdout)
		return nil
	}
	sub := args[0]
	run, ok := templateSubcommands[sub]
	if !ok {
		return fmt.Errorf("%w: unknown templates subcommand %q", ErrUsage, sub)
	}

	f, positional, err := parseTemplatesFlags(sub, args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printTemplatesUsage(env.Stdout)
			return nil
		}
		return err
	}

	s, err := loadSettings(f.common, env)
	if err != nil {
		return err
	}
	logger := newLogger(f.common, env.Stderr)
	sources, err := openTemplateSources(ctx, s.cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = sources.Close() }()

	session := &templateSession{
		env:      env,
		settings: s,
		sources:  sources,
		loader:   &assets.ImageLoader{BaseDir: s.cfg.Images.BaseDir},
	}
	return run(ctx, f, positional, session)
}

// runTemplatesShow prints the active template configuration.
func runTemplatesShow(ctx context.Context, f *templatesFlags, _ []string, s *templateSession) error {
	types := admitdoc.AdmissionTypes
	if f.admission != "" {
		a, err := admitdoc.ParseAdmissionType(f.admission)
		if err != nil {
			return err
		}
		types = []admitdoc.AdmissionType{a}
	}

	tc, err := s.sources.resolver.Load(ctx)
	if err != nil {
		return err
	}

	w := s.env.Stdout
	for i, a := range types {
		entry, err := tc.Entry(a.Key())
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s (%s)\n", a.Title(), a.Key())
		fmt.Fprintf(w, "Header image: %s\n", describeImage(entry.HeaderImage))
		if len(entry.BoldTexts) == 0 {
			fmt.Fprintln(w, "Bold phrases: none")
		} else {
			fmt.Fprintln(w, "Bold phrases:")
			for _, phrase := range entry.BoldTexts {
				fmt.Fprintf(w, "  - %s\n", phrase)
			}
		}
		fmt.Fprintln(w, "Content:")
		fmt.Fprintln(w, strings.TrimRight(entry.Content, "\n"))
	}
	return nil
}

// describeImage renders a header image reference for display. Inline
// payloads are summarized rather than printed.
func describeImage(ref assets.ImageRef) string {
	switch ref.Kind() {
	case assets.RefStored:
		return ref.Name()
	case assets.RefInline:
		format := string(ref.Format())
		if format == "" {
			format = "unknown format"
		}
		return fmt.Sprintf("inline %s (%d bytes)", format, len(ref.Data()))
	}
	return "none"
}

// runTemplatesExport writes the active templates and configuration as a
// bundle file, or to stdout with -o -.
func runTemplatesExport(ctx context.Context, f *templatesFlags, positional []string, s *templateSession) error {
	if len(positional) > 0 {
		return fmt.Errorf("%w: templates export: unexpected argument %q", ErrUsage, positional[0])
	}

	var buf bytes.Buffer
	if err := s.sources.resolver.Export(ctx, &buf, s.env.Now()); err != nil {
		return err
	}

	if f.output == stdioPath {
		_, err := s.env.Stdout.Write(buf.Bytes())
		return err
	}

	path := resolveOutputPath(f.output, s.settings.cfg.Output.DefaultDir, templatestore.ExportFilename(s.env.Now()))
	if err := writeOutput(path, buf.Bytes(), ErrWriteFile); err != nil {
		return err
	}
	if !f.common.quiet {
		fmt.Fprintf(s.env.Stdout, "Exported %s\n", path)
	}
	return nil
}

// runTemplatesImport replaces the cached configuration with a bundle.
func runTemplatesImport(ctx context.Context, f *templatesFlags, positional []string, s *templateSession) error {
	if len(positional) != 1 {
		return fmt.Errorf("%w: templates import: expected one bundle file (or - for stdin)", ErrUsage)
	}
	if s.sources.cache == nil {
		return fmt.Errorf("%w%s", templatestore.ErrNoCache, hints.ForStoreOpen())
	}

	var rd io.Reader
	src := positional[0]
	if src == stdioPath {
		rd = s.env.Stdin
	} else {
		file, err := os.Open(src) // #nosec G304 -- operator-provided bundle path
		if err != nil {
			return fmt.Errorf("opening bundle: %w", err)
		}
		defer func() { _ = file.Close() }()
		rd = file
	}

	b, err := s.sources.resolver.Import(ctx, rd)
	if err != nil {
		if errors.Is(err, templatestore.ErrImportFormat) {
			return fmt.Errorf("%w%s", err, hints.ForImportFormat())
		}
		return err
	}

	if !f.common.quiet {
		fmt.Fprintf(s.env.Stdout, "Imported %s (version %s, exported %s)\n", src, orDash(b.Version), orDash(b.ExportDate))
		if s.settings.cfg.Templates.OverrideFile != "" && fileutil.FileExists(s.settings.cfg.Templates.OverrideFile) {
			fmt.Fprintf(s.env.Stderr, "warning: %s takes precedence over the imported configuration\n", s.settings.cfg.Templates.OverrideFile)
		}
	}
	return nil
}

// runTemplatesExportImages writes every configured header image into a
// directory, by default the image base directory.
func runTemplatesExportImages(ctx context.Context, f *templatesFlags, positional []string, s *templateSession) error {
	if len(positional) > 0 {
		return fmt.Errorf("%w: templates export-images: unexpected argument %q", ErrUsage, positional[0])
	}

	tc, err := s.sources.resolver.Load(ctx)
	if err != nil {
		return err
	}
	timeout, err := resolveImageTimeout(f.image.timeout, s.settings.cfg)
	if err != nil {
		return err
	}

	images, loadErr := templatestore.CollectImages(ctx, tc, s.loader, timeout)
	dir := imageDir(f.output, s.settings.cfg.Images.BaseDir)
	paths, err := writeImages(dir, images)
	for _, p := range paths {
		if !f.common.quiet {
			fmt.Fprintf(s.env.Stdout, "Created %s\n", p)
		}
	}
	if err != nil {
		return err
	}
	if loadErr != nil {
		return fmt.Errorf("%w%s", loadErr, hints.ForHeaderImage(dir))
	}
	if len(images) == 0 && !f.common.quiet {
		fmt.Fprintln(s.env.Stdout, "No header images configured")
	}
	return nil
}

// runTemplatesPublish writes the active configuration to the override file,
// moving inline images into the image directory as files.
func runTemplatesPublish(ctx context.Context, f *templatesFlags, positional []string, s *templateSession) error {
	if len(positional) > 0 {
		return fmt.Errorf("%w: templates publish: unexpected argument %q", ErrUsage, positional[0])
	}

	path := f.output
	if path == "" {
		path = s.settings.cfg.Templates.OverrideFile
	}
	if path == "" {
		return fmt.Errorf("%w: templates publish: no override file (set templates.overrideFile or -o)", ErrUsage)
	}

	tc, err := s.sources.resolver.Load(ctx)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fileutil.EnsureDir(dir); err != nil {
			return fmt.Errorf("%w: %v%s", ErrWriteFile, err, hints.ForOutputDirectory())
		}
	}
	images, err := templatestore.WriteOverrideFile(path, tc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFile, err)
	}

	paths, err := writeImages(imageDir("", s.settings.cfg.Images.BaseDir), images)
	if err != nil {
		return err
	}
	if !f.common.quiet {
		fmt.Fprintf(s.env.Stdout, "Published %s\n", path)
		for _, p := range paths {
			fmt.Fprintf(s.env.Stdout, "Created %s\n", p)
		}
	}
	return nil
}

// imageDir returns output when set, else the image base directory.
func imageDir(output, baseDir string) string {
	switch {
	case output != "":
		return output
	case baseDir != "":
		return baseDir
	}
	return assets.DefaultImageDir
}

// writeImages creates dir and writes images into it.
func writeImages(dir string, images []templatestore.Image) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}
	if err := fileutil.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("%w: %v%s", ErrWriteFile, err, hints.ForOutputDirectory())
	}
	paths, err := templatestore.WriteImages(dir, images)
	if err != nil {
		return paths, fmt.Errorf("%w: %w", ErrWriteFile, err)
	}
	return paths, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

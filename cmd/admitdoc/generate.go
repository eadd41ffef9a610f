package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	admitdoc "github.com/alnah/go-admitdoc"
	"github.com/alnah/go-admitdoc/internal/dateutil"
	"github.com/alnah/go-admitdoc/internal/hints"
	flag "github.com/spf13/pflag"
)

// patient is one parsed patient record, from flags, the form, or a roster row.
type patient struct {
	name      string
	birthDate time.Time // zero when not informed
	admission admitdoc.AdmissionType
}

// parsePatient validates the raw flag or form values of one patient.
func parsePatient(name, birthDate, admission string) (patient, error) {
	p := patient{name: strings.TrimSpace(name)}

	if strings.TrimSpace(admission) == "" {
		return patient{}, fmt.Errorf("%w: admission type is required (--type voluntaria|involuntaria)", ErrUsage)
	}
	a, err := admitdoc.ParseAdmissionType(admission)
	if err != nil {
		return patient{}, err
	}
	p.admission = a

	if strings.TrimSpace(birthDate) != "" {
		birth, err := dateutil.ParseDate(birthDate)
		if err != nil {
			return patient{}, err
		}
		p.birthDate = birth
	}
	return p, nil
}

// generation holds what a single-notice command needs once set up.
type generation struct {
	settings *settings
	logger   *slog.Logger
	gen      *admitdoc.Generator
	sources  *templateSources
}

// setupGeneration loads settings and opens the generator and template
// sources. Callers must Close the sources.
func setupGeneration(ctx context.Context, common commonFlags, image imageFlags, env *Environment) (*generation, error) {
	s, err := loadSettings(common, env)
	if err != nil {
		return nil, err
	}
	logger := newLogger(common, env.Stderr)

	timeout, err := resolveImageTimeout(image.timeout, s.cfg)
	if err != nil {
		return nil, err
	}
	gen, err := newGenerator(s, timeout, logger, env)
	if err != nil {
		return nil, err
	}
	sources, err := openTemplateSources(ctx, s.cfg, logger)
	if err != nil {
		return nil, err
	}
	return &generation{settings: s, logger: logger, gen: gen, sources: sources}, nil
}

// generateOne renders one patient's notice and writes it under output.
// It returns the written path.
func (g *generation) generateOne(ctx context.Context, p patient, output string) (string, *admitdoc.Result, error) {
	tc, err := g.sources.resolver.Load(ctx)
	if err != nil {
		return "", nil, err
	}
	in, err := inputFor(tc, p.admission, p.name, p.birthDate)
	if err != nil {
		return "", nil, err
	}

	res, err := g.gen.Generate(ctx, in)
	if err != nil {
		if errors.Is(err, admitdoc.ErrPatientUnderage) {
			return "", nil, fmt.Errorf("%w%s", err, hints.ForUnderage(g.gen.MinimumAge()))
		}
		return "", nil, err
	}

	path := resolveOutputPath(output, g.settings.cfg.Output.DefaultDir, res.Filename)
	if err := writePDF(path, res.PDF); err != nil {
		return "", nil, err
	}
	return path, res, nil
}

// runGenerate renders one notice from flags.
func runGenerate(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseGenerateFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printGenerateUsage(env.Stdout)
			return nil
		}
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: generate: unexpected argument %q", ErrUsage, positional[0])
	}

	p, err := parsePatient(f.patient.name, f.patient.birthDate, f.patient.admission)
	if err != nil {
		return err
	}

	g, err := setupGeneration(ctx, f.common, f.image, env)
	if err != nil {
		return err
	}
	defer func() { _ = g.sources.Close() }()

	start := env.Now()
	path, res, err := g.generateOne(ctx, p, f.output)
	if err != nil {
		return err
	}
	printCreated(env, f.common, path, res, env.Now().Sub(start), g.settings.cfg.Images.BaseDir)
	return nil
}

// printCreated reports one written notice.
func printCreated(env *Environment, common commonFlags, path string, res *admitdoc.Result, elapsed time.Duration, imageDir string) {
	if res.ImageDropped {
		fmt.Fprintf(env.Stderr, "warning: %s was generated without its header image%s\n", path, hints.ForHeaderImage(imageDir))
	}
	if common.quiet {
		return
	}
	if common.verbose {
		fmt.Fprintf(env.Stdout, "Created %s (%d pages, %v, id %s)\n", path, res.Pages, elapsed.Round(time.Millisecond), res.ID)
		return
	}
	fmt.Fprintf(env.Stdout, "Created %s\n", path)
}

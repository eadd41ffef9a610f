package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// patientFlags holds the patient data of a single notice.
type patientFlags struct {
	name      string
	birthDate string
	admission string
}

// imageFlags holds header image loading flags.
type imageFlags struct {
	timeout string
}

// generateFlags holds all flags for the generate command.
type generateFlags struct {
	common  commonFlags
	patient patientFlags
	image   imageFlags
	output  string
}

// promptFlags holds all flags for the prompt command.
type promptFlags struct {
	common commonFlags
	image  imageFlags
	output string
}

// batchFlags holds all flags for the batch command.
type batchFlags struct {
	common  commonFlags
	image   imageFlags
	output  string
	workers int
	sheet   string
}

// templatesFlags holds all flags for the templates subcommands.
type templatesFlags struct {
	common    commonFlags
	image     imageFlags
	output    string
	admission string
}

// configFlags holds all flags for the config command.
type configFlags struct {
	common commonFlags
}

// doctorFlags holds all flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	image  imageFlags
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addPatientFlags adds patient data flags to a FlagSet.
func addPatientFlags(fs *flag.FlagSet, f *patientFlags) {
	fs.StringVarP(&f.name, "name", "n", "", "patient full name")
	fs.StringVarP(&f.birthDate, "birth-date", "b", "", "birth date (YYYY-MM-DD or DD/MM/YYYY)")
	fs.StringVarP(&f.admission, "type", "t", "", "admission type: voluntaria, involuntaria")
}

// addImageFlags adds header image flags to a FlagSet.
func addImageFlags(fs *flag.FlagSet, f *imageFlags) {
	fs.StringVar(&f.timeout, "image-timeout", "", "header image load timeout (e.g., 5s)")
}

// newFlagSet returns a FlagSet that reports errors to the caller instead of
// printing them, so every command prints usage the same way.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	return fs
}

// parseError wraps a pflag error as a usage error. flag.ErrHelp is kept
// as is so callers can print help and succeed.
func parseError(cmd string, err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrUsage, cmd, err)
}

// generateFlagSet registers the generate flags on a new FlagSet.
func generateFlagSet(f *generateFlags) *flag.FlagSet {
	fs := newFlagSet("generate")
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	addCommonFlags(fs, &f.common)
	addPatientFlags(fs, &f.patient)
	addImageFlags(fs, &f.image)
	return fs
}

// promptFlagSet registers the prompt flags on a new FlagSet.
func promptFlagSet(f *promptFlags) *flag.FlagSet {
	fs := newFlagSet("prompt")
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	addCommonFlags(fs, &f.common)
	addImageFlags(fs, &f.image)
	return fs
}

// batchFlagSet registers the batch flags on a new FlagSet.
func batchFlagSet(f *batchFlags) *flag.FlagSet {
	fs := newFlagSet("batch")
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.sheet, "sheet", "s", "", "worksheet name (default: first sheet)")
	addCommonFlags(fs, &f.common)
	addImageFlags(fs, &f.image)
	return fs
}

// templatesFlagSet registers the templates flags on a new FlagSet. All
// subcommands share it.
func templatesFlagSet(sub string, f *templatesFlags) *flag.FlagSet {
	fs := newFlagSet("templates " + sub)
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.admission, "type", "t", "", "admission type: voluntaria, involuntaria")
	addCommonFlags(fs, &f.common)
	addImageFlags(fs, &f.image)
	return fs
}

// configFlagSet registers the config flags on a new FlagSet.
func configFlagSet(f *configFlags) *flag.FlagSet {
	fs := newFlagSet("config")
	addCommonFlags(fs, &f.common)
	return fs
}

// doctorFlagSet registers the doctor flags on a new FlagSet.
func doctorFlagSet(f *doctorFlags) *flag.FlagSet {
	fs := newFlagSet("doctor")
	fs.BoolVar(&f.json, "json", false, "print results as JSON")
	addCommonFlags(fs, &f.common)
	addImageFlags(fs, &f.image)
	return fs
}

// parseGenerateFlags parses generate command flags and returns positional args.
func parseGenerateFlags(args []string) (*generateFlags, []string, error) {
	f := &generateFlags{}
	fs := generateFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError("generate", err)
	}
	return f, fs.Args(), nil
}

// parsePromptFlags parses prompt command flags.
func parsePromptFlags(args []string) (*promptFlags, []string, error) {
	f := &promptFlags{}
	fs := promptFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError("prompt", err)
	}
	return f, fs.Args(), nil
}

// parseBatchFlags parses batch command flags and returns positional args.
func parseBatchFlags(args []string) (*batchFlags, []string, error) {
	f := &batchFlags{}
	fs := batchFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError("batch", err)
	}
	if f.workers < 0 {
		return nil, nil, fmt.Errorf("%w: batch: --workers must be >= 0, got %d", ErrUsage, f.workers)
	}
	return f, fs.Args(), nil
}

// parseTemplatesFlags parses templates subcommand flags and returns
// positional args.
func parseTemplatesFlags(sub string, args []string) (*templatesFlags, []string, error) {
	f := &templatesFlags{}
	fs := templatesFlagSet(sub, f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError("templates "+sub, err)
	}
	return f, fs.Args(), nil
}

// parseConfigFlags parses config command flags and returns positional args.
func parseConfigFlags(args []string) (*configFlags, []string, error) {
	f := &configFlags{}
	fs := configFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError("config", err)
	}
	return f, fs.Args(), nil
}

// parseDoctorFlags parses doctor command flags and returns positional args.
func parseDoctorFlags(args []string) (*doctorFlags, []string, error) {
	f := &doctorFlags{}
	fs := doctorFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError("doctor", err)
	}
	return f, fs.Args(), nil
}

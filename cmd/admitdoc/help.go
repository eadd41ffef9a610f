package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: admitdoc <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  generate    Generate one admission notice from flags")
	fmt.Fprintln(w, "  prompt      Generate one admission notice from an interactive form")
	fmt.Fprintln(w, "  batch       Generate one notice per row of an .xlsx roster")
	fmt.Fprintln(w, "  templates   Show, export, import, or publish template configurations")
	fmt.Fprintln(w, "  config      Show the effective configuration")
	fmt.Fprintln(w, "  doctor      Check configuration, templates, images, and output directory")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'admitdoc help <command>' for details on a specific command.")
}

// printCommonFlags prints the flags every command accepts.
func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
}

// printEnvVars prints the ADMITDOC_* variables.
func printEnvVars(w io.Writer) {
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  ADMITDOC_CONFIG           Config file name or path")
	fmt.Fprintln(w, "  ADMITDOC_STORE_PATH       SQLite template cache")
	fmt.Fprintln(w, "  ADMITDOC_OVERRIDE_FILE    Template override JSON")
	fmt.Fprintln(w, "  ADMITDOC_IMAGE_DIR        Directory for header image filenames")
	fmt.Fprintln(w, "  ADMITDOC_IMAGE_TIMEOUT    Header image load timeout")
	fmt.Fprintln(w, "  ADMITDOC_OUTPUT_DIR       Default output directory")
	fmt.Fprintln(w, "  ADMITDOC_AUTHOR           PDF author")
	fmt.Fprintln(w, "  ADMITDOC_ORG              PDF organization")
	fmt.Fprintln(w, "  ADMITDOC_DATE_FORMAT      Birth date format (e.g., DD/MM/YYYY, iso)")
	fmt.Fprintln(w, "  ADMITDOC_WORKERS          Batch workers")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Variables may also be set in a .env file in the working directory.")
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: admitdoc generate --name <s> --type <t> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate one admission rules notice (leitura de normas) as PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Patient:")
	fmt.Fprintln(w, "  -n, --name <s>            Patient full name (required)")
	fmt.Fprintln(w, "  -b, --birth-date <d>      Birth date: YYYY-MM-DD or DD/MM/YYYY")
	fmt.Fprintln(w, "  -t, --type <t>            Admission type: voluntaria, involuntaria (required)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "      --image-timeout <d>   Header image load timeout (e.g., 5s)")
	fmt.Fprintln(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  admitdoc generate -n \"Maria Silva\" -b 1980-03-02 -t voluntaria")
	fmt.Fprintln(w, "  admitdoc generate -n \"José\" -t involuntaria -o notices/")
}

// printPromptUsage prints usage for the prompt command.
func printPromptUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: admitdoc prompt [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ask for the patient data interactively, then generate the notice.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "      --image-timeout <d>   Header image load timeout (e.g., 5s)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printBatchUsage prints usage for the batch command.
func printBatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: admitdoc batch <roster.xlsx> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate one notice per roster row. Columns are name, birth date, and")
	fmt.Fprintln(w, "type, in that order, unless the first row names them (Nome, Data de")
	fmt.Fprintln(w, "Nascimento, Tipo).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -s, --sheet <name>        Worksheet (default: first)")
	fmt.Fprintln(w, "      --image-timeout <d>   Header image load timeout (e.g., 5s)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printTemplatesUsage prints usage for the templates command.
func printTemplatesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: admitdoc templates <subcommand> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  show            Print the active templates (-t to pick one type)")
	fmt.Fprintln(w, "  export          Write a configuration bundle (-o file, - for stdout)")
	fmt.Fprintln(w, "  import <file>   Replace the cached configuration with a bundle (- for stdin)")
	fmt.Fprintln(w, "  export-images   Write the header images as files (-o dir)")
	fmt.Fprintln(w, "  publish         Write the active configuration to the override file (-o file)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The override file is read first, then the local cache, then the built-in")
	fmt.Fprintln(w, "texts.")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: admitdoc config show [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML.")
	fmt.Fprintln(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	printEnvVars(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: admitdoc doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that notices can be generated with the current setup.")
	fmt.Fprintln(w, "Exits 1 when a check fails; warnings still exit 0.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print results as JSON")
	fmt.Fprintln(w, "      --image-timeout <d>   Header image load timeout (e.g., 5s)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// commandUsage maps command names to their usage printers.
var commandUsage = map[string]func(io.Writer){
	"generate":   printGenerateUsage,
	"prompt":     printPromptUsage,
	"batch":      printBatchUsage,
	"templates":  printTemplatesUsage,
	"config":     printConfigUsage,
	"doctor":     printDoctorUsage,
	"completion": printCompletionUsage,
}

// runHelp prints help for a command, or the main usage.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: admitdoc version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
		return nil
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: admitdoc help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
		return nil
	case "env":
		printEnvVars(env.Stdout)
		return nil
	}

	usage, ok := commandUsage[args[0]]
	if !ok {
		printUsage(env.Stderr)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	usage(env.Stdout)
	return nil
}

func isHelpArg(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

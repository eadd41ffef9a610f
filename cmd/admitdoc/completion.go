package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// shells lists the supported shells in help order.
var shells = []Shell{ShellBash, ShellZsh, ShellFish, ShellPowerShell}

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file, optionally filtered by glob
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags; "*" means any file
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	Args        []string // fixed first arguments (subcommands, shells)
	FilePattern string   // glob for file arguments (e.g., "*.xlsx")
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"type":   {Values: []string{"voluntaria", "involuntaria"}},
	"config": {FileGlob: "*.yaml,*.yml"},
	"output": {FileGlob: "*"},
}

// batchOutputMeta overrides "output" for commands that write directories.
var batchOutputMeta = completionMeta{IsDir: true}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta, then from
// overrides.
func extractFlagsFromFlagSet(fs *flag.FlagSet, overrides map[string]completionMeta) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		meta, ok := overrides[f.Name]
		if !ok {
			meta, ok = flagCompletionMeta[f.Name]
		}
		if ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the FlagSets the commands parse with.
func getCommands() []commandDef {
	dirOutput := map[string]completionMeta{"output": batchOutputMeta}
	subcommands := make([]string, 0, len(templateSubcommands))
	for name := range templateSubcommands {
		subcommands = append(subcommands, name)
	}
	slices.Sort(subcommands)
	shellNames := make([]string, len(shells))
	for i, s := range shells {
		shellNames[i] = string(s)
	}

	return []commandDef{
		{
			Name:  "generate",
			Desc:  "Generate one admission notice from flags",
			Flags: extractFlagsFromFlagSet(generateFlagSet(&generateFlags{}), nil),
		},
		{
			Name:  "prompt",
			Desc:  "Generate one admission notice from an interactive form",
			Flags: extractFlagsFromFlagSet(promptFlagSet(&promptFlags{}), nil),
		},
		{
			Name:        "batch",
			Desc:        "Generate one notice per row of an .xlsx roster",
			Flags:       extractFlagsFromFlagSet(batchFlagSet(&batchFlags{}), dirOutput),
			FilePattern: "*.xlsx",
		},
		{
			Name:        "templates",
			Desc:        "Show, export, import, or publish template configurations",
			Flags:       extractFlagsFromFlagSet(templatesFlagSet("", &templatesFlags{}), nil),
			Args:        subcommands,
			FilePattern: "*.json",
		},
		{
			Name:  "config",
			Desc:  "Show the effective configuration",
			Flags: extractFlagsFromFlagSet(configFlagSet(&configFlags{}), nil),
			Args:  []string{"show"},
		},
		{
			Name:  "doctor",
			Desc:  "Check configuration, templates, images, and output directory",
			Flags: extractFlagsFromFlagSet(doctorFlagSet(&doctorFlags{}), nil),
		},
		{
			Name: "completion",
			Desc: "Generate shell completion script",
			Args: shellNames,
		},
		{
			Name: "version",
			Desc: "Show version information",
		},
		{
			Name: "help",
			Desc: "Show help for a command",
			Args: []string{"generate", "prompt", "batch", "templates", "config", "doctor", "completion", "env"},
		},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var b strings.Builder
	cmds := getCommands()

	switch shell {
	case ShellBash:
		writeBash(&b, cmds)
	case ShellZsh:
		writeZsh(&b, cmds)
	case ShellFish:
		writeFish(&b, cmds)
	case ShellPowerShell:
		writePowerShell(&b, cmds)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 || isHelpArg(args[0]) {
		printCompletionUsage(env.Stdout)
		return nil
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: completion: expected one shell, got %d arguments", ErrUsage, len(args))
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: admitdoc completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(admitdoc completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(admitdoc completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    admitdoc completion fish > ~/.config/fish/completions/admitdoc.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    admitdoc completion powershell | Out-String | Invoke-Expression")
}

// ---------------------------------------------------------------------------
// Script writers
// ---------------------------------------------------------------------------

// flagNames returns the --long and -s forms of every flag.
func flagNames(flags []flagDef) []string {
	var names []string
	for _, f := range flags {
		names = append(names, "--"+f.Long)
		if f.Short != "" {
			names = append(names, "-"+f.Short)
		}
	}
	return names
}

// globs splits a comma-separated FileGlob. "*" and "" yield nil.
func globs(pattern string) []string {
	if pattern == "" || pattern == "*" {
		return nil
	}
	return strings.Split(pattern, ",")
}

// globExtensions returns the extensions of "*.ext" globs.
func globExtensions(pattern string) []string {
	var exts []string
	for _, g := range globs(pattern) {
		exts = append(exts, strings.TrimPrefix(g, "*."))
	}
	return exts
}

func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

// bashFileCompgen returns the compgen call completing files of pattern.
func bashFileCompgen(pattern string) string {
	exts := globExtensions(pattern)
	switch len(exts) {
	case 0:
		return `compgen -f -- "$cur"`
	case 1:
		return fmt.Sprintf(`compgen -f -X '!*.%s' -- "$cur"`, exts[0])
	}
	return fmt.Sprintf(`compgen -f -X '!*.@(%s)' -- "$cur"`, strings.Join(exts, "|"))
}

func writeBash(b *strings.Builder, cmds []commandDef) {
	b.WriteString("# bash completion for admitdoc\n")
	b.WriteString("_admitdoc_completions() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(b, "        COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n", strings.Join(commandNames(cmds), " "))
	b.WriteString("        return 0\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"$cmd\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(b, "    %s)\n", c.Name)
		if len(c.Flags) > 0 {
			b.WriteString("        case \"$prev\" in\n")
			for _, f := range c.Flags {
				if f.Type == flagBool {
					continue
				}
				pattern := "--" + f.Long
				if f.Short != "" {
					pattern += "|-" + f.Short
				}
				var reply string
				switch f.Type {
				case flagEnum:
					reply = fmt.Sprintf(`compgen -W "%s" -- "$cur"`, strings.Join(f.Values, " "))
				case flagFile:
					reply = bashFileCompgen(f.FileGlob)
				case flagDir:
					reply = `compgen -d -- "$cur"`
				}
				if reply == "" {
					fmt.Fprintf(b, "        %s) return 0 ;;\n", pattern)
				} else {
					fmt.Fprintf(b, "        %s) COMPREPLY=( $(%s) ); return 0 ;;\n", pattern, reply)
				}
			}
			b.WriteString("        esac\n")
		}
		b.WriteString("        if [[ \"$cur\" == -* ]]; then\n")
		fmt.Fprintf(b, "            COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n", strings.Join(flagNames(c.Flags), " "))
		if len(c.Args) > 0 {
			b.WriteString("        elif [[ ${COMP_CWORD} -eq 2 ]]; then\n")
			fmt.Fprintf(b, "            COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n", strings.Join(c.Args, " "))
		}
		if c.FilePattern != "" {
			b.WriteString("        else\n")
			fmt.Fprintf(b, "            COMPREPLY=( $(%s) )\n", bashFileCompgen(c.FilePattern))
		}
		b.WriteString("        fi\n")
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("complete -F _admitdoc_completions admitdoc\n")
}

// zshEscape escapes text for use inside a single-quoted _arguments entry.
func zshEscape(s string) string {
	r := strings.NewReplacer(`'`, `'\''`, `[`, `\[`, `]`, `\]`, `:`, `\:`)
	return r.Replace(s)
}

// zshAction returns the _arguments action of a value-taking flag.
func zshAction(f flagDef) string {
	switch f.Type {
	case flagBool:
		return ""
	case flagEnum:
		return ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		exts := globExtensions(f.FileGlob)
		if len(exts) == 0 {
			return ":file:_files"
		}
		return fmt.Sprintf(`:file:_files -g "*.(%s)"`, strings.Join(exts, "|"))
	case flagDir:
		return ":directory:_files -/"
	}
	return ":" + f.Long + ": "
}

func writeZsh(b *strings.Builder, cmds []commandDef) {
	b.WriteString("#compdef admitdoc\n\n")
	b.WriteString("_admitdoc() {\n")
	b.WriteString("  local -a commands\n")
	b.WriteString("  commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(b, "    '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("  )\n\n")
	b.WriteString("  if (( CURRENT == 2 )); then\n")
	b.WriteString("    _describe 'command' commands\n")
	b.WriteString("    return\n")
	b.WriteString("  fi\n\n")
	b.WriteString("  local cmd=\"${words[2]}\"\n")
	b.WriteString("  words=(\"${(@)words[2,-1]}\")\n")
	b.WriteString("  (( CURRENT-- ))\n\n")
	b.WriteString("  case \"$cmd\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(b, "  %s)\n", c.Name)
		b.WriteString("    _arguments")
		for _, f := range c.Flags {
			desc := zshEscape(f.Desc)
			action := zshAction(f)
			if f.Short != "" {
				fmt.Fprintf(b, " \\\n      '(-%s --%s)'{-%s,--%s}'[%s]%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
			} else {
				fmt.Fprintf(b, " \\\n      '--%s[%s]%s'", f.Long, desc, action)
			}
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(b, " \\\n      '1:argument:(%s)'", strings.Join(c.Args, " "))
		}
		if c.FilePattern != "" {
			fmt.Fprintf(b, " \\\n      '*:file:_files -g \"*.(%s)\"'", strings.Join(globExtensions(c.FilePattern), "|"))
		}
		b.WriteString("\n    ;;\n")
	}

	b.WriteString("  esac\n")
	b.WriteString("}\n\n")
	b.WriteString("_admitdoc \"$@\"\n")
}

// fishEscape escapes text for a single-quoted fish string.
func fishEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

func writeFish(b *strings.Builder, cmds []commandDef) {
	b.WriteString("# fish completion for admitdoc\n\n")
	b.WriteString("function __fish_admitdoc_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_admitdoc_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\n")
	b.WriteString("end\n\n")
	b.WriteString("complete -c admitdoc -f\n")

	for _, c := range cmds {
		fmt.Fprintf(b, "complete -c admitdoc -n __fish_admitdoc_needs_command -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	b.WriteString("\n")

	for _, c := range cmds {
		cond := fmt.Sprintf("'__fish_admitdoc_using_command %s'", c.Name)
		for _, f := range c.Flags {
			line := "complete -c admitdoc -n " + cond
			if f.Short != "" {
				line += " -s " + f.Short
			}
			line += " -l " + f.Long + " -d '" + fishEscape(f.Desc) + "'"
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += " -xa '" + strings.Join(f.Values, " ") + "'"
			case flagFile:
				line += " -r -F"
			case flagDir:
				line += " -xa '(__fish_complete_directories)'"
			default:
				line += " -x"
			}
			b.WriteString(line + "\n")
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(b, "complete -c admitdoc -n %s -a '%s'\n", cond, strings.Join(c.Args, " "))
		}
		if c.FilePattern != "" {
			fmt.Fprintf(b, "complete -c admitdoc -n %s -F\n", cond)
		}
	}
}

// psQuote returns s as a single-quoted PowerShell string.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func psList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = psQuote(s)
	}
	return "@(" + strings.Join(quoted, ", ") + ")"
}

func writePowerShell(b *strings.Builder, cmds []commandDef) {
	b.WriteString("# PowerShell completion for admitdoc\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName admitdoc -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")

	b.WriteString("    $commands = [ordered]@{\n")
	for _, c := range cmds {
		fmt.Fprintf(b, "        %s = %s\n", psQuote(c.Name), psQuote(c.Desc))
	}
	b.WriteString("    }\n")

	b.WriteString("    $flags = @{\n")
	for _, c := range cmds {
		fmt.Fprintf(b, "        %s = %s\n", psQuote(c.Name), psList(flagNames(c.Flags)))
	}
	b.WriteString("    }\n")

	b.WriteString("    $arguments = @{\n")
	for _, c := range cmds {
		if len(c.Args) > 0 {
			fmt.Fprintf(b, "        %s = %s\n", psQuote(c.Name), psList(c.Args))
		}
	}
	b.WriteString("    }\n")

	values := map[string][]string{}
	for _, c := range cmds {
		for _, f := range c.Flags {
			if f.Type == flagEnum {
				values["--"+f.Long] = f.Values
				if f.Short != "" {
					values["-"+f.Short] = f.Values
				}
			}
		}
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	b.WriteString("    $values = @{\n")
	for _, k := range keys {
		fmt.Fprintf(b, "        %s = %s\n", psQuote(k), psList(values[k]))
	}
	b.WriteString("    }\n\n")

	b.WriteString(`    $words = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })
    if ($wordToComplete -ne '') { $words = $words[0..($words.Count - 2)] }

    if ($words.Count -le 1) {
        $commands.GetEnumerator() | Where-Object { $_.Key -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_.Key, $_.Key, 'ParameterValue', $_.Value)
        }
        return
    }

    $cmd = $words[1]
    $prev = $words[-1]
    if ($values.ContainsKey($prev)) {
        $values[$prev] | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
        }
        return
    }

    if ($words.Count -eq 2 -and $arguments.ContainsKey($cmd) -and -not $wordToComplete.StartsWith('-')) {
        $arguments[$cmd] | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
        }
        return
    }

    if ($flags.ContainsKey($cmd)) {
        $flags[$cmd] | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterName', $_)
        }
    }
}
`)
}

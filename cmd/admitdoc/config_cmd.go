package main

import (
	"errors"
	"fmt"

	"github.com/alnah/go-admitdoc/internal/config"
	flag "github.com/spf13/pflag"
)

// runConfig handles "config show", which prints the effective configuration
// after merging the file and ADMITDOC_* variables.
func runConfig(args []string, env *Environment) error {
	if len(args) == 0 || isHelpArg(args[0]) {
		printConfigUsage(env.Stdout)
		return nil
	}
	if args[0] != "show" {
		return fmt.Errorf("%w: unknown config subcommand %q", ErrUsage, args[0])
	}

	f, positional, err := parseConfigFlags(args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printConfigUsage(env.Stdout)
			return nil
		}
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: config show: unexpected argument %q", ErrUsage, positional[0])
	}

	s, err := loadSettings(f.common, env)
	if err != nil {
		return err
	}
	data, err := config.Marshal(s.cfg)
	if err != nil {
		return err
	}
	_, err = env.Stdout.Write(data)
	return err
}
